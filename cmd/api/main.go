package main

import (
	"context"

	appcontext "github.com/educhain/certchain/internal/app_context"
	"github.com/educhain/certchain/internal/auth"
	"github.com/educhain/certchain/internal/chain"
	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/controller"
	"github.com/educhain/certchain/internal/database"
	"github.com/educhain/certchain/internal/env"
	filestorage "github.com/educhain/certchain/internal/file_storage"
	"github.com/educhain/certchain/internal/ipfs"
	"github.com/educhain/certchain/internal/jobs"
	"github.com/educhain/certchain/internal/mailer"
	"github.com/educhain/certchain/internal/metrics"
	"github.com/educhain/certchain/internal/middleware"
	ratelimiter "github.com/educhain/certchain/internal/rate_limiter"
	"github.com/educhain/certchain/internal/repository"
	"github.com/educhain/certchain/internal/route"
	"github.com/educhain/certchain/internal/service"
	"github.com/educhain/certchain/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	defer logger.Sync()

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected")

	if err := util.RegisterCustomValidations(); err != nil {
		logger.Panic(err)
	}

	archiver, err := filestorage.NewArchiver(cfg.Minio, logger)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	var mail mailer.Client = mailer.Noop{}
	if cfg.Mail.Enabled() {
		mail = mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	} else {
		logger.Info("Mail not configured, issuance notifications disabled")
	}

	if !cfg.Auth.Enabled() {
		logger.Warn("AUTH_JWT_SECRET is empty, minting is open to anyone")
	}

	// Never nil, a disabled client explains itself through GET /api/chain.
	chainClient := chain.New(context.Background(), cfg.Chain, logger)

	repo := repository.NewRepository(db, logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)

	app := appcontext.Application{
		Config:     &cfg,
		Logger:     logger,
		JWTService: jwtService,
		Service: &appcontext.Services{
			Issuance: service.NewIssuanceService(service.IssuanceDeps{
				Certificates: repo.Certificate,
				Students:     repo.Student,
				Pinner:       ipfs.NewPinata(cfg.Pinata, logger),
				Chain:        chainClient,
				Archiver:     archiver,
				Mailer:       mail,
			}, service.IssuanceConfig{
				PublicVerifyURL: cfg.PUBLIC_VERIFY_URL,
				StrictCID:       cfg.Pinata.StrictCID,
			}, logger),
			Verification: service.NewVerificationService(repo.Certificate, chainClient, logger),
			Certificate:  service.NewCertificateService(repo.Certificate, cfg.PUBLIC_VERIFY_URL, logger),
			Student:      service.NewStudentService(repo.Student, logger),
			Chain:        service.NewChainService(chainClient),
		},
	}

	scheduler, err := jobs.Start(cfg.Jobs, repo.Certificate, logger)
	if err != nil {
		logger.Panic(err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.FRONTEND_URL
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept", middleware.HeaderRequestId}
	corsConfig.ExposeHeaders = []string{middleware.HeaderRequestId, "Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RequestIdMiddleware)
	r.Use(metrics.Middleware)
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)
	r.GET("/metrics", metrics.Handler())

	rApi := r.Group("/api")

	route.V1_Health(rApi, _controller.Index)
	route.V1_Chain(rApi, _controller.Chain)
	route.V1_Certificates(rApi, _controller.Certificate, _middleware)
	route.V1_Students(rApi, _controller.Student, _middleware)
	route.Certificates(rApi, _controller.Certificate, _middleware)
	route.Students(rApi, _controller.Student, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panicf("Error running server: %v", err)
	}
}

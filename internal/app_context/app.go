package appcontext

import (
	"github.com/educhain/certchain/internal/auth"
	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/service"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// JWTService verifies the issuer tokens that guard certificate minting.
	JWTService auth.JWTInterface

	// Service wraps the stores and clients, controllers only reach them through it.
	Service *Services
}

// Services holds the workflows the controllers call into.
type Services struct {
	Issuance     *service.IssuanceService
	Verification *service.VerificationService
	Certificate  *service.CertificateService
	Student      *service.StudentService
	Chain        *service.ChainService
}

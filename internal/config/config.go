package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/educhain/certchain/internal/env"
)

type Config struct {
	Port string
	ENV  string
	// Comma separated list in env, used for CORS.
	FRONTEND_URL []string
	// Base url of the public verification page, e.g. https://educhain.app
	PUBLIC_VERIFY_URL string
	DB                DatabaseConfig
	RateLimiter       RateLimiterConfig
	Auth              AuthConfig
	Chain             ChainConfig
	Pinata            PinataConfig
	Minio             MinioConfig
	Mail              MailConfig
	Jobs              JobsConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	// When empty, issuer endpoints are open. Only acceptable in development.
	JWT_SECRET       string
	IssuerTokenTTL   time.Duration
	IssuerTokenIssue string
}

func (a AuthConfig) Enabled() bool {
	return a.JWT_SECRET != ""
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	DB_SSLMODE   string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type ChainConfig struct {
	RPC_URL          string
	CONTRACT_ADDRESS string
	PRIVATE_KEY      string
	// Localhost nodes are skipped unless explicitly allowed, they are never reachable from the cloud deployment.
	AllowLocalhost bool
	ConnectTimeout time.Duration
}

type PinataConfig struct {
	BASE_URL   string
	JWT        string
	API_KEY    string
	SECRET_KEY string
	Timeout    time.Duration
	// Require the returned CID to decode as a real CID, not only look alphanumeric.
	StrictCID bool
}

type MinioConfig struct {
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	BUCKET     string
	USE_SSL    bool
}

func (m MinioConfig) Enabled() bool {
	return m.ENDPOINT != "" && m.BUCKET != ""
}

type MailConfig struct {
	SEND_GRID  SendGridConfig
	FROM_EMAIL string
}

type SendGridConfig struct {
	API_KEY string
}

func (m MailConfig) Enabled() bool {
	return m.SEND_GRID.API_KEY != "" && m.FROM_EMAIL != ""
}

type JobsConfig struct {
	// Cron spec for refreshing the certificate status gauge.
	StatusGaugeSpec string
	Enabled         bool
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.DB_HOST, d.DB_USERNAME, d.DB_PASSWORD, d.DB_DATABASE, d.DB_PORT, d.DB_SSLMODE)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func GetConfig() Config {
	return Config{
		Port:              env.GetString("PORT", "5000"),
		ENV:               env.GetString("ENV", "development"),
		FRONTEND_URL:      splitList(env.GetString("FRONTEND_URL", "http://localhost:3000,http://localhost:3001")),
		PUBLIC_VERIFY_URL: strings.TrimRight(env.GetString("PUBLIC_VERIFY_URL", ""), "/"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "postgres"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "educhain"),
			DB_SSLMODE:   env.GetString("DB_SSLMODE", "disable"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            env.GetDuration("RATE_LIMIT_TIME_FRAME", time.Minute),
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Auth: AuthConfig{
			JWT_SECRET:       env.GetString("AUTH_JWT_SECRET", ""),
			IssuerTokenTTL:   env.GetDuration("AUTH_ISSUER_TOKEN_TTL", 30*24*time.Hour),
			IssuerTokenIssue: env.GetString("AUTH_ISSUER_TOKEN_ISSUER", "educhain"),
		},
		Chain: ChainConfig{
			RPC_URL:          env.GetString("RPC_URL", ""),
			CONTRACT_ADDRESS: env.GetString("CONTRACT_ADDRESS", ""),
			PRIVATE_KEY:      env.GetString("PRIVATE_KEY", ""),
			AllowLocalhost:   env.GetBool("CHAIN_ALLOW_LOCALHOST", false),
			ConnectTimeout:   env.GetDuration("CHAIN_CONNECT_TIMEOUT", 5*time.Second),
		},
		Pinata: PinataConfig{
			BASE_URL:   strings.TrimRight(env.GetString("PINATA_BASE_URL", "https://api.pinata.cloud"), "/"),
			JWT:        env.GetString("PINATA_JWT", ""),
			API_KEY:    env.GetString("PINATA_API_KEY", ""),
			SECRET_KEY: env.GetString("PINATA_SECRET_KEY", ""),
			Timeout:    env.GetDuration("PINATA_TIMEOUT", 30*time.Second),
			StrictCID:  env.GetBool("PINATA_STRICT_CID", false),
		},
		Minio: MinioConfig{
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", ""),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			BUCKET:     env.GetString("MINIO_BUCKET", "certificate-metadata"),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
		},
		Mail: MailConfig{
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
		},
		Jobs: JobsConfig{
			StatusGaugeSpec: env.GetString("JOB_STATUS_GAUGE_SPEC", "*/5 * * * *"),
			Enabled:         env.GetBool("JOBS_ENABLED", true),
		},
	}
}

package ratelimiter

import (
	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/util"
	"go.uber.org/zap"
)

type Limiter interface {
	// Allow reports whether key may make another request and, if not, how long until it may.
	Allow(key string) (bool, float64)
}

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return NewFixedWindowLimiter(cfg, logger)
}

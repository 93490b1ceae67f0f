package ratelimiter

import (
	"sync"
	"time"

	"github.com/educhain/certchain/internal/config"
	"go.uber.org/zap"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter counts requests per key in fixed windows of TimeFrame.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	frame   time.Duration
	Enabled bool
	now     func() time.Time
	logger  *zap.SugaredLogger
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	frame := cfg.TimeFrame
	if frame <= 0 {
		frame = time.Minute
	}

	return &FixedWindowRateLimiter{
		windows: make(map[string]*window),
		limit:   cfg.RequestsPerTimeFrame,
		frame:   frame,
		Enabled: cfg.Enabled,
		now:     time.Now,
		logger:  logger,
	}
}

// Allow returns whether the request is allowed and the retry-after in seconds when it is not.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.frame {
		rl.sweep(now)
		rl.windows[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count >= rl.limit {
		retryAfter := w.start.Add(rl.frame).Sub(now).Seconds()
		rl.logger.Debugf("Rate limit exceeded for %s, retry after %.0fs", key, retryAfter)
		return false, retryAfter
	}

	w.count++
	return true, 0
}

// sweep drops expired windows so the map does not grow with every client ever seen.
func (rl *FixedWindowRateLimiter) sweep(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.start) >= rl.frame {
			delete(rl.windows, k)
		}
	}
}

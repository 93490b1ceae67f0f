package ratelimiter

import (
	"testing"
	"time"

	"github.com/educhain/certchain/internal/config"
	"go.uber.org/zap"
)

func TestFixedWindowRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(config.RateLimiterConfig{RequestsPerTimeFrame: 2, TimeFrame: time.Minute, Enabled: true}, zap.NewNop().Sugar())
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("1.1.1.1"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	now = now.Add(20 * time.Second)
	ok, retryAfter := rl.Allow("1.1.1.1")
	if ok {
		t.Fatalf("third request in the window should be limited")
	}
	if retryAfter != 40 {
		t.Errorf("retryAfter = %v, want 40", retryAfter)
	}

	// Other clients have their own window.
	if ok, _ := rl.Allow("2.2.2.2"); !ok {
		t.Errorf("another key should be allowed")
	}

	now = now.Add(40 * time.Second)
	if ok, _ := rl.Allow("1.1.1.1"); !ok {
		t.Errorf("request in a new window should be allowed")
	}
}

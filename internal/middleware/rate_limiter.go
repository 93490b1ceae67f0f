package middleware

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/educhain/certchain/internal/util"
	"github.com/gin-gonic/gin"
)

func (m Middleware) RateLimiterMiddleware(ctx *gin.Context) {
	if m.rateLimiter == nil || !m.app.Config.RateLimiter.Enabled {
		ctx.Next()
		return
	}

	allowed, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if !allowed {
		seconds := int(math.Ceil(retryAfter))
		ctx.Header("Retry-After", fmt.Sprintf("%d", seconds))
		util.ResponseFailed(ctx, http.StatusTooManyRequests, "Too many requests", util.GenerateErrorMessages(errors.New("rate limit exceeded, retry later"), "rateLimit"), gin.H{
			"retryAfter": seconds,
		})
		return
	}

	ctx.Next()
}

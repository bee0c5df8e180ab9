package middleware

import (
	"context"
	"errors"
	"strconv"

	"edulift/config"
	"edulift/internal/core"
	"edulift/internal/database/redis/repository"
	cErr "edulift/internal/pkg/error"
	"edulift/internal/pkg/response"
	"edulift/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 由 repository.RateLimiterRepository 實作
type RateLimiter interface {
	Enabled() bool
	Consume(ctx context.Context, clientKey string, windowSeconds int64, limitCount int) (int, int64, error)
}

type RateLimit struct {
	logger  *zap.Logger
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	conf    *config.Configuration
	limiter RateLimiter
}

func NewRateLimit(
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	conf *config.Configuration,
	limiter RateLimiter,
) *RateLimit {
	return &RateLimit{logger: logger, trace: trace, metric: metric, conf: conf, limiter: limiter}
}

// Guard 依 client IP 做固定視窗限流；Redis 失敗時放行
func (middleware *RateLimit) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.conf.RateLimit.Enabled || middleware.limiter == nil || !middleware.limiter.Enabled() {
			c.Next()
			return
		}
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRateLimitMiddleware))

		limit := middleware.conf.RateLimit.Limit
		window := middleware.conf.RateLimit.WindowSeconds
		clientKey := c.ClientIP()

		remaining, ttlSec, err := middleware.limiter.Consume(ctx, clientKey, window, limit)
		blocked := errors.Is(err, repository.ErrRateLimitExceeded)
		middleware.trace.ApplyTraceAttributes(span, core.TraceRateLimitMeta{
			ClientKey: clientKey,
			Limit:     limit,
			WindowSec: window,
			Remaining: remaining,
			TTL:       ttlSec,
			Blocked:   blocked,
		})

		if err != nil && !blocked {
			middleware.logger.Warn("rate limiter unavailable, request allowed",
				zap.String("client", clientKey), zap.Error(err))
			end(err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if ttlSec > 0 {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(ttlSec, 10))
		}

		if blocked {
			if ttlSec > 0 {
				c.Header("Retry-After", strconv.FormatInt(ttlSec, 10))
			}
			middleware.metric.IncRateLimited()
			end(nil)
			response.AbortWithError(c, cErr.RateLimitExceeded("rate limit exceeded"))
			return
		}
		end(nil)
		c.Next()
	}
}

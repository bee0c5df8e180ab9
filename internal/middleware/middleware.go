package middleware

import (
	"strings"

	redisRepo "edulift/internal/database/redis/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewTraceEntry,
	NewCors,
	NewLogger,
	NewRecovery,
	NewResponse,
	NewRateLimit,
	wire.Bind(new(RateLimiter), new(*redisRepo.RateLimiterRepository)),
)

const (
	contextRequestIDKey = "requestID"
	contextStartTimeKey = "requestDuration"
	headerRequestID     = "X-Request-ID"
)

// 不做 trace / log / 包裝的路徑
var skipPrefixes = []string{
	"/swagger",
	"/metrics",
	"/version",
	"/health/",
	"/debug/pprof",
}

func shouldSkip(c *gin.Context) bool {
	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = c.Request.URL.Path
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}

// requestID 由 TraceEntry 設定；沒有時補一個 UUIDv7
func requestID(c *gin.Context) string {
	if v, ok := c.Get(contextRequestIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	c.Set(contextRequestIDKey, id.String())
	return id.String()
}

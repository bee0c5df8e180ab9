package middleware

import (
	"edulift/config"
	"edulift/internal/core"
	"edulift/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Cors struct {
	trace *telemetry.Trace
	conf  *config.Configuration
}

func NewCors(trace *telemetry.Trace, conf *config.Configuration) *Cors {
	return &Cors{trace: trace, conf: conf}
}

// CorsHandler 設定 CORS；未設定來源時允許全部（此時不帶 credentials）
func (m *Cors) CorsHandler() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "traceparent", "tracestate"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
	}
	if len(m.conf.App.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = m.conf.App.AllowOrigins
		cfg.AllowCredentials = true
	}
	corsHandler := cors.New(cfg)

	type corsMeta struct {
		AllowAll     bool     `trace:"http.cors.allow_all_origins"`
		AllowOrigins []string `trace:"http.cors.allow_origins,omitempty"`
		AllowMethods []string `trace:"http.cors.allow_methods"`
		AllowHeaders []string `trace:"http.cors.allow_headers"`
		AllowCreds   bool     `trace:"http.cors.allow_credentials"`
	}

	return func(c *gin.Context) {
		// 不做 tracing，但仍需套用 CORS（避免 preflight 失敗）
		if shouldSkip(c) {
			corsHandler(c)
			return
		}

		_, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanCorsMiddleware))
		m.trace.ApplyTraceAttributes(span, corsMeta{
			AllowAll:     cfg.AllowAllOrigins,
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: cfg.AllowMethods,
			AllowHeaders: cfg.AllowHeaders,
			AllowCreds:   cfg.AllowCredentials,
		})
		end(nil)

		// 實際的 CORS middleware 內部會呼叫 c.Next()
		corsHandler(c)
	}
}

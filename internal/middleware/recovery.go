package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"edulift/config"
	"edulift/internal/core"
	"edulift/internal/database/fluentd/model"
	"edulift/internal/database/fluentd/repository"
	cErr "edulift/internal/pkg/error"
	res "edulift/internal/pkg/response"
	"edulift/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Recovery struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewRecovery(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Recovery {
	return &Recovery{
		logger:            logger,
		trace:             trace,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// ErrorHandler panic 轉 500，c.Errors 中的 *cErr.Error 統一輸出成 Response 格式
func (middleware *Recovery) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestTime := time.Now()
		if startTime, exists := c.Get(contextStartTimeKey); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		}
		reqID := requestID(c)

		// ---- panic recover 必須在 c.Next() 之前註冊 ----
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			duration := time.Since(requestTime)
			ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))

			meta := core.TracePanicMeta{
				Path:       c.Request.URL.Path,
				Method:     c.Request.Method,
				ClientIP:   c.ClientIP(),
				UserAgent:  c.Request.UserAgent(),
				DurationMs: float64(duration.Milliseconds()),
				Message:    toSafeString(fmt.Sprint(rec)),
				Stack:      toSafeStack(debug.Stack()),
				Status:     http.StatusInternalServerError,
			}
			middleware.trace.ApplyTraceAttributes(span, meta)

			middleware.logger.Error("[PANIC] Recovered",
				zap.String("path", meta.Path),
				zap.String("method", meta.Method),
				zap.String("client_ip", meta.ClientIP),
				zap.Duration("duration", duration),
				zap.String("panic", meta.Message),
				zap.String("stacktrace", meta.Stack),
				zap.String("requestId", reqID),
			)

			appErr := cErr.InternalServer("unexpected panic")
			if !c.Writer.Written() {
				res.FailByErr(c, reqID, appErr)
			}
			middleware.logResponse(ctx, reqID, appErr.ErrorCode(), appErr.HttpCode(), meta.Message, duration)
			end(errors.New(meta.Message))
			c.Abort()
		}()

		c.Next()

		// ---- 非 panic 的 gin errors（若尚未回寫）----
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		duration := time.Since(requestTime)
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRecoveryMiddleware))
		defer end(nil)

		// 找第一個 *cErr.Error
		for _, e := range c.Errors {
			var appErr *cErr.Error
			if !errors.As(e.Err, &appErr) {
				continue
			}
			middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
				Code:       appErr.ErrorCode(),
				Message:    appErr.Error(),
				Detail:     appErr.ErrorDesc(),
				DurationMs: float64(duration.Milliseconds()),
				Status:     appErr.HttpCode(),
			})
			middleware.logger.Warn(appErr.Error(),
				zap.Int("code", appErr.ErrorCode()),
				zap.String("data", appErr.ErrorDesc()),
				zap.Duration("duration", duration),
				zap.String("requestId", reqID),
			)
			res.FailByErr(c, reqID, appErr)
			middleware.logResponse(ctx, reqID, appErr.ErrorCode(), appErr.HttpCode(), appErr.Error(), duration)
			c.Abort()
			return
		}

		// 其餘未知錯誤：細節只進 log，不回給呼叫端
		unknown := c.Errors.String()
		middleware.trace.ApplyTraceAttributes(span, core.TraceErrorMeta{
			Code:       cErr.INTERNAL_ERROR,
			Message:    "unknown-error",
			Detail:     toSafeString(unknown),
			DurationMs: float64(duration.Milliseconds()),
			Status:     http.StatusInternalServerError,
		})
		middleware.logger.Error("[ERROR] unknown",
			zap.String("error", unknown),
			zap.Duration("duration", duration),
			zap.String("requestId", reqID),
		)
		res.Fail(c, reqID, http.StatusInternalServerError, cErr.INTERNAL_ERROR, "unknown-error", "internal error")
		middleware.logResponse(ctx, reqID, cErr.INTERNAL_ERROR, http.StatusInternalServerError, "unknown-error", duration)
		c.Abort()
	}
}

func (middleware *Recovery) logResponse(ctx context.Context, reqID string, code, status int, errMsg string, duration time.Duration) {
	if err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
		RequestID:  reqID,
		Code:       code,
		StatusCode: status,
		LatencyMs:  float64(duration.Microseconds()) / 1000,
		Error:      errMsg,
		ResponseTS: time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC"),
	}); err != nil {
		middleware.logger.Warn("send response log failed", zap.Error(err))
	}
}

// ---- helpers ----

func toSafeString(s string) string {
	return toSafePreview([]byte(s), 8000)
}

func toSafeStack(b []byte) string {
	return toSafePreview(b, 16000)
}

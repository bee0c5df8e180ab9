package middleware

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"edulift/config"
	"edulift/internal/core"
	"edulift/internal/database/fluentd/model"
	"edulift/internal/database/fluentd/repository"
	"edulift/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxBodyPreview = 2000
	// 只讀前 64KB 做預覽，其餘原樣串流給 handler
	maxBodyCapture = 64 << 10
	redacted       = "***"
)

// 使用者資料中不進 log 的欄位（JSON key，小寫比對）
var sensitiveBodyKeys = map[string]struct{}{
	"phonenumber":          {},
	"emergencyphonenumber": {},
	"emergencycontact":     {},
	"address":              {},
	"dateofbirth":          {},
	"additionalinfo":       {},
}

var sensitiveQueryKeys = map[string]struct{}{
	"email":    {},
	"username": {},
}

var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"x-api-key":     {},
}

type Logger struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewLogger(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Logger {
	return &Logger{
		logger:            logger,
		trace:             trace,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// LoggerHandler 請求進來時寫 zap / span / fluentd，個資欄位先遮蔽
func (m *Logger) LoggerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkip(c) {
			c.Next()
			return
		}

		ctx, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanLoggerMiddleware))

		receivedAt := time.Now().UTC()
		if v, ok := c.Get(contextStartTimeKey); ok {
			if t, ok := v.(time.Time); ok {
				receivedAt = t
			}
		}

		reqID := requestID(c)
		body := readBodyPreview(c)
		query := redactQuery(c.Request.URL.RawQuery)
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}

		m.trace.ApplyTraceAttributes(span, core.LoggerRequestMeta{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			FullPath:   c.FullPath(),
			Query:      query,
			Body:       body,
			Host:       c.Request.Host,
			UserAgent:  c.Request.UserAgent(),
			ContentLen: c.Request.ContentLength,
			Proto:      c.Request.Proto,
			ClientIP:   c.ClientIP(),
			Headers:    safeHeaders(c),
			Params:     params,
		})

		fields := []zap.Field{
			zap.String("requestId", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if len(params) > 0 {
			fields = append(fields, zap.Any("params", params))
		}
		if body != "" {
			fields = append(fields, zap.String("body", body))
		}
		m.logger.Info("request received", fields...)

		if err := m.fluentdRepository.LogRequest(ctx, model.RequestLog{
			RequestID: reqID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Route:     c.FullPath(),
			Query:     query,
			Body:      body,
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestTS: receivedAt.Format("2006-01-02 15:04:05.999999 UTC"),
		}); err != nil {
			m.logger.Warn("send request log failed", zap.Error(err))
		}
		end(nil)
		c.Next()
	}
}

// readBodyPreview 最多讀 maxBodyCapture 做預覽，讀過的部分接回 body 前面
func readBodyPreview(c *gin.Context) string {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if isBinaryContent(mediaType) {
		return fmt.Sprintf("(binary %s, %d bytes)", mediaType, c.Request.ContentLength)
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}

	original := c.Request.Body
	data, _ := io.ReadAll(io.LimitReader(original, maxBodyCapture+1))
	c.Request.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(data), original), original}

	truncated := len(data) > maxBodyCapture
	if mediaType == "application/json" {
		// 截斷的 JSON 無法遮蔽，不留內容
		if truncated {
			return fmt.Sprintf("(json body over %d bytes)", maxBodyCapture)
		}
		data = redactJSON(data)
	}
	return toSafePreview(data, maxBodyPreview)
}

// redactQuery 遮蔽 email / username 的值，其他參數原樣保留
func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		name, err := url.QueryUnescape(key)
		if err != nil {
			name = key
		}
		name = strings.ToLower(name)
		if _, ok := sensitiveQueryKeys[name]; !ok {
			continue
		}
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			parts[i] = key + "=" + redacted
			continue
		}
		if name == "email" {
			parts[i] = key + "=" + maskEmail(decoded)
		} else {
			parts[i] = key + "=" + maskValue(decoded)
		}
	}
	return strings.Join(parts, "&")
}

// redactJSON 不是合法 JSON 時原樣回傳
func redactJSON(data []byte) []byte {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return data
	}
	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return data
	}
	return out
}

func redactValue(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			if _, ok := sensitiveBodyKeys[strings.ToLower(key)]; ok {
				node[key] = redacted
				continue
			}
			if strings.EqualFold(key, "email") {
				if s, ok := child.(string); ok {
					node[key] = maskEmail(s)
					continue
				}
			}
			node[key] = redactValue(child)
		}
	case []any:
		for i := range node {
			node[i] = redactValue(node[i])
		}
	}
	return v
}

// maskEmail "alice@edulift.org" → "a***@edulift.org"
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return redacted
	}
	return maskValue(local) + "@" + domain
}

// maskValue 只留第一個字元
func maskValue(value string) string {
	if value == "" {
		return ""
	}
	first, _ := utf8.DecodeRuneInString(value)
	return string(first) + redacted
}

func safeHeaders(c *gin.Context) map[string]string {
	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		key := strings.ToLower(k)
		if _, ok := sensitiveHeaders[key]; ok {
			headers[key] = redacted
			continue
		}
		headers[key] = strings.Join(v, ",")
	}
	return headers
}

// toSafePreview UTF-8 在字元邊界截斷；非 UTF-8 以 base64 表示
func toSafePreview(b []byte, max int) string {
	if len(b) == 0 {
		return ""
	}
	if !utf8.Valid(b) {
		if len(b) > max {
			b = b[:max]
		}
		return "b64:" + base64.StdEncoding.EncodeToString(b)
	}
	if len(b) > max {
		return string(truncateUTF8(b, max)) + "…"
	}
	return string(b)
}

// truncateUTF8 不超過 max bytes，且不切開多位元組字元
func truncateUTF8(b []byte, max int) []byte {
	if len(b) <= max {
		return b
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return b[:cut]
}

func isBinaryContent(mediaType string) bool {
	for _, prefix := range []string{"multipart/", "image/", "audio/", "video/"} {
		if strings.HasPrefix(mediaType, prefix) {
			return true
		}
	}
	return mediaType == "application/octet-stream"
}

package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
type TraceSpanName string

const (
	SpanHttpRequest         TraceSpanName = "http_request"
	SpanLoggerMiddleware    TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware  TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware      TraceSpanName = "cors_middleware"
	SpanResponseMiddleware  TraceSpanName = "response_middleware"
	SpanRateLimitMiddleware TraceSpanName = "ratelimit_middleware"
	SpanEnsureIndexes       TraceSpanName = "mongo_ensure_indexes"
	SpanUserStatsJob        TraceSpanName = "cron_user_stats"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal   MetricName = "requests_total"
	MetricHttpRequestDuration MetricName = "request_duration_seconds"
	MetricUserWriteTotal      MetricName = "user_write_total"
	MetricUsersByRole         MetricName = "users_by_role"
	MetricUsersTotal          MetricName = "users_total"
	MetricRateLimitTotal      MetricName = "rate_limited_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint  MetricLabelName = "endpoint"
	MetricLabelStatus    MetricLabelName = "status"
	MetricLabelOperation MetricLabelName = "operation"
	MetricLabelOutcome   MetricLabelName = "outcome"
	MetricLabelRole      MetricLabelName = "role"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

// 使用者查詢（finder / count / exists）
type TraceUserQueryMeta struct {
	Op          string   `trace:"user.query.op"`
	UserID      string   `trace:"user.id,omitempty"`
	Role        string   `trace:"user.query.role,omitempty"`
	Roles       []string `trace:"user.query.roles,omitempty"`
	GroupHomeID string   `trace:"user.query.group_home_id,omitempty"`
	RiskFlags   []string `trace:"user.query.risk_flags,omitempty"`
	ResultCount int      `trace:"result.count,omitempty"`
}

// 使用者寫入（create / update / delete）
type TraceUserWriteMeta struct {
	Op      string `trace:"user.write.op"`
	UserID  string `trace:"user.id,omitempty"`
	Outcome string `trace:"user.write.outcome"`
}

// 供 Redis 限流 Consume 使用
type TraceRateLimitMeta struct {
	ClientKey string `trace:"rl.client_key"`
	Limit     int    `trace:"rl.limit_count"`
	WindowSec int64  `trace:"rl.window_sec"`
	Remaining int    `trace:"rl.remaining,omitempty"`
	TTL       int64  `trace:"rl.ttl_sec,omitempty"`
	Blocked   bool   `trace:"rl.blocked"`
}

type TraceIndexMeta struct {
	Collection string `trace:"mongo.collection"`
	Requested  int    `trace:"mongo.index.requested"`
	Failed     int    `trace:"mongo.index.failed"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}

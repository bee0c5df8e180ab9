package core

type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────
const (
	MongoCollectionUsers MongoCollection = "users"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────
const (
	RedisKeyServerName RedisKey = "edulift"    // 伺服器名稱
	RedisKeyRateLimit  RedisKey = "rate_limit" // 寫入 API 限流
)

// ─── Fluentd ───────────────────────────────────────────────────────────────────
const (
	FluentdRequest   FluentdSubTag = "request_log"
	FluentdResponse  FluentdSubTag = "response_log"
	FluentdUserAudit FluentdSubTag = "user_audit_log"
)

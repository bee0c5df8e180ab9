package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edulift/internal/core"
	client "edulift/internal/database/client"
	"edulift/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

type RateLimiterRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
}

func NewRateLimiterRepository(trace *telemetry.Trace, client *client.RedisClient) *RateLimiterRepository {
	return &RateLimiterRepository{trace: trace, client: client.Client()}
}

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrRateLimitDisabled = errors.New("rate limit store disabled")
)

// Enabled Redis 未連線時為 false
func (repository *RateLimiterRepository) Enabled() bool {
	return repository != nil && repository.client != nil
}

// Consume 固定視窗消耗一次配額；新視窗自動初始化並設定 TTL。
// 回傳：remaining（剩餘次數）、ttlSec（剩餘秒數）、err（若超限為 ErrRateLimitExceeded）
func (repository *RateLimiterRepository) Consume(
	contextValue context.Context,
	clientKey string,
	windowSeconds int64,
	limitCount int,
) (remainingCount int, timeToLiveSeconds int64, returnedError error) {

	if !repository.Enabled() {
		return limitCount, 0, ErrRateLimitDisabled
	}

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() {
		// 超限不是系統錯誤，不標記 span error
		if errors.Is(returnedError, ErrRateLimitExceeded) {
			endSpan(nil)
			return
		}
		endSpan(returnedError)
	}()

	traceMetadata := core.TraceRateLimitMeta{
		ClientKey: clientKey,
		Limit:     limitCount,
		WindowSec: windowSeconds,
	}
	repository.trace.ApplyTraceAttributes(span, traceMetadata)

	redisKey := repository.buildKey(clientKey)
	expirationDuration := time.Duration(windowSeconds) * time.Second

	// SETNX key value EX expiration
	wasSet, setError := repository.client.SetNX(
		contextValue,
		redisKey,
		limitCount-1, // 本次消耗一次，所以初始值 = 總額-1
		expirationDuration,
	).Result()
	if setError != nil {
		returnedError = setError
		return 0, 0, returnedError
	}
	if wasSet {
		remainingCount = limitCount - 1
		if remainingCount < 0 {
			remainingCount = 0
			returnedError = ErrRateLimitExceeded
		}
		timeToLiveSeconds = windowSeconds
		traceMetadata.Remaining, traceMetadata.TTL = remainingCount, timeToLiveSeconds
		traceMetadata.Blocked = returnedError != nil
		repository.trace.ApplyTraceAttributes(span, traceMetadata)
		return remainingCount, timeToLiveSeconds, returnedError
	}

	// Key 已存在 → DECR 扣一次
	newValue, decrError := repository.client.Decr(contextValue, redisKey).Result()
	if decrError != nil {
		returnedError = decrError
		return 0, 0, returnedError
	}

	ttlDuration, _ := repository.client.TTL(contextValue, redisKey).Result()
	if ttlDuration > 0 {
		timeToLiveSeconds = int64(ttlDuration.Seconds())
	} else {
		// key 沒有 TTL（SETNX 與 EXPIRE 之間被改過），補回避免永久封鎖
		_ = repository.client.Expire(contextValue, redisKey, expirationDuration).Err()
		timeToLiveSeconds = windowSeconds
	}

	if newValue < 0 {
		remainingCount = 0
		traceMetadata.Remaining, traceMetadata.TTL, traceMetadata.Blocked = remainingCount, timeToLiveSeconds, true
		repository.trace.ApplyTraceAttributes(span, traceMetadata)
		returnedError = ErrRateLimitExceeded
		return remainingCount, timeToLiveSeconds, returnedError
	}

	remainingCount = int(newValue)
	traceMetadata.Remaining, traceMetadata.TTL = remainingCount, timeToLiveSeconds
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return remainingCount, timeToLiveSeconds, nil
}

// Delete 刪除某 client 的配額 key
func (repository *RateLimiterRepository) Delete(
	contextValue context.Context,
	clientKey string,
) (returnedError error) {
	if !repository.Enabled() {
		return ErrRateLimitDisabled
	}

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceRateLimitMeta{ClientKey: clientKey})
	returnedError = repository.client.Del(contextValue, repository.buildKey(clientKey)).Err()
	return returnedError
}

// buildKey 例如 edulift:rate_limit:10.0.0.1
func (repository *RateLimiterRepository) buildKey(clientKey string) string {
	return fmt.Sprintf("%s:%s:%s", core.RedisKeyServerName, core.RedisKeyRateLimit, clientKey)
}

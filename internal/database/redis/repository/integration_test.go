//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"edulift/internal/database/client"
	"edulift/internal/database/redis/repository"
	"edulift/internal/telemetry"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var redisAddr string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		panic(err)
	}
	redisAddr = fmt.Sprintf("%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newLimiter(t *testing.T) *repository.RateLimiterRepository {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	t.Cleanup(func() { _ = rdb.Close() })
	return repository.NewRateLimiterRepository(&telemetry.Trace{}, client.NewRedisClientFrom(zap.NewNop(), rdb))
}

func TestConsumeFixedWindow(t *testing.T) {
	ctx := context.Background()
	limiter := newLimiter(t)
	key := uuid.NewString()

	for want := 2; want >= 0; want-- {
		remaining, ttl, err := limiter.Consume(ctx, key, 60, 3)
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
		assert.Greater(t, ttl, int64(0))
	}

	remaining, ttl, err := limiter.Consume(ctx, key, 60, 3)
	assert.ErrorIs(t, err, repository.ErrRateLimitExceeded)
	assert.Equal(t, 0, remaining)
	assert.LessOrEqual(t, ttl, int64(60))

	require.NoError(t, limiter.Delete(ctx, key))
	remaining, _, err = limiter.Consume(ctx, key, 60, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestConsumeWindowExpires(t *testing.T) {
	ctx := context.Background()
	limiter := newLimiter(t)
	key := uuid.NewString()

	_, _, err := limiter.Consume(ctx, key, 1, 1)
	require.NoError(t, err)
	_, _, err = limiter.Consume(ctx, key, 1, 1)
	require.ErrorIs(t, err, repository.ErrRateLimitExceeded)

	time.Sleep(1500 * time.Millisecond)
	_, _, err = limiter.Consume(ctx, key, 1, 1)
	assert.NoError(t, err)
}

func TestDisabledLimiter(t *testing.T) {
	limiter := repository.NewRateLimiterRepository(&telemetry.Trace{}, client.NewRedisClientFrom(zap.NewNop(), nil))
	assert.False(t, limiter.Enabled())
	_, _, err := limiter.Consume(context.Background(), "k", 60, 1)
	assert.ErrorIs(t, err, repository.ErrRateLimitDisabled)
}

package client

import (
	"context"
	"time"

	"edulift/config"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.uber.org/zap"
)

// Client 寫入 Fluentd 的最小介面，方便測試替換
type Client interface {
	Post(ctx context.Context, tag string, rec map[string]any) error
	Tag(suffix string) string
	Close() error
}

// FluentdClient 以 fluent-logger-golang 實作 Client
type FluentdClient struct {
	client    *fluent.Fluent
	tagPrefix string
}

// NewFluentdClient 未設定 host 時回傳 NoopClient
func NewFluentdClient(logger *zap.Logger, config *config.Configuration) (Client, func(), error) {
	prefix := "edulift"
	if config.Fluentd.TagPrefix != "" {
		prefix = config.Fluentd.TagPrefix
	}
	if !config.Fluentd.Enabled() {
		logger.Info("Fluentd disabled")
		return &NoopClient{tagPrefix: prefix}, func() {}, nil
	}

	var timeout time.Duration
	if config.Fluentd.Timeout > 0 {
		timeout = time.Duration(config.Fluentd.Timeout) * time.Millisecond
	}

	// TagPrefix 由 Tag() 自行組合，不交給 fluent 再加一次
	f, err := fluent.New(fluent.Config{
		FluentHost: config.Fluentd.Host,
		FluentPort: config.Fluentd.Port,
		Timeout:    timeout,
		Async:      config.Fluentd.Async,
	})
	if err != nil {
		logger.Error("failed to connect to Fluentd", zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Connected to Fluentd", zap.String("host", config.Fluentd.Host), zap.Int("port", config.Fluentd.Port))

	fluentdClient := &FluentdClient{client: f, tagPrefix: prefix}
	cleanup := func() {
		logger.Info("closing the Fluentd resources")
		if err := fluentdClient.Close(); err != nil {
			logger.Error("failed to close Fluentd client", zap.Error(err))
		}
	}
	return fluentdClient, cleanup, nil
}

func (c *FluentdClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Tag 組合 prefix 與 suffix，例如 "edulift.router.request"
func (c *FluentdClient) Tag(suffix string) string {
	return joinTag(c.tagPrefix, suffix)
}

// Post fluent-logger-golang 不支援 context，ctx 僅保留介面一致
func (c *FluentdClient) Post(ctx context.Context, tag string, rec map[string]any) error {
	return c.client.Post(tag, rec)
}

// --------------------
// Noop client（停用模式）
// --------------------

type NoopClient struct {
	tagPrefix string
}

func (n *NoopClient) Post(ctx context.Context, tag string, rec map[string]any) error { return nil }
func (n *NoopClient) Tag(suffix string) string                                     { return joinTag(n.tagPrefix, suffix) }
func (n *NoopClient) Close() error                                                 { return nil }

func joinTag(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return prefix + "." + suffix
}

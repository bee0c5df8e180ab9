package cron

import (
	"context"

	"edulift/config"
	"edulift/internal/database/mongodb/repository"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewCron,
	NewUserStatsJob,
	wire.Bind(new(UserCounter), new(*repository.UserRepository)),
)

type Cron struct {
	logger       *zap.Logger
	conf         *config.Configuration
	server       *cron.Cron
	userStatsJob *UserStatsJob
}

// NewCron 以秒為首欄位
func NewCron(logger *zap.Logger, conf *config.Configuration, userStatsJob *UserStatsJob) *Cron {
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	return &Cron{
		logger:       logger,
		conf:         conf,
		server:       server,
		userStatsJob: userStatsJob,
	}
}

func (c *Cron) Run() error {
	if c.conf.Cron.UserStatsEnabled {
		if _, err := c.server.AddFunc(c.conf.Cron.UserStatsSpec, c.userStatsJob.Run); err != nil {
			return err
		}
		c.logger.Info("cron job registered", zap.String("job", "user_stats"), zap.String("spec", c.conf.Cron.UserStatsSpec))
		// 啟動時先跑一次，gauge 不必等到第一個排程
		go c.userStatsJob.Run()
	}

	c.server.Start()
	return nil
}

// Stop 等待執行中的 job 結束或 ctx 逾時
func (c *Cron) Stop(ctx context.Context) error {
	done := c.server.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

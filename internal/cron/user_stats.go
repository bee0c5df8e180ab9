package cron

import (
	"context"
	"time"

	"edulift/internal/core"
	"edulift/internal/telemetry"

	"go.uber.org/zap"
)

// UserCounter 統計 job 需要的查詢，由 repository.UserRepository 實作
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByRolesContaining(ctx context.Context, role core.Role) (int64, error)
}

// UserStatsJob 定期更新 users_total / users_by_role gauge
type UserStatsJob struct {
	logger  *zap.Logger
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	counter UserCounter
	timeout time.Duration
}

func NewUserStatsJob(logger *zap.Logger, trace *telemetry.Trace, metric *telemetry.Metric, counter UserCounter) *UserStatsJob {
	return &UserStatsJob{logger: logger, trace: trace, metric: metric, counter: counter, timeout: 30 * time.Second}
}

func (j *UserStatsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := j.Refresh(ctx); err != nil {
		j.logger.Warn("refresh user stats failed", zap.Error(err))
	}
}

// Refresh 任一查詢失敗就停止，不更新後續 gauge
func (j *UserStatsJob) Refresh(ctx context.Context) (returnedError error) {
	ctx, span, end := j.trace.WithSpan(ctx, string(core.SpanUserStatsJob))
	defer func() { end(returnedError) }()

	total, err := j.counter.Count(ctx)
	if err != nil {
		return err
	}
	j.metric.SetUsersTotal(total)

	byRole := make(map[string]int64, len(core.Roles()))
	for _, role := range core.Roles() {
		n, err := j.counter.CountByRolesContaining(ctx, role)
		if err != nil {
			return err
		}
		j.metric.SetUsersByRole(role, n)
		byRole[role.String()] = n
	}
	j.trace.ApplyTraceAttributes(span, core.TraceUserQueryMeta{Op: "stats", ResultCount: int(total)})
	j.logger.Debug("user stats refreshed", zap.Int64("total", total), zap.Any("byRole", byRole))
	return nil
}

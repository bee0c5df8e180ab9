package cron

import (
	"context"
	"errors"
	"testing"

	"edulift/config"
	"edulift/internal/core"
	"edulift/internal/mocks"
	"edulift/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMetric() *telemetry.Metric {
	conf := &config.Configuration{}
	conf.Telemetry.Metric.Enabled = true
	return telemetry.NewMetricWithRegisterer(conf, prometheus.NewRegistry())
}

func TestUserStatsJobRefresh(t *testing.T) {
	store := mocks.NewUserStore(t)
	store.On("Count", mock.Anything).Return(int64(10), nil).Once()
	store.On("CountByRolesContaining", mock.Anything, core.RoleStudent).Return(int64(6), nil).Once()
	store.On("CountByRolesContaining", mock.Anything, core.RoleMentor).Return(int64(3), nil).Once()
	store.On("CountByRolesContaining", mock.Anything, core.RoleCounselor).Return(int64(2), nil).Once()
	store.On("CountByRolesContaining", mock.Anything, core.RoleAdmin).Return(int64(1), nil).Once()

	metric := newMetric()
	job := NewUserStatsJob(zap.NewNop(), &telemetry.Trace{}, metric, store)
	require.NoError(t, job.Refresh(context.Background()))

	assert.Equal(t, 10.0, testutil.ToFloat64(metric.UsersTotal))
	assert.Equal(t, 6.0, testutil.ToFloat64(metric.UsersByRole.WithLabelValues("student")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metric.UsersByRole.WithLabelValues("admin")))
}

func TestUserStatsJobStopsOnError(t *testing.T) {
	store := mocks.NewUserStore(t)
	store.On("Count", mock.Anything).Return(int64(0), errors.New("no reachable servers")).Once()

	job := NewUserStatsJob(zap.NewNop(), &telemetry.Trace{}, newMetric(), store)
	assert.Error(t, job.Refresh(context.Background()))
	store.AssertNotCalled(t, "CountByRolesContaining", mock.Anything, mock.Anything)

	// Run 只記錄錯誤，不 panic
	store.On("Count", mock.Anything).Return(int64(0), errors.New("still down")).Once()
	assert.NotPanics(t, job.Run)
}

func TestCronRunAndStop(t *testing.T) {
	conf := &config.Configuration{}
	conf.ApplyDefaults()

	job := NewUserStatsJob(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, mocks.NewUserStore(t))
	server := NewCron(zap.NewNop(), conf, job)
	require.NoError(t, server.Run())
	assert.Empty(t, server.server.Entries())
	require.NoError(t, server.Stop(context.Background()))
}

func TestCronRejectsBadSpec(t *testing.T) {
	conf := &config.Configuration{}
	conf.Cron.UserStatsEnabled = true
	conf.Cron.UserStatsSpec = "every five minutes"

	job := NewUserStatsJob(zap.NewNop(), &telemetry.Trace{}, &telemetry.Metric{}, mocks.NewUserStore(t))
	assert.Error(t, NewCron(zap.NewNop(), conf, job).Run())
}

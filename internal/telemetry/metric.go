package telemetry

import (
	"strings"

	"edulift/config"
	"edulift/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric 停用時所有欄位為 nil，呼叫端的 helper 會直接略過
type Metric struct {
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	UserWriteTotal      *prometheus.CounterVec
	UsersByRole         *prometheus.GaugeVec
	UsersTotal          prometheus.Gauge
	RateLimitedTotal    prometheus.Counter
	config              *config.Configuration
}

// NewMetric 建立所有指標（註冊到 prometheus 預設 registry）
func NewMetric(config *config.Configuration) *Metric {
	return NewMetricWithRegisterer(config, prometheus.DefaultRegisterer)
}

func NewMetricWithRegisterer(config *config.Configuration, registerer prometheus.Registerer) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	prefix := metricPrefix(config.App.ServiceName())
	factory := promauto.With(registerer)
	return &Metric{
		config: config,
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + string(core.MetricHttpRequestDuration),
				Help:    "API request duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		UserWriteTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricUserWriteTotal),
				Help: "User create/update/delete attempts by outcome",
			},
			labelNames(core.MetricLabelOperation, core.MetricLabelOutcome),
		),
		UsersByRole: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + string(core.MetricUsersByRole),
				Help: "Stored users holding each role",
			},
			labelNames(core.MetricLabelRole),
		),
		UsersTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + string(core.MetricUsersTotal),
				Help: "Stored users",
			},
		),
		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRateLimitTotal),
				Help: "Write requests rejected by the rate limiter",
			},
		),
	}
}

func (m *Metric) ObserveRequest(endpoint string, status string, seconds float64) {
	if m == nil || m.HttpRequestsTotal == nil || m.HttpRequestDuration == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.HttpRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metric) IncUserWrite(operation, outcome string) {
	if m == nil || m.UserWriteTotal == nil {
		return
	}
	m.UserWriteTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metric) SetUsersByRole(role core.Role, count int64) {
	if m == nil || m.UsersByRole == nil {
		return
	}
	m.UsersByRole.WithLabelValues(role.String()).Set(float64(count))
}

func (m *Metric) SetUsersTotal(count int64) {
	if m == nil || m.UsersTotal == nil {
		return
	}
	m.UsersTotal.Set(float64(count))
}

func (m *Metric) IncRateLimited() {
	if m == nil || m.RateLimitedTotal == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

// metricPrefix prometheus 名稱只允許 [a-zA-Z0-9_]
func metricPrefix(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return ""
	}
	return name + "_"
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}

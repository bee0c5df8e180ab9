package telemetry

import (
	"context"
	"testing"

	"edulift/config"
	"edulift/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseTraceTag(t *testing.T) {
	name, omit := parseTraceTag("user.id,omitempty")
	assert.Equal(t, "user.id", name)
	assert.True(t, omit)

	name, omit = parseTraceTag("user.query.op")
	assert.Equal(t, "user.query.op", name)
	assert.False(t, omit)

	name, _ = parseTraceTag("")
	assert.Empty(t, name)
}

func TestMetricPrefix(t *testing.T) {
	assert.Equal(t, "edulift_", metricPrefix("edulift"))
	assert.Equal(t, "edu_lift_api_", metricPrefix("edu-lift.api"))
	assert.Equal(t, "", metricPrefix(""))
}

func TestDisabledMetricIsNoop(t *testing.T) {
	metric := NewMetricWithRegisterer(&config.Configuration{}, prometheus.NewRegistry())
	assert.Nil(t, metric.UserWriteTotal)
	assert.NotPanics(t, func() {
		metric.ObserveRequest("/api/users", "200", 0.1)
		metric.IncUserWrite("create", "success")
		metric.SetUsersByRole(core.RoleAdmin, 1)
		metric.SetUsersTotal(1)
		metric.IncRateLimited()
	})

	var nilMetric *Metric
	assert.NotPanics(t, func() { nilMetric.IncRateLimited() })
}

func TestMetricRecords(t *testing.T) {
	conf := &config.Configuration{}
	conf.Telemetry.Metric.Enabled = true
	conf.App.Name = "edulift-test"
	registry := prometheus.NewRegistry()
	metric := NewMetricWithRegisterer(conf, registry)

	metric.ObserveRequest("/api/users/:id", "404", 0.02)
	metric.IncRateLimited()
	metric.IncRateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(metric.HttpRequestsTotal.WithLabelValues("/api/users/:id", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metric.RateLimitedTotal))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "edulift_test_rate_limited_total")
}

func TestApplyTraceAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := &Trace{TracerProvider: provider, ServiceName: "test"}

	ctx, span, end := tr.WithSpan(context.Background(), "apply")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	tr.ApplyTraceAttributes(span, core.TraceUserQueryMeta{Op: "findByGroupHomeId", GroupHomeID: "gh-1"})
	tr.ApplyTraceAttributes(span, "not a struct")
	end(nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "findByGroupHomeId", attrs["user.query.op"].AsString())
	assert.Equal(t, "gh-1", attrs["user.query.group_home_id"].AsString())
	_, hasUserID := attrs["user.id"]
	assert.False(t, hasUserID, "empty omitempty fields are skipped")
	_, hasCount := attrs["result.count"]
	assert.False(t, hasCount)
}

func TestNoopTrace(t *testing.T) {
	tr, err := NewTrace(&config.Configuration{})
	require.NoError(t, err)
	ctx, _, end := tr.WithSpan(context.Background())
	end(nil)
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestShortFuncName(t *testing.T) {
	assert.Equal(t, "UserService.CreateUser", shortFuncName("edulift/internal/service.(*UserService).CreateUser"))
	assert.Equal(t, "UserHandler.Get", shortFuncName("edulift/internal/handler.(*UserHandler).Get-fm"))
	assert.Equal(t, "Cron.Run", shortFuncName("edulift/internal/cron.(*Cron).Run.func1"))
	assert.Equal(t, "Store.Find", shortFuncName("edulift/internal/x.(*Store[...]).Find"))
}

func TestApplyTraceAttributesFlattensMapsAndRoles(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tr := &Trace{TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), ServiceName: "test"}

	type meta struct {
		Roles   []core.Role       `trace:"user.roles"`
		Params  map[string]string `trace:"http.request.param"`
		Ignored string
	}
	_, span, end := tr.WithSpan(context.Background(), "flatten")
	tr.ApplyTraceAttributes(span, &meta{
		Roles:   []core.Role{core.RoleStudent, core.RoleMentor},
		Params:  map[string]string{"id": "abc"},
		Ignored: "x",
	})
	end(nil)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range recorder.Ended()[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, []string{"student", "mentor"}, attrs["user.roles"].AsStringSlice())
	assert.Equal(t, "abc", attrs["http.request.param.id"].AsString())
	assert.Len(t, attrs, 2)
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, context.Background(), WithRequestID(context.Background(), ""))

	recorder := tracetest.NewSpanRecorder()
	tr := &Trace{TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), ServiceName: "test"}
	ctx, _, end := tr.WithSpan(context.Background(), "request")
	defer end(nil)
	assert.Equal(t, TraceIDFromContext(ctx), RequestIDFromContext(ctx))

	assert.Equal(t, "req-1", RequestIDFromContext(WithRequestID(ctx, "req-1")))
}

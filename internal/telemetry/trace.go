package telemetry

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"edulift/config"
	"edulift/internal/core"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Trace 零值可用：沒有 TracerProvider 時所有 span 都是 noop
type Trace struct {
	TracerProvider *sdktrace.TracerProvider
	ServiceName    string
}

func NewTrace(conf *config.Configuration) (*Trace, error) {
	if conf == nil || !conf.Telemetry.Trace.Enabled {
		return &Trace{}, nil
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpointURL(conf.Telemetry.Trace.EndpointUrl),
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 2 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  time.Minute,
		}),
		otlptracehttp.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	serviceName := conf.App.ServiceName()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(samplerFor(conf.Telemetry.Trace.SampleRatio)),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(conf.App.Version),
			semconv.DeploymentEnvironmentName(conf.App.Env),
		)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &Trace{TracerProvider: provider, ServiceName: serviceName}, nil
}

// samplerFor ratio 不在 (0,1) 之間時全取樣
func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio > 0 && ratio < 1 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
	return sdktrace.AlwaysSample()
}

func (t *Trace) Shutdown(ctx context.Context) error {
	if t == nil || t.TracerProvider == nil {
		return nil
	}
	return t.TracerProvider.Shutdown(ctx)
}

func (t *Trace) tracer() trace.Tracer {
	if t == nil || t.TracerProvider == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return t.TracerProvider.Tracer(t.ServiceName)
}

func (t *Trace) StartSpanForLayer(
	ctx context.Context,
	spanName core.TraceSpanName,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	return t.tracer().Start(ctx, string(spanName), opts...)
}

// WithSpan handler 傳 *gin.Context，service / repository 傳 context.Context；
// 沒給名稱時 handler 用路由處理函式名，其餘用呼叫者的方法名
func (t *Trace) WithSpan(parent interface{}, name ...string) (context.Context, trace.Span, func(error)) {
	override := ""
	if len(name) > 0 {
		override = strings.TrimSpace(name[0])
	}

	var ctx context.Context
	var span trace.Span
	switch p := parent.(type) {
	case *gin.Context:
		spanName := override
		if spanName == "" {
			spanName = spanNameFromGin(p)
		}
		ctx, span = t.StartSpanForLayer(t.GetTraceContext(p), core.TraceSpanName(spanName))
		p.Set(core.ContextTraceKey, ctx)
	case context.Context:
		spanName := override
		if spanName == "" {
			spanName = shortFuncName(callerFuncName(1))
		}
		ctx, span = t.StartSpanForLayer(p, core.TraceSpanName(spanName))
	default:
		spanName := override
		if spanName == "" {
			spanName = "unknown"
		}
		ctx, span = t.StartSpanForLayer(context.Background(), core.TraceSpanName(spanName))
	}

	return ctx, span, func(err error) { t.EndSpan(span, err) }
}

func (t *Trace) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetTraceContext 取得目前請求最新的 span ctx
func (t *Trace) GetTraceContext(c *gin.Context) context.Context {
	if v, ok := c.Get(core.ContextTraceKey); ok {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}
	return c.Request.Context()
}

// ApplyTraceAttributes 依 struct 欄位的 `trace:"name[,omitempty]"` tag 寫入 span attribute
func (t *Trace) ApplyTraceAttributes(span trace.Span, obj interface{}) {
	if span == nil || obj == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			span.RecordError(fmt.Errorf("apply trace attributes: %v", r))
		}
	}()
	if attrs := traceAttributes(reflect.ValueOf(obj)); len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

func traceAttributes(val reflect.Value) []attribute.KeyValue {
	for val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	var attrs []attribute.KeyValue
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		key, omitEmpty := parseTraceTag(typ.Field(i).Tag.Get("trace"))
		field := val.Field(i)
		if key == "" || !field.CanInterface() {
			continue
		}
		if omitEmpty && field.IsZero() {
			continue
		}

		switch field.Kind() {
		case reflect.Struct, reflect.Ptr:
			attrs = append(attrs, traceAttributes(field)...)
		case reflect.Map:
			if field.Type().Key().Kind() != reflect.String {
				continue
			}
			iter := field.MapRange()
			for iter.Next() {
				if kv, ok := scalarAttribute(key+"."+iter.Key().String(), iter.Value()); ok {
					attrs = append(attrs, kv)
				}
			}
		default:
			if kv, ok := scalarAttribute(key, field); ok {
				attrs = append(attrs, kv)
			}
		}
	}
	return attrs
}

// scalarAttribute 基本型別與字串 slice（含 []core.Role 這類 string 衍生型別）
func scalarAttribute(key string, v reflect.Value) (attribute.KeyValue, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return attribute.KeyValue{}, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.String:
		return attribute.String(key, v.String()), true
	case reflect.Bool:
		return attribute.Bool(key, v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return attribute.Int64(key, v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return attribute.Int64(key, int64(v.Uint())), true
	case reflect.Float32, reflect.Float64:
		return attribute.Float64(key, v.Float()), true
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() != reflect.String {
			return attribute.KeyValue{}, false
		}
		values := make([]string, v.Len())
		for i := range values {
			values[i] = v.Index(i).String()
		}
		return attribute.StringSlice(key, values), true
	}
	return attribute.KeyValue{}, false
}

type requestIDKey struct{}

// WithRequestID 讓 service 層的 log / audit 紀錄能帶上同一個 request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext 優先用 WithRequestID 放入的值，沒有時退回 trace id
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return TraceIDFromContext(ctx)
}

// TraceIDFromContext 沒有有效 span 時回傳空字串
func TraceIDFromContext(ctx context.Context) string {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.HasTraceID() {
		return ""
	}
	return spanContext.TraceID().String()
}

// parseTraceTag `trace:"user.id,omitempty"` → ("user.id", true)
func parseTraceTag(raw string) (string, bool) {
	name, opts, found := strings.Cut(raw, ",")
	if !found {
		return name, false
	}
	return name, opts == "omitempty"
}

func spanNameFromGin(c *gin.Context) string {
	if handlerName := c.HandlerName(); handlerName != "" {
		return shortFuncName(handlerName)
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return c.Request.Method + " " + route
}

// shortFuncName "edulift/internal/service.(*UserService).CreateUser-fm" → "UserService.CreateUser"
func shortFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	full = strings.TrimSuffix(full, "-fm")
	if i := strings.Index(full, ".func"); i >= 0 {
		full = full[:i]
	}
	if _, rest, ok := strings.Cut(full, "."); ok {
		full = rest
	}
	if open := strings.Index(full, "["); open >= 0 {
		if closing := strings.Index(full[open:], "]"); closing >= 0 {
			full = full[:open] + full[open+closing+1:]
		}
	}
	return strings.NewReplacer("(*", "", "(", "", ")", "").Replace(full)
}

// callerFuncName skip 以呼叫 callerFuncName 的函式為 0
func callerFuncName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return ""
}

package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

const tracerName = "github.com/yungbote/neurobridge-milestones"

// Span attribute keys shared by the engine, the worker and the HTTP layer.
const (
	AttrCourseID    = attribute.Key("milestones.course_id")
	AttrBlockType   = attribute.Key("milestones.block_type")
	AttrFiltered    = attribute.Key("milestones.assessment_filtered")
	AttrJobID       = attribute.Key("job.id")
	AttrJobAttempt  = attribute.Key("job.attempt")
	AttrErrorCode   = attribute.Key("milestones.error_code")
	defaultSampling = 0.1
)

type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string
	Endpoint    string
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

var (
	otelOnce     sync.Once
	otelShutdown = func(context.Context) error { return nil }
)

// InitOTel installs the global tracer provider once per process. The returned
// func flushes buffered spans. With tracing disabled spans are no-ops.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	if log == nil {
		log = logger.NewNop()
	}
	otelOnce.Do(func() {
		if !cfg.Enabled {
			return
		}
		if cfg.ServiceName = strings.TrimSpace(cfg.ServiceName); cfg.ServiceName == "" {
			cfg.ServiceName = "milestones"
		}
		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.SampleRatio)))),
			sdktrace.WithResource(newResource(ctx, log, cfg)),
		}
		if exp, err := newExporter(ctx, log, cfg); err != nil {
			log.Warn("OTel exporter unavailable; spans will be dropped", "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
		}
		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
		otelShutdown = tp.Shutdown
		log.Info("OTel tracing initialized", "service", cfg.ServiceName, "endpoint", cfg.Endpoint)
	})
	return otelShutdown
}

func newResource(ctx context.Context, log *logger.Logger, cfg OtelConfig) *resource.Resource {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
		attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
	))
	if err != nil {
		log.Warn("OTel resource partially initialized", "error", err)
	}
	return res
}

// newExporter ships spans over OTLP/HTTP when an endpoint is configured and
// prints them to stdout otherwise.
func newExporter(ctx context.Context, log *logger.Logger, cfg OtelConfig) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		log.Warn("OTel using stdout exporter; set otel.endpoint to ship spans")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

// StartSpan opens a span on the global tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// FailSpan records err on span, tagging the aggregate code when it has one.
func FailSpan(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	if code := domainagg.CodeOf(err); code != "" {
		span.SetAttributes(AttrErrorCode.String(string(code)))
	}
	span.SetStatus(codes.Error, err.Error())
}

func CourseAttr(id uuid.UUID) attribute.KeyValue { return AttrCourseID.String(id.String()) }

func clampRatio(v float64) float64 {
	switch {
	case v <= 0:
		return defaultSampling
	case v > 1:
		return 1
	default:
		return v
	}
}

// ParseHeaders reads the OTLP "k1=v1,k2=v2" header form, skipping malformed pairs.
func ParseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if ok && key != "" && val != "" {
			headers[key] = val
		}
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

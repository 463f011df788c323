package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName is the tracer name scenes record frame spans under.
const InstrumentationName = "github.com/Carmen-Shannon/oxy-scene"

// ShutdownFunc flushes and stops span export.
type ShutdownFunc func(ctx context.Context) error

// Setup builds the tracer scenes use for their render_frame and render_camera spans. When
// tracing is disabled a no-op tracer is returned. Spans are written to w, or stdout when w is nil.
//
// Parameters:
//   - cfg: the tracing configuration
//   - w: destination for exported spans
//   - log: logger for the setup outcome
//
// Returns:
//   - trace.Tracer: the tracer to pass to scene.WithTracer
//   - ShutdownFunc: flushes pending spans
//   - error: if the exporter or resource cannot be created
func Setup(cfg config.Tracing, w io.Writer, log logrus.FieldLogger) (trace.Tracer, ShutdownFunc, error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider().Tracer(InstrumentationName), func(context.Context) error { return nil }, nil
	}
	if w == nil {
		w = os.Stdout
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps()}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: create exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	if log != nil {
		log.WithFields(logrus.Fields{
			"service_name": cfg.ServiceName,
			"sample_ratio": cfg.SampleRatio,
		}).Info("tracing: enabled")
	}
	return tp.Tracer(InstrumentationName), tp.Shutdown, nil
}

// ShutdownWithTimeout runs shutdown bounded by timeout.
func ShutdownWithTimeout(shutdown ShutdownFunc, timeout time.Duration) error {
	if shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return shutdown(ctx)
}

package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"azure-devops-mcp-server/internal/domain"
)

const instrumentationName = "azure-devops-mcp-server"

// Providers holds the telemetry pipeline built from configuration.
type Providers struct {
	Meter  metric.Meter
	Tracer trace.Tracer

	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	logger         domain.Logger
}

// Setup builds the providers. When telemetry is disabled the returned
// providers are no-ops and Shutdown does nothing.
func Setup(ctx context.Context, cfg domain.TelemetryConfig, logger domain.Logger) (*Providers, error) {
	if logger == nil {
		logger = domain.NopLogger()
	}
	if !cfg.Enabled {
		return &Providers{
			Meter:  metricnoop.NewMeterProvider().Meter(instrumentationName),
			Tracer: tracenoop.NewTracerProvider().Tracer(instrumentationName),
			logger: logger,
		}, nil
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	options := []otlptracehttp.Option{}
	if cfg.Endpoint != "" {
		options = append(options, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		options = append(options, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	return &Providers{
		Meter:          mp.Meter(instrumentationName),
		Tracer:         tp.Tracer(instrumentationName),
		reader:         reader,
		meterProvider:  mp,
		tracerProvider: tp,
		logger:         logger,
	}, nil
}

// Observer creates the domain observer on top of the providers.
func (p *Providers) Observer() (*Observer, error) {
	return NewObserver(p.Meter, p.Tracer)
}

// Shutdown flushes pending spans and writes a summary of the collected
// counters to the log.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.tracerProvider == nil {
		return nil
	}

	var errs []error
	if summary, err := p.Summary(ctx); err != nil {
		errs = append(errs, err)
	} else if len(summary) > 0 {
		p.logger.Info("telemetry summary", summary)
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// Summary returns the total of every counter collected so far.
func (p *Providers) Summary(ctx context.Context) (map[string]interface{}, error) {
	if p == nil || p.reader == nil {
		return nil, nil
	}
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}
	return summarize(&rm), nil
}

func summarize(rm *metricdata.ResourceMetrics) map[string]interface{} {
	out := map[string]interface{}{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			out[m.Name] = total
		}
	}
	return out
}

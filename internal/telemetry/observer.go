package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"azure-devops-mcp-server/internal/domain"
)

// Metric names.
const (
	MetricToolInvocations = "azdo.tool.invocations"
	MetricToolLatency     = "azdo.tool.latency"
	MetricUpstreamCalls   = "azdo.upstream.calls"
	MetricUpstreamLatency = "azdo.upstream.latency"
	MetricUpstreamRetries = "azdo.upstream.retries"
)

// Observer records tool invocations and upstream calls into OpenTelemetry.
type Observer struct {
	tracer trace.Tracer

	invocations     metric.Int64Counter
	toolLatency     metric.Float64Histogram
	calls           metric.Int64Counter
	upstreamLatency metric.Float64Histogram
	retries         metric.Int64Counter
}

// NewObserver creates an observer bound to the provided meter and tracer.
// A nil tracer disables spans.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		MetricToolInvocations,
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	toolLatency, err := meter.Float64Histogram(
		MetricToolLatency,
		metric.WithDescription("Tool invocation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	calls, err := meter.Int64Counter(
		MetricUpstreamCalls,
		metric.WithDescription("Number of upstream HTTP attempts"),
	)
	if err != nil {
		return nil, err
	}
	upstreamLatency, err := meter.Float64Histogram(
		MetricUpstreamLatency,
		metric.WithDescription("Upstream HTTP attempt latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	retries, err := meter.Int64Counter(
		MetricUpstreamRetries,
		metric.WithDescription("Number of scheduled upstream retries"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:          tracer,
		invocations:     invocations,
		toolLatency:     toolLatency,
		calls:           calls,
		upstreamLatency: upstreamLatency,
		retries:         retries,
	}, nil
}

// ObserveInvoke records one tool invocation and emits a span for it.
func (o *Observer) ObserveInvoke(observation domain.InvokeObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool", observation.Tool),
		attribute.String("operation", observation.Operation),
		attribute.Bool("success", observation.Success),
	}
	if observation.SoftError {
		attrs = append(attrs, attribute.Bool("soft_error", true))
	}
	if observation.ErrorKind != "" {
		attrs = append(attrs, attribute.String("error_kind", string(observation.ErrorKind)))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.toolLatency.Record(ctx, observation.Duration.Seconds(), options)

	if o.tracer == nil {
		return
	}
	end := time.Now()
	_, span := o.tracer.Start(ctx, "tool.invoke",
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(end.Add(-observation.Duration)),
	)
	if observation.Success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, string(observation.ErrorKind))
	}
	span.End(trace.WithTimestamp(end))
}

// ObserveCall records one upstream HTTP attempt and emits a client span
// for it.
func (o *Observer) ObserveCall(observation domain.CallObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("method", observation.Method),
		attribute.String("status", statusLabel(observation.StatusCode)),
		attribute.Int("attempt", observation.Attempt),
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.calls.Add(ctx, 1, options)
	o.upstreamLatency.Record(ctx, observation.Duration.Seconds(), options)

	if o.tracer == nil {
		return
	}
	end := time.Now()
	_, span := o.tracer.Start(ctx, "azdo.http",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs,
			attribute.String("path", observation.Path),
			attribute.String("correlation_id", observation.CorrelationID),
		)...),
		trace.WithTimestamp(end.Add(-observation.Duration)),
	)
	if observation.Err != nil {
		span.SetStatus(codes.Error, statusLabel(observation.StatusCode))
	}
	span.End(trace.WithTimestamp(end))
}

// ObserveRetry records one scheduled retry.
func (o *Observer) ObserveRetry(observation domain.RetryObservation) {
	if o == nil {
		return
	}

	o.retries.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("method", observation.Method),
		attribute.Int("attempt", observation.Attempt),
	))
}

// statusLabel keeps the status attribute low-cardinality; transport
// failures without a response are reported as "error".
func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

var _ domain.Observer = (*Observer)(nil)

package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// TracerName is the instrumentation name used when no tracer is supplied.
const TracerName = "github.com/ahrav/go-tally/aggregators"

// Middleware decorates an Aggregator with a cross-cutting concern.
type Middleware func(next ports.Aggregator) ports.Aggregator

// Chain wraps agg with every middleware. The first middleware is the
// outermost.
func Chain(agg ports.Aggregator, mws ...Middleware) ports.Aggregator {
	for i := len(mws) - 1; i >= 0; i-- {
		agg = mws[i](agg)
	}
	return agg
}

// passthrough forwards the non-aggregating methods to the wrapped aggregator.
type passthrough struct {
	next ports.Aggregator
}

func (p passthrough) Name() string { return p.next.Name() }

func (p passthrough) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return p.next.Empty(q)
}

func (p passthrough) Validate() error { return p.next.Validate() }

// metricsAggregator records latency, outcome and size metrics for each
// Aggregate call.
type metricsAggregator struct {
	passthrough
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that reports every aggregation to
// collector. A nil collector makes the middleware a no-op.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next ports.Aggregator) ports.Aggregator {
		if collector == nil {
			return next
		}
		return &metricsAggregator{passthrough: passthrough{next: next}, collector: collector}
	}
}

// Aggregate delegates to the wrapped aggregator and records its metrics.
func (m *metricsAggregator) Aggregate(
	ctx context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	start := time.Now()
	stats, err := m.next.Aggregate(ctx, q, records)

	labels := map[string]string{
		LabelQuestionType: string(q.Type),
		LabelAggregator:   m.next.Name(),
		LabelStatus:       "success",
	}
	if err != nil {
		labels[LabelStatus] = "error"
	}

	m.collector.RecordLatency(MetricAggregateLatency, time.Since(start), labels)
	m.collector.RecordCounter(MetricQuestionsAggregated, 1, labels)
	m.collector.RecordHistogram(MetricRecordsPerQuestion, float64(len(records)), labels)
	if err == nil && stats != nil {
		m.collector.RecordHistogram(MetricRespondentsPerQuestion, float64(stats.Summary().TotalResponses), labels)
	}
	return stats, err
}

// tracedAggregator wraps each Aggregate call in an OpenTelemetry span.
type tracedAggregator struct {
	passthrough
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that traces every aggregation. A nil
// tracer uses the globally registered tracer provider.
func TracingMiddleware(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return func(next ports.Aggregator) ports.Aggregator {
		return &tracedAggregator{passthrough: passthrough{next: next}, tracer: tracer}
	}
}

// Aggregate executes the wrapped aggregation within a span.
func (t *tracedAggregator) Aggregate(
	ctx context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	ctx, span := t.tracer.Start(ctx, "Aggregator.Aggregate",
		trace.WithAttributes(
			attribute.String("aggregator.name", t.next.Name()),
			attribute.String("question.id", q.ID),
			attribute.String("question.type", string(q.Type)),
			attribute.Int("question.records", len(records)),
		),
	)
	defer span.End()

	stats, err := t.next.Aggregate(ctx, q, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}
	if stats != nil {
		span.SetAttributes(attribute.Int("question.total_responses", stats.Summary().TotalResponses))
	}
	span.SetStatus(codes.Ok, "")
	return stats, nil
}

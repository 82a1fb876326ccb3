// Package application wires the survey statistics engine: configuration,
// the aggregator registry, input loading and the orchestrator that fans
// questions out to their aggregators.
package application

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-tally/infrastructure/aggregators"
	"github.com/ahrav/go-tally/infrastructure/middleware"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// Engine-level metric names. Per-question metrics come from the aggregator
// middleware.
const (
	metricRunLatency      = "aggregate_run"
	metricQuestionsFailed = "questions_failed_total"
	metricPanicsRecovered = "panics_recovered_total"
)

// Engine turns question definitions and raw answer records into per-question
// statistics. It is safe for concurrent use; every call to Aggregate is
// independent.
type Engine struct {
	config   EngineConfig
	registry ports.AggregatorRegistry
	logger   *slog.Logger
	metrics  ports.MetricsCollector
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the metrics collector. It takes precedence over
// EngineConfig.Metrics.
func WithMetrics(collector ports.MetricsCollector) Option {
	return func(e *Engine) { e.metrics = collector }
}

// WithTracer sets the tracer. It takes precedence over EngineConfig.Tracing.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithRegistry replaces the built-in aggregator registry. Middleware is not
// applied to aggregators from a custom registry.
func WithRegistry(registry ports.AggregatorRegistry) Option {
	return func(e *Engine) { e.registry = registry }
}

// defaultPrometheus is shared by every engine that enables metrics without
// injecting a collector, since collectors register once per registry. Its
// recording failures are logged through slog.Default.
var defaultPrometheus = sync.OnceValue(func() *middleware.PrometheusMetrics {
	return middleware.NewPrometheusMetrics(nil)
})

// NewEngine creates an Engine from cfg. It returns an error if cfg is
// invalid.
func NewEngine(cfg EngineConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{config: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.metrics == nil && cfg.Metrics.Enabled {
		e.metrics = defaultPrometheus()
	}
	traced := e.tracer != nil || cfg.Tracing.Enabled
	if e.tracer == nil && cfg.Tracing.Enabled {
		e.tracer = otel.Tracer(middleware.TracerName)
	}

	if e.registry == nil {
		var mws []middleware.Middleware
		if traced {
			mws = append(mws, middleware.TracingMiddleware(e.tracer))
		}
		if e.metrics != nil {
			mws = append(mws, middleware.MetricsMiddleware(e.metrics))
		}
		registry, err := NewAggregatorRegistry(cfg, mws...)
		if err != nil {
			return nil, fmt.Errorf("failed to build aggregator registry: %w", err)
		}
		e.registry = registry
	}

	if e.tracer == nil {
		e.tracer = noop.NewTracerProvider().Tracer(middleware.TracerName)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig { return e.config }

// Aggregate computes statistics for every question. It never fails as a
// whole: a question that cannot be summarized gets neutral statistics with
// ProcessingError set, and every other question is unaffected. The result
// holds exactly one entry per distinct question id; when ids repeat, the
// last definition wins.
//
// Aggregate does not mutate questions or records, and its output does not
// depend on the order of records.
func (e *Engine) Aggregate(
	ctx context.Context,
	questions []domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) domain.AggregationResult {
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "Engine.Aggregate",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.questions", len(questions)),
			attribute.Int("run.records", len(records)),
		),
	)
	defer span.End()

	logger := e.logger.With("run_id", runID)
	logger.DebugContext(ctx, "aggregation started",
		"questions", len(questions), "records", len(records))

	byQuestion := partition(questions, records)
	results := make([]domain.QuestionStatistics, len(questions))

	var g errgroup.Group
	g.SetLimit(max(1, e.config.Concurrency))
	for i, q := range questions {
		g.Go(func() error {
			results[i] = e.aggregateQuestion(ctx, logger, q, byQuestion[q.ID])
			return nil
		})
	}
	// Workers never return errors; failures live in ProcessingError.
	_ = g.Wait()

	result := domain.AggregationResult{
		PerQuestion:             make(map[string]domain.QuestionStatistics, len(questions)),
		OverallTotalRespondents: aggregators.CountRespondents(records),
	}
	failed := 0
	for i, q := range questions {
		result.PerQuestion[q.ID] = results[i]
		if results[i].Summary().ProcessingError != "" {
			failed++
		}
	}

	span.SetAttributes(
		attribute.Int("run.respondents", result.OverallTotalRespondents),
		attribute.Int("run.failed_questions", failed),
	)
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d question(s) failed", failed))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if e.metrics != nil {
		e.metrics.RecordLatency(metricRunLatency, time.Since(start), nil)
		e.metrics.RecordGauge(middleware.MetricOverallRespondents, float64(result.OverallTotalRespondents), nil)
		e.metrics.RecordGauge(middleware.MetricRunQuestions, float64(len(questions)), nil)
	}

	logger.DebugContext(ctx, "aggregation finished",
		"respondents", result.OverallTotalRespondents,
		"failed_questions", failed,
		"duration", time.Since(start))
	return result
}

// aggregateQuestion runs one question inside the isolating boundary: any
// error or panic becomes the question's ProcessingError.
func (e *Engine) aggregateQuestion(
	ctx context.Context,
	logger *slog.Logger,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (stats domain.QuestionStatistics) {
	var agg ports.Aggregator

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during aggregation: %v", r)
			stats = e.fail(ctx, logger, q, agg, err)
			if e.metrics != nil {
				e.metrics.RecordCounter(metricPanicsRecovered, 1,
					map[string]string{middleware.LabelQuestionType: string(q.Type)})
			}
		}
	}()

	if err := ValidateQuestion(q); err != nil {
		return e.fail(ctx, logger, q, nil, err)
	}

	agg, ok := e.registry.Lookup(q.Type)
	if !ok {
		return e.fail(ctx, logger, q, nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, q.Type))
	}

	stats, err := agg.Aggregate(ctx, q, records)
	if err != nil {
		return e.fail(ctx, logger, q, agg, err)
	}
	if stats == nil {
		return e.fail(ctx, logger, q, agg, errors.New("aggregator returned no statistics"))
	}
	return stats
}

// fail builds the neutral statistics for q, marks them with err and logs
// the failure.
func (e *Engine) fail(
	ctx context.Context,
	logger *slog.Logger,
	q domain.QuestionDefinition,
	agg ports.Aggregator,
	err error,
) domain.QuestionStatistics {
	qerr := domain.NewQuestionError(q.ID, "aggregate", err)
	logger.WarnContext(ctx, "question aggregation failed",
		"question_id", q.ID,
		"question_type", string(q.Type),
		"error", err)
	if e.metrics != nil {
		e.metrics.RecordCounter(metricQuestionsFailed, 1,
			map[string]string{middleware.LabelQuestionType: string(q.Type)})
	}
	return domain.MarkFailed(neutral(agg, q), qerr.Error())
}

// neutral returns agg's empty statistics for q, or EmptyStats when there is
// no aggregator or it cannot produce one.
func neutral(agg ports.Aggregator, q domain.QuestionDefinition) (stats domain.QuestionStatistics) {
	fallback := &domain.EmptyStats{Header: domain.NewHeader(q)}
	if agg == nil {
		return fallback
	}
	defer func() {
		if recover() != nil {
			stats = fallback
		}
	}()
	if stats = agg.Empty(q); stats == nil {
		return fallback
	}
	return stats
}

// partition groups records by question id, keeping only ids that belong to
// a supplied question. Each group is a fresh slice in canonical order so
// that aggregation never depends on the order records arrived in.
func partition(
	questions []domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) map[string][]domain.RawAnswerRecord {
	wanted := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		wanted[q.ID] = struct{}{}
	}

	type keyed struct {
		key string
		rec domain.RawAnswerRecord
	}
	grouped := make(map[string][]keyed, len(wanted))
	for _, rec := range records {
		if _, ok := wanted[rec.QuestionID]; !ok {
			continue
		}
		grouped[rec.QuestionID] = append(grouped[rec.QuestionID], keyed{key: canonicalKey(rec), rec: rec})
	}

	out := make(map[string][]domain.RawAnswerRecord, len(grouped))
	for id, group := range grouped {
		slices.SortStableFunc(group, func(a, b keyed) int { return cmp.Compare(a.key, b.key) })
		recs := make([]domain.RawAnswerRecord, len(group))
		for i, k := range group {
			recs[i] = k.rec
		}
		out[id] = recs
	}
	return out
}

// canonicalKey orders records by session, then by rendered value and
// write-in text. fmt renders map keys in sorted order, so equal composite
// values render identically.
func canonicalKey(rec domain.RawAnswerRecord) string {
	return fmt.Sprintf("%s\x00%T\x00%v\x00%s", rec.SessionID, rec.Value, rec.Value, rec.OtherText)
}

// defaultEngine backs the package-level Aggregate.
var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := NewEngine(DefaultEngineConfig())
	if err != nil {
		// DefaultEngineConfig is always valid.
		panic(err)
	}
	return e
})

// Aggregate computes statistics with the default configuration. See
// Engine.Aggregate.
func Aggregate(questions []domain.QuestionDefinition, records []domain.RawAnswerRecord) domain.AggregationResult {
	return defaultEngine().Aggregate(context.Background(), questions, records)
}

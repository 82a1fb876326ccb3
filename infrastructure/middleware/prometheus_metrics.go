// Package middleware provides cross-cutting concerns for the statistics
// engine: Prometheus metrics and aggregator decorators for metrics and
// tracing.
package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-tally/internal/ports"
)

// Metric names understood by PrometheusMetrics. Any other name is routed to
// the generic vectors under a "metric" label.
const (
	MetricAggregateLatency       = "aggregate"
	MetricQuestionsAggregated    = "questions_aggregated_total"
	MetricRecordsPerQuestion     = "records_per_question"
	MetricRespondentsPerQuestion = "respondents_per_question"
	MetricOverallRespondents     = "overall_respondents"
	MetricRunQuestions           = "run_questions"
)

// Label keys used by the engine and the aggregator middleware.
const (
	LabelQuestionType = "question_type"
	LabelAggregator   = "aggregator"
	LabelStatus       = "status"
)

// ErrNegativeCounter is reported when a counter would be decremented.
var ErrNegativeCounter = errors.New("counter cannot decrease")

// PrometheusOption configures a PrometheusMetrics instance.
type PrometheusOption func(*PrometheusMetrics)

// WithErrorLogger sets the logger that receives metrics collection failures.
// The default is slog.Default at the time of the failure.
func WithErrorLogger(logger *slog.Logger) PrometheusOption {
	return func(pm *PrometheusMetrics) { pm.logger = logger }
}

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks aggregation latency, per-question outcomes and the
// size of each run.
type PrometheusMetrics struct {
	aggregationLatency *prometheus.HistogramVec
	questionCounter    *prometheus.CounterVec
	operationCounter   *prometheus.CounterVec
	sizeHistogram      *prometheus.HistogramVec
	runGauges          *prometheus.GaugeVec
	logger             *slog.Logger
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all of its metrics with reg. A nil reg registers with the default
// Prometheus registry.
//
// Recording never panics. Failures such as a label mismatch or a negative
// counter increment are logged as *ports.MetricsError and the sample is
// dropped.
func NewPrometheusMetrics(reg prometheus.Registerer, opts ...PrometheusOption) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	pm := &PrometheusMetrics{
		aggregationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tally",
				Name:      "aggregation_duration_seconds",
				Help:      "Time spent aggregating the records of a single question.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation", LabelQuestionType},
		),
		questionCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tally",
				Name:      "questions_aggregated_total",
				Help:      "Questions aggregated, partitioned by outcome.",
			},
			[]string{LabelQuestionType, LabelStatus},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tally",
				Name:      "operations_total",
				Help:      "Generic engine operation counter.",
			},
			[]string{"metric", LabelQuestionType},
		),
		// Records and respondents per question span several orders of
		// magnitude between pilot and production surveys.
		sizeHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tally",
				Name:      "question_size",
				Help:      "Distribution of per-question record and respondent counts.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"metric", LabelQuestionType},
		),
		runGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tally",
				Name:      "run_state",
				Help:      "Values describing the most recent aggregation run.",
			},
			[]string{"metric"},
		),
	}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// report logs a failed recording.
func (pm *PrometheusMetrics) report(metric, operation string, err error) {
	logger := pm.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("metrics collection failed", "error", ports.NewMetricsError(metric, operation, err))
}

// questionType returns the question type label, defaulting to "unknown".
func questionType(labels map[string]string) string {
	if t := labels[LabelQuestionType]; t != "" {
		return t
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	obs, err := pm.aggregationLatency.GetMetricWithLabelValues(operation, questionType(labels))
	if err != nil {
		pm.report(operation, "RecordLatency", err)
		return
	}
	obs.Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters. Negative values are rejected.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	if value < 0 {
		pm.report(metric, "RecordCounter", ErrNegativeCounter)
		return
	}

	var (
		counter prometheus.Counter
		err     error
	)
	switch metric {
	case MetricQuestionsAggregated:
		status := labels[LabelStatus]
		if status == "" {
			status = "success"
		}
		counter, err = pm.questionCounter.GetMetricWithLabelValues(questionType(labels), status)
	default:
		counter, err = pm.operationCounter.GetMetricWithLabelValues(metric, questionType(labels))
	}
	if err != nil {
		pm.report(metric, "RecordCounter", err)
		return
	}
	counter.Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	gauge, err := pm.runGauges.GetMetricWithLabelValues(metric)
	if err != nil {
		pm.report(metric, "RecordGauge", err)
		return
	}
	gauge.Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	obs, err := pm.sizeHistogram.GetMetricWithLabelValues(metric, questionType(labels))
	if err != nil {
		pm.report(metric, "RecordHistogram", err)
		return
	}
	obs.Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

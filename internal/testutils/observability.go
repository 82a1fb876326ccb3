package testutils

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.MetricsCollector = (*MetricsRecorder)(nil)

// MetricCall is one call observed by MetricsRecorder.
type MetricCall struct {
	Kind   string
	Name   string
	Value  float64
	Labels map[string]string
}

// MetricsRecorder is a thread-safe MetricsCollector that remembers every
// call.
type MetricsRecorder struct {
	mu    sync.Mutex
	calls []MetricCall
}

func (m *MetricsRecorder) record(kind, name string, value float64, labels map[string]string) {
	cp := make(map[string]string, len(labels))
	for k, v := range labels {
		cp[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MetricCall{Kind: kind, Name: name, Value: value, Labels: cp})
}

// RecordLatency records the duration in seconds.
func (m *MetricsRecorder) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	m.record("latency", operation, d.Seconds(), labels)
}

// RecordCounter records a counter increment.
func (m *MetricsRecorder) RecordCounter(metric string, value float64, labels map[string]string) {
	m.record("counter", metric, value, labels)
}

// RecordGauge records a gauge value.
func (m *MetricsRecorder) RecordGauge(metric string, value float64, labels map[string]string) {
	m.record("gauge", metric, value, labels)
}

// RecordHistogram records a histogram observation.
func (m *MetricsRecorder) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.record("histogram", metric, value, labels)
}

// Calls returns the recorded calls with the given name.
func (m *MetricsRecorder) Calls(name string) []MetricCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MetricCall
	for _, c := range m.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// RecordingTracer is a trace.Tracer that keeps every span it starts.
type RecordingTracer struct {
	noop.Tracer

	mu    sync.Mutex
	spans []*RecordedSpan
}

// Start begins a recorded span.
func (r *RecordingTracer) Start(
	ctx context.Context,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &RecordedSpan{Name: name, attrs: append([]attribute.KeyValue{}, cfg.Attributes()...)}
	r.mu.Lock()
	r.spans = append(r.spans, span)
	r.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

// Spans returns the spans started so far with the given name.
func (r *RecordingTracer) Spans(name string) []*RecordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*RecordedSpan
	for _, s := range r.spans {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// RecordedSpan captures the attributes, errors and status of a span.
type RecordedSpan struct {
	noop.Span

	Name string

	mu     sync.Mutex
	attrs  []attribute.KeyValue
	errs   []error
	status codes.Code
	ended  bool
}

// SetAttributes appends attributes.
func (s *RecordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, kv...)
}

// RecordError remembers err.
func (s *RecordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// SetStatus remembers the status code.
func (s *RecordedSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

// End marks the span as ended.
func (s *RecordedSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

// Attribute returns the last value recorded for key.
func (s *RecordedSpan) Attribute(key string) (attribute.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.attrs) - 1; i >= 0; i-- {
		if string(s.attrs[i].Key) == key {
			return s.attrs[i].Value, true
		}
	}
	return attribute.Value{}, false
}

// Errors returns the recorded errors.
func (s *RecordedSpan) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// Status returns the last status code.
func (s *RecordedSpan) Status() codes.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Ended reports whether End was called.
func (s *RecordedSpan) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

package aggregators

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/derive"
	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*NumericAggregator)(nil)

// NumericAggregator summarizes rating, nps and slider questions. Every record
// is parsed as a single number; non-numeric values are silently discarded.
//
// On top of the shared mean/min/max summary, rating and nps questions get a
// discrete histogram keyed by rounded score, nps questions get the
// Net-Promoter segmentation, and slider questions get a fixed-bin histogram
// over the configured (or observed) slider range.
//
// The aggregator is stateless and thread-safe.
type NumericAggregator struct {
	name   string
	config NumericConfig
}

// NumericConfig defines the configuration parameters for the NumericAggregator.
type NumericConfig struct {
	// PromoterMin is the lowest nps score counted as a promoter.
	PromoterMin float64 `yaml:"promoter_min" json:"promoter_min" validate:"gtfield=DetractorMax"`

	// DetractorMax is the highest nps score counted as a detractor.
	DetractorMax float64 `yaml:"detractor_max" json:"detractor_max"`

	// SliderBins is the number of equal-width slider histogram bins.
	SliderBins int `yaml:"slider_bins" json:"slider_bins" validate:"min=1,max=100"`
}

// DefaultNumericConfig returns a NumericConfig with the standard nps cut-offs
// and ten slider bins.
func DefaultNumericConfig() NumericConfig {
	th := derive.DefaultNPSThresholds()
	return NumericConfig{
		PromoterMin:  th.PromoterMin,
		DetractorMax: th.DetractorMax,
		SliderBins:   10,
	}
}

// NewNumericAggregator creates a new NumericAggregator with the specified
// configuration. It returns an error if the configuration is invalid.
func NewNumericAggregator(name string, config NumericConfig) (*NumericAggregator, error) {
	if err := checkName(name, config); err != nil {
		return nil, err
	}
	return &NumericAggregator{name: name, config: config}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *NumericAggregator) Name() string { return a.name }

// Empty returns numeric statistics with no values.
func (a *NumericAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return a.empty(q)
}

func (a *NumericAggregator) empty(q domain.QuestionDefinition) *domain.NumericStats {
	stats := &domain.NumericStats{
		Header: domain.NewHeader(q),
		Values: []float64{},
	}
	switch q.Type {
	case domain.TypeRating:
		stats.Counts = make(map[string]int)
	case domain.TypeNPS:
		stats.Counts = make(map[string]int)
		stats.NPS = &domain.NPSBreakdown{}
	}
	return stats
}

// Aggregate folds the records into the numeric summary.
func (a *NumericAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeRating, domain.TypeNPS, domain.TypeSlider); err != nil {
		return nil, err
	}

	stats := a.empty(q)
	seen := newRespondents()
	for _, rec := range records {
		v, ok := normalize.Number(rec.Value)
		if !ok {
			continue
		}
		stats.Values = append(stats.Values, v)
		if stats.Counts != nil {
			stats.Counts[derive.ScoreKey(v)]++
		}
		seen.add(rec.SessionID)
	}

	stats.TotalResponses = seen.count()
	summary := derive.Summarize(stats.Values)
	stats.Average, stats.Min, stats.Max = summary.Average, summary.Min, summary.Max

	switch q.Type {
	case domain.TypeNPS:
		nps := derive.NPS(stats.Values, derive.NPSThresholds{
			PromoterMin:  a.config.PromoterMin,
			DetractorMax: a.config.DetractorMax,
		})
		stats.NPS = &nps
	case domain.TypeSlider:
		stats.Histogram = a.sliderHistogram(q, stats.Values, summary)
	}
	return stats, nil
}

// sliderHistogram bins values over the configured slider bounds, falling back
// to the observed extremes for any bound that is not configured.
//
// No histogram is produced when the resulting range is inverted. That happens
// for an inverted configured range, and when only one bound is configured and
// every observed value lies on the far side of it (sliderMin 0 with only
// negative answers). Values and the mean/min/max summary are still reported.
func (a *NumericAggregator) sliderHistogram(
	q domain.QuestionDefinition,
	values []float64,
	observed derive.Summary,
) []domain.HistogramBin {
	lo, hi := q.SliderMin, q.SliderMax
	if lo == nil {
		lo = observed.Min
	}
	if hi == nil {
		hi = observed.Max
	}
	if lo == nil || hi == nil {
		return nil
	}
	return derive.Histogram(values, *lo, *hi, a.config.SliderBins)
}

// Validate checks if the aggregator is properly configured.
func (a *NumericAggregator) Validate() error {
	return checkName(a.name, a.config)
}

package aggregators

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*HeatmapAggregator)(nil)

// HeatmapAggregator concatenates the in-range click points of every
// respondent. No clustering is performed.
type HeatmapAggregator struct {
	name string
}

// NewHeatmapAggregator creates a new HeatmapAggregator.
func NewHeatmapAggregator(name string) (*HeatmapAggregator, error) {
	if name == "" {
		return nil, ErrEmptyAggregatorName
	}
	return &HeatmapAggregator{name: name}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *HeatmapAggregator) Name() string { return a.name }

// Empty returns heatmap statistics with no clicks.
func (a *HeatmapAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return &domain.HeatmapStats{Header: domain.NewHeader(q), Clicks: []domain.Point{}}
}

// Aggregate keeps every click inside the unit square.
func (a *HeatmapAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeHeatmap); err != nil {
		return nil, err
	}

	stats := a.Empty(q).(*domain.HeatmapStats)
	seen := newRespondents()
	for _, rec := range records {
		usable := false
		for _, p := range normalize.Points(rec.Value) {
			if !inUnitSquare(p) {
				continue
			}
			stats.Clicks = append(stats.Clicks, p)
			usable = true
		}
		if usable {
			seen.add(rec.SessionID)
		}
	}
	stats.TotalResponses = seen.count()
	return stats, nil
}

func inUnitSquare(p domain.Point) bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Validate checks if the aggregator is properly configured.
func (a *HeatmapAggregator) Validate() error {
	if a.name == "" {
		return ErrEmptyAggregatorName
	}
	return nil
}

package aggregators

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*ConjointAggregator)(nil)

// ConjointAggregator counts chosen levels per attribute across every task a
// respondent answered. Attributes must be declared on the question; levels
// are taken as given so that renamed levels still surface.
type ConjointAggregator struct {
	name string
}

// NewConjointAggregator creates a new ConjointAggregator.
func NewConjointAggregator(name string) (*ConjointAggregator, error) {
	if name == "" {
		return nil, ErrEmptyAggregatorName
	}
	return &ConjointAggregator{name: name}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *ConjointAggregator) Name() string { return a.name }

// Empty returns conjoint statistics with every declared attribute and level
// at zero.
func (a *ConjointAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	stats := &domain.ConjointStats{
		Header:      domain.NewHeader(q),
		LevelCounts: make(map[string]map[string]int, len(q.ConjointAttributes)),
	}
	for _, attr := range q.ConjointAttributes {
		levels, ok := stats.LevelCounts[attr.Name]
		if !ok {
			levels = make(map[string]int, len(attr.Levels))
			stats.LevelCounts[attr.Name] = levels
		}
		for _, level := range attr.Levels {
			if _, ok := levels[level]; !ok {
				levels[level] = 0
			}
		}
	}
	return stats
}

// Aggregate folds chosen profiles into level counts.
func (a *ConjointAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeConjoint); err != nil {
		return nil, err
	}

	stats := a.Empty(q).(*domain.ConjointStats)
	seen := newRespondents()
	for _, rec := range records {
		usable := false
		for _, profile := range normalize.Profiles(rec.Value) {
			for attr, level := range profile {
				levels, declared := stats.LevelCounts[attr]
				if !declared {
					continue
				}
				levels[level]++
				usable = true
			}
		}
		if usable {
			seen.add(rec.SessionID)
		}
	}
	stats.TotalResponses = seen.count()
	return stats, nil
}

// Validate checks if the aggregator is properly configured.
func (a *ConjointAggregator) Validate() error {
	if a.name == "" {
		return ErrEmptyAggregatorName
	}
	return nil
}

package aggregators

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*MaxDiffAggregator)(nil)

// MaxDiffAggregator counts best and worst picks of best-worst scaling
// questions. Picks outside the declared options are discarded.
type MaxDiffAggregator struct {
	name string
}

// NewMaxDiffAggregator creates a new MaxDiffAggregator.
func NewMaxDiffAggregator(name string) (*MaxDiffAggregator, error) {
	if name == "" {
		return nil, ErrEmptyAggregatorName
	}
	return &MaxDiffAggregator{name: name}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *MaxDiffAggregator) Name() string { return a.name }

// Empty returns maxDiff statistics with every option at zero.
func (a *MaxDiffAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return &domain.MaxDiffStats{
		Header:      domain.NewHeader(q),
		BestCounts:  seedCounts(q.Options),
		WorstCounts: seedCounts(q.Options),
	}
}

// Aggregate counts best and worst picks per option.
func (a *MaxDiffAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeMaxDiff); err != nil {
		return nil, err
	}

	stats := a.Empty(q).(*domain.MaxDiffStats)
	seen := newRespondents()
	for _, rec := range records {
		usable := false
		for _, task := range normalize.BestWorstChoices(rec.Value) {
			if q.HasOption(task.Best) {
				stats.BestCounts[task.Best]++
				usable = true
			}
			if q.HasOption(task.Worst) {
				stats.WorstCounts[task.Worst]++
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
func (a *MaxDiffAggregator) Validate() error {
	if a.name == "" {
		return ErrEmptyAggregatorName
	}
	return nil
}

package aggregators

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/derive"
	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*RankingAggregator)(nil)

// RankingAggregator summarizes ranking questions. An answer is an ordered
// list of option labels with position 0 meaning rank 1. Unknown labels and
// repeated labels are removed before ranks are assigned, so the remaining
// known options always occupy ranks 1..k.
type RankingAggregator struct {
	name string
}

// NewRankingAggregator creates a new RankingAggregator.
func NewRankingAggregator(name string) (*RankingAggregator, error) {
	if name == "" {
		return nil, ErrEmptyAggregatorName
	}
	return &RankingAggregator{name: name}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *RankingAggregator) Name() string { return a.name }

// Empty returns ranking statistics where no option has been ranked.
func (a *RankingAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return a.empty(q)
}

func (a *RankingAggregator) empty(q domain.QuestionDefinition) *domain.RankingStats {
	stats := &domain.RankingStats{
		Header:      domain.NewHeader(q),
		OptionCount: len(q.Options),
		Items:       make(map[string]domain.RankingItem, len(q.Options)),
	}
	for _, opt := range q.Options {
		stats.Items[opt] = domain.RankingItem{RankCounts: make(map[int]int)}
	}
	return stats
}

// Aggregate folds ordered rankings into per-option rank statistics.
func (a *RankingAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeRanking); err != nil {
		return nil, err
	}

	stats := a.empty(q)
	ranks := make(map[string][]float64, len(q.Options))
	seen := newRespondents()

	for _, rec := range records {
		order := a.knownOrder(q, normalize.StringList(rec.Value))
		if len(order) == 0 {
			continue
		}
		for i, opt := range order {
			rank := i + 1
			stats.Items[opt].RankCounts[rank]++
			ranks[opt] = append(ranks[opt], float64(rank))
		}
		seen.add(rec.SessionID)
	}

	for opt, item := range stats.Items {
		item.AverageRank = derive.Mean(ranks[opt])
		item.Score = derive.BordaScore(stats.OptionCount, item.RankCounts)
		stats.Items[opt] = item
	}
	stats.TotalResponses = seen.count()
	return stats, nil
}

// knownOrder keeps the first occurrence of each declared option.
func (a *RankingAggregator) knownOrder(q domain.QuestionDefinition, labels []string) []string {
	used := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if !q.HasOption(label) {
			continue
		}
		if _, dup := used[label]; dup {
			continue
		}
		used[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// Validate checks if the aggregator is properly configured.
func (a *RankingAggregator) Validate() error {
	if a.name == "" {
		return ErrEmptyAggregatorName
	}
	return nil
}

package aggregators

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*CardSortAggregator)(nil)

// CardSortAggregator builds the bidirectional placement index of card sort
// questions.
//
// The unassigned category always exists in the output, predefined and
// respondent-created categories are seeded with empty placement maps, and
// only (card, category) pairs that appear in a respondent's assignments are
// counted. A declared card missing from a respondent's assignments is not
// imputed into the unassigned bucket. Cards that are not declared options
// are discarded.
type CardSortAggregator struct {
	name   string
	config CardSortConfig
}

// CardSortConfig defines the configuration parameters for the
// CardSortAggregator.
type CardSortConfig struct {
	// Unassigned is the category id for cards left unsorted.
	Unassigned string `yaml:"unassigned" json:"unassigned" validate:"required"`
}

// DefaultCardSortConfig returns a CardSortConfig using the default
// unassigned sentinel.
func DefaultCardSortConfig() CardSortConfig {
	return CardSortConfig{Unassigned: domain.DefaultUnassignedSentinel}
}

// NewCardSortAggregator creates a new CardSortAggregator with the specified
// configuration. It returns an error if the configuration is invalid.
func NewCardSortAggregator(name string, config CardSortConfig) (*CardSortAggregator, error) {
	if err := checkName(name, config); err != nil {
		return nil, err
	}
	return &CardSortAggregator{name: name, config: config}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *CardSortAggregator) Name() string { return a.name }

// Empty returns card sort statistics seeded with every declared card, the
// unassigned category and every predefined category.
func (a *CardSortAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return a.empty(q)
}

func (a *CardSortAggregator) empty(q domain.QuestionDefinition) *domain.CardSortStats {
	stats := &domain.CardSortStats{
		Header:         domain.NewHeader(q),
		ByCard:         make(map[string]map[string]int, len(q.Options)),
		ByCategory:     make(map[string]map[string]int, len(q.CardSortCategories)+1),
		UserCategories: []domain.Category{},
	}
	for _, card := range q.Options {
		stats.ByCard[card] = make(map[string]int)
	}
	stats.ByCategory[a.config.Unassigned] = make(map[string]int)
	for _, cat := range q.CardSortCategories {
		if cat.ID == "" {
			continue
		}
		stats.ByCategory[cat.ID] = make(map[string]int)
	}
	return stats
}

// Aggregate folds card placements into the placement index.
func (a *CardSortAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeCardSort); err != nil {
		return nil, err
	}

	stats := a.empty(q)
	// Ids present before any respondent input cannot be redefined by users.
	reserved := make(map[string]struct{}, len(stats.ByCategory))
	for id := range stats.ByCategory {
		reserved[id] = struct{}{}
	}
	userIDs := make(map[string]struct{})
	seen := newRespondents()

	for _, rec := range records {
		answer := normalize.CardSort(rec.Value)

		for _, cat := range answer.UserCategories {
			if _, taken := reserved[cat.ID]; taken {
				continue
			}
			if _, dup := userIDs[cat.ID]; dup {
				continue
			}
			userIDs[cat.ID] = struct{}{}
			stats.UserCategories = append(stats.UserCategories, cat)
			stats.ByCategory[cat.ID] = make(map[string]int)
		}

		usable := false
		for card, category := range answer.Assignments {
			byCard, declared := stats.ByCard[card]
			if !declared {
				continue
			}
			byCard[category]++
			byCategory, ok := stats.ByCategory[category]
			if !ok {
				byCategory = make(map[string]int)
				stats.ByCategory[category] = byCategory
			}
			byCategory[card]++
			usable = true
		}
		if usable {
			seen.add(rec.SessionID)
		}
	}
	stats.TotalResponses = seen.count()
	return stats, nil
}

// Validate checks if the aggregator is properly configured.
func (a *CardSortAggregator) Validate() error {
	return checkName(a.name, a.config)
}

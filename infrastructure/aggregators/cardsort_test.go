package aggregators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
)

func TestCardSortAggregator_Aggregate(t *testing.T) {
	agg, err := NewCardSortAggregator("cardsort", DefaultCardSortConfig())
	require.NoError(t, err)

	const unassigned = domain.DefaultUnassignedSentinel
	q := domain.QuestionDefinition{
		ID: "q1", Type: domain.TypeCardSort,
		Options:                     []string{"Login", "Billing", "Search"},
		CardSortCategories:          []domain.Category{{ID: "acct", Name: "Account"}, {ID: "nav", Name: "Navigation"}},
		CardSortAllowUserCategories: true,
	}
	got, err := agg.Aggregate(context.Background(), q, []domain.RawAnswerRecord{
		rec("s1", `{
			"assignments": {"Login": "acct", "Billing": "money", "Ghost": "acct"},
			"userCategories": [{"id": "money", "name": "Money"}]
		}`),
		rec("s2", map[string]any{
			"assignments":    map[string]any{"Login": "acct", "Search": unassigned},
			"userCategories": []any{map[string]any{"id": "money", "name": "Cash"}, map[string]any{"id": "acct", "name": "Hijack"}},
		}),
		rec("s3", `{"assignments": {}}`),
	})
	require.NoError(t, err)

	stats, ok := got.(*domain.CardSortStats)
	require.True(t, ok)

	assert.Equal(t, map[string]map[string]int{
		"Login":   {"acct": 2},
		"Billing": {"money": 1},
		"Search":  {unassigned: 1},
	}, stats.ByCard)
	assert.Equal(t, map[string]map[string]int{
		unassigned: {"Search": 1},
		"acct":     {"Login": 2},
		"nav":      {},
		"money":    {"Billing": 1},
	}, stats.ByCategory)
	assert.Equal(t, []domain.Category{{ID: "money", Name: "Money"}}, stats.UserCategories)
	assert.Equal(t, 2, stats.TotalResponses)
}

func TestCardSortAggregator_AbsentCardsAreNotImputed(t *testing.T) {
	agg, err := NewCardSortAggregator("cardsort", DefaultCardSortConfig())
	require.NoError(t, err)

	q := domain.QuestionDefinition{ID: "q1", Type: domain.TypeCardSort, Options: []string{"A", "B"}}
	got, err := agg.Aggregate(context.Background(), q, []domain.RawAnswerRecord{
		rec("s1", `{"assignments": {"A": "__unassigned__"}}`),
	})
	require.NoError(t, err)

	stats := got.(*domain.CardSortStats)
	assert.Empty(t, stats.ByCard["B"])
	assert.Equal(t, map[string]int{"A": 1}, stats.ByCategory[domain.DefaultUnassignedSentinel])
}

func TestCardSortAggregator_Empty(t *testing.T) {
	agg, err := NewCardSortAggregator("cardsort", CardSortConfig{Unassigned: "none"})
	require.NoError(t, err)

	stats := agg.Empty(domain.QuestionDefinition{ID: "q1", Type: domain.TypeCardSort}).(*domain.CardSortStats)
	assert.Equal(t, map[string]map[string]int{"none": {}}, stats.ByCategory)
	assert.Empty(t, stats.ByCard)
	assert.NotNil(t, stats.UserCategories)
}

func TestNewCardSortAggregator_RequiresUnassigned(t *testing.T) {
	agg, err := NewCardSortAggregator("cardsort", CardSortConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unassigned")
	assert.Nil(t, agg)
}

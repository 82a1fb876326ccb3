package aggregators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
)

func TestMaxDiffAggregator_Aggregate(t *testing.T) {
	agg, err := NewMaxDiffAggregator("maxdiff")
	require.NoError(t, err)

	q := domain.QuestionDefinition{ID: "q1", Type: domain.TypeMaxDiff, Options: []string{"A", "B", "C"}}
	got, err := agg.Aggregate(context.Background(), q, []domain.RawAnswerRecord{
		rec("s1", map[string]any{"best": "A", "worst": "C"}),
		rec("s2", `[{"best":"A","worst":"B"},{"best":"B","worst":null}]`),
		rec("s3", `{"best":"Retired","worst":"Retired"}`),
		rec("s4", "garbage"),
	})
	require.NoError(t, err)

	stats, ok := got.(*domain.MaxDiffStats)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 0}, stats.BestCounts)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 1}, stats.WorstCounts)
	assert.Equal(t, map[string]int{"A": 2, "B": 0, "C": -1}, stats.NetScores())
	assert.Equal(t, 2, stats.TotalResponses)
}

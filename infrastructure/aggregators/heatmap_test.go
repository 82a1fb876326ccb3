package aggregators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
)

func TestHeatmapAggregator_Aggregate(t *testing.T) {
	agg, err := NewHeatmapAggregator("heatmap")
	require.NoError(t, err)

	q := domain.QuestionDefinition{ID: "q1", Type: domain.TypeHeatmap}

	tests := []struct {
		name          string
		records       []domain.RawAnswerRecord
		wantClicks    []domain.Point
		wantResponses int
	}{
		{
			name:          "out of range point dropped",
			records:       []domain.RawAnswerRecord{rec("s1", `[{"x":1.5,"y":0.2},{"x":0.5,"y":0.5}]`)},
			wantClicks:    []domain.Point{{X: 0.5, Y: 0.5}},
			wantResponses: 1,
		},
		{
			name: "edges are inclusive and respondents with no valid point are not counted",
			records: []domain.RawAnswerRecord{
				rec("s1", []any{map[string]any{"x": 0, "y": 1}}),
				rec("s2", []any{map[string]any{"x": -0.1, "y": 0.5}}),
				rec("s3", "not clicks"),
			},
			wantClicks:    []domain.Point{{X: 0, Y: 1}},
			wantResponses: 1,
		},
		{
			name:          "no records",
			records:       nil,
			wantClicks:    []domain.Point{},
			wantResponses: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agg.Aggregate(context.Background(), q, tt.records)
			require.NoError(t, err)

			stats, ok := got.(*domain.HeatmapStats)
			require.True(t, ok)
			assert.Equal(t, tt.wantClicks, stats.Clicks)
			assert.Equal(t, tt.wantResponses, stats.TotalResponses)
		})
	}
}

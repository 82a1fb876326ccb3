package aggregators

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/ahrav/go-tally/infrastructure/derive"
	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*MatrixAggregator)(nil)

// MatrixAggregator summarizes matrix questions. Each answer maps a row label
// to one column label (radio matrix) or to several (checkbox matrix). Rows
// and columns not declared on the question are dropped.
//
// For rating matrices the radio form is additionally averaged per row by
// parsing the selected column label as a number.
type MatrixAggregator struct {
	name string
}

// NewMatrixAggregator creates a new MatrixAggregator.
func NewMatrixAggregator(name string) (*MatrixAggregator, error) {
	if name == "" {
		return nil, ErrEmptyAggregatorName
	}
	return &MatrixAggregator{name: name}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *MatrixAggregator) Name() string { return a.name }

// Empty returns matrix statistics with every declared row and column at
// zero. Rows stay empty when the question lacks rows or columns.
func (a *MatrixAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return a.empty(q)
}

func (a *MatrixAggregator) empty(q domain.QuestionDefinition) *domain.MatrixStats {
	stats := &domain.MatrixStats{
		Header: domain.NewHeader(q),
		Rows:   make(map[string]domain.MatrixRowStats),
	}
	if len(q.MatrixRows) == 0 || len(q.MatrixColumns) == 0 {
		return stats
	}
	for _, row := range q.MatrixRows {
		stats.Rows[row] = domain.MatrixRowStats{Counts: seedCounts(q.MatrixColumns)}
	}
	return stats
}

// Aggregate folds the records into per-row column counts.
func (a *MatrixAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeMatrix); err != nil {
		return nil, err
	}
	if len(q.MatrixRows) == 0 || len(q.MatrixColumns) == 0 {
		return nil, fmt.Errorf("%w: matrix needs both rows (%d) and columns (%d)",
			domain.ErrMissingMetadata, len(q.MatrixRows), len(q.MatrixColumns))
	}

	stats := a.empty(q)
	columns := stringSet(q.MatrixColumns)
	ratings := make(map[string][]float64)
	seen := newRespondents()

	for _, rec := range records {
		cells := normalize.Matrix(rec.Value)
		usable := false
		// Sorted rows keep the floating point sums independent of map order.
		for _, row := range slices.Sorted(maps.Keys(cells)) {
			rowStats, declared := stats.Rows[row]
			if !declared {
				continue
			}
			cell := cells[row]
			valid := 0
			for _, col := range cell.Columns {
				if _, ok := columns[col]; !ok {
					continue
				}
				rowStats.Counts[col]++
				valid++
			}
			if valid == 0 {
				continue
			}
			rowStats.Total++
			stats.Rows[row] = rowStats
			usable = true

			if q.MatrixIsRating && cell.Single {
				if v, ok := normalize.Number(cell.Columns[0]); ok {
					ratings[row] = append(ratings[row], v)
				}
			}
		}
		if usable {
			seen.add(rec.SessionID)
		}
	}

	if q.MatrixIsRating {
		for row, values := range ratings {
			rowStats := stats.Rows[row]
			rowStats.Average = derive.Mean(values)
			stats.Rows[row] = rowStats
		}
	}
	stats.TotalResponses = seen.count()
	return stats, nil
}

// Validate checks if the aggregator is properly configured.
func (a *MatrixAggregator) Validate() error {
	if a.name == "" {
		return ErrEmptyAggregatorName
	}
	return nil
}

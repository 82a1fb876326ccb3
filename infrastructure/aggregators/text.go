package aggregators

import (
	"context"

	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*TextAggregator)(nil)

// TextAggregator collects the non-blank answers of shortText and longText
// questions. Answers are trimmed; blank ones are left out entirely.
type TextAggregator struct {
	name string
}

// NewTextAggregator creates a new TextAggregator.
func NewTextAggregator(name string) (*TextAggregator, error) {
	if name == "" {
		return nil, ErrEmptyAggregatorName
	}
	return &TextAggregator{name: name}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *TextAggregator) Name() string { return a.name }

// Empty returns text statistics with no responses.
func (a *TextAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return &domain.TextStats{Header: domain.NewHeader(q), Responses: []string{}}
}

// Aggregate collects trimmed, non-blank responses.
func (a *TextAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeShortText, domain.TypeLongText); err != nil {
		return nil, err
	}

	stats := &domain.TextStats{Header: domain.NewHeader(q), Responses: make([]string, 0, len(records))}
	seen := newRespondents()
	for _, rec := range records {
		text, ok := normalize.Scalar(rec.Value)
		if !ok {
			continue
		}
		stats.Responses = append(stats.Responses, text)
		seen.add(rec.SessionID)
	}
	stats.TotalResponses = seen.count()
	return stats, nil
}

// Validate checks if the aggregator is properly configured.
func (a *TextAggregator) Validate() error {
	if a.name == "" {
		return ErrEmptyAggregatorName
	}
	return nil
}

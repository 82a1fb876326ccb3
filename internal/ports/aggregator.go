// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-tally/internal/domain"
)

// Aggregator is one strategy per question family. It folds the raw answer
// records of a single question into that family's statistics variant.
// Aggregators must be stateless and safe for concurrent use: the engine runs
// several questions through the same instance in parallel.
type Aggregator interface {
	// Name returns a unique identifier for this aggregator.
	// The name is used for logging, metrics labels and tracing.
	Name() string

	// Aggregate computes statistics for question from records. Every record
	// passed in belongs to question; the order of records carries no
	// meaning. Aggregate must not mutate its inputs.
	//
	// Malformed answer values are not errors: they degrade to neutral shapes
	// or are discarded. Aggregate returns an error only when the question
	// itself cannot be summarized, for example when required metadata is
	// missing.
	//
	// Example:
	//
	//	stats, err := agg.Aggregate(ctx, question, records)
	//	if err != nil {
	//	    stats = domain.MarkFailed(agg.Empty(question), err.Error())
	//	}
	Aggregate(ctx context.Context, question domain.QuestionDefinition, records []domain.RawAnswerRecord) (domain.QuestionStatistics, error)

	// Empty returns the freshly built neutral statistics for question: zero
	// counts and empty collections, as if no records existed.
	Empty(question domain.QuestionDefinition) domain.QuestionStatistics

	// Validate checks if the aggregator is properly configured.
	Validate() error
}

// AggregatorRegistry resolves the aggregator responsible for a question type.
type AggregatorRegistry interface {
	// Lookup returns the aggregator registered for questionType.
	Lookup(questionType domain.QuestionType) (Aggregator, bool)

	// Register binds agg to every listed question type, replacing any
	// previous binding.
	Register(agg Aggregator, questionTypes ...domain.QuestionType) error

	// SupportedTypes returns all registered question types, sorted.
	SupportedTypes() []domain.QuestionType
}

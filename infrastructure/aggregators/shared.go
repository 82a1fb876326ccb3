// Package aggregators provides the per-family aggregation strategies that
// implement ports.Aggregator for the survey statistics engine.
package aggregators

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-tally/internal/domain"
)

// Common errors returned by aggregators.
var (
	// ErrEmptyAggregatorName is returned when attempting to create an
	// aggregator with an empty name.
	ErrEmptyAggregatorName = errors.New("aggregator name cannot be empty")

	// ErrWrongQuestionType is returned when a question is routed to an
	// aggregator that does not handle its type.
	ErrWrongQuestionType = errors.New("question type not handled by aggregator")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// checkName validates an aggregator name and configuration in one step.
func checkName(name string, config any) error {
	if name == "" {
		return ErrEmptyAggregatorName
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// checkType guards against routing mistakes in the registry.
func checkType(q domain.QuestionDefinition, handled ...domain.QuestionType) error {
	for _, t := range handled {
		if q.Type == t {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongQuestionType, q.Type)
}

// respondents is the respondent tracker: the set of distinct session ids that
// produced at least one usable answer for a question.
type respondents map[string]struct{}

func newRespondents() respondents { return make(respondents) }

// add marks sessionID as having answered. Blank ids are not respondents.
func (r respondents) add(sessionID string) {
	if sessionID == "" {
		return
	}
	r[sessionID] = struct{}{}
}

func (r respondents) count() int { return len(r) }

// CountRespondents returns the number of distinct, non-blank session ids in
// records, regardless of whether their answers were usable.
func CountRespondents(records []domain.RawAnswerRecord) int {
	seen := newRespondents()
	for _, rec := range records {
		seen.add(rec.SessionID)
	}
	return seen.count()
}

// seedCounts returns a map with a zero entry for every key.
func seedCounts(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for _, k := range keys {
		m[k] = 0
	}
	return m
}

// stringSet builds a membership set from keys.
func stringSet(keys []string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

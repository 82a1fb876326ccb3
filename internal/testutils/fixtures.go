// Package testutils provides survey fixtures, a deterministic record
// generator and recording doubles for metrics and tracing used across the
// test suites.
package testutils

import (
	"github.com/ahrav/go-tally/internal/domain"
)

// QuestionOption customizes a question built by Question.
type QuestionOption func(*domain.QuestionDefinition)

// Question builds a question definition of the given type.
func Question(id string, t domain.QuestionType, opts ...QuestionOption) domain.QuestionDefinition {
	q := domain.QuestionDefinition{ID: id, Type: t}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// WithOptions sets the declared options (or cards, for card sorts).
func WithOptions(options ...string) QuestionOption {
	return func(q *domain.QuestionDefinition) { q.Options = options }
}

// WithOther enables the Other sentinel.
func WithOther() QuestionOption {
	return func(q *domain.QuestionDefinition) { q.AllowOther = true }
}

// WithNotApplicable enables the NotApplicable sentinel.
func WithNotApplicable() QuestionOption {
	return func(q *domain.QuestionDefinition) { q.AllowNotApplicable = true }
}

// WithMatrix sets matrix rows and columns.
func WithMatrix(rows, columns []string, rating bool) QuestionOption {
	return func(q *domain.QuestionDefinition) {
		q.MatrixRows = rows
		q.MatrixColumns = columns
		q.MatrixIsRating = rating
	}
}

// WithSlider sets both slider bounds.
func WithSlider(lo, hi float64) QuestionOption {
	return func(q *domain.QuestionDefinition) {
		q.SliderMin = &lo
		q.SliderMax = &hi
	}
}

// WithCategories sets the predefined card sort categories.
func WithCategories(allowUser bool, categories ...domain.Category) QuestionOption {
	return func(q *domain.QuestionDefinition) {
		q.CardSortCategories = categories
		q.CardSortAllowUserCategories = allowUser
	}
}

// WithAttributes sets the conjoint attributes.
func WithAttributes(attrs ...domain.ConjointAttribute) QuestionOption {
	return func(q *domain.QuestionDefinition) { q.ConjointAttributes = attrs }
}

// Record builds a raw answer record.
func Record(sessionID, questionID string, value any) domain.RawAnswerRecord {
	return domain.RawAnswerRecord{SessionID: sessionID, QuestionID: questionID, Value: value}
}

// WriteIn builds a raw answer record carrying write-in text.
func WriteIn(sessionID, questionID string, value any, text string) domain.RawAnswerRecord {
	return domain.RawAnswerRecord{SessionID: sessionID, QuestionID: questionID, Value: value, OtherText: text}
}

// SampleSurvey returns one well-formed question per supported type. Question
// ids equal the type name.
func SampleSurvey() []domain.QuestionDefinition {
	return []domain.QuestionDefinition{
		Question("shortText", domain.TypeShortText),
		Question("longText", domain.TypeLongText),
		Question("singleChoice", domain.TypeSingleChoice, WithOptions("Red", "Green", "Blue"), WithOther(), WithNotApplicable()),
		Question("multiChoice", domain.TypeMultiChoice, WithOptions("Email", "Phone", "Chat"), WithOther()),
		Question("dropdown", domain.TypeDropdown, WithOptions("Small", "Medium", "Large")),
		Question("rating", domain.TypeRating),
		Question("nps", domain.TypeNPS),
		Question("slider", domain.TypeSlider, WithSlider(0, 100)),
		Question("matrix", domain.TypeMatrix, WithMatrix(
			[]string{"Speed", "Price", "Support"},
			[]string{"1", "2", "3", "4", "5"},
			true,
		)),
		Question("ranking", domain.TypeRanking, WithOptions("Alpha", "Beta", "Gamma", "Delta")),
		Question("heatmap", domain.TypeHeatmap),
		Question("maxDiff", domain.TypeMaxDiff, WithOptions("Cost", "Speed", "Quality", "Support")),
		Question("conjoint", domain.TypeConjoint, WithAttributes(
			domain.ConjointAttribute{Name: "Brand", Levels: []string{"Acme", "Globex"}},
			domain.ConjointAttribute{Name: "Price", Levels: []string{"$10", "$20", "$30"}},
		)),
		Question("cardSort", domain.TypeCardSort,
			WithOptions("Login", "Billing", "Search", "Profile"),
			WithCategories(true,
				domain.Category{ID: "account", Name: "Account"},
				domain.Category{ID: "money", Name: "Money"},
			),
		),
	}
}

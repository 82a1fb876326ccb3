// Package domain contains pure, dependency-free domain models and types
// for the survey statistics engine.
package domain

// QuestionType identifies how a question collects answers and therefore which
// aggregation strategy summarizes it.
type QuestionType string

// Supported question types.
const (
	TypeShortText    QuestionType = "shortText"
	TypeLongText     QuestionType = "longText"
	TypeSingleChoice QuestionType = "singleChoice"
	TypeMultiChoice  QuestionType = "multiChoice"
	TypeDropdown     QuestionType = "dropdown"
	TypeRating       QuestionType = "rating"
	TypeNPS          QuestionType = "nps"
	TypeSlider       QuestionType = "slider"
	TypeMatrix       QuestionType = "matrix"
	TypeRanking      QuestionType = "ranking"
	TypeHeatmap      QuestionType = "heatmap"
	TypeMaxDiff      QuestionType = "maxDiff"
	TypeConjoint     QuestionType = "conjoint"
	TypeCardSort     QuestionType = "cardSort"
)

// AllQuestionTypes lists every supported question type in declaration order.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{
		TypeShortText, TypeLongText,
		TypeSingleChoice, TypeMultiChoice, TypeDropdown,
		TypeRating, TypeNPS, TypeSlider,
		TypeMatrix, TypeRanking, TypeHeatmap,
		TypeMaxDiff, TypeConjoint, TypeCardSort,
	}
}

// IsValid reports whether t is one of the supported question types.
func (t QuestionType) IsValid() bool {
	for _, known := range AllQuestionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ConjointAttribute is one dimension of a conjoint profile together with the
// levels a respondent can be shown for it.
type ConjointAttribute struct {
	Name   string   `json:"name" yaml:"name" validate:"required"`
	Levels []string `json:"levels" yaml:"levels"`
}

// Category is a card sort bucket. Predefined categories come from the
// question author; user categories are invented by respondents while sorting.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// QuestionDefinition describes one survey question. It is treated as
// immutable for the duration of an aggregation run.
//
// Only the shape fields relevant to Type are consulted: Options for choice,
// ranking, maxDiff and card sort (where options are the cards), Matrix* for
// matrix questions, Slider* for sliders, CardSort* for card sorts and
// ConjointAttributes for conjoint tasks.
type QuestionDefinition struct {
	ID   string       `json:"id" yaml:"id" validate:"required"`
	Type QuestionType `json:"type" yaml:"type" validate:"required,questiontype"`

	Options            []string `json:"options,omitempty" yaml:"options,omitempty"`
	AllowOther         bool     `json:"allowOther,omitempty" yaml:"allow_other,omitempty"`
	AllowNotApplicable bool     `json:"allowNotApplicable,omitempty" yaml:"allow_not_applicable,omitempty"`

	MatrixRows     []string `json:"matrixRows,omitempty" yaml:"matrix_rows,omitempty"`
	MatrixColumns  []string `json:"matrixColumns,omitempty" yaml:"matrix_columns,omitempty"`
	MatrixIsRating bool     `json:"matrixIsRating,omitempty" yaml:"matrix_is_rating,omitempty"`

	// SliderMin and SliderMax are optional; nil means "use the observed
	// extreme" when building the slider histogram.
	SliderMin *float64 `json:"sliderMin,omitempty" yaml:"slider_min,omitempty"`
	SliderMax *float64 `json:"sliderMax,omitempty" yaml:"slider_max,omitempty"`

	CardSortCategories          []Category `json:"cardSortCategories,omitempty" yaml:"card_sort_categories,omitempty"`
	CardSortAllowUserCategories bool       `json:"cardSortAllowUserCategories,omitempty" yaml:"card_sort_allow_user_categories,omitempty"`

	ConjointAttributes []ConjointAttribute `json:"conjointAttributes,omitempty" yaml:"conjoint_attributes,omitempty" validate:"dive"`
}

// HasOption reports whether value is one of the question's declared options.
func (q QuestionDefinition) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Sentinels holds the reserved tokens that may appear inside an answer value
// to mean something outside the question's declared option list. They are
// passed explicitly to every aggregator that needs them.
type Sentinels struct {
	// Other marks a write-in choice; the text travels in RawAnswerRecord.OtherText.
	Other string `json:"other" yaml:"other" validate:"required,nefield=NotApplicable,nefield=Unassigned"`
	// NotApplicable marks an explicit "does not apply" choice.
	NotApplicable string `json:"notApplicable" yaml:"not_applicable" validate:"required,nefield=Unassigned"`
	// Unassigned is the card sort category id for cards left unsorted.
	Unassigned string `json:"unassigned" yaml:"unassigned" validate:"required"`
}

// Default sentinel tokens.
const (
	DefaultOtherSentinel         = "__other__"
	DefaultNotApplicableSentinel = "__na__"
	DefaultUnassignedSentinel    = "__unassigned__"
)

// DefaultSentinels returns the sentinel tokens used when no configuration
// overrides them.
func DefaultSentinels() Sentinels {
	return Sentinels{
		Other:         DefaultOtherSentinel,
		NotApplicable: DefaultNotApplicableSentinel,
		Unassigned:    DefaultUnassignedSentinel,
	}
}

// IsSentinel reports whether token is the Other or NotApplicable sentinel.
func (s Sentinels) IsSentinel(token string) bool {
	return token == s.Other || token == s.NotApplicable
}

package aggregators

import (
	"context"
	"strings"

	"github.com/ahrav/go-tally/infrastructure/derive"
	"github.com/ahrav/go-tally/infrastructure/normalize"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Aggregator = (*ChoiceAggregator)(nil)

// ChoiceAggregator summarizes singleChoice, dropdown and multiChoice
// questions. Each record is reduced to a set of selected tokens; tokens that
// are neither a declared option nor a sentinel are treated as stale options
// and dropped.
//
// Write-ins are counted once per record that selected the Other sentinel and
// supplied non-blank text, keyed by the literal trimmed text. Near-duplicate
// texts are additionally clustered into WriteInGroups.
//
// The aggregator is stateless and thread-safe.
type ChoiceAggregator struct {
	name   string
	config ChoiceConfig
}

// ChoiceConfig defines the configuration parameters for the ChoiceAggregator.
type ChoiceConfig struct {
	// Sentinels are the reserved Other and NotApplicable tokens.
	Sentinels domain.Sentinels `yaml:"sentinels" json:"sentinels"`

	// Delimiter separates selections in a delimited multi-select value.
	Delimiter string `yaml:"delimiter" json:"delimiter" validate:"required"`

	// WriteIns controls near-duplicate clustering of write-in texts.
	WriteIns WriteInGrouping `yaml:"write_ins" json:"write_ins"`
}

// DefaultChoiceConfig returns a ChoiceConfig with sensible defaults.
func DefaultChoiceConfig() ChoiceConfig {
	return ChoiceConfig{
		Sentinels: domain.DefaultSentinels(),
		Delimiter: ",",
		WriteIns:  DefaultWriteInGrouping(),
	}
}

// NewChoiceAggregator creates a new ChoiceAggregator with the specified
// configuration. It returns an error if the configuration is invalid.
func NewChoiceAggregator(name string, config ChoiceConfig) (*ChoiceAggregator, error) {
	if err := checkName(name, config); err != nil {
		return nil, err
	}
	return &ChoiceAggregator{name: name, config: config}, nil
}

// Name returns the unique identifier for this aggregator instance.
func (a *ChoiceAggregator) Name() string { return a.name }

// Empty returns choice statistics with every declared option, and every
// enabled sentinel, at zero.
func (a *ChoiceAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	return a.empty(q)
}

func (a *ChoiceAggregator) empty(q domain.QuestionDefinition) *domain.ChoiceStats {
	counts := seedCounts(q.Options)
	if q.AllowOther {
		counts[a.config.Sentinels.Other] = 0
	}
	if q.AllowNotApplicable {
		counts[a.config.Sentinels.NotApplicable] = 0
	}
	stats := &domain.ChoiceStats{
		Header:      domain.NewHeader(q),
		Counts:      counts,
		Percentages: make(map[string]float64, len(counts)),
		WriteIns:    make(map[string]int),
	}
	for k := range counts {
		stats.Percentages[k] = 0
	}
	return stats
}

// Aggregate folds the records into option counts and write-ins.
func (a *ChoiceAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if err := checkType(q, domain.TypeSingleChoice, domain.TypeDropdown, domain.TypeMultiChoice); err != nil {
		return nil, err
	}

	stats := a.empty(q)
	seen := newRespondents()
	sentinels := a.config.Sentinels

	for _, rec := range records {
		usable, choseOther := false, false
		for _, tok := range a.selection(q, rec.Value) {
			if !q.HasOption(tok) && !sentinels.IsSentinel(tok) {
				continue
			}
			stats.Counts[tok]++
			usable = true
			if tok == sentinels.Other {
				choseOther = true
			}
		}
		if choseOther {
			if text := strings.TrimSpace(rec.OtherText); text != "" {
				stats.WriteIns[text]++
			}
		}
		if usable {
			seen.add(rec.SessionID)
		}
	}

	stats.TotalResponses = seen.count()
	for tok, n := range stats.Counts {
		stats.Percentages[tok] = derive.Percentage(n, stats.TotalResponses)
	}
	stats.WriteInGroups = GroupWriteIns(stats.WriteIns, a.config.WriteIns)
	return stats, nil
}

// selection decodes a record value into its selected tokens. Single-select
// questions yield at most one token. A multi-select value that exactly
// matches an option or sentinel is a single selection even if it contains
// the delimiter.
func (a *ChoiceAggregator) selection(q domain.QuestionDefinition, v any) []string {
	s, isScalar := normalize.Scalar(v)
	if q.Type != domain.TypeMultiChoice {
		if isScalar {
			return []string{s}
		}
		if set := normalize.Set(v, a.config.Delimiter); len(set) > 0 {
			return set[:1]
		}
		return nil
	}
	if isScalar && (q.HasOption(s) || a.config.Sentinels.IsSentinel(s)) {
		return []string{s}
	}
	return normalize.Set(v, a.config.Delimiter)
}

// Validate checks if the aggregator is properly configured.
func (a *ChoiceAggregator) Validate() error {
	return checkName(a.name, a.config)
}

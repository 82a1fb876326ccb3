package application

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-tally/infrastructure/aggregators"
	"github.com/ahrav/go-tally/infrastructure/middleware"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.AggregatorRegistry = (*DefaultAggregatorRegistry)(nil)

// DefaultAggregatorRegistry implements the AggregatorRegistry interface. It
// maps each question type to the aggregator responsible for it and supports
// replacing bindings at runtime.
type DefaultAggregatorRegistry struct {
	// bindings maps question types to their aggregator.
	bindings map[domain.QuestionType]ports.Aggregator
	// mu protects concurrent access to the bindings map.
	mu sync.RWMutex
}

// NewDefaultAggregatorRegistry creates an empty registry.
func NewDefaultAggregatorRegistry() *DefaultAggregatorRegistry {
	return &DefaultAggregatorRegistry{bindings: make(map[domain.QuestionType]ports.Aggregator)}
}

// NewAggregatorRegistry creates a registry with the built-in aggregators
// configured from cfg and bound to every supported question type. Each
// aggregator is wrapped with mws, outermost first.
func NewAggregatorRegistry(cfg EngineConfig, mws ...middleware.Middleware) (*DefaultAggregatorRegistry, error) {
	r := NewDefaultAggregatorRegistry()
	if err := r.registerBuiltins(cfg, mws); err != nil {
		return nil, err
	}
	return r, nil
}

// builtin pairs a constructed aggregator with the question types it serves.
type builtin struct {
	agg   ports.Aggregator
	types []domain.QuestionType
}

// registerBuiltins constructs and registers the standard aggregators.
func (r *DefaultAggregatorRegistry) registerBuiltins(cfg EngineConfig, mws []middleware.Middleware) error {
	choice, err := aggregators.NewChoiceAggregator("choice", cfg.choiceConfig())
	if err != nil {
		return fmt.Errorf("failed to create choice aggregator: %w", err)
	}
	numeric, err := aggregators.NewNumericAggregator("numeric", cfg.numericConfig())
	if err != nil {
		return fmt.Errorf("failed to create numeric aggregator: %w", err)
	}
	cardSort, err := aggregators.NewCardSortAggregator("cardsort", cfg.cardSortConfig())
	if err != nil {
		return fmt.Errorf("failed to create cardsort aggregator: %w", err)
	}
	text, err := aggregators.NewTextAggregator("text")
	if err != nil {
		return fmt.Errorf("failed to create text aggregator: %w", err)
	}
	matrix, err := aggregators.NewMatrixAggregator("matrix")
	if err != nil {
		return fmt.Errorf("failed to create matrix aggregator: %w", err)
	}
	ranking, err := aggregators.NewRankingAggregator("ranking")
	if err != nil {
		return fmt.Errorf("failed to create ranking aggregator: %w", err)
	}
	maxDiff, err := aggregators.NewMaxDiffAggregator("maxdiff")
	if err != nil {
		return fmt.Errorf("failed to create maxdiff aggregator: %w", err)
	}
	conjoint, err := aggregators.NewConjointAggregator("conjoint")
	if err != nil {
		return fmt.Errorf("failed to create conjoint aggregator: %w", err)
	}
	heatmap, err := aggregators.NewHeatmapAggregator("heatmap")
	if err != nil {
		return fmt.Errorf("failed to create heatmap aggregator: %w", err)
	}

	builtins := []builtin{
		{choice, []domain.QuestionType{domain.TypeSingleChoice, domain.TypeMultiChoice, domain.TypeDropdown}},
		{numeric, []domain.QuestionType{domain.TypeRating, domain.TypeNPS, domain.TypeSlider}},
		{text, []domain.QuestionType{domain.TypeShortText, domain.TypeLongText}},
		{matrix, []domain.QuestionType{domain.TypeMatrix}},
		{ranking, []domain.QuestionType{domain.TypeRanking}},
		{maxDiff, []domain.QuestionType{domain.TypeMaxDiff}},
		{conjoint, []domain.QuestionType{domain.TypeConjoint}},
		{cardSort, []domain.QuestionType{domain.TypeCardSort}},
		{heatmap, []domain.QuestionType{domain.TypeHeatmap}},
	}
	for _, b := range builtins {
		if err := r.Register(middleware.Chain(b.agg, mws...), b.types...); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the aggregator bound to questionType.
func (r *DefaultAggregatorRegistry) Lookup(questionType domain.QuestionType) (ports.Aggregator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agg, ok := r.bindings[questionType]
	return agg, ok
}

// Register binds agg to every listed question type, replacing previous
// bindings for those types. Aggregator names are used as metric and span
// labels, so a different aggregator with an already registered name is
// rejected.
func (r *DefaultAggregatorRegistry) Register(agg ports.Aggregator, questionTypes ...domain.QuestionType) error {
	if agg == nil {
		return errors.New("aggregator cannot be nil")
	}
	if len(questionTypes) == 0 {
		return errors.New("at least one question type is required")
	}
	if err := agg.Validate(); err != nil {
		return fmt.Errorf("aggregator %s is invalid: %w", agg.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for t, existing := range r.bindings {
		if existing != agg && existing.Name() == agg.Name() && !slices.Contains(questionTypes, t) {
			return fmt.Errorf("%w: aggregator %q already serves %s", ports.ErrDuplicateRegistration, agg.Name(), t)
		}
	}
	for _, t := range questionTypes {
		if t == "" {
			return errors.New("question type cannot be empty")
		}
	}
	for _, t := range questionTypes {
		r.bindings[t] = agg
	}
	return nil
}

// SupportedTypes returns all registered question types, sorted.
func (r *DefaultAggregatorRegistry) SupportedTypes() []domain.QuestionType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.QuestionType, 0, len(r.bindings))
	for t := range r.bindings {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

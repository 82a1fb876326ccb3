package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/infrastructure/middleware"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
	"github.com/ahrav/go-tally/internal/testutils"
)

// fakeAggregator is a configurable ports.Aggregator for registry and engine
// tests.
type fakeAggregator struct {
	name        string
	validateErr error
	aggregate   func(q domain.QuestionDefinition, records []domain.RawAnswerRecord) (domain.QuestionStatistics, error)
	empty       func(q domain.QuestionDefinition) domain.QuestionStatistics
}

func (f *fakeAggregator) Name() string { return f.name }

func (f *fakeAggregator) Aggregate(
	_ context.Context,
	q domain.QuestionDefinition,
	records []domain.RawAnswerRecord,
) (domain.QuestionStatistics, error) {
	if f.aggregate == nil {
		return &domain.EmptyStats{Header: domain.NewHeader(q)}, nil
	}
	return f.aggregate(q, records)
}

func (f *fakeAggregator) Empty(q domain.QuestionDefinition) domain.QuestionStatistics {
	if f.empty == nil {
		return &domain.EmptyStats{Header: domain.NewHeader(q)}
	}
	return f.empty(q)
}

func (f *fakeAggregator) Validate() error { return f.validateErr }

var _ ports.Aggregator = (*fakeAggregator)(nil)

func TestNewAggregatorRegistry_BindsEveryType(t *testing.T) {
	registry, err := NewAggregatorRegistry(DefaultEngineConfig())
	require.NoError(t, err)

	assert.ElementsMatch(t, domain.AllQuestionTypes(), registry.SupportedTypes())

	wantNames := map[domain.QuestionType]string{
		domain.TypeSingleChoice: "choice",
		domain.TypeMultiChoice:  "choice",
		domain.TypeDropdown:     "choice",
		domain.TypeRating:       "numeric",
		domain.TypeNPS:          "numeric",
		domain.TypeSlider:       "numeric",
		domain.TypeShortText:    "text",
		domain.TypeLongText:     "text",
		domain.TypeMatrix:       "matrix",
		domain.TypeRanking:      "ranking",
		domain.TypeMaxDiff:      "maxdiff",
		domain.TypeConjoint:     "conjoint",
		domain.TypeCardSort:     "cardsort",
		domain.TypeHeatmap:      "heatmap",
	}
	for qt, name := range wantNames {
		agg, ok := registry.Lookup(qt)
		require.True(t, ok, qt)
		assert.Equal(t, name, agg.Name(), qt)
	}
}

func TestNewAggregatorRegistry_BuiltinsAreValid(t *testing.T) {
	registry, err := NewAggregatorRegistry(DefaultEngineConfig())
	require.NoError(t, err)

	for _, qt := range registry.SupportedTypes() {
		agg, ok := registry.Lookup(qt)
		require.True(t, ok, qt)
		assert.NoError(t, agg.Validate(), qt)
	}
}

func TestNewAggregatorRegistry_ConstructorErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *EngineConfig)
		wantMsg string
	}{
		{
			name:    "numeric",
			mutate:  func(cfg *EngineConfig) { cfg.SliderBins = 0 },
			wantMsg: "failed to create numeric aggregator",
		},
		{
			name:    "choice",
			mutate:  func(cfg *EngineConfig) { cfg.MultiSelectDelimiter = "" },
			wantMsg: "failed to create choice aggregator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(&cfg)

			registry, err := NewAggregatorRegistry(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, registry)
		})
	}
}

func TestNewAggregatorRegistry_AppliesMiddleware(t *testing.T) {
	rec := &testutils.MetricsRecorder{}
	registry, err := NewAggregatorRegistry(DefaultEngineConfig(), middleware.MetricsMiddleware(rec))
	require.NoError(t, err)

	agg, ok := registry.Lookup(domain.TypeRating)
	require.True(t, ok)

	q := testutils.Question("q1", domain.TypeRating)
	_, err = agg.Aggregate(context.Background(), q, []domain.RawAnswerRecord{testutils.Record("s1", "q1", 4)})
	require.NoError(t, err)

	counters := rec.Calls(middleware.MetricQuestionsAggregated)
	require.Len(t, counters, 1)
	assert.Equal(t, "numeric", counters[0].Labels[middleware.LabelAggregator])
}

func TestDefaultAggregatorRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, r *DefaultAggregatorRegistry)
		agg     ports.Aggregator
		types   []domain.QuestionType
		wantErr error
		errMsg  string
	}{
		{
			name:  "binds several types",
			agg:   &fakeAggregator{name: "fake"},
			types: []domain.QuestionType{domain.TypeRating, domain.TypeNPS},
		},
		{
			name:   "nil aggregator",
			agg:    nil,
			types:  []domain.QuestionType{domain.TypeRating},
			errMsg: "cannot be nil",
		},
		{
			name:   "no types",
			agg:    &fakeAggregator{name: "fake"},
			errMsg: "at least one question type",
		},
		{
			name:   "invalid aggregator",
			agg:    &fakeAggregator{name: "fake", validateErr: errors.New("broken")},
			types:  []domain.QuestionType{domain.TypeRating},
			errMsg: "broken",
		},
		{
			name:   "empty type",
			agg:    &fakeAggregator{name: "fake"},
			types:  []domain.QuestionType{""},
			errMsg: "cannot be empty",
		},
		{
			name: "name already used for another type",
			setup: func(t *testing.T, r *DefaultAggregatorRegistry) {
				require.NoError(t, r.Register(&fakeAggregator{name: "fake"}, domain.TypeShortText))
			},
			agg:     &fakeAggregator{name: "fake"},
			types:   []domain.QuestionType{domain.TypeRating},
			wantErr: ports.ErrDuplicateRegistration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefaultAggregatorRegistry()
			if tt.setup != nil {
				tt.setup(t, r)
			}

			err := r.Register(tt.agg, tt.types...)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				for _, qt := range tt.types {
					got, ok := r.Lookup(qt)
					require.True(t, ok)
					assert.Same(t, tt.agg, got)
				}
			}
		})
	}
}

func TestDefaultAggregatorRegistry_ReplaceBinding(t *testing.T) {
	r := NewDefaultAggregatorRegistry()
	first := &fakeAggregator{name: "first"}
	second := &fakeAggregator{name: "second"}

	require.NoError(t, r.Register(first, domain.TypeRating))
	require.NoError(t, r.Register(second, domain.TypeRating))

	got, ok := r.Lookup(domain.TypeRating)
	require.True(t, ok)
	assert.Same(t, second, got)

	// Re-registering the same instance under more types is allowed.
	require.NoError(t, r.Register(second, domain.TypeRating, domain.TypeNPS))
	assert.Equal(t, []domain.QuestionType{domain.TypeNPS, domain.TypeRating}, r.SupportedTypes())
}

func TestDefaultAggregatorRegistry_LookupMissing(t *testing.T) {
	r := NewDefaultAggregatorRegistry()
	_, ok := r.Lookup(domain.TypeHeatmap)
	assert.False(t, ok)
	assert.Empty(t, r.SupportedTypes())
}

func TestDefaultAggregatorRegistry_ConcurrentAccess(t *testing.T) {
	r := NewDefaultAggregatorRegistry()
	agg := &fakeAggregator{name: "shared"}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Register(agg, domain.TypeRating, domain.TypeSlider))
		}()
		go func() {
			defer wg.Done()
			r.Lookup(domain.TypeRating)
			r.SupportedTypes()
		}()
	}
	wg.Wait()

	got, ok := r.Lookup(domain.TypeSlider)
	require.True(t, ok)
	assert.Same(t, agg, got)
}

package testutils

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/ahrav/go-tally/internal/domain"
)

// Generator produces pseudo-random but reproducible answer records for a
// survey. Roughly one answer in ten is malformed or stale so that property
// tests exercise the discard paths as well as the happy path.
type Generator struct {
	rng       *rand.Rand
	sentinels domain.Sentinels
}

// NewGenerator creates a Generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		sentinels: domain.DefaultSentinels(),
	}
}

var words = []string{"fast", "slow", "great", "meh", "confusing", "love it", "  ", ""}

// Records generates answers from sessions respondents for every question.
// Some respondents skip questions and some answer a question twice.
func (g *Generator) Records(questions []domain.QuestionDefinition, sessions int) []domain.RawAnswerRecord {
	var out []domain.RawAnswerRecord
	for s := range sessions {
		session := fmt.Sprintf("session-%03d", s)
		for _, q := range questions {
			switch n := g.rng.IntN(10); {
			case n == 0:
				continue
			case n == 1:
				out = append(out, g.record(session, q))
			}
			out = append(out, g.record(session, q))
		}
	}
	return out
}

// Shuffle returns a shuffled copy of records.
func (g *Generator) Shuffle(records []domain.RawAnswerRecord) []domain.RawAnswerRecord {
	out := make([]domain.RawAnswerRecord, len(records))
	copy(out, records)
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (g *Generator) record(session string, q domain.QuestionDefinition) domain.RawAnswerRecord {
	rec := Record(session, q.ID, g.value(q))
	if q.AllowOther && g.rng.IntN(3) == 0 {
		rec.OtherText = g.pick(words)
	}
	return rec
}

func (g *Generator) pick(from []string) string {
	if len(from) == 0 {
		return ""
	}
	return from[g.rng.IntN(len(from))]
}

func (g *Generator) junk() any {
	return []any{"not json", nil, 17, "{broken", map[string]any{}}[g.rng.IntN(5)]
}

func (g *Generator) value(q domain.QuestionDefinition) any {
	if g.rng.IntN(10) == 0 {
		return g.junk()
	}

	switch q.Type {
	case domain.TypeShortText, domain.TypeLongText:
		return g.pick(words)

	case domain.TypeSingleChoice, domain.TypeDropdown:
		return g.pick(g.choiceTokens(q))

	case domain.TypeMultiChoice:
		tokens := g.choiceTokens(q)
		var picked []string
		for _, tok := range tokens {
			if g.rng.IntN(2) == 0 {
				picked = append(picked, tok)
			}
		}
		if g.rng.IntN(2) == 0 {
			return strings.Join(picked, ",")
		}
		list := make([]any, len(picked))
		for i, p := range picked {
			list[i] = p
		}
		return list

	case domain.TypeRating:
		return g.rng.IntN(5) + 1

	case domain.TypeNPS:
		return fmt.Sprint(g.rng.IntN(11))

	case domain.TypeSlider:
		return g.rng.Float64()*120 - 10

	case domain.TypeMatrix:
		answer := make(map[string]any)
		for _, row := range q.MatrixRows {
			if g.rng.IntN(4) == 0 {
				continue
			}
			answer[row] = g.pick(append(slices.Clone(q.MatrixColumns), "stale"))
		}
		return answer

	case domain.TypeRanking:
		order := make([]any, 0, len(q.Options))
		for _, i := range g.rng.Perm(len(q.Options)) {
			order = append(order, q.Options[i])
		}
		return order

	case domain.TypeHeatmap:
		clicks := make([]any, g.rng.IntN(4))
		for i := range clicks {
			clicks[i] = map[string]any{"x": g.rng.Float64()*1.2 - 0.1, "y": g.rng.Float64()}
		}
		return clicks

	case domain.TypeMaxDiff:
		return map[string]any{"best": g.pick(q.Options), "worst": g.pick(q.Options)}

	case domain.TypeConjoint:
		profile := make(map[string]any)
		for _, attr := range q.ConjointAttributes {
			profile[attr.Name] = g.pick(attr.Levels)
		}
		return profile

	case domain.TypeCardSort:
		categories := []string{g.sentinels.Unassigned, "custom-" + fmt.Sprint(g.rng.IntN(3))}
		for _, c := range q.CardSortCategories {
			categories = append(categories, c.ID)
		}
		assignments := make(map[string]any)
		for _, card := range q.Options {
			if g.rng.IntN(5) == 0 {
				continue
			}
			assignments[card] = g.pick(categories)
		}
		return map[string]any{
			"assignments": assignments,
			"userCategories": []any{
				map[string]any{"id": categories[1], "name": "Custom " + categories[1]},
			},
		}

	default:
		return g.pick(words)
	}
}

// choiceTokens lists the declared options, the enabled sentinels and one
// stale option that aggregators must discard.
func (g *Generator) choiceTokens(q domain.QuestionDefinition) []string {
	tokens := append([]string{}, q.Options...)
	if q.AllowOther {
		tokens = append(tokens, g.sentinels.Other)
	}
	if q.AllowNotApplicable {
		tokens = append(tokens, g.sentinels.NotApplicable)
	}
	return append(tokens, "retired option")
}

package aggregators

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-tally/internal/domain"
)

// WriteInGrouping controls clustering of near-identical write-in texts.
type WriteInGrouping struct {
	// Similarity is the minimum normalized Levenshtein similarity (0.0-1.0)
	// between a text and its group representative. Zero disables grouping.
	Similarity float64 `yaml:"group_similarity" json:"group_similarity" validate:"min=0,max=1"`

	// CaseSensitive disables Unicode case folding before comparison.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`
}

// DefaultWriteInGrouping returns the default clustering settings.
func DefaultWriteInGrouping() WriteInGrouping {
	return WriteInGrouping{Similarity: 0.8}
}

// GroupWriteIns clusters write-in texts greedily. Texts are visited by
// descending count, then lexically; each ungrouped text becomes a
// representative and absorbs every later ungrouped text within the
// configured similarity. Groups are returned by descending count, then
// representative. The result depends only on the map contents.
func GroupWriteIns(writeIns map[string]int, cfg WriteInGrouping) []domain.WriteInGroup {
	if cfg.Similarity <= 0 || len(writeIns) == 0 {
		return nil
	}

	type entry struct {
		text   string
		folded string
		count  int
	}

	// cases.Caser is stateful, so each call gets its own folder.
	folder := cases.Fold()
	entries := make([]entry, 0, len(writeIns))
	for text, n := range writeIns {
		folded := text
		if !cfg.CaseSensitive {
			folded = folder.String(text)
		}
		entries = append(entries, entry{text: text, folded: folded, count: n})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.text, b.text)
	})

	grouped := make([]bool, len(entries))
	var groups []domain.WriteInGroup
	for i, rep := range entries {
		if grouped[i] {
			continue
		}
		grouped[i] = true
		group := domain.WriteInGroup{
			Representative: rep.text,
			Members:        []string{rep.text},
			Count:          rep.count,
		}
		for j := i + 1; j < len(entries); j++ {
			if grouped[j] {
				continue
			}
			if similarity(rep.folded, entries[j].folded) >= cfg.Similarity {
				grouped[j] = true
				group.Members = append(group.Members, entries[j].text)
				group.Count += entries[j].count
			}
		}
		slices.Sort(group.Members)
		groups = append(groups, group)
	}

	slices.SortFunc(groups, func(a, b domain.WriteInGroup) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Representative, b.Representative)
	})
	return groups
}

// similarity returns 1 - distance/maxRunes, in [0, 1].
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	maxLen := max(utf8.RuneCountInString(s1), utf8.RuneCountInString(s2))
	if maxLen == 0 {
		return 1.0
	}
	sim := 1.0 - float64(levenshtein.ComputeDistance(s1, s2))/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

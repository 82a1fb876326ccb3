package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/ahrav/go-tally/internal/domain"
)

// MatrixCell is one row's answer in a matrix question.
type MatrixCell struct {
	// Columns holds the selected column labels.
	Columns []string
	// Single is true for the radio form, where the row held one scalar
	// column label rather than a list.
	Single bool
}

// Matrix decodes a matrix answer: an object from row label to either a single
// column label or a list of column labels.
func Matrix(v any) map[string]MatrixCell {
	obj := Decode(v, KindMap)
	out := make(map[string]MatrixCell)
	obj.ForEach(func(key, cell gjson.Result) bool {
		row := key.String()
		if cell.IsArray() {
			cols := dedupe(listStrings(cell))
			if len(cols) > 0 {
				out[row] = MatrixCell{Columns: cols}
			}
			return true
		}
		if col, ok := resultString(cell); ok {
			out[row] = MatrixCell{Columns: []string{col}, Single: true}
		}
		return true
	})
	return out
}

// Profiles decodes conjoint task answers. A single object is one task; a list
// of objects is several tasks. Each task maps attribute name to the chosen
// level.
func Profiles(v any) []map[string]string {
	parsed, ok := DecodeAny(v)
	if !ok {
		return nil
	}
	var tasks []gjson.Result
	if parsed.IsObject() {
		tasks = []gjson.Result{parsed}
	} else {
		tasks = parsed.Array()
	}

	out := make([]map[string]string, 0, len(tasks))
	for _, task := range tasks {
		if !task.IsObject() {
			continue
		}
		profile := make(map[string]string)
		task.ForEach(func(key, level gjson.Result) bool {
			if s, ok := resultString(level); ok {
				profile[key.String()] = s
			}
			return true
		})
		out = append(out, profile)
	}
	return out
}

// BestWorst is one best-worst scaling choice. Empty strings mean no pick.
type BestWorst struct {
	Best  string
	Worst string
}

// BestWorstChoices decodes maxDiff answers. A single object is one task; a
// list of objects is several tasks.
func BestWorstChoices(v any) []BestWorst {
	parsed, ok := DecodeAny(v)
	if !ok {
		return nil
	}
	var tasks []gjson.Result
	if parsed.IsObject() {
		tasks = []gjson.Result{parsed}
	} else {
		tasks = parsed.Array()
	}

	out := make([]BestWorst, 0, len(tasks))
	for _, task := range tasks {
		if !task.IsObject() {
			continue
		}
		best, _ := resultString(task.Get("best"))
		worst, _ := resultString(task.Get("worst"))
		if best == "" && worst == "" {
			continue
		}
		out = append(out, BestWorst{Best: best, Worst: worst})
	}
	return out
}

// CardSortAnswer is one respondent's card placements.
type CardSortAnswer struct {
	// Assignments maps card label to category id.
	Assignments map[string]string
	// UserCategories are categories the respondent created, in answer order.
	UserCategories []domain.Category
}

// CardSort decodes a card sort answer of the form
// {"assignments": {card: categoryId}, "userCategories": [{id, name}]}.
func CardSort(v any) CardSortAnswer {
	obj := Decode(v, KindMap)
	answer := CardSortAnswer{Assignments: make(map[string]string)}

	assignments := obj.Get("assignments")
	if assignments.IsObject() {
		assignments.ForEach(func(card, category gjson.Result) bool {
			if id, ok := resultString(category); ok {
				answer.Assignments[card.String()] = id
			}
			return true
		})
	}

	categories := obj.Get("userCategories")
	if categories.IsArray() {
		categories.ForEach(func(_, item gjson.Result) bool {
			if !item.IsObject() {
				return true
			}
			id, ok := resultString(item.Get("id"))
			if !ok {
				return true
			}
			name, _ := resultString(item.Get("name"))
			answer.UserCategories = append(answer.UserCategories, domain.Category{ID: id, Name: name})
			return true
		})
	}
	return answer
}

// Points decodes heatmap clicks: a list of {x, y} objects. Points whose
// coordinates are not numeric are dropped; range checks are left to the
// caller.
func Points(v any) []domain.Point {
	list := Decode(v, KindList)
	var out []domain.Point
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		x, okX := coordinate(item.Get("x"))
		y, okY := coordinate(item.Get("y"))
		if okX && okY {
			out = append(out, domain.Point{X: x, Y: y})
		}
		return true
	})
	return out
}

func coordinate(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		return Number(r.Str)
	default:
		return 0, false
	}
}

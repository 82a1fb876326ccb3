package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-tally/internal/domain"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		kind    Kind
		wantRaw string
	}{
		{name: "json array string", value: `["a","b"]`, kind: KindList, wantRaw: `["a","b"]`},
		{name: "json object string", value: ` {"r1":"c1"} `, kind: KindMap, wantRaw: `{"r1":"c1"}`},
		{name: "decoded slice", value: []any{"a", "b"}, kind: KindList, wantRaw: `["a","b"]`},
		{name: "decoded map", value: map[string]any{"k": "v"}, kind: KindMap, wantRaw: `{"k":"v"}`},
		{name: "raw message", value: json.RawMessage(`[1,2]`), kind: KindList, wantRaw: `[1,2]`},
		{name: "unparseable falls back to empty list", value: `[1,2`, kind: KindList, wantRaw: `[]`},
		{name: "unparseable falls back to empty map", value: `{oops`, kind: KindMap, wantRaw: `{}`},
		{name: "object where list expected", value: `{"a":1}`, kind: KindList, wantRaw: `[]`},
		{name: "list where object expected", value: `[1]`, kind: KindMap, wantRaw: `{}`},
		{name: "nil value", value: nil, kind: KindMap, wantRaw: `{}`},
		{name: "blank string", value: "   ", kind: KindList, wantRaw: `[]`},
		{name: "scalar json", value: `42`, kind: KindList, wantRaw: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.value, tt.kind)
			assert.Equal(t, tt.wantRaw, got.Raw)
		})
	}
}

type score uint8

func TestScalarAndNumber(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantStr   string
		wantStrOK bool
		wantNum   float64
		wantNumOK bool
	}{
		{name: "trimmed string", value: "  hello ", wantStr: "hello", wantStrOK: true},
		{name: "numeric string", value: " 7 ", wantStr: "7", wantStrOK: true, wantNum: 7, wantNumOK: true},
		{name: "float", value: 4.5, wantStr: "4.5", wantStrOK: true, wantNum: 4.5, wantNumOK: true},
		{name: "int", value: 10, wantStr: "10", wantStrOK: true, wantNum: 10, wantNumOK: true},
		{name: "json number", value: json.Number("3"), wantStr: "3", wantStrOK: true, wantNum: 3, wantNumOK: true},
		{name: "uint8", value: uint8(5), wantStr: "5", wantStrOK: true, wantNum: 5, wantNumOK: true},
		{name: "uint64", value: uint64(9), wantStr: "9", wantStrOK: true, wantNum: 9, wantNumOK: true},
		{name: "int16", value: int16(-3), wantStr: "-3", wantStrOK: true, wantNum: -3, wantNumOK: true},
		{name: "int32", value: int32(8), wantStr: "8", wantStrOK: true, wantNum: 8, wantNumOK: true},
		{name: "float32", value: float32(2.5), wantStr: "2.5", wantStrOK: true, wantNum: 2.5, wantNumOK: true},
		{name: "named integer", value: score(7), wantStr: "7", wantStrOK: true, wantNum: 7, wantNumOK: true},
		{name: "bool", value: true, wantStr: "true", wantStrOK: true},
		{name: "struct is not a scalar", value: struct{ X int }{1}, wantStrOK: false},
		{name: "blank", value: "  ", wantStrOK: false},
		{name: "nil", value: nil, wantStrOK: false},
		{name: "non numeric", value: "abc", wantStr: "abc", wantStrOK: true},
		{name: "nan string is not a number", value: "NaN", wantStr: "NaN", wantStrOK: true},
		{name: "composite is not a scalar", value: []any{"a"}, wantStrOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Scalar(tt.value)
			assert.Equal(t, tt.wantStrOK, ok)
			if ok {
				assert.Equal(t, tt.wantStr, s)
			}

			n, ok := Number(tt.value)
			assert.Equal(t, tt.wantNumOK, ok)
			if ok {
				assert.Equal(t, tt.wantNum, n)
			}
		})
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "json array", value: `["A","__other__"]`, want: []string{"A", "__other__"}},
		{name: "delimited", value: "A, B ,C", want: []string{"A", "B", "C"}},
		{name: "single token", value: "A", want: []string{"A"}},
		{name: "duplicates removed", value: []any{"A", "A", "B"}, want: []string{"A", "B"}},
		{name: "string slice", value: []string{"B", "A"}, want: []string{"B", "A"}},
		{name: "blank entries dropped", value: "A,,B, ", want: []string{"A", "B"}},
		{name: "number", value: 3, want: []string{"3"}},
		{name: "nil", value: nil, want: nil},
		{name: "empty string", value: "", want: nil},
		{name: "broken json treated as text", value: `["A"`, want: []string{`["A"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Set(tt.value, ",")
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"Y", "X", "Z"}, StringList(`["Y","X","Z"]`))
	assert.Equal(t, []string{"Y", "2"}, StringList([]any{"Y", map[string]any{"bad": true}, 2}))
	assert.Empty(t, StringList(`not json`))
	assert.Empty(t, StringList(`{"a":"b"}`))
}

func TestMatrix(t *testing.T) {
	got := Matrix(`{"Speed":"4","Price":["Good","Fair","Good"],"Support":5,"Empty":[],"Nested":{"x":1}}`)

	assert.Equal(t, map[string]MatrixCell{
		"Speed":   {Columns: []string{"4"}, Single: true},
		"Price":   {Columns: []string{"Good", "Fair"}},
		"Support": {Columns: []string{"5"}, Single: true},
	}, got)

	assert.Empty(t, Matrix(`["not","a","map"]`))
	assert.Empty(t, Matrix(`{broken`))
}

func TestProfiles(t *testing.T) {
	t.Run("single task object", func(t *testing.T) {
		got := Profiles(`{"Brand":"Acme","Price":"$10"}`)
		assert.Equal(t, []map[string]string{{"Brand": "Acme", "Price": "$10"}}, got)
	})

	t.Run("list of tasks", func(t *testing.T) {
		got := Profiles([]any{
			map[string]any{"Brand": "Acme"},
			"garbage",
			map[string]any{"Brand": "Zeta", "Price": 10},
		})
		assert.Equal(t, []map[string]string{
			{"Brand": "Acme"},
			{"Brand": "Zeta", "Price": "10"},
		}, got)
	})

	t.Run("malformed", func(t *testing.T) {
		assert.Empty(t, Profiles(`{"Brand":`))
		assert.Empty(t, Profiles("plain"))
	})
}

func TestBestWorstChoices(t *testing.T) {
	assert.Equal(t, []BestWorst{{Best: "A", Worst: "C"}}, BestWorstChoices(`{"best":"A","worst":"C"}`))
	assert.Equal(t, []BestWorst{{Best: "A"}, {Worst: "B"}},
		BestWorstChoices(`[{"best":"A","worst":null},{"worst":"B"},{"best":null}]`))
	assert.Empty(t, BestWorstChoices(`oops`))
}

func TestCardSort(t *testing.T) {
	got := CardSort(`{
		"assignments": {"Home": "nav", "Blog": "u1", "Bad": {"x": 1}},
		"userCategories": [{"id": "u1", "name": "Reading"}, {"name": "no id"}, "junk"]
	}`)

	assert.Equal(t, map[string]string{"Home": "nav", "Blog": "u1"}, got.Assignments)
	assert.Equal(t, []domain.Category{{ID: "u1", Name: "Reading"}}, got.UserCategories)

	empty := CardSort(`[1,2,3]`)
	assert.Empty(t, empty.Assignments)
	assert.Empty(t, empty.UserCategories)
}

func TestPoints(t *testing.T) {
	got := Points(`[{"x":1.5,"y":0.2},{"x":0.5,"y":0.5},{"x":"0.25","y":"0.75"},{"x":"a","y":1},{"y":1},7]`)

	assert.Equal(t, []domain.Point{
		{X: 1.5, Y: 0.2},
		{X: 0.5, Y: 0.5},
		{X: 0.25, Y: 0.75},
	}, got)
	assert.Empty(t, Points(`{"x":0.1,"y":0.1}`))
}

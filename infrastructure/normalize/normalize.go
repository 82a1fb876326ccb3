// Package normalize decodes raw answer values into the shapes the
// aggregators consume. Decoding is best-effort: a malformed value degrades to
// the neutral empty shape of its kind and never produces an error, so one
// corrupt respondent record cannot abort a whole question.
package normalize

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Kind is the composite shape a decoded value is expected to have.
type Kind int

// Composite shapes understood by Decode.
const (
	// KindList expects a JSON array; its neutral value is [].
	KindList Kind = iota
	// KindMap expects a JSON object; its neutral value is {}.
	KindMap
)

var (
	emptyList = gjson.Parse("[]")
	emptyMap  = gjson.Parse("{}")
)

// Neutral returns the empty shape of kind.
func Neutral(kind Kind) gjson.Result {
	if kind == KindMap {
		return emptyMap
	}
	return emptyList
}

// Decode is the single safe-decode utility shared by every composite
// normalizer. The raw value may already be the target shape (a decoded
// slice or map) or a string holding JSON. When the value is absent,
// unparseable, or of the wrong shape the neutral value for kind is returned.
func Decode(v any, kind Kind) gjson.Result {
	raw, ok := rawJSON(v)
	if !ok || !gjson.Valid(raw) {
		return Neutral(kind)
	}
	parsed := gjson.Parse(raw)
	switch {
	case kind == KindList && parsed.IsArray():
		return parsed
	case kind == KindMap && parsed.IsObject():
		return parsed
	default:
		return Neutral(kind)
	}
}

// DecodeAny parses v as either an object or an array. It reports false when
// v is neither.
func DecodeAny(v any) (gjson.Result, bool) {
	raw, ok := rawJSON(v)
	if !ok || !gjson.Valid(raw) {
		return gjson.Result{}, false
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() && !parsed.IsObject() {
		return gjson.Result{}, false
	}
	return parsed, true
}

// rawJSON renders v as JSON text without interpreting it.
func rawJSON(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case []byte:
		s := strings.TrimSpace(string(val))
		return s, s != ""
	case json.RawMessage:
		s := strings.TrimSpace(string(val))
		return s, s != ""
	default:
		data, err := gojson.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

// Scalar returns the trimmed string form of a scalar answer. It reports false
// for absent or blank values and for composites.
func Scalar(v any) (string, bool) {
	var s string
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		s = val
	case []byte:
		s = string(val)
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case bool:
		s = strconv.FormatBool(val)
	default:
		var ok bool
		if s, ok = reflectScalar(reflect.ValueOf(val)); !ok {
			return "", false
		}
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// reflectScalar renders the remaining basic kinds, including every sized
// integer and named types built on them.
func reflectScalar(rv reflect.Value) (string, bool) {
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		return "", false
	}
}

// Number parses a scalar answer as a finite float. Non-numeric values, NaN
// and infinities report false.
func Number(v any) (float64, bool) {
	s, ok := Scalar(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Set decodes a multi-select answer into its distinct selected tokens in
// first-seen order. The value may be a decoded list, a JSON array string or
// a string delimited by delim; a plain string without the delimiter is a
// single selection.
func Set(v any, delim string) []string {
	var tokens []string
	switch val := v.(type) {
	case nil:
		return nil
	case string, []byte, json.RawMessage:
		s, _ := rawJSON(val)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") && gjson.Valid(s) {
			tokens = listStrings(gjson.Parse(s))
		} else if delim != "" && strings.Contains(s, delim) {
			tokens = strings.Split(s, delim)
		} else {
			tokens = []string{s}
		}
	default:
		if s, ok := Scalar(val); ok {
			tokens = []string{s}
		} else {
			tokens = listStrings(Decode(val, KindList))
		}
	}
	return dedupe(tokens)
}

// StringList decodes an ordered list of labels, such as a ranking. Elements
// that are not scalars are dropped.
func StringList(v any) []string {
	return listStrings(Decode(v, KindList))
}

func listStrings(list gjson.Result) []string {
	var out []string
	list.ForEach(func(_, item gjson.Result) bool {
		if s, ok := resultString(item); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// resultString returns the trimmed text of a scalar JSON value.
func resultString(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		s := strings.TrimSpace(r.String())
		return s, s != ""
	default:
		return "", false
	}
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// JSONOp is a JSON filter operator.
type JSONOp uint8

// JSON operators, in canonical order.
const (
	JSONEquals JSONOp = iota + 1
	JSONNot
	JSONStringContains
	JSONStringStartsWith
	JSONStringEndsWith
	JSONArrayContains
	JSONArrayStartsWith
	JSONArrayEndsWith
)

var jsonOpNames = [...]string{
	JSONEquals:           "equals",
	JSONNot:              "not",
	JSONStringContains:   "string_contains",
	JSONStringStartsWith: "string_starts_with",
	JSONStringEndsWith:   "string_ends_with",
	JSONArrayContains:    "array_contains",
	JSONArrayStartsWith:  "array_starts_with",
	JSONArrayEndsWith:    "array_ends_with",
}

// String returns the input name of the operator.
func (o JSONOp) String() string {
	if o > 0 && int(o) < len(jsonOpNames) {
		return jsonOpNames[o]
	}
	return "JSONOp(" + strconv.Itoa(int(o)) + ")"
}

// ParseJSONOp returns the operator with the given input name.
func ParseJSONOp(name string) (JSONOp, bool) {
	for i, n := range jsonOpNames {
		if i > 0 && n == name {
			return JSONOp(i), true
		}
	}
	return 0, false
}

// JSONCond is one operator of a JSON filter. Value is a JSON value, or a
// JSONNull sentinel for JSONEquals and JSONNot.
type JSONCond struct {
	Op    JSONOp
	Value any
}

// JSONFilter is a conjunction of operators applied to a JSON field, or to the
// value found at Path inside it.
type JSONFilter struct {
	Field string
	Path  []string
	Conds []JSONCond
}

func (*JSONFilter) node() {}

// String returns the filter in the form `meta_data["a"] == "x"`.
func (f *JSONFilter) String() string {
	ref := f.Field
	if len(f.Path) > 0 {
		quoted := make([]string, len(f.Path))
		for i, p := range f.Path {
			quoted[i] = strconv.Quote(p)
		}
		ref += "[" + strings.Join(quoted, ",") + "]"
	}
	parts := make([]string, 0, len(f.Conds))
	for _, c := range f.Conds {
		switch c.Op {
		case JSONEquals:
			parts = append(parts, ref+" == "+FormatValue(c.Value))
		case JSONNot:
			parts = append(parts, ref+" != "+FormatValue(c.Value))
		default:
			parts = append(parts, call(c.Op.String(), ref, c.Value))
		}
	}
	return strings.Join(parts, " && ")
}

// NormalizeJSON converts a JSON document into its canonical Go form: objects
// become map[string]any, arrays []any, integral numbers int64 and other
// numbers float64. Values of other Go types are passed through encoding/json.
func NormalizeJSON(v any) (any, error) {
	switch v := v.(type) {
	case nil, string, bool, int64:
		return v, nil
	case float64:
		return normalizeNumber(v)
	case float32:
		return normalizeNumber(float64(v))
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v.String())
		}
		return normalizeNumber(f)
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			n, err := NormalizeJSON(e)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return m, nil
	case []any:
		l := make([]any, len(v))
		for i, e := range v {
			n, err := NormalizeJSON(e)
			if err != nil {
				return nil, err
			}
			l[i] = n
		}
		return l, nil
	case JSONNull:
		return nil, fmt.Errorf("unexpected %s sentinel inside a JSON value", v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("value of type %T is not JSON: %w", v, err)
		}
		dec := json.NewDecoder(strings.NewReader(string(b)))
		dec.UseNumber()
		var out any
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		return NormalizeJSON(out)
	}
}

func normalizeNumber(f float64) (any, error) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return nil, fmt.Errorf("%v is not a JSON number", f)
	case f == math.Trunc(f) && math.Abs(f) < 1<<53:
		return int64(f), nil
	default:
		return f, nil
	}
}

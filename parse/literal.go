package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/veloxq/schema/field"
)

// valueType describes the literals a filter or assignment accepts.
type valueType struct {
	kind     field.Kind
	format   string
	values   []string // enum values.
	nillable bool
}

func typeOf(f *field.Descriptor) valueType {
	return valueType{kind: f.Kind, format: f.Format, values: f.Values, nillable: f.Nillable}
}

// coerce checks that v is a literal of kind t and returns its normalized
// form. Nil is handled by callers.
func coerce(t valueType, v any) (any, error) {
	switch t.kind {
	case field.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(t, v)
		}
		if t.format == field.FormatUUID {
			u, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%q is not a uuid", s)
			}
			return u.String(), nil
		}
		return s, nil
	case field.KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(t, v)
		}
		if !slices.Contains(t.values, s) {
			return nil, fmt.Errorf("%q is not one of %q", s, t.values)
		}
		return s, nil
	case field.KindInt:
		return toInt(t, v)
	case field.KindFloat:
		return toFloat(t, v)
	case field.KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(t, v)
		}
		return b, nil
	case field.KindTime:
		switch v := v.(type) {
		case time.Time:
			return v.UTC(), nil
		case string:
			tm, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("%q is not an RFC 3339 datetime", v)
			}
			return tm.UTC(), nil
		default:
			return nil, mismatch(t, v)
		}
	default:
		return nil, fmt.Errorf("%s values cannot be compared", t.kind)
	}
}

func toInt(t valueType, v any) (any, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt(v)
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v.String())
		}
		return floatToInt(f)
	default:
		return nil, mismatch(t, v)
	}
}

func uintToInt(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("%d overflows int", u)
	}
	return int64(u), nil
}

func floatToInt(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("%v overflows int", f)
	}
	return int64(f), nil
}

func toFloat(t valueType, v any) (any, error) {
	var f float64
	switch v := v.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v.String())
		}
		f = n
	default:
		return nil, mismatch(t, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a finite number", f)
	}
	return f, nil
}

func mismatch(t valueType, v any) error {
	return fmt.Errorf("expected %s, got %s", t.kind, typeName(v))
}

// typeName names the input kind of v the way it appears in a JSON document.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return "number"
	case time.Time:
		return "datetime"
	case []any:
		return "list"
	case map[string]any, map[any]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

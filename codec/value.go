package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/syssam/veloxq/query"
)

// Value types of the envelope.
const (
	valueNull     = "null"
	valueString   = "string"
	valueInt      = "int"
	valueFloat    = "float"
	valueBool     = "bool"
	valueTime     = "datetime"
	valueList     = "list"
	valueSentinel = "sentinel"
	valueJSON     = "json"
)

// value is a literal tagged with its type, so that decoding restores the Go
// type the parser produced regardless of the wire format's number model.
type value struct {
	Type  string   `json:"type" msgpack:"type"`
	Value any      `json:"value" msgpack:"value"`
	Items []*value `json:"items,omitempty" msgpack:"items,omitempty"`
}

func encodeValue(v any) *value {
	switch v := v.(type) {
	case nil:
		return &value{Type: valueNull}
	case string:
		return &value{Type: valueString, Value: v}
	case int64:
		return &value{Type: valueInt, Value: v}
	case float64:
		return &value{Type: valueFloat, Value: v}
	case bool:
		return &value{Type: valueBool, Value: v}
	case time.Time:
		return &value{Type: valueTime, Value: v.UTC().Format(time.RFC3339Nano)}
	case query.JSONNull:
		return &value{Type: valueSentinel, Value: v.String()}
	case []any:
		out := &value{Type: valueList, Items: make([]*value, len(v))}
		for i, e := range v {
			out.Items[i] = encodeValue(e)
		}
		return out
	default:
		// Normalized JSON documents: objects and nested arrays.
		return &value{Type: valueJSON, Value: v}
	}
}

func (v *value) decode() (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Type {
	case valueNull:
		return nil, nil
	case valueString:
		s, ok := v.Value.(string)
		if !ok {
			return nil, fmt.Errorf("codec: expected string, got %T", v.Value)
		}
		return s, nil
	case valueInt:
		return toInt(v.Value)
	case valueFloat:
		return toFloat(v.Value)
	case valueBool:
		b, ok := v.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("codec: expected bool, got %T", v.Value)
		}
		return b, nil
	case valueTime:
		s, ok := v.Value.(string)
		if !ok {
			return nil, fmt.Errorf("codec: expected datetime string, got %T", v.Value)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("codec: %w", err)
		}
		return t.UTC(), nil
	case valueSentinel:
		s, _ := v.Value.(string)
		n, ok := query.ParseJSONNull(s)
		if !ok {
			return nil, fmt.Errorf("codec: unknown sentinel %q", s)
		}
		return n, nil
	case valueList:
		out := make([]any, len(v.Items))
		for i, e := range v.Items {
			d, err := e.decode()
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case valueJSON:
		doc, err := query.NormalizeJSON(v.Value)
		if err != nil {
			return nil, fmt.Errorf("codec: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("codec: unknown value type %q", v.Type)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("codec: %d overflows int64", n)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("codec: %w", err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("codec: expected integer, got %T", v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("codec: %w", err)
		}
		return f, nil
	default:
		i, err := toInt(v)
		if err != nil {
			return 0, fmt.Errorf("codec: expected number, got %T", v)
		}
		return float64(i), nil
	}
}

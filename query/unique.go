package query

import "strings"

// UniqueKey identifies exactly one row.
type UniqueKey struct {
	Name     string   // field name, or compound key name.
	Fields   []string // member fields in key order.
	Values   []any    // normalized values, parallel to Fields.
	Primary  bool
	Compound bool
}

// Value returns the value supplied for the member field.
func (k UniqueKey) Value(field string) (any, bool) {
	for i, f := range k.Fields {
		if f == field {
			return k.Values[i], true
		}
	}
	return nil, false
}

// String returns the key in the form `identifier_token(identifier: "a", token: "b")`
// or `trip_id == "t1"`.
func (k UniqueKey) String() string {
	if !k.Compound {
		return k.Name + " == " + FormatValue(k.Values[0])
	}
	parts := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		parts[i] = f + ": " + FormatValue(k.Values[i])
	}
	return k.Name + "(" + strings.Join(parts, ", ") + ")"
}

// UniqueLookup is the identification chosen for a single-row operation.
// Residual holds the other complete identifications present in the input;
// executors must apply them as additional equality filters.
type UniqueLookup struct {
	Key      UniqueKey
	Residual []UniqueKey
}

// String returns the chosen key followed by the residual keys.
func (l *UniqueLookup) String() string {
	s := l.Key.String()
	for _, r := range l.Residual {
		s += " && " + r.String()
	}
	return s
}

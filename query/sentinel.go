package query

import "fmt"

// JSONNull distinguishes the ways a JSON field can be null.
type JSONNull uint8

// JSON null sentinels.
const (
	// DbNull is a database NULL: the column holds no value.
	DbNull JSONNull = iota + 1
	// JsonNull is the JSON literal null stored as a document.
	JsonNull
	// AnyNull matches either DbNull or JsonNull. It is only valid in filters.
	AnyNull
)

// String returns the sentinel name.
func (n JSONNull) String() string {
	switch n {
	case DbNull:
		return "DbNull"
	case JsonNull:
		return "JsonNull"
	case AnyNull:
		return "AnyNull"
	default:
		return fmt.Sprintf("JSONNull(%d)", n)
	}
}

// ParseJSONNull returns the sentinel with the given name.
func ParseJSONNull(s string) (JSONNull, bool) {
	switch s {
	case "DbNull":
		return DbNull, true
	case "JsonNull":
		return JsonNull, true
	case "AnyNull":
		return AnyNull, true
	default:
		return 0, false
	}
}

// TransformJSONNull maps a raw JSON field value to its sentinel form. An absent
// value (nil) and the string "DbNull" become DbNull, "JsonNull" becomes
// JsonNull, and sentinels pass through. Any other value, including the string
// "AnyNull", is returned unchanged. Applying it twice gives the same result as
// applying it once.
func TransformJSONNull(v any) any {
	switch v := v.(type) {
	case nil:
		return DbNull
	case JSONNull:
		return v
	case string:
		switch v {
		case "DbNull":
			return DbNull
		case "JsonNull":
			return JsonNull
		}
	}
	return v
}

package query

import "strconv"

// UpdateKind is an update operator.
type UpdateKind uint8

// Update operators.
const (
	Set UpdateKind = iota + 1
	Increment
	Decrement
	Multiply
	Divide
	NullableSet
)

var updateNames = [...]string{
	Set:         "set",
	Increment:   "increment",
	Decrement:   "decrement",
	Multiply:    "multiply",
	Divide:      "divide",
	NullableSet: "set",
}

var updateSymbols = [...]string{
	Set:         "=",
	Increment:   "+=",
	Decrement:   "-=",
	Multiply:    "*=",
	Divide:      "/=",
	NullableSet: "=",
}

// String returns the input name of the operator.
func (k UpdateKind) String() string {
	if k > 0 && int(k) < len(updateNames) {
		return updateNames[k]
	}
	return "UpdateKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseUpdateKind returns the operator for an input key. The "set" key maps
// to Set; NullableSet is only produced for null values.
func ParseUpdateKind(name string) (UpdateKind, bool) {
	for i, n := range updateNames[:NullableSet] {
		if i > 0 && n == name {
			return UpdateKind(i), true
		}
	}
	return 0, false
}

// Arithmetic reports whether the operator combines the operand with the
// stored value.
func (k UpdateKind) Arithmetic() bool {
	return k >= Increment && k <= Divide
}

// UpdateOp is the assignment of one field. The value is never computed here;
// executors apply Op to the stored value.
type UpdateOp struct {
	Field string
	Op    UpdateKind
	Value any // nil for NullableSet.
}

// String returns the assignment in the form `passengers += 1`.
func (u UpdateOp) String() string {
	op := "="
	if u.Op > 0 && int(u.Op) < len(updateSymbols) {
		op = updateSymbols[u.Op]
	}
	return u.Field + " " + op + " " + FormatValue(u.Value)
}

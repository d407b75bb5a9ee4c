package query

import (
	"strconv"
	"strings"

	"github.com/syssam/veloxq/schema/field"
)

// Node is a validated filter. It is a closed union: the only implementations
// are *ScalarFilter, *LogicalFilter, *RelationFilter and *JSONFilter, and
// consumers are expected to switch over them exhaustively.
type Node interface {
	node()
	String() string
}

var (
	_ Node = (*ScalarFilter)(nil)
	_ Node = (*LogicalFilter)(nil)
	_ Node = (*RelationFilter)(nil)
	_ Node = (*JSONFilter)(nil)
)

// Op is a scalar filter operator.
type Op uint8

// Scalar operators, in canonical order.
const (
	OpEquals Op = iota + 1
	OpIn
	OpNotIn
	OpLT
	OpLTE
	OpGT
	OpGTE
	OpContains
	OpStartsWith
	OpEndsWith
	OpNot
)

var opNames = [...]string{
	OpEquals:     "equals",
	OpIn:         "in",
	OpNotIn:      "notIn",
	OpLT:         "lt",
	OpLTE:        "lte",
	OpGT:         "gt",
	OpGTE:        "gte",
	OpContains:   "contains",
	OpStartsWith: "startsWith",
	OpEndsWith:   "endsWith",
	OpNot:        "not",
}

// String returns the input name of the operator.
func (o Op) String() string {
	if o > 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// ParseOp returns the operator with the given input name.
func ParseOp(name string) (Op, bool) {
	for i, n := range opNames {
		if i > 0 && n == name {
			return Op(i), true
		}
	}
	return 0, false
}

// Mode is the comparison mode of string filters.
type Mode uint8

// String comparison modes.
const (
	ModeDefault Mode = iota
	ModeInsensitive
)

// String returns the input name of the mode.
func (m Mode) String() string {
	if m == ModeInsensitive {
		return "insensitive"
	}
	return "default"
}

// Cond is one operator of a scalar filter.
type Cond struct {
	Op    Op
	Value any           // literal; []any for in/notIn; nil is SQL NULL.
	Not   *ScalarFilter // negated filter, set for OpNot only.
}

// ScalarFilter is a conjunction of operators applied to one scalar field.
// Conds are ordered by Op and hold at most one entry per operator.
type ScalarFilter struct {
	Field string
	Kind  field.Kind
	Mode  Mode
	Conds []Cond
}

func (*ScalarFilter) node() {}

// Cond returns the condition for the operator, if present.
func (f *ScalarFilter) Cond(op Op) (Cond, bool) {
	for _, c := range f.Conds {
		if c.Op == op {
			return c, true
		}
	}
	return Cond{}, false
}

// String returns the filter in the form `total >= 100 && total < 500`.
func (f *ScalarFilter) String() string {
	return f.render(f.Field)
}

func (f *ScalarFilter) render(ref string) string {
	parts := make([]string, 0, len(f.Conds))
	fold := f.Mode == ModeInsensitive
	for _, c := range f.Conds {
		switch c.Op {
		case OpEquals:
			if fold {
				parts = append(parts, call("equal_fold", ref, c.Value))
			} else {
				parts = append(parts, ref+" == "+FormatValue(c.Value))
			}
		case OpIn:
			parts = append(parts, ref+" in "+FormatValue(c.Value))
		case OpNotIn:
			parts = append(parts, ref+" not in "+FormatValue(c.Value))
		case OpLT:
			parts = append(parts, ref+" < "+FormatValue(c.Value))
		case OpLTE:
			parts = append(parts, ref+" <= "+FormatValue(c.Value))
		case OpGT:
			parts = append(parts, ref+" > "+FormatValue(c.Value))
		case OpGTE:
			parts = append(parts, ref+" >= "+FormatValue(c.Value))
		case OpContains:
			parts = append(parts, call(foldName("contains", fold), ref, c.Value))
		case OpStartsWith:
			parts = append(parts, call(foldName("has_prefix", fold), ref, c.Value))
		case OpEndsWith:
			parts = append(parts, call(foldName("has_suffix", fold), ref, c.Value))
		case OpNot:
			parts = append(parts, "!("+c.Not.render(ref)+")")
		}
	}
	return strings.Join(parts, " && ")
}

func foldName(name string, fold bool) string {
	if fold {
		return name + "_fold"
	}
	return name
}

func call(name, ref string, v any) string {
	return name + "(" + ref + ", " + FormatValue(v) + ")"
}

// LogicalOp is a logical combinator.
type LogicalOp uint8

// Logical combinators.
const (
	And LogicalOp = iota + 1
	Or
	Not
)

// String returns the input name of the combinator.
func (o LogicalOp) String() string {
	switch o {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Not:
		return "NOT"
	default:
		return "LogicalOp(" + strconv.Itoa(int(o)) + ")"
	}
}

// LogicalFilter combines child filters.
//
// An And with no children matches every row and an Or with no children
// matches none. Not negates the conjunction of its children, so a Not with no
// children matches none.
type LogicalFilter struct {
	Op       LogicalOp
	Children []Node
}

func (*LogicalFilter) node() {}

// String returns the filter in the form `(a && b)`, `(a || b)` or `!(a && b)`.
func (f *LogicalFilter) String() string {
	switch f.Op {
	case Or:
		return group(f.Children, " || ", "false")
	case Not:
		return "!(" + joinNodes(f.Children, " && ", "true") + ")"
	default:
		return group(f.Children, " && ", "true")
	}
}

func group(children []Node, sep, empty string) string {
	s := joinNodes(children, sep, empty)
	if len(children) > 1 {
		s = "(" + s + ")"
	}
	return s
}

func joinNodes(children []Node, sep, empty string) string {
	if len(children) == 0 {
		return empty
	}
	parts := make([]string, len(children))
	for i, c := range children {
		s := c.String()
		if sep != " && " && multiCond(c) {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

// multiCond reports whether n renders as a bare conjunction.
func multiCond(n Node) bool {
	switch n := n.(type) {
	case *ScalarFilter:
		return len(n.Conds) > 1
	case *JSONFilter:
		return len(n.Conds) > 1
	default:
		return false
	}
}

// Quantifier is a relation quantifier.
type Quantifier uint8

// Relation quantifiers. Some, Every and None apply to to-many relations,
// Is and IsNot to to-one relations.
const (
	Some Quantifier = iota + 1
	Every
	None
	Is
	IsNot
)

var quantifierNames = [...]string{
	Some:  "some",
	Every: "every",
	None:  "none",
	Is:    "is",
	IsNot: "isNot",
}

// String returns the input name of the quantifier.
func (q Quantifier) String() string {
	if q > 0 && int(q) < len(quantifierNames) {
		return quantifierNames[q]
	}
	return "Quantifier(" + strconv.Itoa(int(q)) + ")"
}

// ParseQuantifier returns the quantifier with the given input name.
func ParseQuantifier(name string) (Quantifier, bool) {
	for i, n := range quantifierNames {
		if i > 0 && n == name {
			return Quantifier(i), true
		}
	}
	return 0, false
}

// ToMany reports whether the quantifier applies to to-many relations.
func (q Quantifier) ToMany() bool {
	return q == Some || q == Every || q == None
}

// RelationFilter applies a quantifier over the rows of a relation. Inner is
// scoped to the target entity; a nil Inner places no condition on related
// rows. Null is set for `is: null` and `isNot: null`, which test whether a
// to-one relation is absent or present.
type RelationFilter struct {
	Relation   string
	Target     string
	Quantifier Quantifier
	Inner      Node
	Null       bool
}

func (*RelationFilter) node() {}

// String returns the filter in the form `some(trips, inner)`.
func (f *RelationFilter) String() string {
	name := f.Quantifier.String()
	if f.Quantifier == IsNot {
		name = "is_not"
	}
	switch {
	case f.Null:
		return name + "(" + f.Relation + ", nil)"
	case f.Inner == nil:
		return name + "(" + f.Relation + ")"
	default:
		return name + "(" + f.Relation + ", " + f.Inner.String() + ")"
	}
}

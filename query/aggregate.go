package query

import "strconv"

// AggregateOp is an aggregate function.
type AggregateOp uint8

// Aggregate functions.
const (
	Count AggregateOp = iota + 1
	Avg
	Sum
	Min
	Max
)

var aggregateNames = [...]string{
	Count: "count",
	Avg:   "avg",
	Sum:   "sum",
	Min:   "min",
	Max:   "max",
}

// String returns the function name.
func (o AggregateOp) String() string {
	if o > 0 && int(o) < len(aggregateNames) {
		return aggregateNames[o]
	}
	return "AggregateOp(" + strconv.Itoa(int(o)) + ")"
}

// ParseAggregateOp returns the function for an input key such as "_count".
func ParseAggregateOp(key string) (AggregateOp, bool) {
	if len(key) < 2 || key[0] != '_' {
		return 0, false
	}
	for i, n := range aggregateNames {
		if i > 0 && n == key[1:] {
			return AggregateOp(i), true
		}
	}
	return 0, false
}

// AggregateFilter constrains an aggregated value of a group. Field is empty
// when counting the rows of the group, and names a to-many relation when
// Relation is set. Inner is evaluated against the aggregated value, so its
// Kind is the kind of the aggregate result, not of the field.
type AggregateFilter struct {
	Op       AggregateOp
	Field    string
	Relation bool
	Inner    *ScalarFilter
}

// String returns the filter in the form `avg(amount) > 100`.
func (f *AggregateFilter) String() string {
	arg := f.Field
	if arg == "" {
		arg = "*"
	}
	return f.Inner.render(f.Op.String() + "(" + arg + ")")
}

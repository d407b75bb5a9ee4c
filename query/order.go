package query

import "strings"

// Direction is a sort direction.
type Direction uint8

// Sort directions.
const (
	Asc Direction = iota + 1
	Desc
)

// String returns the input name of the direction.
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection returns the direction with the given input name.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "asc":
		return Asc, true
	case "desc":
		return Desc, true
	default:
		return 0, false
	}
}

// Nulls places null values in a sort.
type Nulls uint8

// Null placements. NullsDefault leaves the placement to the executor.
const (
	NullsDefault Nulls = iota
	NullsFirst
	NullsLast
)

// String returns the input name of the placement.
func (n Nulls) String() string {
	switch n {
	case NullsFirst:
		return "first"
	case NullsLast:
		return "last"
	default:
		return ""
	}
}

// OrderTerm is one key of a sort. Path lists the to-one relations leading to
// the entity that holds Field. When Count is set, Field names a to-many
// relation and rows are sorted by the number of related rows.
type OrderTerm struct {
	Path      []string
	Field     string
	Direction Direction
	Nulls     Nulls
	Count     bool
}

// String returns the term in the form `customer.name asc nulls last`.
func (o OrderTerm) String() string {
	ref := strings.Join(append(append([]string(nil), o.Path...), o.Field), ".")
	if o.Count {
		ref = "count(" + ref + ")"
	}
	s := ref + " " + o.Direction.String()
	if o.Nulls != NullsDefault {
		s += " nulls " + o.Nulls.String()
	}
	return s
}

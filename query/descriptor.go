package query

import "strings"

// Descriptor is the validated form of one request against an entity.
// Executors treat it as read-only.
type Descriptor struct {
	Entity  string
	Where   Node // nil matches every row.
	OrderBy []OrderTerm
	Having  []*AggregateFilter // conjoined.
	Unique  *UniqueLookup
	Updates []UpdateOp
	Creates []UpdateOp
}

// String renders the descriptor one part per line, omitting unset parts.
func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString("entity: " + d.Entity)
	if d.Unique != nil {
		b.WriteString("\nunique: " + d.Unique.String())
	}
	if d.Where != nil {
		b.WriteString("\nwhere: " + d.Where.String())
	}
	if len(d.OrderBy) > 0 {
		terms := make([]string, len(d.OrderBy))
		for i, o := range d.OrderBy {
			terms[i] = o.String()
		}
		b.WriteString("\norder: " + strings.Join(terms, ", "))
	}
	if len(d.Having) > 0 {
		parts := make([]string, len(d.Having))
		for i, h := range d.Having {
			parts[i] = h.String()
		}
		b.WriteString("\nhaving: " + strings.Join(parts, " && "))
	}
	writeOps(&b, "update", d.Updates)
	writeOps(&b, "create", d.Creates)
	return b.String()
}

func writeOps(b *strings.Builder, label string, ops []UpdateOp) {
	if len(ops) == 0 {
		return
	}
	parts := make([]string, len(ops))
	for i, u := range ops {
		parts[i] = u.String()
	}
	b.WriteString("\n" + label + ": " + strings.Join(parts, ", "))
}

// Walk calls fn for n and its descendants in depth-first order, stopping at
// the first node for which fn returns false. Negated scalar filters are not
// visited separately.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	switch n := n.(type) {
	case *LogicalFilter:
		for _, c := range n.Children {
			if !Walk(c, fn) {
				return false
			}
		}
	case *RelationFilter:
		return Walk(n.Inner, fn)
	case *ScalarFilter, *JSONFilter:
	}
	return true
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n Node) int {
	c := 0
	Walk(n, func(Node) bool {
		c++
		return true
	})
	return c
}

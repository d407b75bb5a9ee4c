package parse

import (
	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema/edge"
)

// relation resolves a relation filter. To-many relations take some, every
// and none; to-one relations take is and isNot, and an object without
// quantifiers is shorthand for is.
func (s *state) relation(r *edge.Descriptor, raw any, path string) (query.Node, error) {
	toOne := r.Cardinality() == edge.One
	shorthand := false
	obj, ok := object(raw)
	switch {
	case raw == nil && toOne:
		obj, shorthand = map[string]any{"is": nil}, true
	case !ok:
		return nil, s.fail(path, veloxq.ErrMalformedInput, "expected object, got %s", typeName(raw))
	}
	var quantified, plain int
	for k := range obj {
		if _, ok := query.ParseQuantifier(k); ok {
			quantified++
		} else {
			plain++
		}
	}
	switch {
	case quantified > 0 && plain > 0:
		return nil, s.fail(path, veloxq.ErrMalformedInput, "quantifiers cannot be mixed with other keys")
	case quantified == 0 && toOne:
		obj, shorthand = map[string]any{"is": raw}, true
	case quantified == 0:
		return nil, s.fail(path, veloxq.ErrMalformedInput, "to-many relation %q expects some, every or none", r.Name)
	}
	target, err := s.lookup(r.Type, path)
	if err != nil {
		return nil, err
	}
	children := make([]query.Node, 0, len(obj))
	for _, k := range sortedKeys(obj) {
		q, _ := query.ParseQuantifier(k)
		p := path
		if !shorthand {
			p = join(path, k)
		}
		if q.ToMany() == toOne {
			return nil, s.fail(p, veloxq.ErrCardinalityMismatch, "%s is not valid on %s relation %q", q, cardinality(toOne), r.Name)
		}
		if err := s.node(p); err != nil {
			return nil, err
		}
		rf := &query.RelationFilter{Relation: r.Name, Target: target.Name, Quantifier: q}
		v := obj[k]
		if v == nil {
			if !toOne {
				return nil, s.fail(p, veloxq.ErrMalformedInput, "expected object, got null")
			}
			if !r.Nillable() {
				return nil, s.fail(p, veloxq.ErrInvalidOperatorForType, "relation %q is required and cannot be null", r.Name)
			}
			rf.Null = true
		} else {
			if _, ok := object(v); !ok {
				return nil, s.fail(p, veloxq.ErrMalformedInput, "expected object, got %s", typeName(v))
			}
			if rf.Inner, err = s.whereObject(target, v, p); err != nil {
				return nil, err
			}
		}
		children = append(children, rf)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	if err := s.node(path); err != nil {
		return nil, err
	}
	return &query.LogicalFilter{Op: query.And, Children: children}, nil
}

func cardinality(toOne bool) string {
	if toOne {
		return "to-one"
	}
	return "to-many"
}

package parse

import (
	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/edge"
	"github.com/syssam/veloxq/schema/field"
)

// orderBy resolves a sort input: an object or a list of objects mapping
// fields to "asc", "desc" or {sort, nulls}. To-one relations nest the sort
// of their target; to-many relations sort by {_count: direction}.
func (s *state) orderBy(e *schema.Entity, raw any, path string) ([]query.OrderTerm, error) {
	if raw == nil {
		return nil, nil
	}
	items, isList := list(raw)
	if !isList {
		items = []any{raw}
	}
	var terms []query.OrderTerm
	for i, item := range items {
		p := path
		if isList {
			p = index(path, i)
		}
		ts, err := s.orderObject(e, item, p, nil)
		if err != nil {
			return nil, err
		}
		terms = append(terms, ts...)
	}
	return terms, nil
}

func (s *state) orderObject(e *schema.Entity, raw any, path string, prefix []string) ([]query.OrderTerm, error) {
	obj, ok := object(raw)
	if !ok {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "expected object, got %s", typeName(raw))
	}
	if err := s.enter(path); err != nil {
		return nil, err
	}
	defer s.leave()
	var terms []query.OrderTerm
	for _, k := range sortedKeys(obj) {
		p := join(path, k)
		if err := s.node(p); err != nil {
			return nil, err
		}
		name := s.resolve(e, k)
		if f, ok := e.Field(name); ok {
			t, err := s.orderField(f, obj[k], p, prefix)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
			continue
		}
		r, ok := e.Relation(name)
		if !ok {
			return nil, s.fail(p, veloxq.ErrUnknownField, "%s has no field or relation %q", e.Name, k)
		}
		ts, err := s.orderRelation(r, obj[k], p, prefix)
		if err != nil {
			return nil, err
		}
		terms = append(terms, ts...)
	}
	return terms, nil
}

func (s *state) orderField(f *field.Descriptor, raw any, path string, prefix []string) (query.OrderTerm, error) {
	t := query.OrderTerm{Path: prefix, Field: f.Name}
	if f.Kind == field.KindJSON {
		return t, s.fail(path, veloxq.ErrInvalidOperatorForType, "json fields cannot be sorted")
	}
	obj, ok := object(raw)
	if !ok {
		d, err := s.direction(raw, path)
		if err != nil {
			return t, err
		}
		t.Direction = d
		return t, nil
	}
	for _, k := range sortedKeys(obj) {
		if k != "sort" && k != "nulls" {
			return t, s.fail(join(path, k), veloxq.ErrMalformedInput, "unknown sort option %q", k)
		}
	}
	d, err := s.direction(obj["sort"], join(path, "sort"))
	if err != nil {
		return t, err
	}
	t.Direction = d
	if n, ok := obj["nulls"]; ok {
		p := join(path, "nulls")
		if !f.Nillable {
			return t, s.fail(p, veloxq.ErrInvalidOperatorForType, "nulls is not valid on non-nullable field %q", f.Name)
		}
		switch n {
		case "first":
			t.Nulls = query.NullsFirst
		case "last":
			t.Nulls = query.NullsLast
		default:
			return t, s.fail(p, veloxq.ErrMalformedInput, "nulls must be \"first\" or \"last\", got %s", query.FormatValue(n))
		}
	}
	return t, nil
}

func (s *state) orderRelation(r *edge.Descriptor, raw any, path string, prefix []string) ([]query.OrderTerm, error) {
	obj, ok := object(raw)
	if !ok {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "expected object, got %s", typeName(raw))
	}
	c, counted := obj["_count"]
	if r.Cardinality() == edge.Many {
		if !counted || len(obj) != 1 {
			return nil, s.fail(path, veloxq.ErrCardinalityMismatch, "to-many relation %q can only be sorted by _count", r.Name)
		}
		d, err := s.direction(c, join(path, "_count"))
		if err != nil {
			return nil, err
		}
		return []query.OrderTerm{{Path: prefix, Field: r.Name, Direction: d, Count: true}}, nil
	}
	if counted {
		return nil, s.fail(join(path, "_count"), veloxq.ErrCardinalityMismatch, "_count is not valid on to-one relation %q", r.Name)
	}
	target, err := s.lookup(r.Type, path)
	if err != nil {
		return nil, err
	}
	next := append(append(make([]string, 0, len(prefix)+1), prefix...), r.Name)
	return s.orderObject(target, obj, path, next)
}

func (s *state) direction(raw any, path string) (query.Direction, error) {
	str, _ := raw.(string)
	d, ok := query.ParseDirection(str)
	if !ok {
		return 0, s.fail(path, veloxq.ErrMalformedInput, "sort direction must be \"asc\" or \"desc\", got %s", query.FormatValue(raw))
	}
	return d, nil
}

package parse

import (
	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/edge"
	"github.com/syssam/veloxq/schema/field"
)

// having resolves a group-by having input of the form
// {_count: {_all: filter}, _avg: {field: filter}}.
func (s *state) having(e *schema.Entity, raw any, path string) ([]*query.AggregateFilter, error) {
	if raw == nil {
		return nil, nil
	}
	obj, ok := object(raw)
	if !ok {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "expected object, got %s", typeName(raw))
	}
	var filters []*query.AggregateFilter
	for _, k := range sortedKeys(obj) {
		p := join(path, k)
		op, ok := query.ParseAggregateOp(k)
		if !ok {
			return nil, s.fail(p, veloxq.ErrMalformedInput, "unknown aggregate %q", k)
		}
		targets, ok := object(obj[k])
		if !ok {
			return nil, s.fail(p, veloxq.ErrMalformedInput, "expected object, got %s", typeName(obj[k]))
		}
		for _, name := range sortedKeys(targets) {
			af, err := s.aggregate(e, op, name, targets[name], join(p, name))
			if err != nil {
				return nil, err
			}
			filters = append(filters, af)
		}
	}
	return filters, nil
}

func (s *state) aggregate(e *schema.Entity, op query.AggregateOp, key string, raw any, path string) (*query.AggregateFilter, error) {
	if err := s.node(path); err != nil {
		return nil, err
	}
	af := &query.AggregateFilter{Op: op}
	var t valueType
	switch {
	case op == query.Count && key == "_all":
		t = valueType{kind: field.KindInt}
	case op == query.Count:
		name := s.resolve(e, key)
		if r, ok := e.Relation(name); ok {
			if r.Cardinality() != edge.Many {
				return nil, s.fail(path, veloxq.ErrCardinalityMismatch, "_count is not valid on to-one relation %q", r.Name)
			}
			af.Field, af.Relation = r.Name, true
		} else {
			f, ok := e.Field(name)
			if !ok {
				return nil, s.fail(path, veloxq.ErrUnknownField, "%s has no field or relation %q", e.Name, key)
			}
			af.Field = f.Name
		}
		t = valueType{kind: field.KindInt}
	default:
		f, ok := e.Field(s.resolve(e, key))
		if !ok {
			return nil, s.fail(path, veloxq.ErrUnknownField, "%s has no field %q", e.Name, key)
		}
		af.Field = f.Name
		switch op {
		case query.Avg:
			if !f.Kind.Numeric() {
				return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "_avg is not supported on %s fields", f.Kind)
			}
			t = valueType{kind: field.KindFloat, nillable: true}
		case query.Sum:
			if !f.Kind.Numeric() {
				return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "_sum is not supported on %s fields", f.Kind)
			}
			t = valueType{kind: f.Kind, nillable: true}
		default:
			if !f.Kind.Orderable() {
				return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "_%s is not supported on %s fields", op, f.Kind)
			}
			t = typeOf(f)
			t.nillable = true
		}
	}
	inner, err := s.scalar(af.Field, t, raw, path, query.ModeDefault)
	if err != nil {
		return nil, err
	}
	af.Inner = inner
	return af, nil
}

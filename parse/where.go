package parse

import (
	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/field"
)

var logicalOps = map[string]query.LogicalOp{
	"AND": query.And,
	"OR":  query.Or,
	"NOT": query.Not,
}

// where resolves a where-object. Nil and empty objects yield a nil node.
func (s *state) where(e *schema.Entity, raw any, path string) (query.Node, error) {
	if raw == nil {
		return nil, nil
	}
	return s.whereObject(e, raw, path)
}

// whereObject resolves the entries of a where-object, visiting keys in sorted
// order. Several entries are conjoined and a single entry stands alone.
func (s *state) whereObject(e *schema.Entity, raw any, path string) (query.Node, error) {
	obj, ok := object(raw)
	if !ok {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "expected object, got %s", typeName(raw))
	}
	if err := s.enter(path); err != nil {
		return nil, err
	}
	defer s.leave()
	children := make([]query.Node, 0, len(obj))
	for _, k := range sortedKeys(obj) {
		n, err := s.entry(e, k, obj[k], join(path, k))
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	}
	if err := s.node(path); err != nil {
		return nil, err
	}
	return &query.LogicalFilter{Op: query.And, Children: children}, nil
}

func (s *state) entry(e *schema.Entity, key string, v any, path string) (query.Node, error) {
	if op, ok := logicalOps[key]; ok {
		return s.logical(e, op, v, path)
	}
	name := s.resolve(e, key)
	if f, ok := e.Field(name); ok {
		if f.Kind == field.KindJSON {
			return s.json(f, v, path)
		}
		return s.scalar(f.Name, typeOf(f), v, path, query.ModeDefault)
	}
	if r, ok := e.Relation(name); ok {
		return s.relation(r, v, path)
	}
	return nil, s.fail(path, veloxq.ErrUnknownField, "%s has no field or relation %q", e.Name, key)
}

// logical resolves a combinator. The operand is a where-object or a list of
// them; NOT negates the conjunction of its operands. Empty operands are kept
// as combinators without children.
func (s *state) logical(e *schema.Entity, op query.LogicalOp, v any, path string) (query.Node, error) {
	if err := s.node(path); err != nil {
		return nil, err
	}
	items, ok := list(v)
	if !ok {
		items = []any{v}
	}
	lf := &query.LogicalFilter{Op: op, Children: make([]query.Node, 0, len(items))}
	for i, item := range items {
		p := path
		if ok {
			p = index(path, i)
		}
		if _, isObj := object(item); !isObj {
			return nil, s.fail(p, veloxq.ErrMalformedInput, "expected object, got %s", typeName(item))
		}
		n, err := s.whereObject(e, item, p)
		if err != nil {
			return nil, err
		}
		if n == nil {
			// An empty where-object matches every row.
			n = &query.LogicalFilter{Op: query.And}
		}
		lf.Children = append(lf.Children, n)
	}
	return lf, nil
}

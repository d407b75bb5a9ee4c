package parse

import (
	"cmp"
	"slices"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema/field"
)

// legalOps lists the operators accepted by each scalar kind.
var legalOps = map[field.Kind][]query.Op{
	field.KindString: {
		query.OpEquals, query.OpIn, query.OpNotIn, query.OpLT, query.OpLTE, query.OpGT, query.OpGTE,
		query.OpContains, query.OpStartsWith, query.OpEndsWith, query.OpNot,
	},
	field.KindInt:   {query.OpEquals, query.OpIn, query.OpNotIn, query.OpLT, query.OpLTE, query.OpGT, query.OpGTE, query.OpNot},
	field.KindFloat: {query.OpEquals, query.OpIn, query.OpNotIn, query.OpLT, query.OpLTE, query.OpGT, query.OpGTE, query.OpNot},
	field.KindTime:  {query.OpEquals, query.OpIn, query.OpNotIn, query.OpLT, query.OpLTE, query.OpGT, query.OpGTE, query.OpNot},
	field.KindBool:  {query.OpEquals, query.OpNot},
	field.KindEnum:  {query.OpEquals, query.OpIn, query.OpNotIn, query.OpNot},
}

// scalar resolves the filter of one scalar field. A literal is shorthand for
// {equals: literal}. Nested not-filters inherit mode unless they set their own.
func (s *state) scalar(name string, t valueType, raw any, path string, mode query.Mode) (*query.ScalarFilter, error) {
	if err := s.node(path); err != nil {
		return nil, err
	}
	f := &query.ScalarFilter{Field: name, Kind: t.kind, Mode: mode}
	obj, ok := object(raw)
	if !ok {
		v, err := s.literal(t, raw, path)
		if err != nil {
			return nil, err
		}
		f.Conds = []query.Cond{{Op: query.OpEquals, Value: v}}
		return f, nil
	}
	if len(obj) == 0 {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "filter has no operators")
	}
	if m, ok := obj["mode"]; ok {
		if err := s.mode(f, t, m, join(path, "mode")); err != nil {
			return nil, err
		}
		if len(obj) == 1 {
			return nil, s.fail(path, veloxq.ErrMalformedInput, "mode requires another operator")
		}
	}
	for _, k := range sortedKeys(obj) {
		if k == "mode" {
			continue
		}
		p := join(path, k)
		op, ok := query.ParseOp(k)
		if !ok {
			if foreignOp(k) {
				return nil, s.fail(p, veloxq.ErrInvalidOperatorForType, "%s is not supported on %s fields", k, t.kind)
			}
			return nil, s.fail(p, veloxq.ErrMalformedInput, "unknown operator %q", k)
		}
		if !slices.Contains(legalOps[t.kind], op) {
			return nil, s.fail(p, veloxq.ErrInvalidOperatorForType, "%s is not supported on %s fields", op, t.kind)
		}
		c, err := s.cond(name, t, op, obj[k], p, f.Mode)
		if err != nil {
			return nil, err
		}
		f.Conds = append(f.Conds, c)
	}
	slices.SortFunc(f.Conds, func(a, b query.Cond) int {
		return cmp.Compare(a.Op, b.Op)
	})
	return f, nil
}

// foreignOp reports whether k is a JSON or relation operator.
func foreignOp(k string) bool {
	if k == "path" {
		return true
	}
	if _, ok := query.ParseJSONOp(k); ok {
		return true
	}
	_, ok := query.ParseQuantifier(k)
	return ok
}

func (s *state) cond(name string, t valueType, op query.Op, v any, path string, mode query.Mode) (query.Cond, error) {
	c := query.Cond{Op: op}
	switch op {
	case query.OpEquals:
		lit, err := s.literal(t, v, path)
		if err != nil {
			return c, err
		}
		c.Value = lit
	case query.OpIn, query.OpNotIn:
		l, ok := list(v)
		if !ok {
			return c, s.fail(path, veloxq.ErrMalformedInput, "expected list, got %s", typeName(v))
		}
		vs := make([]any, len(l))
		for i, e := range l {
			lit, err := s.literal(t, e, index(path, i))
			if err != nil {
				return c, err
			}
			vs[i] = lit
		}
		c.Value = vs
	case query.OpContains, query.OpStartsWith, query.OpEndsWith:
		// Substrings of formatted values are plain strings.
		lit, err := s.operand(valueType{kind: field.KindString}, v, path)
		if err != nil {
			return c, err
		}
		c.Value = lit
	case query.OpLT, query.OpLTE, query.OpGT, query.OpGTE:
		lit, err := s.operand(t, v, path)
		if err != nil {
			return c, err
		}
		c.Value = lit
	case query.OpNot:
		nf, err := s.not(name, t, v, path, mode)
		if err != nil {
			return c, err
		}
		c.Not = nf
	}
	return c, nil
}

// not resolves the operand of a not operator. A literal is shorthand for
// {equals: literal}.
func (s *state) not(name string, t valueType, raw any, path string, mode query.Mode) (*query.ScalarFilter, error) {
	if _, ok := object(raw); ok {
		if err := s.enter(path); err != nil {
			return nil, err
		}
		defer s.leave()
	}
	return s.scalar(name, t, raw, path, mode)
}

func (s *state) mode(f *query.ScalarFilter, t valueType, raw any, path string) error {
	if t.kind != field.KindString {
		return s.fail(path, veloxq.ErrInvalidOperatorForType, "mode is not supported on %s fields", t.kind)
	}
	switch raw {
	case "default":
		f.Mode = query.ModeDefault
	case "insensitive":
		f.Mode = query.ModeInsensitive
	default:
		return s.fail(path, veloxq.ErrMalformedInput, "mode must be \"default\" or \"insensitive\", got %s", query.FormatValue(raw))
	}
	return nil
}

// literal resolves an equality literal. Null is accepted on nullable fields.
func (s *state) literal(t valueType, v any, path string) (any, error) {
	if v == nil {
		if !t.nillable {
			return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "null is not allowed on a non-nullable %s field", t.kind)
		}
		return nil, nil
	}
	return s.operand(t, v, path)
}

// operand resolves a non-null operand.
func (s *state) operand(t valueType, v any, path string) (any, error) {
	if v == nil {
		return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "null is not a valid operand")
	}
	n, err := coerce(t, v)
	if err != nil {
		return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "%v", err)
	}
	return n, nil
}

package parse

import (
	"cmp"
	"slices"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema/field"
)

// json resolves a filter on a JSON field. A value that is not an object is
// shorthand for {equals: value}. The equals and not operators accept the
// DbNull, JsonNull and AnyNull sentinels on nullable fields.
func (s *state) json(f *field.Descriptor, raw any, path string) (query.Node, error) {
	if err := s.node(path); err != nil {
		return nil, err
	}
	jf := &query.JSONFilter{Field: f.Name}
	obj, ok := object(raw)
	if !ok {
		v, err := s.jsonRead(f, raw, path)
		if err != nil {
			return nil, err
		}
		jf.Conds = []query.JSONCond{{Op: query.JSONEquals, Value: v}}
		return jf, nil
	}
	if len(obj) == 0 {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "filter has no operators")
	}
	for _, k := range sortedKeys(obj) {
		v, p := obj[k], join(path, k)
		if k == "path" {
			if jf.Path, ok = jsonPath(v); !ok {
				return nil, s.fail(p, veloxq.ErrMalformedInput, "expected a string or a list of strings")
			}
			continue
		}
		op, ok := query.ParseJSONOp(k)
		if !ok {
			return nil, s.fail(p, veloxq.ErrMalformedInput, "unknown JSON operator %q", k)
		}
		c := query.JSONCond{Op: op}
		switch op {
		case query.JSONEquals, query.JSONNot:
			n, err := s.jsonRead(f, v, p)
			if err != nil {
				return nil, err
			}
			c.Value = n
		case query.JSONStringContains, query.JSONStringStartsWith, query.JSONStringEndsWith:
			str, ok := v.(string)
			if !ok {
				return nil, s.fail(p, veloxq.ErrInvalidOperatorForType, "expected string, got %s", typeName(v))
			}
			c.Value = str
		default:
			if v == nil {
				return nil, s.fail(p, veloxq.ErrInvalidOperatorForType, "null is not a valid operand")
			}
			n, err := s.jsonValue(v, p)
			if err != nil {
				return nil, err
			}
			c.Value = n
		}
		jf.Conds = append(jf.Conds, c)
	}
	if len(jf.Conds) == 0 {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "path requires another operator")
	}
	slices.SortFunc(jf.Conds, func(a, b query.JSONCond) int {
		return cmp.Compare(a.Op, b.Op)
	})
	return jf, nil
}

// jsonRead resolves an equality operand of a JSON filter. Null and sentinel
// names resolve to sentinels, which require a nullable field.
func (s *state) jsonRead(f *field.Descriptor, v any, path string) (any, error) {
	if name, ok := v.(string); ok {
		if n, ok := query.ParseJSONNull(name); ok {
			v = n
		}
	}
	v = query.TransformJSONNull(v)
	if n, ok := v.(query.JSONNull); ok {
		if !f.Nillable {
			return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "%s is not allowed on non-nullable JSON field %q", n, f.Name)
		}
		return n, nil
	}
	return s.jsonValue(v, path)
}

// jsonWrite resolves the document assigned to a JSON field. Explicit null
// stores a database NULL. AnyNull cannot be written.
func (s *state) jsonWrite(f *field.Descriptor, v any, path string) (any, error) {
	if v == query.AnyNull || v == "AnyNull" {
		return nil, s.fail(path, veloxq.ErrInvalidSentinelForWrite, "AnyNull can only be used in filters")
	}
	v = query.TransformJSONNull(v)
	if n, ok := v.(query.JSONNull); ok {
		if !f.Nillable {
			return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "%s is not allowed on non-nullable JSON field %q", n, f.Name)
		}
		return n, nil
	}
	return s.jsonValue(v, path)
}

func (s *state) jsonValue(v any, path string) (any, error) {
	n, err := query.NormalizeJSON(v)
	if err != nil {
		return nil, s.fail(path, veloxq.ErrInvalidOperatorForType, "%v", err)
	}
	return n, nil
}

func jsonPath(v any) ([]string, bool) {
	if s, ok := v.(string); ok {
		return []string{s}, true
	}
	l, ok := list(v)
	if !ok || len(l) == 0 {
		return nil, false
	}
	path := make([]string, len(l))
	for i, e := range l {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		path[i] = s
	}
	return path, true
}

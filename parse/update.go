package parse

import (
	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/field"
)

// assignments resolves the keys of a mutation object to fields. Two keys that
// resolve to the same field conflict.
func (s *state) assignments(e *schema.Entity, raw any, path string) (map[string]any, map[string]string, error) {
	obj, ok := object(raw)
	if !ok {
		return nil, nil, s.fail(path, veloxq.ErrMalformedInput, "expected object, got %s", typeName(raw))
	}
	values := make(map[string]any, len(obj))
	keys := make(map[string]string, len(obj))
	for _, k := range sortedKeys(obj) {
		p := join(path, k)
		name := s.resolve(e, k)
		if _, ok := e.Field(name); !ok {
			if _, ok := e.Relation(name); ok {
				return nil, nil, s.fail(p, veloxq.ErrMalformedInput, "relation %q cannot be assigned", name)
			}
			return nil, nil, s.fail(p, veloxq.ErrUnknownField, "%s has no field %q", e.Name, k)
		}
		if prev, ok := keys[name]; ok {
			return nil, nil, s.fail(p, veloxq.ErrConflictingFieldUpdate, "field %q is already assigned by %q", name, prev)
		}
		keys[name] = k
		values[name] = obj[k]
	}
	return values, keys, nil
}

// update resolves an update object. Each field takes a literal, which sets
// it, or an object with exactly one of set, increment, decrement, multiply
// and divide. Operations are returned in field declaration order.
func (s *state) update(e *schema.Entity, raw any, path string) ([]query.UpdateOp, error) {
	values, keys, err := s.assignments(e, raw, path)
	if err != nil {
		return nil, err
	}
	var ops []query.UpdateOp
	for _, f := range e.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		op, err := s.assign(f, v, join(path, keys[f.Name]), true)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// create resolves a create object. Required fields must be present; omitted
// nullable JSON fields are set to DbNull.
func (s *state) create(e *schema.Entity, raw any, path string) ([]query.UpdateOp, error) {
	values, keys, err := s.assignments(e, raw, path)
	if err != nil {
		return nil, err
	}
	var ops []query.UpdateOp
	for _, f := range e.Fields {
		v, ok := values[f.Name]
		switch {
		case ok:
			op, err := s.assign(f, v, join(path, keys[f.Name]), false)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		case f.Kind == field.KindJSON && f.Nillable:
			if err := s.node(path); err != nil {
				return nil, err
			}
			ops = append(ops, query.UpdateOp{Field: f.Name, Op: query.Set, Value: query.DbNull})
		case f.Required():
			return nil, s.fail(join(path, f.Name), veloxq.ErrMissingRequiredField, "%s requires %q", e.Name, f.Name)
		}
	}
	return ops, nil
}

func (s *state) assign(f *field.Descriptor, v any, path string, arithmetic bool) (query.UpdateOp, error) {
	op := query.UpdateOp{Field: f.Name, Op: query.Set}
	if err := s.node(path); err != nil {
		return op, err
	}
	kind, operand, p, err := s.updateOperator(f, v, path)
	if err != nil {
		return op, err
	}
	op.Op = kind
	if kind.Arithmetic() {
		if !arithmetic {
			return op, s.fail(p, veloxq.ErrMalformedInput, "%s is not valid on create", kind)
		}
		if !f.Kind.Numeric() {
			return op, s.fail(p, veloxq.ErrInvalidOperatorForType, "%s is not supported on %s fields", kind, f.Kind)
		}
		n, err := s.operand(typeOf(f), operand, p)
		if err != nil {
			return op, err
		}
		if kind == query.Divide && isZero(n) {
			return op, s.fail(p, veloxq.ErrDivisionByZeroLiteral, "cannot divide %q by zero", f.Name)
		}
		op.Value = n
		return op, nil
	}
	if f.Kind == field.KindJSON {
		n, err := s.jsonWrite(f, operand, p)
		if err != nil {
			return op, err
		}
		op.Value = n
		return op, nil
	}
	if operand == nil {
		if !f.Nillable {
			return op, s.fail(p, veloxq.ErrInvalidOperatorForType, "null is not allowed on a non-nullable %s field", f.Kind)
		}
		op.Op = query.NullableSet
		return op, nil
	}
	n, err := s.operand(typeOf(f), operand, p)
	if err != nil {
		return op, err
	}
	op.Value = n
	return op, nil
}

// updateOperator splits an assignment into its operator and operand. Values
// that are not objects are the operand of set. JSON documents are only
// unwrapped from an object with the single key set, and only conflict when
// every key is an operator name.
func (s *state) updateOperator(f *field.Descriptor, v any, path string) (query.UpdateKind, any, string, error) {
	obj, ok := object(v)
	if !ok {
		return query.Set, v, path, nil
	}
	var ops []string
	for _, k := range sortedKeys(obj) {
		if _, ok := query.ParseUpdateKind(k); ok {
			ops = append(ops, k)
		}
	}
	if len(ops) > 1 && (f.Kind != field.KindJSON || len(ops) == len(obj)) {
		return 0, nil, path, s.fail(path, veloxq.ErrConflictingFieldUpdate, "field %q has operators %q", f.Name, ops)
	}
	if f.Kind == field.KindJSON {
		if sv, ok := obj["set"]; ok && len(obj) == 1 {
			return query.Set, sv, join(path, "set"), nil
		}
		if len(ops) == 1 && len(obj) == 1 {
			return 0, nil, path, s.fail(join(path, ops[0]), veloxq.ErrInvalidOperatorForType, "%s is not supported on json fields", ops[0])
		}
		return query.Set, v, path, nil
	}
	if len(obj) == 0 {
		return 0, nil, path, s.fail(path, veloxq.ErrMalformedInput, "update has no operator")
	}
	if len(ops) != len(obj) {
		for _, k := range sortedKeys(obj) {
			if _, ok := query.ParseUpdateKind(k); !ok {
				return 0, nil, path, s.fail(join(path, k), veloxq.ErrMalformedInput, "unknown update operator %q", k)
			}
		}
	}
	kind, _ := query.ParseUpdateKind(ops[0])
	return kind, obj[ops[0]], join(path, ops[0]), nil
}

func isZero(v any) bool {
	switch v := v.(type) {
	case int64:
		return v == 0
	case float64:
		return v == 0
	}
	return false
}

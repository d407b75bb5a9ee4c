package parse

import (
	"slices"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema"
)

// unique resolves a unique lookup. The input names single unique fields,
// compound keys nested under their name ({identifier_token: {identifier,
// token}}) or compound key members given flat. When several complete
// identifications are present, the primary key wins, then unique fields in
// declaration order, then compound keys in declaration order. The others are
// returned as residual filters.
func (s *state) unique(e *schema.Entity, raw any, path string) (*query.UniqueLookup, error) {
	obj, ok := object(raw)
	if !ok {
		return nil, s.fail(path, veloxq.ErrMalformedInput, "expected object, got %s", typeName(raw))
	}
	var (
		keys   = e.UniqueKeys()
		flat   = make(map[string]any)
		nested = make(map[string]map[string]any)
		keyOf  = make(map[string]string) // field name to raw key.
	)
	for _, k := range sortedKeys(obj) {
		p := join(path, k)
		if ck, ok := e.CompoundKey(k); ok {
			members, ok := object(obj[k])
			if !ok {
				return nil, s.fail(p, veloxq.ErrMalformedInput, "expected object, got %s", typeName(obj[k]))
			}
			for _, m := range sortedKeys(members) {
				if !slices.Contains(ck.Fields, s.resolve(e, m)) {
					return nil, s.fail(join(p, m), veloxq.ErrUnknownField, "%q is not a member of %s", m, ck.Name)
				}
			}
			nested[ck.Name] = members
			continue
		}
		name := s.resolve(e, k)
		if _, ok := e.Field(name); !ok {
			return nil, s.fail(p, veloxq.ErrUnknownField, "%s has no field %q", e.Name, k)
		}
		if prev, ok := keyOf[name]; ok {
			return nil, s.fail(p, veloxq.ErrMalformedInput, "field %q is also given as %q", name, prev)
		}
		keyOf[name] = k
		flat[name] = obj[k]
	}

	type partial struct {
		key              schema.UniqueKey
		missing, present []string
	}
	var (
		found    []query.UniqueKey
		partials []partial
		used     = make(map[string]bool)
	)
	for _, k := range keys {
		if !k.Compound() {
			v, ok := flat[k.Fields[0]]
			if !ok {
				continue
			}
			uk, err := s.uniqueKey(e, k, []any{v}, []string{join(path, keyOf[k.Fields[0]])})
			if err != nil {
				return nil, err
			}
			used[k.Fields[0]] = true
			found = append(found, uk)
			continue
		}
		if members, ok := nested[k.Name]; ok {
			values, paths := make([]any, len(k.Fields)), make([]string, len(k.Fields))
			byField := make(map[string]any, len(members))
			for m, v := range members {
				byField[s.resolve(e, m)] = v
			}
			for i, f := range k.Fields {
				v, ok := byField[f]
				if !ok {
					return nil, s.fail(join(path, k.Name), veloxq.ErrIncompleteCompoundKey, "%s requires %q", k.Name, f)
				}
				values[i], paths[i] = v, join(join(path, k.Name), f)
			}
			uk, err := s.uniqueKey(e, k, values, paths)
			if err != nil {
				return nil, err
			}
			found = append(found, uk)
			continue
		}
		values, paths := make([]any, len(k.Fields)), make([]string, len(k.Fields))
		var missing, present []string
		for i, f := range k.Fields {
			v, ok := flat[f]
			if !ok {
				missing = append(missing, f)
				continue
			}
			values[i], paths[i] = v, join(path, keyOf[f])
			present = append(present, f)
		}
		if len(missing) > 0 {
			if len(present) > 0 {
				partials = append(partials, partial{key: k, missing: missing, present: present})
			}
			continue
		}
		uk, err := s.uniqueKey(e, k, values, paths)
		if err != nil {
			return nil, err
		}
		for _, f := range k.Fields {
			used[f] = true
		}
		found = append(found, uk)
	}
	// Members that identify a row on their own, or complete another key, do
	// not make a compound key partial.
	for _, pk := range partials {
		for _, f := range pk.present {
			if !used[f] {
				return nil, s.fail(join(path, keyOf[f]), veloxq.ErrIncompleteCompoundKey, "%s also requires %q", pk.key.Name, pk.missing)
			}
		}
	}
	for _, name := range sortedKeys(flat) {
		if !used[name] {
			return nil, s.fail(join(path, keyOf[name]), veloxq.ErrMalformedInput, "field %q does not identify a row", name)
		}
	}
	switch {
	case len(found) == 0:
		return nil, s.fail(path, veloxq.ErrMalformedInput, "no unique identification of %s given", e.Name)
	case len(found) > 1 && s.p.cfg.StrictUnique && !found[0].Primary:
		names := make([]string, len(found))
		for i, k := range found {
			names[i] = k.Name
		}
		return nil, s.fail(path, veloxq.ErrAmbiguousUniqueKey, "input matches %q", names)
	}
	if err := s.node(path); err != nil {
		return nil, err
	}
	return &query.UniqueLookup{Key: found[0], Residual: found[1:]}, nil
}

func (s *state) uniqueKey(e *schema.Entity, k schema.UniqueKey, raw []any, paths []string) (query.UniqueKey, error) {
	uk := query.UniqueKey{
		Name:     k.Name,
		Fields:   k.Fields,
		Values:   make([]any, len(k.Fields)),
		Primary:  k.Primary,
		Compound: k.Compound(),
	}
	for i, name := range k.Fields {
		f, ok := e.Field(name)
		if !ok {
			return uk, s.fail(paths[i], veloxq.ErrUnknownField, "%s has no field %q", e.Name, name)
		}
		if raw[i] == nil {
			return uk, s.fail(paths[i], veloxq.ErrInvalidOperatorForType, "null cannot identify a row")
		}
		v, err := s.operand(typeOf(f), raw[i], paths[i])
		if err != nil {
			return uk, err
		}
		uk.Values[i] = v
	}
	return uk, nil
}

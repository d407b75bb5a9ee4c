package codec

import (
	"fmt"

	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema/field"
)

// Node types of the envelope.
const (
	typeScalar   = "scalar"
	typeLogical  = "logical"
	typeRelation = "relation"
	typeJSON     = "json"
)

type descriptor struct {
	Entity  string       `json:"entity" msgpack:"entity"`
	Unique  *lookup      `json:"unique,omitempty" msgpack:"unique,omitempty"`
	Where   *node        `json:"where,omitempty" msgpack:"where,omitempty"`
	OrderBy []order      `json:"order_by,omitempty" msgpack:"order_by,omitempty"`
	Having  []*aggregate `json:"having,omitempty" msgpack:"having,omitempty"`
	Updates []update     `json:"updates,omitempty" msgpack:"updates,omitempty"`
	Creates []update     `json:"creates,omitempty" msgpack:"creates,omitempty"`
}

// node is the tagged envelope of a query.Node.
type node struct {
	Type string `json:"type" msgpack:"type"`

	Field string  `json:"field,omitempty" msgpack:"field,omitempty"`
	Kind  string  `json:"kind,omitempty" msgpack:"kind,omitempty"`
	Mode  string  `json:"mode,omitempty" msgpack:"mode,omitempty"`
	Conds []*cond `json:"conds,omitempty" msgpack:"conds,omitempty"`

	Op       string  `json:"op,omitempty" msgpack:"op,omitempty"`
	Children []*node `json:"children,omitempty" msgpack:"children,omitempty"`

	Relation   string `json:"relation,omitempty" msgpack:"relation,omitempty"`
	Target     string `json:"target,omitempty" msgpack:"target,omitempty"`
	Quantifier string `json:"quantifier,omitempty" msgpack:"quantifier,omitempty"`
	Inner      *node  `json:"inner,omitempty" msgpack:"inner,omitempty"`
	Null       bool   `json:"null,omitempty" msgpack:"null,omitempty"`

	Path []string `json:"path,omitempty" msgpack:"path,omitempty"`
}

type cond struct {
	Op    string `json:"op" msgpack:"op"`
	Value *value `json:"value,omitempty" msgpack:"value,omitempty"`
	Not   *node  `json:"not,omitempty" msgpack:"not,omitempty"`
}

type aggregate struct {
	Op       string `json:"op" msgpack:"op"`
	Field    string `json:"field,omitempty" msgpack:"field,omitempty"`
	Relation bool   `json:"relation,omitempty" msgpack:"relation,omitempty"`
	Inner    *node  `json:"inner" msgpack:"inner"`
}

type order struct {
	Path      []string `json:"path,omitempty" msgpack:"path,omitempty"`
	Field     string   `json:"field" msgpack:"field"`
	Direction string   `json:"direction" msgpack:"direction"`
	Nulls     string   `json:"nulls,omitempty" msgpack:"nulls,omitempty"`
	Count     bool     `json:"count,omitempty" msgpack:"count,omitempty"`
}

type key struct {
	Name     string   `json:"name" msgpack:"name"`
	Fields   []string `json:"fields" msgpack:"fields"`
	Values   []*value `json:"values" msgpack:"values"`
	Primary  bool     `json:"primary,omitempty" msgpack:"primary,omitempty"`
	Compound bool     `json:"compound,omitempty" msgpack:"compound,omitempty"`
}

type lookup struct {
	Key      key   `json:"key" msgpack:"key"`
	Residual []key `json:"residual,omitempty" msgpack:"residual,omitempty"`
}

type update struct {
	Field string `json:"field" msgpack:"field"`
	Op    string `json:"op" msgpack:"op"`
	Value *value `json:"value" msgpack:"value"`
}

func encodeDescriptor(d *query.Descriptor) (*descriptor, error) {
	doc := &descriptor{Entity: d.Entity}
	var err error
	if d.Unique != nil {
		doc.Unique = &lookup{Key: encodeKey(d.Unique.Key)}
		for _, k := range d.Unique.Residual {
			doc.Unique.Residual = append(doc.Unique.Residual, encodeKey(k))
		}
	}
	if d.Where != nil {
		if doc.Where, err = encodeNode(d.Where); err != nil {
			return nil, err
		}
	}
	for _, o := range d.OrderBy {
		doc.OrderBy = append(doc.OrderBy, order{
			Path:      o.Path,
			Field:     o.Field,
			Direction: o.Direction.String(),
			Nulls:     o.Nulls.String(),
			Count:     o.Count,
		})
	}
	for _, h := range d.Having {
		inner, err := encodeNode(h.Inner)
		if err != nil {
			return nil, err
		}
		doc.Having = append(doc.Having, &aggregate{Op: h.Op.String(), Field: h.Field, Relation: h.Relation, Inner: inner})
	}
	doc.Updates = encodeUpdates(d.Updates)
	doc.Creates = encodeUpdates(d.Creates)
	return doc, nil
}

func encodeKey(k query.UniqueKey) key {
	out := key{Name: k.Name, Fields: k.Fields, Primary: k.Primary, Compound: k.Compound}
	for _, v := range k.Values {
		out.Values = append(out.Values, encodeValue(v))
	}
	return out
}

func encodeUpdates(ops []query.UpdateOp) []update {
	var out []update
	for _, op := range ops {
		name := op.Op.String()
		if op.Op == query.NullableSet {
			name = "nullable_set"
		}
		out = append(out, update{Field: op.Field, Op: name, Value: encodeValue(op.Value)})
	}
	return out
}

func encodeNode(n query.Node) (*node, error) {
	switch n := n.(type) {
	case *query.ScalarFilter:
		out := &node{Type: typeScalar, Field: n.Field, Kind: n.Kind.String()}
		if n.Mode != query.ModeDefault {
			out.Mode = n.Mode.String()
		}
		for _, c := range n.Conds {
			ec := &cond{Op: c.Op.String()}
			if c.Op == query.OpNot {
				not, err := encodeNode(c.Not)
				if err != nil {
					return nil, err
				}
				ec.Not = not
			} else {
				ec.Value = encodeValue(c.Value)
			}
			out.Conds = append(out.Conds, ec)
		}
		return out, nil
	case *query.LogicalFilter:
		out := &node{Type: typeLogical, Op: n.Op.String()}
		for _, c := range n.Children {
			ec, err := encodeNode(c)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, ec)
		}
		return out, nil
	case *query.RelationFilter:
		out := &node{
			Type:       typeRelation,
			Relation:   n.Relation,
			Target:     n.Target,
			Quantifier: n.Quantifier.String(),
			Null:       n.Null,
		}
		if n.Inner != nil {
			inner, err := encodeNode(n.Inner)
			if err != nil {
				return nil, err
			}
			out.Inner = inner
		}
		return out, nil
	case *query.JSONFilter:
		out := &node{Type: typeJSON, Field: n.Field, Path: n.Path}
		for _, c := range n.Conds {
			out.Conds = append(out.Conds, &cond{Op: c.Op.String(), Value: encodeValue(c.Value)})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("codec: unexpected node %T", n)
	}
}

func (d *descriptor) decode() (*query.Descriptor, error) {
	out := &query.Descriptor{Entity: d.Entity}
	var err error
	if d.Unique != nil {
		out.Unique = &query.UniqueLookup{Residual: []query.UniqueKey{}}
		if out.Unique.Key, err = d.Unique.Key.decode(); err != nil {
			return nil, err
		}
		for _, k := range d.Unique.Residual {
			uk, err := k.decode()
			if err != nil {
				return nil, err
			}
			out.Unique.Residual = append(out.Unique.Residual, uk)
		}
	}
	if d.Where != nil {
		if out.Where, err = d.Where.decode(); err != nil {
			return nil, err
		}
	}
	for _, o := range d.OrderBy {
		t, err := o.decode()
		if err != nil {
			return nil, err
		}
		out.OrderBy = append(out.OrderBy, t)
	}
	for _, h := range d.Having {
		af, err := h.decode()
		if err != nil {
			return nil, err
		}
		out.Having = append(out.Having, af)
	}
	if out.Updates, err = decodeUpdates(d.Updates); err != nil {
		return nil, err
	}
	if out.Creates, err = decodeUpdates(d.Creates); err != nil {
		return nil, err
	}
	return out, nil
}

func (k key) decode() (query.UniqueKey, error) {
	out := query.UniqueKey{
		Name:     k.Name,
		Fields:   k.Fields,
		Values:   make([]any, len(k.Values)),
		Primary:  k.Primary,
		Compound: k.Compound,
	}
	if len(k.Fields) != len(k.Values) {
		return out, fmt.Errorf("codec: key %s has %d fields and %d values", k.Name, len(k.Fields), len(k.Values))
	}
	for i, v := range k.Values {
		dv, err := v.decode()
		if err != nil {
			return out, err
		}
		out.Values[i] = dv
	}
	return out, nil
}

func (o order) decode() (query.OrderTerm, error) {
	t := query.OrderTerm{Path: o.Path, Field: o.Field, Count: o.Count}
	d, ok := query.ParseDirection(o.Direction)
	if !ok {
		return t, fmt.Errorf("codec: unknown direction %q", o.Direction)
	}
	t.Direction = d
	switch o.Nulls {
	case "":
	case "first":
		t.Nulls = query.NullsFirst
	case "last":
		t.Nulls = query.NullsLast
	default:
		return t, fmt.Errorf("codec: unknown nulls placement %q", o.Nulls)
	}
	return t, nil
}

func (a *aggregate) decode() (*query.AggregateFilter, error) {
	op, ok := query.ParseAggregateOp("_" + a.Op)
	if !ok {
		return nil, fmt.Errorf("codec: unknown aggregate %q", a.Op)
	}
	if a.Inner == nil || a.Inner.Type != typeScalar {
		return nil, fmt.Errorf("codec: aggregate %s has no scalar filter", a.Op)
	}
	inner, err := a.Inner.scalar()
	if err != nil {
		return nil, err
	}
	return &query.AggregateFilter{Op: op, Field: a.Field, Relation: a.Relation, Inner: inner}, nil
}

func decodeUpdates(ops []update) ([]query.UpdateOp, error) {
	var out []query.UpdateOp
	for _, u := range ops {
		op := query.UpdateOp{Field: u.Field}
		if u.Op == "nullable_set" {
			op.Op = query.NullableSet
		} else {
			k, ok := query.ParseUpdateKind(u.Op)
			if !ok {
				return nil, fmt.Errorf("codec: unknown update operator %q", u.Op)
			}
			op.Op = k
		}
		v, err := u.Value.decode()
		if err != nil {
			return nil, err
		}
		op.Value = v
		out = append(out, op)
	}
	return out, nil
}

func (n *node) decode() (query.Node, error) {
	switch n.Type {
	case typeScalar:
		return n.scalar()
	case typeLogical:
		var op query.LogicalOp
		switch n.Op {
		case "AND":
			op = query.And
		case "OR":
			op = query.Or
		case "NOT":
			op = query.Not
		default:
			return nil, fmt.Errorf("codec: unknown logical operator %q", n.Op)
		}
		lf := &query.LogicalFilter{Op: op, Children: make([]query.Node, 0, len(n.Children))}
		for _, c := range n.Children {
			dc, err := c.decode()
			if err != nil {
				return nil, err
			}
			lf.Children = append(lf.Children, dc)
		}
		return lf, nil
	case typeRelation:
		q, ok := query.ParseQuantifier(n.Quantifier)
		if !ok {
			return nil, fmt.Errorf("codec: unknown quantifier %q", n.Quantifier)
		}
		rf := &query.RelationFilter{Relation: n.Relation, Target: n.Target, Quantifier: q, Null: n.Null}
		if n.Inner != nil {
			inner, err := n.Inner.decode()
			if err != nil {
				return nil, err
			}
			rf.Inner = inner
		}
		return rf, nil
	case typeJSON:
		jf := &query.JSONFilter{Field: n.Field, Path: n.Path}
		for _, c := range n.Conds {
			op, ok := query.ParseJSONOp(c.Op)
			if !ok {
				return nil, fmt.Errorf("codec: unknown JSON operator %q", c.Op)
			}
			v, err := c.Value.decode()
			if err != nil {
				return nil, err
			}
			jf.Conds = append(jf.Conds, query.JSONCond{Op: op, Value: v})
		}
		return jf, nil
	default:
		return nil, fmt.Errorf("codec: unknown node type %q", n.Type)
	}
}

func (n *node) scalar() (*query.ScalarFilter, error) {
	kind, err := field.ParseKind(n.Kind)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	sf := &query.ScalarFilter{Field: n.Field, Kind: kind}
	switch n.Mode {
	case "", "default":
	case "insensitive":
		sf.Mode = query.ModeInsensitive
	default:
		return nil, fmt.Errorf("codec: unknown mode %q", n.Mode)
	}
	for _, c := range n.Conds {
		op, ok := query.ParseOp(c.Op)
		if !ok {
			return nil, fmt.Errorf("codec: unknown operator %q", c.Op)
		}
		dc := query.Cond{Op: op}
		if op == query.OpNot {
			if c.Not == nil {
				return nil, fmt.Errorf("codec: not operator of %s has no filter", n.Field)
			}
			if dc.Not, err = c.Not.scalar(); err != nil {
				return nil, err
			}
		} else if dc.Value, err = c.Value.decode(); err != nil {
			return nil, err
		}
		sf.Conds = append(sf.Conds, dc)
	}
	return sf, nil
}

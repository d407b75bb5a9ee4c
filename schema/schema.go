package schema

import (
	"github.com/syssam/veloxq/schema/edge"
	"github.com/syssam/veloxq/schema/field"
	"github.com/syssam/veloxq/schema/index"
)

// Registry supplies entity metadata to the parser. Implementations must be
// safe for concurrent use and must not mutate entities they have returned.
type Registry interface {
	// Entity returns the entity with the given name. An unknown name must
	// produce an error wrapping veloxq.ErrUnknownEntity.
	Entity(name string) (*Entity, error)
}

// Field is implemented by field builders.
type Field interface {
	Descriptor() *field.Descriptor
}

// Edge is implemented by relation builders.
type Edge interface {
	Descriptor() *edge.Descriptor
}

// Index is implemented by index builders.
type Index interface {
	Descriptor() *index.Descriptor
}

// Mixin is a reusable set of fields and indexes.
type Mixin interface {
	Fields() []Field
	Indexes() []Index
}

// Entity holds the metadata of one entity.
type Entity struct {
	Name      string
	Fields    []*field.Descriptor
	Relations []*edge.Descriptor
	Indexes   []*index.Descriptor
}

// Definition builds an Entity.
type Definition struct {
	e *Entity
}

// Define starts the definition of an entity.
func Define(name string) *Definition {
	return &Definition{e: &Entity{Name: name}}
}

// Fields appends fields to the entity.
func (d *Definition) Fields(fields ...Field) *Definition {
	for _, f := range fields {
		d.e.Fields = append(d.e.Fields, f.Descriptor())
	}
	return d
}

// Edges appends relations to the entity.
func (d *Definition) Edges(edges ...Edge) *Definition {
	for _, e := range edges {
		d.e.Relations = append(d.e.Relations, e.Descriptor())
	}
	return d
}

// Indexes appends indexes to the entity.
func (d *Definition) Indexes(indexes ...Index) *Definition {
	for _, i := range indexes {
		d.e.Indexes = append(d.e.Indexes, i.Descriptor())
	}
	return d
}

// Mixin appends the fields and indexes of each mixin. Call it before Fields
// to declare the mixin fields first.
func (d *Definition) Mixin(mixins ...Mixin) *Definition {
	for _, m := range mixins {
		d.Fields(m.Fields()...)
		d.Indexes(m.Indexes()...)
	}
	return d
}

// Entity returns the defined entity.
func (d *Definition) Entity() *Entity {
	return d.e
}

// Field returns the field with the given name.
func (e *Entity) Field(name string) (*field.Descriptor, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Relation returns the relation with the given name.
func (e *Entity) Relation(name string) (*edge.Descriptor, bool) {
	for _, r := range e.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// UniqueKey is one way of identifying a single row of an entity.
type UniqueKey struct {
	Name    string   // lookup key; the field name for single-field keys.
	Fields  []string // member fields in key order.
	Primary bool     // primary identifier.
}

// Compound reports whether the key spans more than one field.
func (k UniqueKey) Compound() bool {
	return len(k.Fields) > 1
}

// UniqueKeys returns the identifications of the entity in precedence order:
// the primary key first, then unique fields in declaration order, then
// compound unique indexes in declaration order.
func (e *Entity) UniqueKeys() []UniqueKey {
	var (
		keys    []UniqueKey
		seen    = make(map[string]bool)
		primary []UniqueKey
	)
	add := func(k UniqueKey) {
		if seen[k.Name] {
			return
		}
		seen[k.Name] = true
		if k.Primary {
			primary = append(primary, k)
			return
		}
		keys = append(keys, k)
	}
	for _, f := range e.Fields {
		if f.ID || f.Unique {
			add(UniqueKey{Name: f.Name, Fields: []string{f.Name}, Primary: f.ID})
		}
	}
	for _, idx := range e.Indexes {
		if !idx.Unique || len(idx.Fields) == 0 {
			continue
		}
		name := idx.Name()
		if len(idx.Fields) == 1 {
			name = idx.Fields[0]
		}
		add(UniqueKey{Name: name, Fields: idx.Fields, Primary: idx.Primary})
	}
	return append(primary, keys...)
}

// CompoundKey returns the compound unique key with the given name.
func (e *Entity) CompoundKey(name string) (UniqueKey, bool) {
	for _, k := range e.UniqueKeys() {
		if k.Compound() && k.Name == name {
			return k, true
		}
	}
	return UniqueKey{}, false
}

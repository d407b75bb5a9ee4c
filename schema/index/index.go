// Package index provides builders describing multi-field keys of an entity.
//
// Only unique indexes take part in query validation: a unique index over
// several fields is a compound unique key, addressed in lookups by its name
// (the member fields joined by "_" unless a StorageKey is set):
//
//	index.Fields("identifier", "token").Unique()          // identifier_token
//	index.Fields("quote_id", "vehicle_id").Primary()      // compound primary key
package index

import "strings"

// A Descriptor for index configuration.
type Descriptor struct {
	Fields     []string // member fields, in key order.
	Unique     bool     // unique index.
	Primary    bool     // compound primary key; implies Unique.
	StorageKey string   // key name.
}

// Builder for indexes.
type Builder struct {
	desc *Descriptor
}

// Fields creates an index on the given fields.
func Fields(fields ...string) *Builder {
	return &Builder{desc: &Descriptor{Fields: fields}}
}

// Unique sets the index to be unique.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Primary marks the index as the compound primary key of the entity.
func (b *Builder) Primary() *Builder {
	b.desc.Primary = true
	b.desc.Unique = true
	return b
}

// StorageKey sets the name of the key.
func (b *Builder) StorageKey(key string) *Builder {
	b.desc.StorageKey = key
	return b
}

// Descriptor returns the index descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// Name returns the key name: the storage key if set, otherwise the member
// fields joined by "_".
func (d *Descriptor) Name() string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return strings.Join(d.Fields, "_")
}

package edge

import "fmt"

// Cardinality of a relation.
type Cardinality uint8

// Relation cardinalities.
const (
	Many Cardinality = iota
	One
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	default:
		return fmt.Sprintf("Cardinality(%d)", c)
	}
}

// A Descriptor for relation configuration.
type Descriptor struct {
	Name     string // relation name.
	Type     string // target entity name.
	Unique   bool   // to-one relation.
	Required bool   // to-one relation that is never absent.
	Comment  string // relation comment.
}

// Builder for relations.
type Builder struct {
	desc *Descriptor
}

// To defines a relation to the target entity. Without Unique it is to-many.
func To(name, target string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: target}}
}

// Unique makes the relation to-one.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Required indicates that a to-one relation is never absent.
func (b *Builder) Required() *Builder {
	b.desc.Required = true
	return b
}

// Comment sets the comment of the relation.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the relation descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// Cardinality returns the cardinality of the relation.
func (d *Descriptor) Cardinality() Cardinality {
	if d.Unique {
		return One
	}
	return Many
}

// Nillable reports whether a to-one relation may be absent.
func (d *Descriptor) Nillable() bool {
	return d.Unique && !d.Required
}

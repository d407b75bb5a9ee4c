// Package mixin provides common field sets for entity definitions.
//
// Available mixins:
//   - CreateTime: created_at timestamp
//   - UpdateTime: updated_at timestamp
//   - Time: CreateTime and UpdateTime
//   - ID: UUID primary key
//   - SoftDelete: nullable deleted_at timestamp
//   - TenantID: tenant_id, indexed
//   - TimeSoftDelete: Time and SoftDelete
//
// Usage:
//
//	schema.Define("Trip").
//	    Mixin(mixin.ID{}, mixin.Time{}).
//	    Fields(field.Int("passengers"))
//
// Custom mixins embed Schema and override what they need:
//
//	type Audit struct{ mixin.Schema }
//
//	func (Audit) Fields() []schema.Field {
//	    return []schema.Field{field.String("created_by")}
//	}
package mixin

import (
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/field"
	"github.com/syssam/veloxq/schema/index"
)

// Schema is the default implementation of schema.Mixin. It declares
// nothing.
type Schema struct{}

// Fields of the mixin.
func (Schema) Fields() []schema.Field { return nil }

// Indexes of the mixin.
func (Schema) Indexes() []schema.Index { return nil }

var _ schema.Mixin = Schema{}

// CreateTime adds the created_at field, set by the database on insert.
type CreateTime struct{ Schema }

// Fields of the create time mixin.
func (CreateTime) Fields() []schema.Field {
	return []schema.Field{
		field.Time("created_at").Default(),
	}
}

// UpdateTime adds the updated_at field, set by the database on every write.
type UpdateTime struct{ Schema }

// Fields of the update time mixin.
func (UpdateTime) Fields() []schema.Field {
	return []schema.Field{
		field.Time("updated_at").Default(),
	}
}

// Time composes CreateTime and UpdateTime.
type Time struct{ Schema }

// Fields of the time mixin.
func (Time) Fields() []schema.Field {
	return append(
		CreateTime{}.Fields(),
		UpdateTime{}.Fields()...,
	)
}

// ID adds a generated UUID primary key.
type ID struct{ Schema }

// Fields of the ID mixin.
func (ID) Fields() []schema.Field {
	return []schema.Field{
		field.UUID("id").ID().Default(),
	}
}

// SoftDelete adds deleted_at. Live rows are selected with
// {"deleted_at": null}.
type SoftDelete struct{ Schema }

// Fields of the SoftDelete mixin.
func (SoftDelete) Fields() []schema.Field {
	return []schema.Field{
		field.Time("deleted_at").Optional().Nillable(),
	}
}

// TenantID adds tenant_id and an index on it.
type TenantID struct{ Schema }

// Fields of the TenantID mixin.
func (TenantID) Fields() []schema.Field {
	return []schema.Field{
		field.String("tenant_id").Comment("owning tenant"),
	}
}

// Indexes of the TenantID mixin.
func (TenantID) Indexes() []schema.Index {
	return []schema.Index{
		index.Fields("tenant_id"),
	}
}

// TimeSoftDelete composes Time and SoftDelete.
type TimeSoftDelete struct{ Schema }

// Fields of the TimeSoftDelete mixin.
func (TimeSoftDelete) Fields() []schema.Field {
	return append(
		Time{}.Fields(),
		SoftDelete{}.Fields()...,
	)
}

var (
	_ schema.Mixin = CreateTime{}
	_ schema.Mixin = UpdateTime{}
	_ schema.Mixin = Time{}
	_ schema.Mixin = ID{}
	_ schema.Mixin = SoftDelete{}
	_ schema.Mixin = TenantID{}
	_ schema.Mixin = TimeSoftDelete{}
)

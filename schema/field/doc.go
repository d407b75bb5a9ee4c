// Package field provides fluent builders describing the scalar fields of an entity.
//
// Field names follow database conventions (snake_case):
//
//	field.String("email_address").Unique()
//	field.Float("quote_total")
//	field.Bool("is_customer")
//	field.Time("created_at").Default()
//	field.JSON("meta_data").Nillable()
//	field.Enum("status").Values("pending", "confirmed", "cancelled")
//	field.UUID("id").ID()
//
// # Kinds
//
// Every field has one scalar Kind which decides the filter operators and
// update operators that are legal on it:
//
//	KindString   equals in notIn lt lte gt gte contains startsWith endsWith not
//	KindInt      equals in notIn lt lte gt gte not, arithmetic updates
//	KindFloat    equals in notIn lt lte gt gte not, arithmetic updates
//	KindTime     equals in notIn lt lte gt gte not
//	KindBool     equals not
//	KindEnum     equals in notIn not
//	KindJSON     JSON filters and null sentinels
//
// # Nullability
//
// As in the ORM, input requirements are separate from nullability:
//
//	// Optional: not required on create, never NULL
//	field.String("role").Optional()
//
//	// Nillable: column may hold NULL; filters and updates accept null
//	field.String("nickname").Nillable()
package field

// Package introspect derives entities from a live database schema.
//
// Tables are read with Atlas and mapped to entities: columns become fields
// by their column type, the primary key becomes the identifier, unique
// indexes become unique fields or compound keys, and foreign keys become
// relations in both directions.
//
//	db, _ := sql.Open("sqlite", "file:app.db")
//	reg, err := introspect.Inspect(ctx, db, introspect.SQLite, "")
package introspect

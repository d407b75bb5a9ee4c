// Package edge provides fluent builders describing the relations of an entity.
//
// Relation cardinality is determined by the Unique() modifier:
//
//	// To-many: a Trip has many Locations
//	edge.To("locations", "Location")
//
//	// To-one, nullable: a Trip may have a Driver
//	edge.To("driver", "Driver").Unique()
//
//	// To-one, required: a Trip always belongs to a Customer
//	edge.To("customer", "Customer").Unique().Required()
//
// To-many relations are filtered with some/every/none, to-one relations with
// is/isNot.
package edge

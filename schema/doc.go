// Package schema describes entities as the query grammar sees them, and
// declares the Registry interface through which the parser obtains them.
//
// It ties together its subpackages:
//
//   - [field]: scalar fields and their kinds
//   - [edge]: relations and their cardinality
//   - [index]: compound unique keys
//
// # Quick Start
//
//	quote := schema.Define("Quote").
//	    Fields(
//	        field.UUID("id").ID(),
//	        field.Float("quote_total"),
//	        field.JSON("meta_data").Nillable(),
//	    ).
//	    Edges(
//	        edge.To("trips", "Trip"),
//	        edge.To("customer", "Customer").Unique().Required(),
//	    ).
//	    Indexes(
//	        index.Fields("identifier", "token").Unique(),
//	    ).
//	    Entity()
//
// Entities are read-only once handed to a registry; every resolver treats
// them as shared immutable state.
package schema

// Package veloxq validates query and mutation inputs against entity metadata.
//
// A raw filter, unique lookup, ordering, aggregate predicate or update object,
// as decoded from JSON, YAML or a GraphQL literal, is checked against the
// fields and relations a schema registry reports for an entity, and normalized
// into an immutable query descriptor ready to be handed to a query executor:
//
//	reg, _ := registry.LoadFile("schema.yaml")
//	p, _ := parse.New(reg)
//	where, err := p.Where("Quote", map[string]any{
//	    "quote_total": map[string]any{"gte": 100, "lt": 500},
//	})
//
// The root package holds the error taxonomy shared by all subpackages:
//
//	if veloxq.IsCardinalityMismatch(err) {
//	    // e.g. `is` used on a to-many relation
//	}
//
// Subpackages:
//
//   - schema, schema/field, schema/edge, schema/index: entity metadata and the Registry interface
//   - registry, registry/introspect: registry implementations (documents, live databases)
//   - query: the descriptor model (filter nodes, aggregates, unique keys, updates)
//   - parse: the resolvers turning raw input into descriptors
//   - codec: wire encoding of descriptors for executors
//   - contrib/graphql: GraphQL operations to parser requests
package veloxq

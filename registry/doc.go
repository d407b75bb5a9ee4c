// Package registry provides schema.Registry implementations: an in-memory
// registry built from entity definitions, a loader for YAML and JSON registry
// documents, and a Watcher that reloads a document when it changes.
//
// A registry document lists entities with their fields, relations and
// indexes:
//
//	entities:
//	  - name: Flight
//	    fields:
//	      - {name: id, type: uuid, id: true, default: true}
//	      - {name: trip_id, type: string, unique: true}
//	      - {name: identifier, type: string}
//	      - {name: token, type: int}
//	    indexes:
//	      - {fields: [identifier, token], unique: true}
//
// Documents are validated against an embedded JSON Schema before they are
// decoded.
package registry

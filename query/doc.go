// Package query holds the validated query descriptor model produced by package
// parse: filter nodes, aggregate filters, unique lookups, sort terms and
// update operations.
//
// Filters form a closed union under the Node interface:
//
//	*ScalarFilter    per-field operators, e.g. `quote_total >= 100 && quote_total < 500`
//	*LogicalFilter   AND / OR / NOT over child filters
//	*RelationFilter  some / every / none / is / isNot over related rows
//	*JSONFilter      JSON equality, null sentinels, path and containment checks
//
// Every type has a stable String form used in logs and tests:
//
//	(name == "a8m" && some(trips, passengers > 2))
//	!(status in ["cancelled","expired"])
//	is(customer, nil)
//	meta_data["tier"] == "gold"
package query

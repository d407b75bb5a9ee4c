package parse_test

import (
	"testing"

	"github.com/syssam/veloxq/parse"
	"github.com/syssam/veloxq/registry"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/edge"
	"github.com/syssam/veloxq/schema/field"
	"github.com/syssam/veloxq/schema/index"

	"github.com/stretchr/testify/require"
)

// trips is the registry used by the parser tests.
var trips = registry.MustNew(
	schema.Define("User").
		Fields(
			field.UUID("id").ID().Default(),
			field.String("email").Unique(),
			field.String("name"),
			field.String("nickname").Nillable().Optional(),
			field.Bool("is_customer"),
			field.Int("age").Nillable().Optional(),
			field.JSON("meta_data").Nillable(),
			field.JSON("settings").Default(),
			field.Enum("role").Values("admin", "member").Default(),
			field.Time("created_at").Default(),
		).
		Edges(edge.To("trips", "Trip")).
		Entity(),
	schema.Define("Trip").
		Fields(
			field.Int("id").ID().Default(),
			field.Int("passengers"),
			field.Float("quote_total"),
			field.String("notes").Nillable().Optional(),
			field.Enum("status").Values("pending", "confirmed", "cancelled").Default(),
			field.Time("departs_at"),
		).
		Edges(
			edge.To("customer", "User").Unique().Required(),
			edge.To("driver", "User").Unique(),
			edge.To("locations", "Location"),
			edge.To("flights", "Flight"),
		).
		Entity(),
	schema.Define("Location").
		Fields(
			field.Int("id").ID().Default(),
			field.String("name"),
			field.Float("lat").Nillable().Optional(),
		).
		Edges(edge.To("trip", "Trip").Unique().Required()).
		Entity(),
	schema.Define("Flight").
		Fields(
			field.UUID("id").ID().Default(),
			field.String("trip_id").Unique(),
			field.String("identifier"),
			field.Int("token"),
			field.String("carrier"),
			field.Int("number"),
		).
		Indexes(
			index.Fields("identifier", "token").Unique(),
			index.Fields("carrier", "number").Unique().StorageKey("flight_code"),
			index.Fields("trip_id", "carrier").Unique(),
		).
		Entity(),
)

func newParser(t testing.TB, opts ...parse.Option) *parse.Parser {
	t.Helper()
	p, err := parse.New(trips, opts...)
	require.NoError(t, err)
	return p
}

// obj is shorthand for raw object inputs.
type obj = map[string]any

// arr is shorthand for raw list inputs.
type arr = []any

package introspect_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	atlas "ariga.io/atlas/sql/schema"
	"github.com/DATA-DOG/go-sqlmock"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/registry/introspect"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/edge"
	"github.com/syssam/veloxq/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func column(name string, t atlas.Type, null bool) *atlas.Column {
	return &atlas.Column{Name: name, Type: &atlas.ColumnType{Type: t, Null: null}}
}

func primaryKey(cols ...*atlas.Column) *atlas.Index {
	idx := &atlas.Index{Unique: true}
	for _, c := range cols {
		idx.Parts = append(idx.Parts, &atlas.IndexPart{C: c})
	}
	return idx
}

func uniqueIndex(name string, cols ...*atlas.Column) *atlas.Index {
	idx := primaryKey(cols...)
	idx.Name = name
	return idx
}

func foreignKey(symbol string, t *atlas.Table, c *atlas.Column, ref *atlas.Table) *atlas.ForeignKey {
	return &atlas.ForeignKey{
		Symbol:     symbol,
		Table:      t,
		Columns:    []*atlas.Column{c},
		RefTable:   ref,
		RefColumns: []*atlas.Column{ref.Columns[0]},
	}
}

func tripSchema() *atlas.Schema {
	var (
		userID   = column("id", &atlas.IntegerType{T: "bigint"}, false)
		email    = column("email", &atlas.StringType{T: "varchar", Size: 255}, false)
		users    = &atlas.Table{Name: "users", PrimaryKey: primaryKey(userID)}
		tripID   = column("id", &atlas.IntegerType{T: "bigint"}, false)
		customer = column("customer_id", &atlas.IntegerType{T: "bigint"}, false)
		driver   = column("driver_id", &atlas.IntegerType{T: "bigint"}, true)
		trips    = &atlas.Table{Name: "trips", PrimaryKey: primaryKey(tripID)}
		tagTrip  = column("trip_id", &atlas.IntegerType{T: "bigint"}, false)
		tag      = column("tag", &atlas.StringType{T: "varchar"}, false)
		tags     = &atlas.Table{Name: "trip_tags", PrimaryKey: primaryKey(tagTrip, tag)}
	)
	users.Columns = []*atlas.Column{
		userID,
		email,
		column("role", &atlas.EnumType{T: "enum", Values: []string{"admin", "member"}}, false),
		column("avatar", &atlas.BinaryType{T: "blob"}, true),
		column("settings", &atlas.JSONType{T: "json"}, true),
	}
	users.Indexes = []*atlas.Index{uniqueIndex("users_email", email)}
	trips.Columns = []*atlas.Column{
		tripID,
		column("quote_total", &atlas.DecimalType{T: "decimal", Precision: 10, Scale: 2}, false),
		customer,
		driver,
	}
	trips.ForeignKeys = []*atlas.ForeignKey{
		foreignKey("trips_customer", trips, customer, users),
		foreignKey("trips_driver", trips, driver, users),
	}
	tags.Columns = []*atlas.Column{tagTrip, tag}
	tags.ForeignKeys = []*atlas.ForeignKey{foreignKey("trip_tags_trip", tags, tagTrip, trips)}
	return &atlas.Schema{Name: "public", Tables: []*atlas.Table{users, trips, tags}}
}

func byName(t *testing.T, entities []*schema.Entity, name string) *schema.Entity {
	t.Helper()
	for _, e := range entities {
		if e.Name == name {
			return e
		}
	}
	require.FailNow(t, "entity not found", name)
	return nil
}

func TestFromSchema(t *testing.T) {
	entities, err := introspect.FromSchema(tripSchema())
	require.NoError(t, err)
	require.Len(t, entities, 3)

	user := byName(t, entities, "User")
	names := make([]string, len(user.Fields))
	for i, f := range user.Fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"id", "email", "role", "settings"}, names)

	id, _ := user.Field("id")
	assert.True(t, id.ID)
	assert.True(t, id.Default)
	assert.Equal(t, field.KindInt, id.Kind)
	email, _ := user.Field("email")
	assert.True(t, email.Unique)
	assert.True(t, email.Required())
	role, _ := user.Field("role")
	assert.Equal(t, field.KindEnum, role.Kind)
	assert.Equal(t, []string{"admin", "member"}, role.Values)
	settings, _ := user.Field("settings")
	assert.Equal(t, field.KindJSON, settings.Kind)
	assert.True(t, settings.Nillable)

	trip := byName(t, entities, "Trip")
	total, _ := trip.Field("quote_total")
	assert.Equal(t, field.KindFloat, total.Kind)
	customer, ok := trip.Relation("customer")
	require.True(t, ok)
	assert.Equal(t, "User", customer.Type)
	assert.Equal(t, edge.One, customer.Cardinality())
	assert.False(t, customer.Nillable())
	driver, ok := trip.Relation("driver")
	require.True(t, ok)
	assert.True(t, driver.Nillable())
	tags, ok := trip.Relation("trip_tags")
	require.True(t, ok)
	assert.Equal(t, edge.Many, tags.Cardinality())

	inverse, ok := user.Relation("trips")
	require.True(t, ok)
	assert.Equal(t, "Trip", inverse.Type)
	assert.Equal(t, edge.Many, inverse.Cardinality())
	_, ok = user.Relation("driver_trips")
	assert.True(t, ok)

	tag := byName(t, entities, "TripTag")
	keys := tag.UniqueKeys()
	require.Len(t, keys, 1)
	assert.True(t, keys[0].Primary)
	assert.Equal(t, "trip_id_tag", keys[0].Name)
	rel, ok := tag.Relation("trip")
	require.True(t, ok)
	assert.Equal(t, "Trip", rel.Type)
}

func TestFromSchemaOptions(t *testing.T) {
	entities, err := introspect.FromSchema(tripSchema(), introspect.WithEntityName(func(table string) string {
		return "T_" + table
	}))
	require.NoError(t, err)
	byName(t, entities, "T_users")

	s := &atlas.Schema{Tables: []*atlas.Table{
		{Name: "trip", Columns: []*atlas.Column{column("id", &atlas.IntegerType{T: "int"}, false)}},
		{Name: "trips", Columns: []*atlas.Column{column("id", &atlas.IntegerType{T: "int"}, false)}},
	}}
	_, err = introspect.FromSchema(s)
	require.Error(t, err)
	assert.True(t, veloxq.IsSchemaError(err))
}

func TestEntityName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"users":       "User",
		"flight_legs": "FlightLeg",
		"people":      "Person",
		"categories":  "Category",
	}
	for table, want := range tests {
		t.Run(table, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, introspect.EntityName(table))
		})
	}
}

func TestInspectSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE users (id integer PRIMARY KEY, email text NOT NULL, name text NOT NULL, meta_data json, created_at datetime NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE UNIQUE INDEX users_email ON users (email)`,
		`CREATE TABLE trips (id integer PRIMARY KEY, passengers integer NOT NULL, quote_total real NOT NULL, notes text, customer_id integer NOT NULL REFERENCES users (id))`,
		`CREATE TABLE flights (id integer PRIMARY KEY, trip_id integer NOT NULL REFERENCES trips (id), identifier text NOT NULL, token integer NOT NULL)`,
		`CREATE UNIQUE INDEX flights_trip_id ON flights (trip_id)`,
		`CREATE UNIQUE INDEX flights_identifier_token ON flights (identifier, token)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	reg, err := introspect.Inspect(ctx, db, introspect.SQLite, "")
	require.NoError(t, err)

	user, err := reg.Entity("User")
	require.NoError(t, err)
	email, ok := user.Field("email")
	require.True(t, ok)
	assert.True(t, email.Unique)
	meta, ok := user.Field("meta_data")
	require.True(t, ok)
	assert.Equal(t, field.KindJSON, meta.Kind)
	assert.True(t, meta.Nillable)
	created, ok := user.Field("created_at")
	require.True(t, ok)
	assert.Equal(t, field.KindTime, created.Kind)
	assert.True(t, created.Default)
	trips, ok := user.Relation("trips")
	require.True(t, ok)
	assert.Equal(t, edge.Many, trips.Cardinality())

	trip, err := reg.Entity("Trip")
	require.NoError(t, err)
	customer, ok := trip.Relation("customer")
	require.True(t, ok)
	assert.True(t, customer.Required)
	flight, ok := trip.Relation("flight")
	require.True(t, ok)
	assert.Equal(t, edge.One, flight.Cardinality())

	f, err := reg.Entity("Flight")
	require.NoError(t, err)
	k, ok := f.CompoundKey("identifier_token")
	require.True(t, ok)
	assert.Equal(t, []string{"identifier", "token"}, k.Fields)
}

func TestInspectErrors(t *testing.T) {
	t.Parallel()

	t.Run("dialect", func(t *testing.T) {
		t.Parallel()
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		_, err = introspect.Inspect(context.Background(), db, "oracle", "")
		require.ErrorIs(t, err, veloxq.ErrInvalidConfig)
	})
	for _, dialect := range []string{introspect.MySQL, introspect.Postgres, introspect.SQLite} {
		t.Run(dialect, func(t *testing.T) {
			t.Parallel()
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			mock.ExpectQuery(".*").WillReturnError(errors.New("connection refused"))
			_, err = introspect.Inspect(context.Background(), db, dialect, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "connection refused")
		})
	}
}

package introspect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"github.com/go-openapi/inflect"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/registry"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/edge"
	"github.com/syssam/veloxq/schema/field"
	"github.com/syssam/veloxq/schema/index"
)

// Supported dialects.
const (
	SQLite   = "sqlite3"
	MySQL    = "mysql"
	Postgres = "postgres"
)

type options struct {
	log    *slog.Logger
	naming func(table string) string
}

// Option configures the conversion.
type Option func(*options)

// WithLogger sets the logger used to report skipped columns and indexes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithEntityName sets the function deriving entity names from table names.
// The default singularizes and camel-cases the table name: "flight_legs"
// becomes "FlightLeg".
func WithEntityName(fn func(table string) string) Option {
	return func(o *options) {
		if fn != nil {
			o.naming = fn
		}
	}
}

// EntityName is the default table to entity name mapping.
func EntityName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// Inspect reads the named schema of the database and returns a registry of
// its tables. An empty name selects the connection's current schema.
func Inspect(ctx context.Context, db atlas.ExecQuerier, dialect, name string, opts ...Option) (*registry.Registry, error) {
	drv, err := open(db, dialect)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite && name == "" {
		name = "main"
	}
	s, err := drv.InspectSchema(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("introspect: inspect schema %q: %w", name, err)
	}
	entities, err := FromSchema(s, opts...)
	if err != nil {
		return nil, err
	}
	return registry.New(entities...)
}

func open(db atlas.ExecQuerier, dialect string) (migrate.Driver, error) {
	var (
		drv migrate.Driver
		err error
	)
	switch dialect {
	case SQLite, "sqlite":
		drv, err = sqlite.Open(db)
	case MySQL:
		drv, err = mysql.Open(db)
	case Postgres, "pgx":
		drv, err = postgres.Open(db)
	default:
		return nil, veloxq.NewConfigError("Dialect", dialect, "unsupported dialect")
	}
	if err != nil {
		return nil, fmt.Errorf("introspect: open %s driver: %w", dialect, err)
	}
	return drv, nil
}

// FromSchema converts the tables of s into entities. Columns become fields,
// the primary key becomes the identifier, unique indexes become unique
// fields or compound keys, and every foreign key yields a to-one relation on
// the referencing entity and its inverse on the referenced one. Columns of
// types that cannot be filtered are skipped.
func FromSchema(s *atlas.Schema, opts ...Option) ([]*schema.Entity, error) {
	o := &options{log: slog.Default(), naming: EntityName}
	for _, opt := range opts {
		opt(o)
	}
	var (
		entities = make([]*schema.Entity, 0, len(s.Tables))
		byTable  = make(map[string]*schema.Entity, len(s.Tables))
		owner    = make(map[string]string, len(s.Tables))
	)
	for _, t := range s.Tables {
		e, err := o.entity(t)
		if err != nil {
			return nil, err
		}
		if prev, ok := owner[e.Name]; ok {
			return nil, veloxq.NewSchemaError(e.Name, "", fmt.Sprintf("tables %q and %q map to the same entity", prev, t.Name), nil)
		}
		owner[e.Name] = t.Name
		byTable[t.Name] = e
		entities = append(entities, e)
	}
	for _, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if err := o.relate(byTable, t, fk); err != nil {
				return nil, err
			}
		}
	}
	return entities, nil
}

func (o *options) entity(t *atlas.Table) (*schema.Entity, error) {
	var (
		d      = schema.Define(o.naming(t.Name))
		pk     = columns(t.PrimaryKey)
		unique = make(map[string]bool)
		skip   = make(map[string]bool)
	)
	for _, idx := range t.Indexes {
		if cols := columns(idx); idx.Unique && len(cols) == 1 {
			unique[cols[0]] = true
		}
	}
	for _, c := range t.Columns {
		b, ok := o.field(t, c)
		if !ok {
			skip[c.Name] = true
			continue
		}
		switch {
		case len(pk) == 1 && pk[0] == c.Name:
			b.ID()
			if c.Default != nil || b.Descriptor().Kind == field.KindInt {
				b.Default()
			}
		case unique[c.Name]:
			b.Unique()
		}
		if c.Type != nil && c.Type.Null {
			b.Nillable().Optional()
		}
		if c.Default != nil {
			b.Default()
		}
		d.Fields(b)
	}
	if len(pk) > 1 && !anySkipped(pk, skip) {
		d.Indexes(index.Fields(pk...).Primary())
	}
	for _, idx := range t.Indexes {
		cols := columns(idx)
		switch {
		case !idx.Unique || len(cols) < 2:
			continue
		case len(cols) != len(idx.Parts) || anySkipped(cols, skip):
			o.log.Warn("introspect: skipping unique index", "table", t.Name, "index", idx.Name)
			continue
		}
		d.Indexes(index.Fields(cols...).Unique())
	}
	e := d.Entity()
	for _, f := range e.Fields {
		if f.Err != nil {
			return nil, veloxq.NewSchemaError(e.Name, f.Name, "invalid column", f.Err)
		}
	}
	return e, nil
}

// field maps a column to a field builder by its atlas type.
func (o *options) field(t *atlas.Table, c *atlas.Column) (*field.Builder, bool) {
	if c.Type == nil {
		return nil, false
	}
	switch ct := c.Type.Type.(type) {
	case *atlas.IntegerType:
		return field.Int(c.Name), true
	case *atlas.FloatType, *atlas.DecimalType:
		return field.Float(c.Name), true
	case *atlas.StringType:
		return field.String(c.Name), true
	case *atlas.UUIDType:
		return field.UUID(c.Name), true
	case *atlas.BoolType:
		return field.Bool(c.Name), true
	case *atlas.TimeType:
		return field.Time(c.Name), true
	case *atlas.JSONType:
		return field.JSON(c.Name), true
	case *atlas.EnumType:
		return field.Enum(c.Name).Values(ct.Values...), true
	default:
		o.log.Warn("introspect: skipping column of unsupported type", "table", t.Name, "column", c.Name, "type", c.Type.Raw)
		return nil, false
	}
}

// relate adds the relations of a foreign key. The referencing side is named
// after its column ("customer_id" becomes "customer"); the referenced side
// is the pluralized referencing entity, or its singular when the key is
// unique.
func (o *options) relate(byTable map[string]*schema.Entity, t *atlas.Table, fk *atlas.ForeignKey) error {
	child := byTable[t.Name]
	if fk.RefTable == nil {
		return veloxq.NewSchemaError(child.Name, fk.Symbol, "foreign key references no table", nil)
	}
	parent, ok := byTable[fk.RefTable.Name]
	if !ok {
		o.log.Warn("introspect: skipping foreign key to another schema", "table", t.Name, "constraint", fk.Symbol)
		return nil
	}
	var (
		cols     = make([]string, len(fk.Columns))
		required = true
	)
	for i, c := range fk.Columns {
		cols[i] = c.Name
		required = required && c.Type != nil && !c.Type.Null
	}
	refName := inflect.Underscore(parent.Name)
	name := freeName(child, strings.TrimSuffix(cols[0], "_id"), refName, refName+"_"+strings.Join(cols, "_"))
	b := edge.To(name, parent.Name).Unique()
	if required {
		b.Required()
	}
	child.Relations = append(child.Relations, b.Descriptor())

	inverse, one := inflect.Underscore(child.Name), keyed(child, cols)
	if !one {
		inverse = inflect.Pluralize(inverse)
	}
	ib := edge.To(freeName(parent, inverse, name+"_"+inverse), child.Name)
	if one {
		ib.Unique()
	}
	parent.Relations = append(parent.Relations, ib.Descriptor())
	return nil
}

// keyed reports whether cols identify a row of e on their own.
func keyed(e *schema.Entity, cols []string) bool {
	for _, k := range e.UniqueKeys() {
		if len(k.Fields) == len(cols) && strings.Join(k.Fields, ",") == strings.Join(cols, ",") {
			return true
		}
	}
	return false
}

// freeName returns the first candidate that names no field or relation of e,
// numbering the last candidate when all are taken.
func freeName(e *schema.Entity, candidates ...string) string {
	taken := func(name string) bool {
		_, f := e.Field(name)
		_, r := e.Relation(name)
		return name == "" || f || r
	}
	for _, c := range candidates {
		if !taken(c) {
			return c
		}
	}
	last := candidates[len(candidates)-1]
	for i := 2; ; i++ {
		if c := fmt.Sprintf("%s_%d", last, i); !taken(c) {
			return c
		}
	}
}

func columns(idx *atlas.Index) []string {
	if idx == nil {
		return nil
	}
	cols := make([]string, 0, len(idx.Parts))
	for _, p := range idx.Parts {
		if p.C != nil {
			cols = append(cols, p.C.Name)
		}
	}
	return cols
}

func anySkipped(cols []string, skip map[string]bool) bool {
	for _, c := range cols {
		if skip[c] {
			return true
		}
	}
	return false
}

package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	// Database drivers for inspect --driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/veloxq/registry"
	"github.com/syssam/veloxq/registry/introspect"
)

// drivers maps the --driver flag to the database/sql driver name and the
// introspection dialect.
var drivers = map[string]struct{ sql, dialect string }{
	"sqlite":   {"sqlite", introspect.SQLite},
	"mysql":    {"mysql", introspect.MySQL},
	"postgres": {"postgres", introspect.Postgres},
}

// NewInspectCommand returns the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var driver, dsn, schemaName string

	cmd := &cobra.Command{
		Use:   "inspect --driver <sqlite|mysql|postgres> --dsn <dsn>",
		Short: "Derive a registry document from a database schema",
		Long: `Inspect the tables of a database schema and print the registry document
describing them. Text output is YAML, accepted by check --registry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd, driver, dsn, schemaName)
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "sqlite", "database driver (sqlite|mysql|postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "data source name")
	cmd.Flags().StringVar(&schemaName, "schema", "", "schema to inspect (default: the connection's schema)")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, driver, dsn, schemaName string) error {
	out := opts.formatter(cmd)
	log := opts.logger(out.ErrWriter)
	d, ok := drivers[driver]
	if !ok {
		return fmt.Errorf("unknown driver %q: must be sqlite, mysql or postgres", driver)
	}
	db, err := sql.Open(d.sql, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	log.Debug("inspecting schema", "driver", driver, "schema", schemaName)
	reg, err := introspect.Inspect(cmd.Context(), db, d.dialect, schemaName, introspect.WithLogger(log))
	if err != nil {
		return err
	}
	if out.Format == "json" {
		return out.Success(registry.FromEntities(reg.Entities()...))
	}
	return registry.Encode(out.Writer, reg)
}

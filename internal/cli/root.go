package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veloxq/parse"
)

// RootOptions holds the global flags.
type RootOptions struct {
	Config  string
	Format  string // "text" | "json"
	Verbose bool
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand returns the veloxq command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "veloxq",
		Short: "Validate filter and mutation inputs against an entity registry",
		Long: `veloxq validates where, orderBy, having, unique, update and create inputs
against the entities of a registry document and prints the normalized result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "parser configuration file (yaml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewGraphQLCommand(opts))

	return cmd
}

// logger writes to the error stream so JSON output stays clean.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if o.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// parserOptions returns the parser options given by the flags.
func (o *RootOptions) parserOptions(log *slog.Logger) ([]parse.Option, error) {
	opts := []parse.Option{parse.WithLogger(log)}
	if o.Config == "" {
		return opts, nil
	}
	cfg, err := LoadConfig(o.Config)
	if err != nil {
		return nil, err
	}
	return append(opts, parse.WithConfig(cfg)), nil
}

// LoadConfig reads a YAML parser configuration. Unknown keys are rejected.
func LoadConfig(path string) (parse.Config, error) {
	var cfg parse.Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

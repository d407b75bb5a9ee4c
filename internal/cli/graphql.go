package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/contrib/graphql"
	"github.com/syssam/veloxq/parse"
)

// NewGraphQLCommand returns the graphql command.
func NewGraphQLCommand(rootOpts *RootOptions) *cobra.Command {
	var registryPath, varsPath, operation string

	cmd := &cobra.Command{
		Use:   "graphql --registry <file|dir> <operation-file>",
		Short: "Validate the arguments of a GraphQL operation",
		Long: `Decode a GraphQL operation and validate the arguments of each root field.

camelCase argument keys resolve to snake_case fields. Variables are read
from a JSON file given with --vars.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphQL(rootOpts, cmd, registryPath, varsPath, operation, args[0])
		},
	}
	cmd.Flags().StringVarP(&registryPath, "registry", "r", "", "registry document or directory of documents")
	cmd.Flags().StringVar(&varsPath, "vars", "", "JSON file holding the operation variables")
	cmd.Flags().StringVar(&operation, "operation", "", "operation to run when the document holds several")
	_ = cmd.MarkFlagRequired("registry")

	return cmd
}

func runGraphQL(opts *RootOptions, cmd *cobra.Command, registryPath, varsPath, operation, path string) error {
	out := opts.formatter(cmd)
	log := opts.logger(out.ErrWriter)
	p, reg, err := newParser(opts, registryPath, log, parse.WithFieldResolver(graphql.ResolveField))
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read operation: %w", err)
	}
	vars, err := readVars(varsPath)
	if err != nil {
		return err
	}
	descs, err := graphql.NewDecoder(reg, graphql.WithLogger(log)).Parse(p, string(src), operation, vars)
	if err != nil {
		if veloxq.IsValidationError(err) {
			return out.Reject(err)
		}
		return err
	}
	return out.Descriptors(descs)
}

func readVars(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variables: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var vars map[string]any
	if err := dec.Decode(&vars); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vars, nil
}

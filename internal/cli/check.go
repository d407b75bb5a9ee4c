package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/parse"
	"github.com/syssam/veloxq/registry"
)

// NewCheckCommand returns the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "check --registry <file|dir> <request-file>...",
		Short: "Validate request files against a registry",
		Long: `Validate request files against a registry and print the normalized descriptors.

A request file is a JSON or YAML document holding one request or a list of
requests:

  {"entity": "Trip", "where": {"passengers": {"gte": 2}}, "orderBy": {"departs_at": "desc"}}`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, registryPath, args)
		},
	}
	cmd.Flags().StringVarP(&registryPath, "registry", "r", "", "registry document or directory of documents")
	_ = cmd.MarkFlagRequired("registry")

	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, registryPath string, files []string) error {
	out := opts.formatter(cmd)
	log := opts.logger(out.ErrWriter)
	p, _, err := newParser(opts, registryPath, log)
	if err != nil {
		return err
	}
	var reqs []parse.Request
	for _, name := range files {
		rs, err := ReadRequests(name)
		if err != nil {
			return err
		}
		log.Debug("read requests", "file", name, "count", len(rs))
		reqs = append(reqs, rs...)
	}
	descs, err := p.ParseAll(cmd.Context(), reqs)
	if err != nil {
		if veloxq.IsValidationError(err) {
			return out.Reject(err)
		}
		return err
	}
	return out.Descriptors(descs)
}

// newParser loads the registry and builds a parser configured by the flags.
func newParser(opts *RootOptions, registryPath string, log *slog.Logger, extra ...parse.Option) (*parse.Parser, *registry.Registry, error) {
	reg, err := loadRegistry(registryPath)
	if err != nil {
		return nil, nil, err
	}
	popts, err := opts.parserOptions(log)
	if err != nil {
		return nil, nil, err
	}
	p, err := parse.New(reg, append(popts, extra...)...)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("loaded registry", "path", registryPath, "entities", len(reg.Entities()))
	return p, reg, nil
}

// loadRegistry reads a registry document, or every document of a directory.
func loadRegistry(path string) (*registry.Registry, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if fi.IsDir() {
		return registry.LoadDir(path)
	}
	return registry.LoadFile(path)
}

// ReadRequests reads a JSON or YAML request file holding one request or a
// list of requests. JSON numbers are kept as json.Number.
func ReadRequests(path string) ([]parse.Request, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	var reqs []parse.Request
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = decodeYAML(b, &reqs)
	default:
		err = decodeJSON(b, &reqs)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

func decodeJSON(b []byte, reqs *[]parse.Request) error {
	b = bytes.TrimSpace(b)
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if len(b) > 0 && b[0] == '[' {
		return dec.Decode(reqs)
	}
	var req parse.Request
	if err := dec.Decode(&req); err != nil {
		return err
	}
	*reqs = []parse.Request{req}
	return nil
}

func decodeYAML(b []byte, reqs *[]parse.Request) error {
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return err
	}
	if len(node.Content) == 1 && node.Content[0].Kind == yaml.SequenceNode {
		return node.Decode(reqs)
	}
	var req parse.Request
	if err := node.Decode(&req); err != nil {
		return err
	}
	*reqs = []parse.Request{req}
	return nil
}

package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	js "github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/edge"
	"github.com/syssam/veloxq/schema/field"
	"github.com/syssam/veloxq/schema/index"
)

// Document is the file form of a registry.
type Document struct {
	Entities []*Entity `json:"entities" yaml:"entities"`
}

// Entity is the file form of schema.Entity.
type Entity struct {
	Name      string      `json:"name" yaml:"name"`
	Fields    []*Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Relations []*Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
	Indexes   []*Index    `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// Field is the file form of field.Descriptor. Type "uuid" is a string
// field with the uuid format.
type Field struct {
	Name     string   `json:"name" yaml:"name"`
	Type     string   `json:"type" yaml:"type"`
	Format   string   `json:"format,omitempty" yaml:"format,omitempty"`
	Nillable bool     `json:"nillable,omitempty" yaml:"nillable,omitempty"`
	Optional bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default  bool     `json:"default,omitempty" yaml:"default,omitempty"`
	Unique   bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	ID       bool     `json:"id,omitempty" yaml:"id,omitempty"`
	Values   []string `json:"values,omitempty" yaml:"values,omitempty"`
	Comment  string   `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Relation is the file form of edge.Descriptor.
type Relation struct {
	Name     string `json:"name" yaml:"name"`
	Target   string `json:"target" yaml:"target"`
	Unique   bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Index is the file form of index.Descriptor.
type Index struct {
	Fields  []string `json:"fields" yaml:"fields,flow"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Primary bool     `json:"primary,omitempty" yaml:"primary,omitempty"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
}

//go:embed document.schema.json
var documentSchema string

const documentSchemaURL = "https://veloxq.dev/schema/registry.json"

var compiled = js.MustCompileString(documentSchemaURL, documentSchema)

// Parse decodes and validates a YAML or JSON document.
func Parse(b []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("registry: decode document: %w", err)
	}
	// The validator expects the value model of encoding/json.
	jb, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("registry: decode document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("registry: decode document: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return nil, veloxq.NewSchemaError("", "", "invalid document", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(jb, doc); err != nil {
		return nil, fmt.Errorf("registry: decode document: %w", err)
	}
	return doc, nil
}

// Schema converts the document into entities.
func (d *Document) Schema() ([]*schema.Entity, error) {
	entities := make([]*schema.Entity, 0, len(d.Entities))
	for _, de := range d.Entities {
		def := schema.Define(de.Name)
		for _, df := range de.Fields {
			b, err := df.builder()
			if err != nil {
				return nil, veloxq.NewSchemaError(de.Name, df.Name, "invalid field", err)
			}
			def.Fields(b)
		}
		for _, dr := range de.Relations {
			b := edge.To(dr.Name, dr.Target).Comment(dr.Comment)
			if dr.Unique {
				b.Unique()
			}
			if dr.Required {
				b.Required()
			}
			def.Edges(b)
		}
		for _, di := range de.Indexes {
			b := index.Fields(di.Fields...).StorageKey(di.Name)
			if di.Unique {
				b.Unique()
			}
			if di.Primary {
				b.Primary()
			}
			def.Indexes(b)
		}
		entities = append(entities, def.Entity())
	}
	return entities, nil
}

func (f *Field) builder() (*field.Builder, error) {
	var b *field.Builder
	if strings.EqualFold(f.Type, "uuid") {
		b = field.UUID(f.Name)
	} else {
		kind, err := field.ParseKind(f.Type)
		if err != nil {
			return nil, err
		}
		b = field.New(f.Name, kind)
	}
	if f.Format != "" {
		b.Format(f.Format)
	}
	if len(f.Values) > 0 {
		b.Values(f.Values...)
	}
	if f.Nillable {
		b.Nillable()
	}
	if f.Optional {
		b.Optional()
	}
	if f.Default {
		b.Default()
	}
	if f.Unique {
		b.Unique()
	}
	if f.ID {
		b.ID()
	}
	return b.Comment(f.Comment), nil
}

// FromEntities returns the document form of the entities.
func FromEntities(entities ...*schema.Entity) *Document {
	d := &Document{Entities: make([]*Entity, 0, len(entities))}
	for _, e := range entities {
		de := &Entity{Name: e.Name}
		for _, f := range e.Fields {
			df := &Field{
				Name:     f.Name,
				Type:     f.Kind.String(),
				Nillable: f.Nillable,
				Optional: f.Optional,
				Default:  f.Default,
				Unique:   f.Unique && !f.ID,
				ID:       f.ID,
				Values:   f.Values,
				Comment:  f.Comment,
			}
			if f.Format == field.FormatUUID {
				df.Type = "uuid"
			} else {
				df.Format = f.Format
			}
			de.Fields = append(de.Fields, df)
		}
		for _, r := range e.Relations {
			de.Relations = append(de.Relations, &Relation{
				Name:     r.Name,
				Target:   r.Type,
				Unique:   r.Unique,
				Required: r.Required,
				Comment:  r.Comment,
			})
		}
		for _, idx := range e.Indexes {
			de.Indexes = append(de.Indexes, &Index{
				Fields:  idx.Fields,
				Unique:  idx.Unique && !idx.Primary,
				Primary: idx.Primary,
				Name:    idx.StorageKey,
			})
		}
		d.Entities = append(d.Entities, de)
	}
	return d
}

// Load reads a registry document from r.
func Load(r io.Reader) (*Registry, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("registry: read document: %w", err)
	}
	return load(b)
}

// LoadFile reads a registry document from a file.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read document: %w", err)
	}
	reg, err := load(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// LoadDir reads every .yaml, .yml and .json document of a directory and
// returns a registry holding all their entities, in file name order.
func LoadDir(dir string) (*Registry, error) {
	files, err := documents(dir)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, len(files))
	var eg errgroup.Group
	for i, name := range files {
		eg.Go(func() error {
			b, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("registry: read document: %w", err)
			}
			doc, err := Parse(b)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var entities []*schema.Entity
	for _, doc := range docs {
		es, err := doc.Schema()
		if err != nil {
			return nil, err
		}
		entities = append(entities, es...)
	}
	return New(entities...)
}

// Encode writes the document form of the registry as YAML.
func Encode(w io.Writer, r *Registry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromEntities(r.Entities()...)); err != nil {
		return fmt.Errorf("registry: encode document: %w", err)
	}
	return enc.Close()
}

func load(b []byte) (*Registry, error) {
	doc, err := Parse(b)
	if err != nil {
		return nil, err
	}
	entities, err := doc.Schema()
	if err != nil {
		return nil, err
	}
	return New(entities...)
}

func documents(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

package registry

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/field"
)

// Registry is an immutable set of entities. It implements schema.Registry.
type Registry struct {
	entities []*schema.Entity
	byName   map[string]*schema.Entity
	folded   map[string]*schema.Entity
}

var _ schema.Registry = (*Registry)(nil)

// New validates the entities and returns a registry holding them.
func New(entities ...*schema.Entity) (*Registry, error) {
	if err := Validate(entities...); err != nil {
		return nil, err
	}
	r := &Registry{
		entities: entities,
		byName:   make(map[string]*schema.Entity, len(entities)),
		folded:   make(map[string]*schema.Entity, len(entities)),
	}
	for _, e := range entities {
		r.byName[e.Name] = e
		r.folded[fold(e.Name)] = e
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(entities ...*schema.Entity) *Registry {
	r, err := New(entities...)
	if err != nil {
		panic(err)
	}
	return r
}

// Entity returns the entity with the given name. Names are matched exactly
// first and then case-insensitively.
func (r *Registry) Entity(name string) (*schema.Entity, error) {
	if e, ok := r.byName[name]; ok {
		return e, nil
	}
	if e, ok := r.folded[fold(name)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w %q", veloxq.ErrUnknownEntity, name)
}

// Entities returns the entities in declaration order.
func (r *Registry) Entities() []*schema.Entity {
	return r.entities
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Validate checks that the entities form a consistent schema: names are
// unique, field definitions carry no errors, relations point to known
// entities and indexes name existing fields. All problems are reported.
func Validate(entities ...*schema.Entity) error {
	var (
		errs  []error
		names = make(map[string]string, len(entities))
	)
	for _, e := range entities {
		if e == nil || e.Name == "" {
			errs = append(errs, veloxq.NewSchemaError("", "", "entity name is required", nil))
			continue
		}
		if prev, ok := names[fold(e.Name)]; ok {
			errs = append(errs, veloxq.NewSchemaError(e.Name, "", fmt.Sprintf("conflicts with entity %q", prev), nil))
			continue
		}
		names[fold(e.Name)] = e.Name
	}
	for _, e := range entities {
		if e == nil || e.Name == "" {
			continue
		}
		errs = append(errs, validateEntity(e, names)...)
	}
	return errors.Join(errs...)
}

func validateEntity(e *schema.Entity, entities map[string]string) []error {
	var (
		errs    []error
		members = make(map[string]bool, len(e.Fields)+len(e.Relations))
		ids     int
	)
	for _, f := range e.Fields {
		switch {
		case f.Name == "":
			errs = append(errs, veloxq.NewSchemaError(e.Name, "", "field name is required", nil))
			continue
		case members[f.Name]:
			errs = append(errs, veloxq.NewSchemaError(e.Name, f.Name, "duplicate field", nil))
			continue
		case f.Err != nil:
			errs = append(errs, veloxq.NewSchemaError(e.Name, f.Name, "invalid field", f.Err))
		case f.Kind == 0:
			errs = append(errs, veloxq.NewSchemaError(e.Name, f.Name, "field kind is required", nil))
		}
		members[f.Name] = true
		if f.ID {
			ids++
		}
	}
	if ids > 1 {
		errs = append(errs, veloxq.NewSchemaError(e.Name, "", fmt.Sprintf("%d fields are marked as id", ids), nil))
	}
	for _, r := range e.Relations {
		switch {
		case r.Name == "":
			errs = append(errs, veloxq.NewSchemaError(e.Name, "", "relation name is required", nil))
			continue
		case members[r.Name]:
			errs = append(errs, veloxq.NewSchemaError(e.Name, r.Name, "relation name is already used", nil))
		case entities[fold(r.Type)] == "":
			errs = append(errs, veloxq.NewSchemaError(e.Name, r.Name, fmt.Sprintf("unknown target entity %q", r.Type), nil))
		}
		members[r.Name] = true
	}
	for _, idx := range e.Indexes {
		if len(idx.Fields) == 0 {
			errs = append(errs, veloxq.NewSchemaError(e.Name, "", "index has no fields", nil))
			continue
		}
		if idx.Primary && ids > 0 {
			errs = append(errs, veloxq.NewSchemaError(e.Name, idx.Name(), "primary index on an entity with an id field", nil))
		}
		for _, name := range idx.Fields {
			if f, ok := e.Field(name); !ok {
				errs = append(errs, veloxq.NewSchemaError(e.Name, name, fmt.Sprintf("index %s names an unknown field", idx.Name()), nil))
			} else if idx.Unique && f.Kind == field.KindJSON {
				errs = append(errs, veloxq.NewSchemaError(e.Name, name, "json fields cannot be part of a unique index", nil))
			}
		}
	}
	return errs
}

package graphql

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/parse"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema"
)

// Action is the operation performed by a root field.
type Action uint8

// Root field actions.
const (
	FindMany Action = iota + 1
	FindUnique
	Create
	Update
	Delete
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case FindMany:
		return "findMany"
	case FindUnique:
		return "findUnique"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// mutation field prefixes, matched in order.
var mutations = []struct {
	prefix string
	action Action
}{
	{"create", Create},
	{"update", Update},
	{"delete", Delete},
}

// arguments accepted by each action, mapped to the request part they fill.
var arguments = map[Action]map[string]string{
	FindMany:   {"where": "where", "orderBy": "orderBy", "having": "having"},
	FindUnique: {"where": "unique"},
	Create:     {"data": "create"},
	Update:     {"where": "unique", "data": "update"},
	Delete:     {"where": "unique"},
}

// required arguments of each action.
var required = map[Action][]string{
	Create: {"data"},
	Update: {"where", "data"},
	Delete: {"where"},
}

// Root is one decoded root field of an operation.
type Root struct {
	Key     string // response key: the alias, or the field name.
	Field   string
	Action  Action
	Request parse.Request
}

// Decoder turns GraphQL operations into parser requests.
type Decoder struct {
	reg schema.Registry
	log *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDecoder returns a Decoder resolving root fields against reg.
func NewDecoder(reg schema.Registry, opts ...Option) *Decoder {
	d := &Decoder{reg: reg, log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses src and decodes the root fields of the named operation. An
// empty name selects the only operation of the document. Variables are
// substituted from vars, falling back to the declared defaults.
func (d *Decoder) Decode(src, operation string, vars map[string]any) ([]Root, error) {
	doc, perr := parser.ParseQuery(&ast.Source{Input: src})
	if perr != nil {
		return nil, veloxq.NewValidationError("", "", veloxq.ErrMalformedInput, "%v", perr)
	}
	op, err := pick(doc, operation)
	if err != nil {
		return nil, err
	}
	if op.Operation == ast.Subscription {
		return nil, veloxq.NewValidationError("", "", veloxq.ErrMalformedInput, "subscriptions are not supported")
	}
	if vars, err = variables(doc, op, vars); err != nil {
		return nil, err
	}
	fields, err := rootFields(doc, op.SelectionSet, map[string]bool{})
	if err != nil {
		return nil, err
	}
	roots := make([]Root, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		r, err := d.root(op.Operation, f, vars)
		if err != nil {
			return nil, err
		}
		roots = append(roots, r)
	}
	d.log.Debug("decoded graphql operation", "operation", op.Name, "type", string(op.Operation), "roots", len(roots))
	return roots, nil
}

// Parse decodes the operation and validates each root field with p. Error
// paths are prefixed with the response key of the failing root field.
func (d *Decoder) Parse(p *parse.Parser, src, operation string, vars map[string]any) ([]*query.Descriptor, error) {
	roots, err := d.Decode(src, operation, vars)
	if err != nil {
		return nil, err
	}
	out := make([]*query.Descriptor, len(roots))
	for i, r := range roots {
		desc, err := p.Parse(r.Request)
		if err != nil {
			var verr *veloxq.ValidationError
			if errors.As(err, &verr) {
				prefixed := *verr
				prefixed.Path = join(r.Key, verr.Path)
				return nil, &prefixed
			}
			return nil, err
		}
		out[i] = desc
	}
	return out, nil
}

// Requests returns the requests of roots.
func Requests(roots []Root) []parse.Request {
	reqs := make([]parse.Request, len(roots))
	for i, r := range roots {
		reqs[i] = r.Request
	}
	return reqs
}

// ResolveField maps camelCase input keys to snake_case field and relation
// names. It is meant for parse.WithFieldResolver.
func ResolveField(e *schema.Entity, key string) string {
	if known(e, key) {
		return key
	}
	if s := inflect.Underscore(key); s != key && known(e, s) {
		return s
	}
	return key
}

func known(e *schema.Entity, name string) bool {
	if _, ok := e.Field(name); ok {
		return true
	}
	_, ok := e.Relation(name)
	return ok
}

func (d *Decoder) root(typ ast.Operation, f *ast.Field, vars map[string]any) (Root, error) {
	key := f.Alias
	if key == "" {
		key = f.Name
	}
	r := Root{Key: key, Field: f.Name}
	name, err := r.action(typ)
	if err != nil {
		return Root{}, err
	}
	e, err := d.reg.Entity(name)
	if err != nil {
		if errors.Is(err, veloxq.ErrUnknownEntity) {
			return Root{}, veloxq.NewValidationError("", key, veloxq.ErrUnknownEntity, "field %q names no entity", f.Name)
		}
		return Root{}, err
	}
	r.Request.Entity = e.Name
	accepted := arguments[r.Action]
	seen := make(map[string]bool, len(f.Arguments))
	for _, arg := range f.Arguments {
		path := join(key, arg.Name)
		part, ok := accepted[arg.Name]
		if !ok {
			return Root{}, veloxq.NewValidationError(e.Name, path, veloxq.ErrMalformedInput, "unknown argument for %s", r.Action)
		}
		if seen[arg.Name] {
			return Root{}, veloxq.NewValidationError(e.Name, path, veloxq.ErrMalformedInput, "argument given twice")
		}
		seen[arg.Name] = true
		v, err := arg.Value.Value(vars)
		if err != nil {
			return Root{}, veloxq.NewValidationError(e.Name, path, veloxq.ErrMalformedInput, "%v", err)
		}
		setPart(&r.Request, part, v)
	}
	for _, name := range required[r.Action] {
		if !seen[name] {
			return Root{}, veloxq.NewValidationError(e.Name, join(key, name), veloxq.ErrMalformedInput, "%s requires argument %q", r.Action, name)
		}
	}
	return r, nil
}

// action sets the action of r from its field name and returns the name of
// the entity the field addresses.
func (r *Root) action(typ ast.Operation) (string, error) {
	if typ == ast.Mutation {
		for _, m := range mutations {
			rest, ok := strings.CutPrefix(r.Field, m.prefix)
			if ok && upper(rest) {
				r.Action = m.action
				return rest, nil
			}
		}
		return "", veloxq.NewValidationError("", r.Key, veloxq.ErrMalformedInput, "mutation field %q must start with create, update or delete", r.Field)
	}
	name := inflect.Singularize(r.Field)
	r.Action = FindMany
	if name == r.Field {
		r.Action = FindUnique
	}
	return name, nil
}

func upper(s string) bool {
	c, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(c)
}

func pick(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name != "" {
		if op := doc.Operations.ForName(name); op != nil {
			return op, nil
		}
		return nil, veloxq.NewValidationError("", "", veloxq.ErrMalformedInput, "operation %q not found", name)
	}
	switch len(doc.Operations) {
	case 0:
		return nil, veloxq.NewValidationError("", "", veloxq.ErrMalformedInput, "document has no operation")
	case 1:
		return doc.Operations[0], nil
	default:
		return nil, veloxq.NewValidationError("", "", veloxq.ErrMalformedInput, "operation name required: document has %d operations", len(doc.Operations))
	}
}

// variables returns vars completed with the declared defaults, and checks
// that every variable the operation uses is declared and every non-null
// variable without default is supplied.
func variables(doc *ast.QueryDocument, op *ast.OperationDefinition, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(vars)+len(op.VariableDefinitions))
	for k, v := range vars {
		out[k] = v
	}
	for _, def := range op.VariableDefinitions {
		if _, ok := out[def.Variable]; ok {
			continue
		}
		switch {
		case def.DefaultValue != nil:
			v, err := def.DefaultValue.Value(nil)
			if err != nil {
				return nil, veloxq.NewValidationError("", "$"+def.Variable, veloxq.ErrMalformedInput, "%v", err)
			}
			out[def.Variable] = v
		case def.Type != nil && def.Type.NonNull:
			return nil, veloxq.NewValidationError("", "$"+def.Variable, veloxq.ErrMalformedInput, "required variable not supplied")
		}
	}
	declared := make(map[string]bool, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		declared[def.Variable] = true
	}
	var undeclared string
	walkSelections(doc, op.SelectionSet, map[string]bool{}, func(v *ast.Value) {
		if v.Kind == ast.Variable && !declared[v.Raw] && undeclared == "" {
			undeclared = v.Raw
		}
	})
	if undeclared != "" {
		return nil, veloxq.NewValidationError("", "$"+undeclared, veloxq.ErrMalformedInput, "variable is not declared")
	}
	return out, nil
}

func walkSelections(doc *ast.QueryDocument, set ast.SelectionSet, seen map[string]bool, fn func(*ast.Value)) {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			for _, arg := range sel.Arguments {
				walkValue(arg.Value, fn)
			}
			walkSelections(doc, sel.SelectionSet, seen, fn)
		case *ast.InlineFragment:
			walkSelections(doc, sel.SelectionSet, seen, fn)
		case *ast.FragmentSpread:
			if frag := doc.Fragments.ForName(sel.Name); frag != nil && !seen[sel.Name] {
				seen[sel.Name] = true
				walkSelections(doc, frag.SelectionSet, seen, fn)
			}
		}
	}
}

func walkValue(v *ast.Value, fn func(*ast.Value)) {
	if v == nil {
		return
	}
	fn(v)
	for _, c := range v.Children {
		walkValue(c.Value, fn)
	}
}

// rootFields flattens the root selection set, expanding fragments.
func rootFields(doc *ast.QueryDocument, set ast.SelectionSet, visiting map[string]bool) ([]*ast.Field, error) {
	var fields []*ast.Field
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			fields = append(fields, sel)
		case *ast.InlineFragment:
			inner, err := rootFields(doc, sel.SelectionSet, visiting)
			if err != nil {
				return nil, err
			}
			fields = append(fields, inner...)
		case *ast.FragmentSpread:
			frag := doc.Fragments.ForName(sel.Name)
			if frag == nil {
				return nil, veloxq.NewValidationError("", "", veloxq.ErrMalformedInput, "unknown fragment %q", sel.Name)
			}
			if visiting[sel.Name] {
				return nil, veloxq.NewValidationError("", "", veloxq.ErrMalformedInput, "fragment %q spreads itself", sel.Name)
			}
			visiting[sel.Name] = true
			inner, err := rootFields(doc, frag.SelectionSet, visiting)
			if err != nil {
				return nil, err
			}
			delete(visiting, sel.Name)
			fields = append(fields, inner...)
		}
	}
	return fields, nil
}

func setPart(req *parse.Request, part string, v any) {
	switch part {
	case "where":
		req.Where = v
	case "unique":
		req.Unique = v
	case "orderBy":
		req.OrderBy = v
	case "having":
		req.Having = v
	case "update":
		req.Update = v
	case "create":
		req.Create = v
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	if key == "" {
		return path
	}
	return path + "." + key
}

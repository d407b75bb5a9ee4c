package parse

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema"
)

// Parser validates raw filter, ordering, aggregate and mutation inputs
// against the entities of a registry and returns normalized descriptors.
//
// Raw inputs are trees of map[string]any, []any and literals, as produced
// by encoding/json, YAML decoders or Go code. A Parser is safe for
// concurrent use.
type Parser struct {
	reg     schema.Registry
	cfg     *Config
	log     *slog.Logger
	metrics *metrics
}

// New returns a Parser reading entity metadata from reg.
func New(reg schema.Registry, opts ...Option) (*Parser, error) {
	if reg == nil {
		return nil, veloxq.NewConfigError("Registry", nil, "registry cannot be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	p := &Parser{reg: reg, cfg: cfg, log: cfg.Logger}
	if cfg.Registerer != nil {
		m, err := newMetrics(cfg.Registerer)
		if err != nil {
			return nil, veloxq.NewConfigError("Registerer", nil, err.Error())
		}
		p.metrics = m
	}
	return p, nil
}

// Config returns a copy of the parser configuration.
func (p *Parser) Config() Config {
	return *p.cfg
}

// Where validates a where-object. A nil or empty input yields a nil node,
// which matches every row.
func (p *Parser) Where(entity string, raw any) (_ query.Node, err error) {
	defer p.observe("where", entity, time.Now(), &err)
	s, e, err := p.begin(entity)
	if err != nil {
		return nil, err
	}
	return s.where(e, raw, "where")
}

// WhereUnique validates an input identifying a single row.
func (p *Parser) WhereUnique(entity string, raw any) (_ *query.UniqueLookup, err error) {
	defer p.observe("unique", entity, time.Now(), &err)
	s, e, err := p.begin(entity)
	if err != nil {
		return nil, err
	}
	return s.unique(e, raw, "unique")
}

// OrderBy validates an ordering input.
func (p *Parser) OrderBy(entity string, raw any) (_ []query.OrderTerm, err error) {
	defer p.observe("order_by", entity, time.Now(), &err)
	s, e, err := p.begin(entity)
	if err != nil {
		return nil, err
	}
	return s.orderBy(e, raw, "orderBy")
}

// Update validates an update input and returns one operation per assigned
// field, in field declaration order.
func (p *Parser) Update(entity string, raw any) (_ []query.UpdateOp, err error) {
	defer p.observe("update", entity, time.Now(), &err)
	s, e, err := p.begin(entity)
	if err != nil {
		return nil, err
	}
	return s.update(e, raw, "update")
}

// Create validates a create input. Every required field must be assigned.
func (p *Parser) Create(entity string, raw any) (_ []query.UpdateOp, err error) {
	defer p.observe("create", entity, time.Now(), &err)
	s, e, err := p.begin(entity)
	if err != nil {
		return nil, err
	}
	return s.create(e, raw, "create")
}

// AggregateHaving validates a group-by having input.
func (p *Parser) AggregateHaving(entity string, raw any) (_ []*query.AggregateFilter, err error) {
	defer p.observe("having", entity, time.Now(), &err)
	s, e, err := p.begin(entity)
	if err != nil {
		return nil, err
	}
	return s.having(e, raw, "having")
}

// Request bundles the inputs of one operation on an entity.
type Request struct {
	Entity  string `json:"entity" yaml:"entity"`
	Where   any    `json:"where,omitempty" yaml:"where,omitempty"`
	Unique  any    `json:"unique,omitempty" yaml:"unique,omitempty"`
	OrderBy any    `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	Having  any    `json:"having,omitempty" yaml:"having,omitempty"`
	Update  any    `json:"update,omitempty" yaml:"update,omitempty"`
	Create  any    `json:"create,omitempty" yaml:"create,omitempty"`
}

// Parse validates every part of the request. The limits apply to the request
// as a whole.
func (p *Parser) Parse(req Request) (_ *query.Descriptor, err error) {
	defer p.observe("request", req.Entity, time.Now(), &err)
	s, e, err := p.begin(req.Entity)
	if err != nil {
		return nil, err
	}
	if req.Update != nil && req.Create != nil {
		return nil, s.fail("", veloxq.ErrMalformedInput, "update and create are mutually exclusive")
	}
	d := &query.Descriptor{Entity: e.Name}
	if req.Unique != nil {
		if d.Unique, err = s.unique(e, req.Unique, "unique"); err != nil {
			return nil, err
		}
	}
	if d.Where, err = s.where(e, req.Where, "where"); err != nil {
		return nil, err
	}
	if d.OrderBy, err = s.orderBy(e, req.OrderBy, "orderBy"); err != nil {
		return nil, err
	}
	if d.Having, err = s.having(e, req.Having, "having"); err != nil {
		return nil, err
	}
	if req.Update != nil {
		if d.Updates, err = s.update(e, req.Update, "update"); err != nil {
			return nil, err
		}
	}
	if req.Create != nil {
		if d.Creates, err = s.create(e, req.Create, "create"); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ParseAll validates the requests concurrently. It returns the descriptors
// in request order, or the first error encountered.
func (p *Parser) ParseAll(ctx context.Context, reqs []Request) ([]*query.Descriptor, error) {
	out := make([]*query.Descriptor, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := p.Parse(req)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) begin(entity string) (*state, *schema.Entity, error) {
	s := &state{p: p, entity: entity}
	e, err := s.lookup(entity, "")
	if err != nil {
		return nil, nil, err
	}
	s.entity = e.Name
	return s, e, nil
}

func (p *Parser) observe(op, entity string, start time.Time, errp *error) {
	err := *errp
	result := "ok"
	if err != nil {
		result = "rejected"
		attrs := []any{"op", op, "entity", entity, "kind", veloxq.Kind(err), "error", err}
		var verr *veloxq.ValidationError
		if errors.As(err, &verr) {
			attrs = append(attrs, "path", verr.Path)
		} else {
			result = "error"
		}
		p.log.Debug("input rejected", attrs...)
	}
	if p.metrics == nil {
		return
	}
	p.metrics.total.WithLabelValues(op, result).Inc()
	p.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.rejections.WithLabelValues(veloxq.Kind(err)).Inc()
	}
}

func (s *state) lookup(name, path string) (*schema.Entity, error) {
	e, err := s.p.reg.Entity(name)
	if err != nil {
		if errors.Is(err, veloxq.ErrUnknownEntity) {
			return nil, s.fail(path, veloxq.ErrUnknownEntity, "%q is not registered", name)
		}
		return nil, err
	}
	return e, nil
}

// resolve maps an input key to a field or relation name of e.
func (s *state) resolve(e *schema.Entity, key string) string {
	if fr := s.p.cfg.FieldResolver; fr != nil {
		return fr(e, key)
	}
	return key
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// object returns raw as an object.
func object(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			m[ks] = e
		}
		return m, true
	default:
		return nil, false
	}
}

// list returns raw as a list.
func list(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []map[string]any:
		l := make([]any, len(v))
		for i, e := range v {
			l[i] = e
		}
		return l, true
	case []string:
		l := make([]any, len(v))
		for i, e := range v {
			l[i] = e
		}
		return l, true
	default:
		return nil, false
	}
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

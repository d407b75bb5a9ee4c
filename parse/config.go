package parse

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/schema"
)

// Default limits.
const (
	DefaultMaxDepth = 32
	DefaultMaxNodes = 1024
)

// FieldResolver maps an input key to the name of a field or relation of the
// entity. It returns the key unchanged when it has no mapping.
type FieldResolver func(e *schema.Entity, key string) string

// Config holds the parser settings. The YAML form is read by the CLI.
type Config struct {
	// MaxDepth bounds the nesting of where-objects, relation scopes
	// and not-chains.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// MaxNodes bounds the number of nodes produced by one call.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes"`
	// StrictUnique rejects unique lookups that match several keys
	// instead of applying the precedence order.
	StrictUnique bool `yaml:"strict_unique" json:"strict_unique"`

	Logger        *slog.Logger          `yaml:"-" json:"-"`
	Registerer    prometheus.Registerer `yaml:"-" json:"-"`
	FieldResolver FieldResolver         `yaml:"-" json:"-"`
}

// Option configures a Parser.
type Option func(*Config) error

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return veloxq.NewConfigError("MaxDepth", n, "must be positive")
		}
		c.MaxDepth = n
		return nil
	}
}

// WithMaxNodes sets the maximum number of nodes produced per call.
func WithMaxNodes(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return veloxq.NewConfigError("MaxNodes", n, "must be positive")
		}
		c.MaxNodes = n
		return nil
	}
}

// WithStrictUnique makes ambiguous unique lookups fail with
// veloxq.ErrAmbiguousUniqueKey.
func WithStrictUnique() Option {
	return func(c *Config) error {
		c.StrictUnique = true
		return nil
	}
}

// WithLogger sets the logger. Rejections are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return veloxq.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithRegisterer registers the parser metrics with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *Config) error {
		if r == nil {
			return veloxq.NewConfigError("Registerer", nil, "registerer cannot be nil")
		}
		c.Registerer = r
		return nil
	}
}

// WithFieldResolver sets the resolver applied to input keys before they are
// looked up on the entity.
func WithFieldResolver(fr FieldResolver) Option {
	return func(c *Config) error {
		c.FieldResolver = fr
		return nil
	}
}

// WithConfig copies the limits of cfg. Zero values keep the current setting.
func WithConfig(cfg Config) Option {
	return func(c *Config) error {
		if cfg.MaxDepth < 0 {
			return veloxq.NewConfigError("MaxDepth", cfg.MaxDepth, "must be positive")
		}
		if cfg.MaxNodes < 0 {
			return veloxq.NewConfigError("MaxNodes", cfg.MaxNodes, "must be positive")
		}
		if cfg.MaxDepth > 0 {
			c.MaxDepth = cfg.MaxDepth
		}
		if cfg.MaxNodes > 0 {
			c.MaxNodes = cfg.MaxNodes
		}
		c.StrictUnique = c.StrictUnique || cfg.StrictUnique
		if cfg.Logger != nil {
			c.Logger = cfg.Logger
		}
		if cfg.Registerer != nil {
			c.Registerer = cfg.Registerer
		}
		if cfg.FieldResolver != nil {
			c.FieldResolver = cfg.FieldResolver
		}
		return nil
	}
}

// Apply applies the options in order, stopping at the first error.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies every option and returns the joined errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig returns the default configuration with the options applied.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		MaxDepth: DefaultMaxDepth,
		MaxNodes: DefaultMaxNodes,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c, nil
}

package parse

import "github.com/syssam/veloxq"

// state is the per-call traversal state. It is never shared between calls.
type state struct {
	p      *Parser
	entity string // root entity, reported in errors.
	depth  int
	nodes  int
}

// enter descends one nesting level. Callers must defer leave on success.
func (s *state) enter(path string) error {
	s.depth++
	if s.depth > s.p.cfg.MaxDepth {
		return s.fail(path, veloxq.ErrDepthOrSizeExceeded, "nesting deeper than %d", s.p.cfg.MaxDepth)
	}
	return nil
}

func (s *state) leave() {
	s.depth--
}

// node accounts for one produced node.
func (s *state) node(path string) error {
	s.nodes++
	if s.nodes > s.p.cfg.MaxNodes {
		return s.fail(path, veloxq.ErrDepthOrSizeExceeded, "more than %d nodes", s.p.cfg.MaxNodes)
	}
	return nil
}

func (s *state) fail(path string, kind error, format string, args ...any) error {
	return veloxq.NewValidationError(s.entity, path, kind, format, args...)
}

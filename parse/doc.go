// Package parse validates raw query and mutation inputs against entity
// metadata and produces the descriptors of package query.
//
// A Parser resolves each kind of input on its own:
//
//	p, err := parse.New(reg, parse.WithMaxDepth(16))
//	if err != nil {
//		return err
//	}
//	where, err := p.Where("Trip", map[string]any{
//		"quote_total": map[string]any{"gte": 100, "lt": 500},
//		"locations":   map[string]any{"some": map[string]any{"name": "SFO"}},
//	})
//
// or a whole request at once with Parse. Rejections are *veloxq.ValidationError
// values carrying the dotted path of the offending input, e.g.
// "where.AND[1].quote_total.gte", and unwrapping to one of the veloxq
// sentinel errors. Validation stops at the first rejection; keys of an object
// are visited in sorted order, so the reported error is deterministic.
package parse

package runtime

import "github.com/vodia/compose/pkg/compose/catalog"

// Provisional is the per-resolution dictionary binding half-built part
// types to placeholder instances (spec GLOSSARY, §9). One Provisional is
// created per top-level GetExports call and threaded through every nested
// instantiation it triggers, so that mutually-recursive shared parts can
// resolve each other: the half-built instance of a part is recorded here
// before its own imports are satisfied (spec §9 "during A.factory, the
// half-built A is placed in provisional[typeof A] before satisfying A's
// imports").
type Provisional struct {
	values map[catalog.PartDefinition]any
}

// NewProvisional returns an empty Provisional.
func NewProvisional() *Provisional {
	return &Provisional{values: make(map[catalog.PartDefinition]any)}
}

func (p *Provisional) get(def catalog.PartDefinition) (any, bool) {
	v, ok := p.values[def]
	return v, ok
}

func (p *Provisional) set(def catalog.PartDefinition, value any) {
	p.values[def] = value
}

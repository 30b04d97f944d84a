package catalog

// Import is the resolved key under which a ComposablePart records its
// satisfying exports: the member (or constructor parameter) the import was
// declared on, plus the contract name it targets. It deliberately carries
// only these two comparable fields rather than the full
// ImportDefinitionBinding, whose ImportDefinition embeds a Metadata map and
// a Constraints slice — both non-comparable, which would make the binding
// itself unusable as a map key. Member alone already uniquely identifies
// the binding within its owning part.
type Import struct {
	Member       string
	ContractName string
}

// ComposablePart is the immutable product of the configuration builder
// (spec §3): a part definition, the exports satisfying each of its imports,
// and the set of sharing boundaries it is required to participate in.
type ComposablePart struct {
	Definition PartDefinition

	// SatisfyingExports maps each of Definition's imports to the ordered
	// list of exports that satisfy it. Every key originates from
	// Definition (invariant 1, spec §3).
	SatisfyingExports map[Import][]Export

	// RequiredSharingBoundaries is the set of sharing boundary names this
	// part requires active: its own declared boundary plus the boundaries
	// of every part it transitively imports through non-factory imports.
	RequiredSharingBoundaries map[string]struct{}
}

// Imports returns every import key recorded for p, in a stable order
// (importing constructor parameters first in declaration order, then
// importing members in declaration order).
func (p *ComposablePart) Imports() []Import {
	out := make([]Import, 0, len(p.SatisfyingExports))
	for _, b := range p.Definition.ImportingConstructor() {
		out = append(out, Import{Member: b.Member, ContractName: b.Import.ContractName})
	}
	for _, b := range p.Definition.ImportingMembers() {
		out = append(out, Import{Member: b.Member, ContractName: b.Import.ContractName})
	}
	return out
}

// RequiresBoundary reports whether name is among p's required sharing
// boundaries.
func (p *ComposablePart) RequiresBoundary(name string) bool {
	if name == "" {
		return false
	}
	_, ok := p.RequiredSharingBoundaries[name]
	return ok
}

// Package builder implements the configuration builder (spec §4.1): it
// resolves a catalog into an immutable, validated Configuration. The
// implementation keeps the teacher's arena-of-nodes shape
// (pkg/flow/internal/controller.Loader building a dag.Graph from blocks)
// but trades the River/AST-specific graph for the part/export/import graph
// spec.md §3-§4 describes.
package builder

import "github.com/vodia/compose/pkg/compose/catalog"

// partBuilder is per-part scratch state that exists only during Create
// (spec §3 Lifecycles). It is intentionally mutable and lives in an arena
// indexed by integer, matching the design note in spec.md §9 ("use an arena
// of parts with integer indices; store importers separately from immutable
// part data").
type partBuilder struct {
	index      int
	definition catalog.PartDefinition

	// satisfyingExports mirrors ComposablePart.SatisfyingExports while it
	// is still being assembled.
	satisfyingExports map[catalog.Import][]catalog.Export

	// importTargets holds the arena indices of every part this builder
	// imports from, across ALL imports including export-factory imports.
	// Used by cycle detection (§4.2), which intentionally includes factory
	// edges.
	importTargets []int

	// importers holds the arena indices of every builder that imports from
	// this one through a non-factory import. Used as the back-edge set for
	// sharing-boundary propagation (§4.3); factory imports are excluded
	// here by design (open question #2, decided: kept as specified).
	importers map[int]struct{}

	// required is the set of sharing boundaries this part must participate
	// in (spec §3 invariant 2), accumulated during propagation (§4.3).
	required map[string]struct{}
}

func newPartBuilder(index int, def catalog.PartDefinition) *partBuilder {
	return &partBuilder{
		index:             index,
		definition:        def,
		satisfyingExports: make(map[catalog.Import][]catalog.Export),
		importers:         make(map[int]struct{}),
		required:          make(map[string]struct{}),
	}
}

// arena owns every partBuilder built for one Create call and the lookup
// tables used to wire edges between them.
type arena struct {
	builders []*partBuilder
	// byDefinition maps a part definition to its arena index. Part
	// definitions are used as map keys directly; catalogs are expected to
	// hand back comparable (pointer or value-identity) definitions, the
	// same assumption the teacher's dag.Graph makes about node IDs.
	byDefinition map[catalog.PartDefinition]int
}

func newArena(defs []catalog.PartDefinition) *arena {
	a := &arena{
		builders:     make([]*partBuilder, 0, len(defs)),
		byDefinition: make(map[catalog.PartDefinition]int, len(defs)),
	}
	for _, def := range defs {
		idx := len(a.builders)
		a.builders = append(a.builders, newPartBuilder(idx, def))
		a.byDefinition[def] = idx
	}
	return a
}

func (a *arena) indexOf(def catalog.PartDefinition) (int, bool) {
	idx, ok := a.byDefinition[def]
	return idx, ok
}

func (a *arena) get(idx int) *partBuilder { return a.builders[idx] }

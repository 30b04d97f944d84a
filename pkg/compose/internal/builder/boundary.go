package builder

import (
	"sort"
	"strings"
)

// propagateSharingBoundaries implements §4.3: for each builder, propagate
// its own declared boundary (if any) to every transitive non-factory
// importer. Propagation is a monotone fixpoint over the importers back-edge
// set built by resolveImports, so it always terminates.
func propagateSharingBoundaries(a *arena) {
	for _, b := range a.builders {
		boundary := b.definition.SharingBoundary()
		propagate(a, b.index, boundary)
	}
}

// propagate adds boundary to builder idx's required set and recurses into
// its importers, stopping as soon as a builder already has the boundary
// (monotone termination, mirroring the pseudocode in spec.md §4.3).
func propagate(a *arena, idx int, boundary string) {
	if boundary == "" {
		return
	}
	b := a.get(idx)
	if _, already := b.required[boundary]; already {
		return
	}
	b.required[boundary] = struct{}{}
	for importerIdx := range b.importers {
		propagate(a, importerIdx, boundary)
	}
}

// inferredBoundaryOverrides implements §4.4: for each builder whose part
// declares IsSharingBoundaryInferred, synthesize an override string from
// its required boundaries, sorted lexicographically before joining with
// "-" for deterministic, reproducible configurations (open question #1,
// decided: sort before join).
func inferredBoundaryOverrides(a *arena) map[int]string {
	overrides := make(map[int]string)
	for _, b := range a.builders {
		if !b.definition.IsSharingBoundaryInferred() {
			continue
		}
		names := make([]string, 0, len(b.required))
		for name := range b.required {
			names = append(names, name)
		}
		sort.Strings(names)
		overrides[b.index] = strings.Join(names, "-")
	}
	return overrides
}

package builder

import "github.com/vodia/compose/pkg/compose/catalog"

// resolveImports implements Create steps 3 and 4: for each part builder,
// resolve every import against the catalog and wire back-edges for
// non-factory imports.
func resolveImports(a *arena, cat catalog.Catalog) {
	for _, b := range a.builders {
		for _, binding := range allBindings(b.definition) {
			imp := catalog.Import{Member: binding.Member, ContractName: binding.Import.ContractName}
			exports := cat.GetExports(binding.Import)
			b.satisfyingExports[imp] = exports

			for _, exp := range exports {
				targetIdx, ok := a.indexOf(exp.Part)
				if !ok {
					// The export's producing part isn't in this arena (for
					// example, a part that was filtered out upstream). It
					// cannot participate in cycle detection or boundary
					// propagation, so it is simply not wired as an edge.
					continue
				}

				b.importTargets = append(b.importTargets, targetIdx)

				if !binding.Import.IsExportFactory {
					a.get(targetIdx).importers[b.index] = struct{}{}
				}
			}
		}
	}
}

// allBindings returns every import binding for def: one per importing
// member plus, if present, one per importing-constructor parameter (Create
// step 3).
func allBindings(def catalog.PartDefinition) []catalog.ImportDefinitionBinding {
	ctor := def.ImportingConstructor()
	members := def.ImportingMembers()

	out := make([]catalog.ImportDefinitionBinding, 0, len(ctor)+len(members))
	out = append(out, ctor...)
	out = append(out, members...)
	return out
}

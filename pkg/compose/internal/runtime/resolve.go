package runtime

import (
	"context"
	"fmt"

	"github.com/go-kit/log/level"
	"go.opentelemetry.io/otel/codes"

	"github.com/vodia/compose/pkg/compose/catalog"
)

// openGenericSource is implemented by catalogs that index open-generic
// exports separately (catalog.SliceCatalog does). It is consulted only
// when an import's metadata names the open-generic contract it could also
// be satisfied from (spec §4.6.1 step 3).
type openGenericSource interface {
	OpenGenericExports(openGenericContractName string) []catalog.Export
}

// OpenGenericContractKey is the ImportDefinition.Metadata key naming the
// open-generic contract an import can additionally be satisfied from, read
// during open-generic specialization (spec §4.6.1 step 3). It complements
// catalog.GenericParametersKey, which carries the concrete type arguments
// to close against.
const OpenGenericContractKey = "OpenGenericContract"

// GetExports implements the resolution protocol of spec §4.6.1. It is the
// entry point for a fresh resolution tree: it mints the single Provisional
// map spec §9 says is "created per top-level GetExports call and threaded
// through every nested instantiation it triggers", then delegates to
// resolveExports. Nested resolutions triggered by a part's own imports
// reuse that same Provisional via resolveExports directly, rather than
// calling back through here, so mutual-recursive member imports can see
// each other's half-built instance.
func (p *Provider) GetExports(ctx context.Context, def catalog.ImportDefinition) ([]ResolvedExport, error) {
	return p.resolveExports(ctx, def, NewProvisional())
}

// resolveExports is GetExports' implementation, parameterized over the
// Provisional map of the resolution tree it belongs to.
func (p *Provider) resolveExports(ctx context.Context, def catalog.ImportDefinition, provisional *Provisional) ([]ResolvedExport, error) {
	_, span := p.tracer.Start(ctx, "GetExports")
	defer span.End()

	// Step 1: reserved contract short-circuit.
	if def.ContractName == catalog.ExportProviderContractName {
		return []ResolvedExport{{
			Definition: catalog.ExportDefinition{ContractName: catalog.ExportProviderContractName},
			Value:      Resolved(p.facade),
		}}, nil
	}

	// Step 2: raw stream from the core resolver.
	exports := append([]catalog.Export{}, p.resolver.ExportsFor(def)...)

	// Step 3: open-generic specialization.
	if openContract, ok := def.Metadata[OpenGenericContractKey]; ok {
		if src, ok := p.resolver.(openGenericSource); ok {
			typeArgs, _ := def.Metadata[catalog.GenericParametersKey].([]string)
			name, _ := openContract.(string)
			for _, open := range src.OpenGenericExports(name) {
				closer, ok := open.Part.(catalog.OpenGenericPartDefinition)
				if !ok {
					continue
				}
				closedPart, err := closer.CloseGeneric(typeArgs)
				if err != nil {
					level.Error(p.logger).Log("msg", "failed to close open generic export", "contract", name, "err", err)
					continue
				}
				exports = append(exports, catalog.Export{
					Definition: catalog.ExportDefinition{
						ContractName: def.ContractName,
						Metadata:     open.Definition.Metadata,
					},
					Part: closedPart,
				})
			}
		}
	}

	// Step 4: filter by constraints.
	filtered := exports[:0:0]
	for _, e := range exports {
		if def.Satisfies(e.Definition) {
			filtered = append(filtered, e)
		}
	}

	// Step 5: filtered is already a finite snapshot (Go slices are not
	// lazily re-evaluated on repeated iteration).

	// Step 6: cardinality enforcement.
	count := len(filtered)
	switch def.Cardinality {
	case catalog.ExactlyOne:
		if count != 1 {
			p.metrics.cardinalityError.Inc()
			err := newCardinalityError(def, count)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	case catalog.ZeroOrOne:
		if count > 1 {
			p.metrics.cardinalityError.Inc()
			err := newCardinalityError(def, count)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	resolved := make([]ResolvedExport, 0, len(filtered))
	for _, e := range filtered {
		e := e
		resolved = append(resolved, ResolvedExport{
			Definition: e.Definition,
			Value: NewLazy(func() (any, error) {
				return p.resolveExportValue(e, def, provisional)
			}),
		})
	}
	span.SetStatus(codes.Ok, "")
	return resolved, nil
}

// ResolvedExport pairs an ExportDefinition with the Lazy instance value
// produced for it, returned to callers of GetExports (spec §4.6 table).
type ResolvedExport struct {
	Definition catalog.ExportDefinition
	Value      *Lazy
}

// resolveExportValue materializes the value for one matched export: the
// whole part instance if the export is the part itself, or the extracted
// member value (spec §4.6.3) otherwise.
func (p *Provider) resolveExportValue(e catalog.Export, importDef catalog.ImportDefinition, provisional *Provisional) (any, error) {
	part := p.config.PartFor(e.Part)
	if part == nil {
		// A synthesized or externally-closed part (e.g. a freshly closed
		// open-generic specialization) was never materialized into the
		// Configuration; instantiate it directly with no recorded
		// imports, matching spec's intent that open-generic exports are
		// "closed... then concatenated with the stream from step 2"
		// rather than re-validated.
		part = &catalog.ComposablePart{Definition: e.Part, SatisfyingExports: map[catalog.Import][]catalog.Export{}}
	}

	instanceLazy := p.getOrCreateShareableValue(part, provisional, importDef.IsExportFactory)
	instance, err := instanceLazy.Value()
	if err != nil {
		return nil, err
	}
	return e.Part.ExtractExport(instance, e.Definition)
}

// getOrCreateShareableValue implements spec §4.6.2.
func (p *Provider) getOrCreateShareableValue(part *catalog.ComposablePart, provisional *Provisional, nonSharedInstanceRequired bool) *Lazy {
	def := part.Definition

	if nonSharedInstanceRequired || !def.IsShared() {
		return NewLazy(func() (any, error) {
			return p.instantiate(part, provisional)
		})
	}

	if v, ok := provisional.get(def); ok {
		return Resolved(v)
	}

	boundary := p.config.EffectiveSharingBoundary(def)
	if !p.boundaryActive(boundary) {
		p.metrics.crossBoundary.Inc()
		err := newCrossBoundaryError(boundary, def)
		return NewLazy(func() (any, error) { return nil, err })
	}

	return p.cache.getOrCreate(boundary, def, func() (any, error) {
		instance, err := p.instantiate(part, provisional)
		if err != nil {
			return nil, err
		}
		p.metrics.instantiations.WithLabelValues(boundary).Inc()
		return instance, nil
	})
}

// instantiate builds a Go value for part, implementing the two-phase
// construction spec §9 describes for mutual recursion: constructor
// arguments are resolved eagerly (they cannot participate in a cycle,
// since no instance exists yet to place in provisional), the instance is
// registered as a placeholder immediately after construction, and member
// imports are resolved and assigned afterward so a cyclic peer can observe
// the half-built instance.
func (p *Provider) instantiate(part *catalog.ComposablePart, provisional *Provisional) (any, error) {
	def := part.Definition

	ctorBindings := def.ImportingConstructor()
	args := make([]any, len(ctorBindings))
	for i, binding := range ctorBindings {
		v, err := p.resolveBinding(part, binding, provisional)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	instance, err := def.NewInstance(args)
	if err != nil {
		return nil, newMissingConstructorError(def, err)
	}

	provisional.set(def, instance)

	for _, binding := range def.ImportingMembers() {
		v, err := p.resolveBinding(part, binding, provisional)
		if err != nil {
			return nil, err
		}
		if err := def.SetImportingMember(instance, binding.Member, v); err != nil {
			return nil, err
		}
	}

	if d, ok := instance.(Disposable); ok {
		p.disposables.track(d)
	}

	return instance, nil
}

// resolveBinding resolves one import binding's value: a factory delegate
// for export-factory imports, a single value / nil / slice of values
// depending on cardinality otherwise.
func (p *Provider) resolveBinding(owner *catalog.ComposablePart, binding catalog.ImportDefinitionBinding, provisional *Provisional) (any, error) {
	resolved, err := p.resolveExports(context.Background(), binding.Import, provisional)
	if err != nil {
		return nil, fmt.Errorf("part %s: import %q: %w", owner.Definition, binding.Member, err)
	}

	if binding.Import.IsExportFactory {
		return p.buildFactoryDelegate(binding.Import), nil
	}

	switch binding.Import.Cardinality {
	case catalog.ZeroOrMore:
		values := make([]any, 0, len(resolved))
		for _, r := range resolved {
			v, err := r.Value.Value()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	default: // ExactlyOne, ZeroOrOne
		if len(resolved) == 0 {
			return nil, nil
		}
		return resolved[0].Value.Value()
	}
}

// buildFactoryDelegate returns the deferred-constructor delegate an
// export-factory import receives: each call resolves def again and
// produces fresh, uncached instances (spec §4.6.2's
// nonSharedInstanceRequired path), one per matching export.
func (p *Provider) buildFactoryDelegate(def catalog.ImportDefinition) func() ([]any, error) {
	return func() ([]any, error) {
		resolved, err := p.resolveExports(context.Background(), def, NewProvisional())
		if err != nil {
			return nil, err
		}
		values := make([]any, 0, len(resolved))
		for _, r := range resolved {
			v, err := r.Value.Value()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}
}

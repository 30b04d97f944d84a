package builder

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vodia/compose/pkg/compose/catalog"
)

// Options configures a Builder, mirroring the teacher's
// LoaderOptions/ComponentGlobals struct shape: zero-value-safe, optional
// Logger/TracerProvider/Registerer.
type Options struct {
	Logger         log.Logger
	TracerProvider trace.TracerProvider
	Registerer     prometheus.Registerer
}

// Configuration is the immutable product of Create (spec §4.1 step 10):
// the catalog (including the synthesized self-export part), the resolved
// parts, and the inferred-boundary overrides.
type Configuration struct {
	Catalog catalog.Catalog
	Parts   []*catalog.ComposablePart

	partsByDefinition map[catalog.PartDefinition]*catalog.ComposablePart
	partIndex         map[catalog.PartDefinition]int
	// inferredOverrides holds §4.4's synthesized override string for every
	// part with IsSharingBoundaryInferred, keyed by part definition.
	inferredOverrides map[catalog.PartDefinition]string
	debugIDs          *debugIDCache
}

// DebugID returns a stable, deterministic identifier for def (§4.6.6),
// suitable as a DOT/DGML node ID where def.String() might collide or
// contain characters an external viewer would choke on. Falls back to
// def.String() for a definition this Configuration did not build (e.g. one
// produced by CloseGeneric at resolution time).
func (c *Configuration) DebugID(def catalog.PartDefinition) string {
	idx, ok := c.partIndex[def]
	if !ok {
		return def.String()
	}
	return c.debugIDs.get(idx)
}

// PartFor returns the ComposablePart built for def, or nil if def is not
// part of this configuration.
func (c *Configuration) PartFor(def catalog.PartDefinition) *catalog.ComposablePart {
	return c.partsByDefinition[def]
}

// EffectiveSharingBoundary implements the builder API named in spec §6.
// Precondition: def.IsShared().
func (c *Configuration) EffectiveSharingBoundary(def catalog.PartDefinition) string {
	if def.IsSharingBoundaryInferred() {
		if override, ok := c.inferredOverrides[def]; ok {
			return override
		}
	}
	return def.SharingBoundary()
}

// Builder runs Create over catalogs, reporting through logging, tracing,
// and Prometheus metrics the way the teacher's Loader does for graph
// evaluation.
type Builder struct {
	logger  log.Logger
	tracer  trace.Tracer
	metrics *builderMetrics
}

// New constructs a Builder. Zero-value Options means a no-op logger, a
// no-op tracer, and no metrics registration.
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = trace.NewNoopTracerProvider()
	}

	b := &Builder{
		logger:  logger,
		tracer:  tp.Tracer("github.com/vodia/compose/pkg/compose/internal/builder"),
		metrics: newBuilderMetrics(),
	}
	if opts.Registerer != nil {
		for _, c := range b.metrics.Collectors() {
			opts.Registerer.MustRegister(c)
		}
	}
	return b
}

// Create implements §4.1: resolve a catalog into an immutable Configuration
// or fail with an aggregate CompositionFailedError.
func (b *Builder) Create(ctx context.Context, cat catalog.Catalog) (*Configuration, error) {
	start := time.Now()
	ctx, span := b.tracer.Start(ctx, "Create")
	defer span.End()
	defer func() {
		b.metrics.configureDuration.Observe(time.Since(start).Seconds())
	}()

	// Step 1: pre-validation, reject reserved contract usage.
	for _, def := range cat.Parts() {
		for _, exp := range def.Exports() {
			if exp.ContractName == catalog.ExportProviderContractName {
				err := newReservedContractError(exp.ContractName)
				span.SetStatus(codes.Error, err.Error())
				level.Error(b.logger).Log("msg", "catalog rejected", "err", err)
				return nil, err
			}
		}
	}

	// Step 2: synthesize the export-provider self-export part.
	parts := append(append([]catalog.PartDefinition{}, cat.Parts()...), NewProviderPartDefinition())
	workingCatalog := catalog.NewSliceCatalog(parts)

	// Step 3 + 4: construct PartBuilders, resolve imports, wire back-edges.
	a := newArena(parts)
	resolveImports(a, workingCatalog)

	// Step 5: propagate sharing boundaries.
	propagateSharingBoundaries(a)

	// Step 6: infer boundaries.
	overrides := inferredBoundaryOverrides(a)

	// Step 7: materialize ComposableParts.
	composableParts := make([]*catalog.ComposablePart, len(a.builders))
	byDefinition := make(map[catalog.PartDefinition]*catalog.ComposablePart, len(a.builders))
	inferredByDefinition := make(map[catalog.PartDefinition]string, len(overrides))
	edgeCount := 0
	for _, pb := range a.builders {
		required := make(map[string]struct{}, len(pb.required))
		for name := range pb.required {
			required[name] = struct{}{}
		}
		frozen := make(map[catalog.Import][]catalog.Export, len(pb.satisfyingExports))
		for imp, exps := range pb.satisfyingExports {
			frozen[imp] = append([]catalog.Export{}, exps...)
			edgeCount += len(exps)
		}
		part := &catalog.ComposablePart{
			Definition:                pb.definition,
			SatisfyingExports:         frozen,
			RequiredSharingBoundaries: required,
		}
		composableParts[pb.index] = part
		byDefinition[pb.definition] = part
	}
	for idx, override := range overrides {
		inferredByDefinition[a.get(idx).definition] = override
	}

	// Step 8: validate each part, aggregating errors.
	var validationErrs []error
	for _, pb := range a.builders {
		errs := validatePart(pb)
		validationErrs = append(validationErrs, errs...)
	}
	if len(validationErrs) > 0 {
		b.metrics.validationErrors.Add(float64(len(validationErrs)))
		err := newInvalidCatalogError(validationErrs)
		span.SetStatus(codes.Error, err.Error())
		level.Error(b.logger).Log("msg", "catalog failed validation", "err", err, "error_count", len(validationErrs))
		return nil, err
	}

	// Step 9: detect cycles among non-shared parts.
	if detectNonSharedCycle(a) {
		b.metrics.cyclesDetected.Inc()
		err := newCycleDetectedError()
		span.SetStatus(codes.Error, err.Error())
		level.Error(b.logger).Log("msg", "cycle detected", "err", err)
		return nil, err
	}

	b.metrics.partsTotal.Set(float64(len(composableParts)))
	b.metrics.edgesTotal.Set(float64(edgeCount))
	span.SetStatus(codes.Ok, "")
	level.Info(b.logger).Log("msg", "configuration built", "parts", len(composableParts), "edges", edgeCount)

	// Step 10: return the Configuration.
	partIndex := make(map[catalog.PartDefinition]int, len(composableParts))
	for _, pb := range a.builders {
		partIndex[pb.definition] = pb.index
	}
	return &Configuration{
		Catalog:           workingCatalog,
		Parts:             composableParts,
		partsByDefinition: byDefinition,
		partIndex:         partIndex,
		inferredOverrides: inferredByDefinition,
		debugIDs:          newDebugIDCache(composableParts),
	}, nil
}

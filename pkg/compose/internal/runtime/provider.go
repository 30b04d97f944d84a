// Package runtime implements the export provider runtime (spec §4.6): it
// resolves imports against a Configuration (including open-generic
// specialization), manages per-boundary singleton tables under concurrent
// access, tracks disposable instances, and guarantees at-most-one
// instantiation per (sharing boundary, part type) pair.
package runtime

import (
	"context"
	"sync"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vodia/compose/pkg/compose/catalog"
	"github.com/vodia/compose/pkg/compose/internal/builder"
)

// CoreResolver is the abstract capability spec.md §9 describes in place of
// the "generated subclass" that implements GetExportsCore in the original
// design: one method turning an ImportDefinition into a raw stream of
// Exports. The default resolver simply delegates to the Configuration's
// catalog; it is exposed as an interface so tests (or an eventual code
// generator) can substitute a different source without touching the rest
// of the provider.
type CoreResolver interface {
	ExportsFor(def catalog.ImportDefinition) []catalog.Export
}

type catalogResolver struct{ cat catalog.Catalog }

func (r catalogResolver) ExportsFor(def catalog.ImportDefinition) []catalog.Export {
	return r.cat.GetExports(def)
}

// OpenGenericExports forwards to the wrapped catalog when it indexes
// open-generic exports separately (catalog.SliceCatalog does), satisfying
// the openGenericSource seam resolve.go probes for during open-generic
// specialization (spec §4.6.1 step 3). Catalogs that don't support it
// simply contribute no open-generic candidates.
func (r catalogResolver) OpenGenericExports(openGenericContractName string) []catalog.Export {
	if src, ok := r.cat.(openGenericSource); ok {
		return src.OpenGenericExports(openGenericContractName)
	}
	return nil
}

// Options configures a Provider, mirroring the builder's Options shape.
type Options struct {
	Logger         log.Logger
	TracerProvider trace.TracerProvider
	Registerer     prometheus.Registerer
	// Resolver overrides the default catalog-backed CoreResolver.
	Resolver CoreResolver
	// ActiveBoundaries lists the sharing boundaries this provider
	// instance has activated beyond the implicit process-global (empty
	// string) boundary (spec §7 item 4, §5).
	ActiveBoundaries []string
}

// Provider is the runtime export provider described in spec §4.6.
type Provider struct {
	config   *builder.Configuration
	resolver CoreResolver

	logger log.Logger
	tracer trace.Tracer

	mu         sync.RWMutex
	boundaries map[string]struct{}

	cache       *boundaryCache
	disposables *disposableSet
	metrics     *providerMetrics

	facade *selfExportFacade
}

// New constructs the root Provider for config.
func New(config *builder.Configuration, opts Options) *Provider {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = trace.NewNoopTracerProvider()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = catalogResolver{cat: config.Catalog}
	}

	boundaries := map[string]struct{}{"": {}}
	for _, b := range opts.ActiveBoundaries {
		boundaries[b] = struct{}{}
	}

	p := &Provider{
		config:      config,
		resolver:    resolver,
		logger:      logger,
		tracer:      tp.Tracer("github.com/vodia/compose/pkg/compose/internal/runtime"),
		boundaries:  boundaries,
		cache:       newBoundaryCache(),
		disposables: newDisposableSet(),
	}
	p.facade = &selfExportFacade{provider: p}
	p.metrics = newProviderMetrics(p.cache)
	if opts.Registerer != nil {
		for _, c := range p.metrics.Collectors() {
			opts.Registerer.MustRegister(c)
		}
	}
	for b := range boundaries {
		p.cache.ensureBoundary(b)
	}
	return p
}

// NewChild returns a new Provider scoped to an additional sharing
// boundary, sharing this provider's singleton cache and disposable set
// (spec §5: "child providers inherit the parent map and may add fresh
// boundary keys").
func (p *Provider) NewChild(ctx context.Context, boundary string) *Provider {
	child := &Provider{
		config:      p.config,
		resolver:    p.resolver,
		logger:      p.logger,
		tracer:      p.tracer,
		boundaries:  make(map[string]struct{}, len(p.boundaries)+1),
		cache:       p.cache,
		disposables: p.disposables,
		metrics:     p.metrics,
	}
	p.mu.RLock()
	for b := range p.boundaries {
		child.boundaries[b] = struct{}{}
	}
	p.mu.RUnlock()
	child.boundaries[boundary] = struct{}{}
	child.facade = &selfExportFacade{provider: child}
	child.cache.ensureBoundary(boundary)
	return child
}

func (p *Provider) boundaryActive(boundary string) bool {
	if boundary == "" {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.boundaries[boundary]
	return ok
}

// Dispose releases every tracked disposable instance exactly once (spec
// §4.6.5): snapshot under the lock, clear, then dispose outside the lock
// so third-party Dispose code never runs while holding it.
func (p *Provider) Dispose() error {
	_, span := p.tracer.Start(context.Background(), "Dispose")
	defer span.End()

	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		if p.metrics != nil {
			p.metrics.disposeDuration.Observe(v)
		}
	}))
	defer timer.ObserveDuration()

	return p.disposables.disposeAll()
}

package compose

import (
	"context"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vodia/compose/pkg/compose/catalog"
	"github.com/vodia/compose/pkg/compose/internal/runtime"
)

// ProviderOptions configures NewProvider, mirroring BuilderOptions.
type ProviderOptions struct {
	Logger         log.Logger
	TracerProvider trace.TracerProvider
	Registerer     prometheus.Registerer
	// ActiveBoundaries lists sharing boundaries this provider activates in
	// addition to the implicit process-global boundary (spec §7 item 4).
	ActiveBoundaries []string
}

// Provider is the runtime export provider (spec §4.6), the application-
// facing half of the composition engine.
type Provider struct {
	inner *runtime.Provider
}

// NewProvider builds the root Provider for a Configuration.
func NewProvider(config *Configuration, opts ProviderOptions) *Provider {
	return &Provider{inner: runtime.New(config.inner, runtime.Options{
		Logger:           opts.Logger,
		TracerProvider:   opts.TracerProvider,
		Registerer:       opts.Registerer,
		ActiveBoundaries: opts.ActiveBoundaries,
	})}
}

// NewChild returns a Provider scoped to an additional sharing boundary,
// sharing this provider's singleton cache and disposable set (spec §5).
func (p *Provider) NewChild(ctx context.Context, boundary string) *Provider {
	return &Provider{inner: p.inner.NewChild(ctx, boundary)}
}

// GetExports is the protocol-level resolver named in spec §6, used by
// callers that already hold an ImportDefinition (e.g. a part's own
// importing members, or tooling built atop this package).
func (p *Provider) GetExports(ctx context.Context, def catalog.ImportDefinition) ([]runtime.ResolvedExport, error) {
	return p.inner.GetExports(ctx, def)
}

// Dispose releases every tracked disposable instance exactly once (spec
// §4.6.5).
func (p *Provider) Dispose() error {
	return p.inner.Dispose()
}

// Lazy wraps a single resolved export's one-shot memoized value, typed as
// T. It is the Go analogue of the generic Lazy<T> the spec's getExport<T>
// family returns.
type Lazy[T any] struct {
	inner *runtime.Lazy
}

// Value forces evaluation, returning the memoized value on repeat calls.
// A failed evaluation is not memoized (spec §7): the caller may retry by
// calling Value again.
func (l Lazy[T]) Value() (T, error) {
	v, err := l.inner.Value()
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// WithMetadata pairs a typed export value with the ExportDefinition
// metadata it was advertised with, the Go analogue of the spec's
// getExport<T,M> metadata-view overload.
type WithMetadata[T any] struct {
	Value    Lazy[T]
	Metadata map[string]any
}

func singleImport(contractName string) catalog.ImportDefinition {
	return catalog.ImportDefinition{ContractName: contractName, Cardinality: catalog.ExactlyOne}
}

func manyImport(contractName string) catalog.ImportDefinition {
	return catalog.ImportDefinition{ContractName: contractName, Cardinality: catalog.ZeroOrMore}
}

// GetExport resolves a single lazy export of type T under contractName,
// with cardinality ExactlyOne (spec §4.6, `getExport<T>`). It fails if the
// match count is not exactly one.
func GetExport[T any](ctx context.Context, p *Provider, contractName string) (Lazy[T], error) {
	resolved, err := p.GetExports(ctx, singleImport(contractName))
	if err != nil {
		return Lazy[T]{}, err
	}
	return Lazy[T]{inner: resolved[0].Value}, nil
}

// GetExportWithMetadata is GetExport's metadata-view overload
// (`getExport<T,M>`).
func GetExportWithMetadata[T any](ctx context.Context, p *Provider, contractName string) (WithMetadata[T], error) {
	resolved, err := p.GetExports(ctx, singleImport(contractName))
	if err != nil {
		return WithMetadata[T]{}, err
	}
	r := resolved[0]
	return WithMetadata[T]{Value: Lazy[T]{inner: r.Value}, Metadata: r.Definition.Metadata}, nil
}

// GetExports resolves a collection of lazy exports of type T under
// contractName, with cardinality ZeroOrMore (spec §4.6, `getExports<T>`).
func GetExports[T any](ctx context.Context, p *Provider, contractName string) ([]Lazy[T], error) {
	resolved, err := p.GetExports(ctx, manyImport(contractName))
	if err != nil {
		return nil, err
	}
	out := make([]Lazy[T], len(resolved))
	for i, r := range resolved {
		out[i] = Lazy[T]{inner: r.Value}
	}
	return out, nil
}

// GetExportsWithMetadata is GetExports' metadata-view overload
// (`getExports<T,M>`).
func GetExportsWithMetadata[T any](ctx context.Context, p *Provider, contractName string) ([]WithMetadata[T], error) {
	resolved, err := p.GetExports(ctx, manyImport(contractName))
	if err != nil {
		return nil, err
	}
	out := make([]WithMetadata[T], len(resolved))
	for i, r := range resolved {
		out[i] = WithMetadata[T]{Value: Lazy[T]{inner: r.Value}, Metadata: r.Definition.Metadata}
	}
	return out, nil
}

// GetExportedValue is GetExport's eager form (spec §4.6,
// `getExportedValue<T>`): it forces the lazy immediately.
func GetExportedValue[T any](ctx context.Context, p *Provider, contractName string) (T, error) {
	l, err := GetExport[T](ctx, p, contractName)
	if err != nil {
		var zero T
		return zero, err
	}
	return l.Value()
}

// GetExportedValues is GetExports' eager form (spec §4.6,
// `getExportedValues<T>`).
func GetExportedValues[T any](ctx context.Context, p *Provider, contractName string) ([]T, error) {
	ls, err := GetExports[T](ctx, p, contractName)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ls))
	for _, l := range ls {
		v, err := l.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Package loader adapts spec.md §6's Loader API — `loadFactory(assemblyName)
// → exportProviderFactory`, which locates a generated class literally named
// CompiledExportProvider inside the named assembly — to a module with no
// runtime assembly-loading facility. In its place, packages that would have
// been code-generated into an assembly register a CatalogFactory under the
// name application code will ask for, mirroring the teacher's
// ComponentRegistry/DefaultComponentRegistry name-to-implementation lookup
// (pkg/flow/internal/controller.Loader).
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vodia/compose/pkg/compose"
	"github.com/vodia/compose/pkg/compose/catalog"
)

// CatalogFactory builds the catalog an assembly contributes. It stands in
// for CompiledExportProvider's default constructor: in the original design
// the generated class already knows how to answer getExportsCore, so
// "constructing" it and "building its catalog" are the same step.
type CatalogFactory func() (catalog.Catalog, error)

var (
	mu         sync.RWMutex
	registered = map[string]CatalogFactory{}
)

// Register associates assemblyName with factory. Intended to run from an
// init function in the package that would have held the generated
// CompiledExportProvider, so LoadFactory can find it later purely by name.
func Register(assemblyName string, factory CatalogFactory) {
	mu.Lock()
	defer mu.Unlock()
	registered[assemblyName] = factory
}

// ErrAssemblyNotFound is returned by LoadFactory when no CatalogFactory has
// been registered under the requested name.
var ErrAssemblyNotFound = errors.New("loader: no CompiledExportProvider registered for this assembly name")

// ExportProviderFactory instantiates a full Configuration and Provider for
// the assembly LoadFactory resolved it from, the Go equivalent of invoking
// CompiledExportProvider's default constructor.
type ExportProviderFactory func(ctx context.Context, builderOpts compose.BuilderOptions, providerOpts compose.ProviderOptions) (*compose.Configuration, *compose.Provider, error)

// LoadFactory locates the export provider factory registered under
// assemblyName (spec §6).
func LoadFactory(assemblyName string) (ExportProviderFactory, error) {
	mu.RLock()
	factory, ok := registered[assemblyName]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAssemblyNotFound, assemblyName)
	}

	return func(ctx context.Context, builderOpts compose.BuilderOptions, providerOpts compose.ProviderOptions) (*compose.Configuration, *compose.Provider, error) {
		cat, err := factory()
		if err != nil {
			return nil, nil, fmt.Errorf("loader: building catalog for %q: %w", assemblyName, err)
		}
		cfg, err := compose.Configure(ctx, cat, builderOpts)
		if err != nil {
			return nil, nil, err
		}
		return cfg, compose.NewProvider(cfg, providerOpts), nil
	}, nil
}

package loader_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vodia/compose/pkg/compose"
	"github.com/vodia/compose/pkg/compose/catalog"
	"github.com/vodia/compose/pkg/compose/loader"
)

type noopPart struct{}

func (noopPart) String() string                                         { return "noop" }
func (noopPart) Exports() []catalog.ExportDefinition                     { return nil }
func (noopPart) ImportingMembers() []catalog.ImportDefinitionBinding     { return nil }
func (noopPart) ImportingConstructor() []catalog.ImportDefinitionBinding { return nil }
func (noopPart) IsShared() bool                                         { return false }
func (noopPart) SharingBoundary() string                                { return "" }
func (noopPart) IsSharingBoundaryInferred() bool                        { return false }
func (noopPart) NewInstance(args []any) (any, error)                    { return noopPart{}, nil }
func (noopPart) SetImportingMember(any, string, any) error              { return nil }
func (noopPart) ExtractExport(instance any, _ catalog.ExportDefinition) (any, error) {
	return instance, nil
}

func TestLoadFactoryRoundTrip(t *testing.T) {
	loader.Register("test.assembly", func() (catalog.Catalog, error) {
		return catalog.NewSliceCatalog([]catalog.PartDefinition{noopPart{}}), nil
	})

	factory, err := loader.LoadFactory("test.assembly")
	require.NoError(t, err)

	cfg, provider, err := factory(context.Background(), compose.BuilderOptions{}, compose.ProviderOptions{})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.NotNil(t, provider)
	defer provider.Dispose()
}

func TestLoadFactoryUnknownAssembly(t *testing.T) {
	_, err := loader.LoadFactory("does.not.exist")
	require.Error(t, err)
	require.True(t, errors.Is(err, loader.ErrAssemblyNotFound))
}

package compose_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodia/compose/pkg/compose"
	"github.com/vodia/compose/pkg/compose/catalog"
)

type greeter struct{ Name string }

type greeterPart struct{}

func (greeterPart) String() string { return "greeterPart" }
func (greeterPart) Exports() []catalog.ExportDefinition {
	return []catalog.ExportDefinition{{ContractName: "greeter"}}
}
func (greeterPart) ImportingMembers() []catalog.ImportDefinitionBinding     { return nil }
func (greeterPart) ImportingConstructor() []catalog.ImportDefinitionBinding { return nil }
func (greeterPart) IsShared() bool                                         { return true }
func (greeterPart) SharingBoundary() string                                { return "" }
func (greeterPart) IsSharingBoundaryInferred() bool                        { return false }
func (greeterPart) NewInstance(args []any) (any, error)                    { return &greeter{Name: "ahoy"}, nil }
func (greeterPart) SetImportingMember(any, string, any) error              { return nil }
func (greeterPart) ExtractExport(instance any, _ catalog.ExportDefinition) (any, error) {
	return instance, nil
}

func TestConfigureAndResolveGenericAPI(t *testing.T) {
	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{greeterPart{}})

	cfg, err := compose.Configure(context.Background(), cat, compose.BuilderOptions{})
	require.NoError(t, err)

	provider := compose.NewProvider(cfg, compose.ProviderOptions{})
	defer provider.Dispose()

	g, err := compose.GetExportedValue[*greeter](context.Background(), provider, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "ahoy", g.Name)

	all, err := compose.GetExportedValues[*greeter](context.Background(), provider, "greeter")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Same(t, g, all[0])
}

func TestConfigureRejectsReservedContract(t *testing.T) {
	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{
		reservedExportPart{},
	})

	_, err := compose.Configure(context.Background(), cat, compose.BuilderOptions{})
	require.Error(t, err)
}

type reservedExportPart struct{ greeterPart }

func (reservedExportPart) Exports() []catalog.ExportDefinition {
	return []catalog.ExportDefinition{{ContractName: catalog.ExportProviderContractName}}
}

func TestWithReferenceAssembliesIsCopyOnWrite(t *testing.T) {
	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{greeterPart{}})
	cfg, err := compose.Configure(context.Background(), cat, compose.BuilderOptions{})
	require.NoError(t, err)

	extended := cfg.WithReferenceAssemblies("alpha", "beta")
	assert.Empty(t, cfg.ReferenceAssemblies())
	assert.ElementsMatch(t, []string{"alpha", "beta"}, extended.ReferenceAssemblies())
}

func TestToDgmlRendersNodes(t *testing.T) {
	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{greeterPart{}})
	cfg, err := compose.Configure(context.Background(), cat, compose.BuilderOptions{})
	require.NoError(t, err)

	dgml := cfg.ToDgml()
	assert.True(t, strings.Contains(dgml, "digraph"))
	assert.True(t, strings.Contains(dgml, "greeterPart"))
}

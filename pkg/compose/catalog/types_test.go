package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodia/compose/pkg/compose/catalog"
)

type fakePart struct {
	name    string
	exports []catalog.ExportDefinition
}

func (p *fakePart) String() string                                       { return p.name }
func (p *fakePart) Exports() []catalog.ExportDefinition                  { return p.exports }
func (p *fakePart) ImportingMembers() []catalog.ImportDefinitionBinding  { return nil }
func (p *fakePart) ImportingConstructor() []catalog.ImportDefinitionBinding {
	return nil
}
func (p *fakePart) IsShared() bool                 { return false }
func (p *fakePart) SharingBoundary() string        { return "" }
func (p *fakePart) IsSharingBoundaryInferred() bool { return false }
func (p *fakePart) NewInstance(args []any) (any, error) { return p, nil }
func (p *fakePart) SetImportingMember(any, string, any) error { return nil }
func (p *fakePart) ExtractExport(instance any, _ catalog.ExportDefinition) (any, error) {
	return instance, nil
}

func TestCardinalityString(t *testing.T) {
	assert.Equal(t, "ZeroOrOne", catalog.ZeroOrOne.String())
	assert.Equal(t, "ExactlyOne", catalog.ExactlyOne.String())
	assert.Equal(t, "ZeroOrMore", catalog.ZeroOrMore.String())
}

func TestImportDefinitionSatisfies(t *testing.T) {
	onlyFoo := func(def catalog.ExportDefinition) bool { return def.Metadata["tier"] == "foo" }
	imp := catalog.ImportDefinition{ContractName: "c", Constraints: []catalog.ExportConstraint{onlyFoo}}

	assert.True(t, imp.Satisfies(catalog.ExportDefinition{Metadata: map[string]any{"tier": "foo"}}))
	assert.False(t, imp.Satisfies(catalog.ExportDefinition{Metadata: map[string]any{"tier": "bar"}}))
}

func TestSliceCatalogGetExports(t *testing.T) {
	a := &fakePart{name: "A", exports: []catalog.ExportDefinition{{ContractName: "svc"}}}
	b := &fakePart{name: "B", exports: []catalog.ExportDefinition{{ContractName: "svc"}}}

	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{a, b})

	exports := cat.GetExports(catalog.ImportDefinition{ContractName: "svc", Cardinality: catalog.ZeroOrMore})
	require.Len(t, exports, 2)

	none := cat.GetExports(catalog.ImportDefinition{ContractName: "missing"})
	assert.Empty(t, none)
}

func TestSliceCatalogWithPartIsCopyOnWrite(t *testing.T) {
	a := &fakePart{name: "A", exports: []catalog.ExportDefinition{{ContractName: "svc"}}}
	base := catalog.NewSliceCatalog([]catalog.PartDefinition{a})

	b := &fakePart{name: "B", exports: []catalog.ExportDefinition{{ContractName: "svc"}}}
	extended := base.WithPart(b)

	assert.Len(t, base.Parts(), 1)
	assert.Len(t, extended.Parts(), 2)
}

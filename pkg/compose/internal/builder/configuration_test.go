package builder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodia/compose/pkg/compose/catalog"
	"github.com/vodia/compose/pkg/compose/internal/builder"
)

// testPart is a minimal, fully scriptable catalog.PartDefinition used
// across the builder test suite.
type testPart struct {
	name             string
	exports          []catalog.ExportDefinition
	ctor             []catalog.ImportDefinitionBinding
	members          []catalog.ImportDefinitionBinding
	shared           bool
	boundary         string
	boundaryInferred bool
}

func (p *testPart) String() string                                         { return p.name }
func (p *testPart) Exports() []catalog.ExportDefinition                     { return p.exports }
func (p *testPart) ImportingMembers() []catalog.ImportDefinitionBinding     { return p.members }
func (p *testPart) ImportingConstructor() []catalog.ImportDefinitionBinding { return p.ctor }
func (p *testPart) IsShared() bool                                         { return p.shared }
func (p *testPart) SharingBoundary() string                                { return p.boundary }
func (p *testPart) IsSharingBoundaryInferred() bool                        { return p.boundaryInferred }
func (p *testPart) NewInstance(args []any) (any, error)                    { return p, nil }
func (p *testPart) SetImportingMember(any, string, any) error              { return nil }
func (p *testPart) ExtractExport(instance any, _ catalog.ExportDefinition) (any, error) {
	return instance, nil
}

func memberImport(member, contract string, cardinality catalog.Cardinality) catalog.ImportDefinitionBinding {
	return catalog.ImportDefinitionBinding{
		Member: member,
		Import: catalog.ImportDefinition{ContractName: contract, Cardinality: cardinality},
	}
}

func TestCreateSimpleGraph(t *testing.T) {
	consumer := &testPart{
		name: "consumer",
		members: []catalog.ImportDefinitionBinding{
			memberImport("DB", "db.Connection", catalog.ExactlyOne),
		},
	}
	producer := &testPart{
		name:    "producer",
		exports: []catalog.ExportDefinition{{ContractName: "db.Connection"}},
	}

	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{consumer, producer})
	b := builder.New(builder.Options{})

	cfg, err := b.Create(context.Background(), cat)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// +1 for the synthesized export-provider self-export part.
	assert.Len(t, cfg.Parts, 3)
	require.NotNil(t, cfg.PartFor(consumer))
}

func TestCreateRejectsReservedContract(t *testing.T) {
	rogue := &testPart{
		name:    "rogue",
		exports: []catalog.ExportDefinition{{ContractName: catalog.ExportProviderContractName}},
	}
	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{rogue})

	_, err := builder.New(builder.Options{}).Create(context.Background(), cat)
	require.Error(t, err)

	var cfe *builder.CompositionFailedError
	assert.True(t, errors.As(err, &cfe))
}

func TestCreateFailsValidationOnCardinalityMismatch(t *testing.T) {
	consumer := &testPart{
		name: "consumer",
		members: []catalog.ImportDefinitionBinding{
			memberImport("DB", "db.Connection", catalog.ExactlyOne),
		},
	}
	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{consumer})

	_, err := builder.New(builder.Options{}).Create(context.Background(), cat)
	require.Error(t, err)

	var pve *builder.PartValidationError
	assert.True(t, errors.As(err, &pve))
}

func TestCreateDetectsNonSharedCycle(t *testing.T) {
	a := &testPart{name: "a", exports: []catalog.ExportDefinition{{ContractName: "a"}}}
	b := &testPart{name: "b", exports: []catalog.ExportDefinition{{ContractName: "b"}}}
	a.members = []catalog.ImportDefinitionBinding{memberImport("B", "b", catalog.ExactlyOne)}
	b.members = []catalog.ImportDefinitionBinding{memberImport("A", "a", catalog.ExactlyOne)}

	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{a, b})

	_, err := builder.New(builder.Options{}).Create(context.Background(), cat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, builder.ErrCycleDetected))
}

func TestCreateAllowsSharedCycle(t *testing.T) {
	a := &testPart{name: "a", exports: []catalog.ExportDefinition{{ContractName: "a"}}, shared: true}
	b := &testPart{name: "b", exports: []catalog.ExportDefinition{{ContractName: "b"}}, shared: true}
	a.members = []catalog.ImportDefinitionBinding{memberImport("B", "b", catalog.ExactlyOne)}
	b.members = []catalog.ImportDefinitionBinding{memberImport("A", "a", catalog.ExactlyOne)}

	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{a, b})

	cfg, err := builder.New(builder.Options{}).Create(context.Background(), cat)
	require.NoError(t, err)
	assert.Len(t, cfg.Parts, 3)
}

func TestInferredBoundarySynthesis(t *testing.T) {
	root := &testPart{
		name:     "root",
		shared:   true,
		boundary: "request",
		exports:  []catalog.ExportDefinition{{ContractName: "root"}},
	}
	leaf := &testPart{
		name:             "leaf",
		shared:           true,
		boundaryInferred: true,
	}
	// leaf depends on root, so it inherits root's "request" boundary.
	leaf.members = []catalog.ImportDefinitionBinding{memberImport("Root", "root", catalog.ExactlyOne)}

	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{root, leaf})
	cfg, err := builder.New(builder.Options{}).Create(context.Background(), cat)
	require.NoError(t, err)

	assert.Equal(t, "request", cfg.EffectiveSharingBoundary(leaf))
}

func TestDebugIDIsStableAndDistinct(t *testing.T) {
	a := &testPart{name: "same-name"}
	b := &testPart{name: "same-name"}
	cat := catalog.NewSliceCatalog([]catalog.PartDefinition{a, b})
	cfg, err := builder.New(builder.Options{}).Create(context.Background(), cat)
	require.NoError(t, err)

	idA1 := cfg.DebugID(a)
	idA2 := cfg.DebugID(a)
	idB := cfg.DebugID(b)

	assert.Equal(t, idA1, idA2)
	assert.NotEqual(t, idA1, idB)
}

package builder

import (
	"errors"
	"fmt"

	"github.com/vodia/compose/pkg/compose/catalog"
)

// providerPartDefinition is the part definition Create synthesizes in step
// 2 to expose the export provider itself as a shared export under the
// reserved contract name. It is never actually instantiated through the
// normal resolution path: the runtime's resolution protocol (§4.6.1 step 1)
// recognizes ExportProviderContractName and returns its self-export facade
// directly, without ever calling NewInstance on this definition. It exists
// in the catalog purely so the provider participates in sharing-boundary
// bookkeeping like any other shared part.
type providerPartDefinition struct{}

// NewProviderPartDefinition returns the synthesized part definition added
// to the working catalog by Create step 2.
func NewProviderPartDefinition() catalog.PartDefinition {
	return providerPartDefinition{}
}

func (providerPartDefinition) String() string { return "<export provider self-export>" }

func (providerPartDefinition) Exports() []catalog.ExportDefinition {
	return []catalog.ExportDefinition{{ContractName: catalog.ExportProviderContractName}}
}

func (providerPartDefinition) ImportingMembers() []catalog.ImportDefinitionBinding    { return nil }
func (providerPartDefinition) ImportingConstructor() []catalog.ImportDefinitionBinding { return nil }
func (providerPartDefinition) IsShared() bool                                          { return true }
func (providerPartDefinition) SharingBoundary() string                                 { return "" }
func (providerPartDefinition) IsSharingBoundaryInferred() bool                         { return false }

func (providerPartDefinition) NewInstance([]any) (any, error) {
	return nil, errors.New("compose: the export provider self-export cannot be instantiated through the normal resolution path")
}

func (providerPartDefinition) SetImportingMember(any, string, any) error {
	return fmt.Errorf("compose: the export provider self-export has no importing members")
}

func (providerPartDefinition) ExtractExport(instance any, _ catalog.ExportDefinition) (any, error) {
	return instance, nil
}

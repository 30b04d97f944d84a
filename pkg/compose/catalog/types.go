// Package catalog defines the data model that the composition engine
// consumes: part definitions, their imports and exports, and the catalog
// that indexes them. Values of these types are produced by part discovery
// (reflection/attribute scanning) which lives outside this module; catalog
// only describes the shapes the builder and runtime packages operate on.
package catalog

import "fmt"

// Cardinality is the required multiplicity of an import.
type Cardinality int

const (
	// ZeroOrOne permits zero or one satisfying export.
	ZeroOrOne Cardinality = iota
	// ExactlyOne requires exactly one satisfying export.
	ExactlyOne
	// ZeroOrMore permits any number of satisfying exports, including zero.
	ZeroOrMore
)

func (c Cardinality) String() string {
	switch c {
	case ZeroOrOne:
		return "ZeroOrOne"
	case ExactlyOne:
		return "ExactlyOne"
	case ZeroOrMore:
		return "ZeroOrMore"
	default:
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
}

// ExportDefinition identifies a single export a part advertises: a contract
// name plus arbitrary metadata describing it.
type ExportDefinition struct {
	ContractName string
	Metadata     map[string]any
}

// ExportConstraint is a satisfiability predicate an import places on
// candidate exports, beyond contract-name matching.
type ExportConstraint func(ExportDefinition) bool

// ImportDefinition is a dependency a part declares.
type ImportDefinition struct {
	ContractName string
	Cardinality  Cardinality
	Metadata     map[string]any
	Constraints  []ExportConstraint
	// IsExportFactory marks an import that supplies a deferred constructor
	// for its target rather than an immediate value. Export-factory imports
	// do not participate in sharing-boundary back-edge propagation.
	IsExportFactory bool
}

// Satisfies reports whether def satisfies every constraint on i. Contract
// name matching is the caller's responsibility (it is cheaper to index by
// contract name before calling this).
func (i ImportDefinition) Satisfies(def ExportDefinition) bool {
	for _, c := range i.Constraints {
		if !c(def) {
			return false
		}
	}
	return true
}

// ImportDefinitionBinding pairs an ImportDefinition with the part member
// (field, property, or constructor parameter) it is bound to.
type ImportDefinitionBinding struct {
	// Member is the field/property name for a member import, or a
	// zero-based parameter name/index encoded as a string for a
	// constructor-parameter import.
	Member string
	Import ImportDefinition
}

// PartDefinition identifies a composable part type: what it exports, what
// it imports, and how to instantiate and extract values from it.
//
// PartDefinition is the seam between this module and part discovery: values
// implementing it are produced elsewhere (reflection/attribute scanning,
// hand-written registration, or generated code) and handed to the
// configuration builder unchanged.
type PartDefinition interface {
	fmt.Stringer

	// Exports lists every export this part advertises.
	Exports() []ExportDefinition

	// ImportingMembers lists field/property imports. Order is insignificant.
	ImportingMembers() []ImportDefinitionBinding

	// ImportingConstructor lists constructor-parameter imports in
	// declaration order, or nil if the part declares no importing
	// constructor.
	ImportingConstructor() []ImportDefinitionBinding

	// IsShared reports whether this part has singleton semantics scoped to
	// its sharing boundary.
	IsShared() bool

	// SharingBoundary is the author-declared sharing boundary, or "" if
	// none was declared.
	SharingBoundary() string

	// IsSharingBoundaryInferred reports whether SharingBoundary was left
	// unspecified and must be synthesized by the builder (§4.4).
	IsSharingBoundaryInferred() bool

	// NewInstance constructs a new Go value for this part given the
	// already-resolved constructor arguments, in the order returned by
	// ImportingConstructor. A part with no importing constructor is
	// constructed with a nil args slice.
	NewInstance(args []any) (any, error)

	// SetImportingMember assigns a resolved import value onto the named
	// member of instance.
	SetImportingMember(instance any, member string, value any) error

	// ExtractExport retrieves the exported value identified by def from
	// instance (§4.6.3: field, property, getter, or method delegate).
	ExtractExport(instance any, def ExportDefinition) (any, error)
}

// OpenGenericPartDefinition is implemented by part definitions declared on
// an open generic type. CloseGeneric specializes the definition against a
// concrete set of type arguments (§4.6.1 step 3).
type OpenGenericPartDefinition interface {
	PartDefinition
	CloseGeneric(typeArgs []string) (PartDefinition, error)
}

// ExportProviderContractName is the reserved contract name identifying the
// export provider itself (spec §6). No user part may advertise an export
// under this name; Create rejects any catalog that does (spec §4.1 step 1,
// §7 invalid-catalog, §8 scenario 6).
const ExportProviderContractName = "github.com/vodia/compose/pkg/compose/runtime.ExportProvider"

// GenericParametersKey is the ImportDefinition.Metadata key under which the
// import's closed generic type arguments are stored, read during open
// generic specialization (§4.6.1 step 3). Values are represented as their
// canonical type-argument strings (e.g. Go type names); concrete reflection
// is left to the catalog/discovery layer that implements
// OpenGenericPartDefinition.CloseGeneric.
const GenericParametersKey = "GenericParameters"

// Export pairs an ExportDefinition with the part that produces it.
type Export struct {
	Definition ExportDefinition
	Part       PartDefinition

	// IsOpenGeneric marks an export declared on an open generic part type.
	IsOpenGeneric bool
	// GenericContractName is the open generic's own contract name, used
	// when an import requests the closed form (§4.6.1 step 3).
	GenericContractName string
}

func (e Export) String() string {
	return fmt.Sprintf("Export{%s from %s}", e.Definition.ContractName, e.Part)
}

// Catalog indexes a set of PartDefinitions and answers export queries
// against them.
type Catalog interface {
	// Parts returns every part definition in the catalog, in a stable
	// iteration order.
	Parts() []PartDefinition

	// GetExports returns every export in the catalog that matches the
	// import's contract name and satisfies its constraints.
	GetExports(def ImportDefinition) []Export
}

// SliceCatalog is the default, in-memory Catalog implementation: a flat
// slice of part definitions indexed by contract name on construction.
type SliceCatalog struct {
	parts   []PartDefinition
	byName  map[string][]Export
	openGen map[string][]Export
}

// NewSliceCatalog builds a SliceCatalog from parts, indexing every export
// (including open-generic exports) by contract name.
func NewSliceCatalog(parts []PartDefinition) *SliceCatalog {
	c := &SliceCatalog{
		parts:   parts,
		byName:  make(map[string][]Export),
		openGen: make(map[string][]Export),
	}
	for _, p := range parts {
		_, isOpenGeneric := p.(OpenGenericPartDefinition)
		for _, def := range p.Exports() {
			exp := Export{Definition: def, Part: p}
			if isOpenGeneric {
				exp.IsOpenGeneric = true
				exp.GenericContractName = def.ContractName
				c.openGen[def.ContractName] = append(c.openGen[def.ContractName], exp)
				continue
			}
			c.byName[def.ContractName] = append(c.byName[def.ContractName], exp)
		}
	}
	return c
}

// Parts implements Catalog.
func (c *SliceCatalog) Parts() []PartDefinition { return c.parts }

// GetExports implements Catalog.
func (c *SliceCatalog) GetExports(def ImportDefinition) []Export {
	candidates := c.byName[def.ContractName]
	out := make([]Export, 0, len(candidates))
	for _, e := range candidates {
		if def.Satisfies(e.Definition) {
			out = append(out, e)
		}
	}
	return out
}

// OpenGenericExports returns the open-generic exports registered under the
// given open-generic contract name, used by the runtime during open-generic
// specialization (§4.6.1 step 3).
func (c *SliceCatalog) OpenGenericExports(openGenericContractName string) []Export {
	return c.openGen[openGenericContractName]
}

// WithPart returns a new SliceCatalog with part appended, leaving the
// receiver untouched (§6: configuration values are produced, not mutated).
func (c *SliceCatalog) WithPart(part PartDefinition) *SliceCatalog {
	parts := make([]PartDefinition, len(c.parts), len(c.parts)+1)
	copy(parts, c.parts)
	parts = append(parts, part)
	return NewSliceCatalog(parts)
}

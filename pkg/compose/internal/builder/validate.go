package builder

import (
	"fmt"

	"github.com/vodia/compose/pkg/compose/catalog"
)

// PartValidationError reports that a single part failed validation
// (spec §4.5, §7 invalid-catalog). It is collected by Create and
// aggregated into one composition-failed error.
type PartValidationError struct {
	Part   catalog.PartDefinition
	Member string
	Err    error
}

func (e *PartValidationError) Error() string {
	return fmt.Sprintf("part %s: import %q: %s", e.Part, e.Member, e.Err)
}

func (e *PartValidationError) Unwrap() error { return e.Err }

// validatePart implements §4.5: every import must be satisfied according
// to its cardinality.
func validatePart(b *partBuilder) []error {
	var errs []error
	for _, binding := range allBindings(b.definition) {
		imp := catalog.Import{Member: binding.Member, ContractName: binding.Import.ContractName}
		count := len(b.satisfyingExports[imp])

		switch binding.Import.Cardinality {
		case catalog.ExactlyOne:
			if count != 1 {
				errs = append(errs, &PartValidationError{
					Part:   b.definition,
					Member: binding.Member,
					Err:    fmt.Errorf("expected exactly one export for contract %q, found %d", binding.Import.ContractName, count),
				})
			}
		case catalog.ZeroOrOne:
			if count > 1 {
				errs = append(errs, &PartValidationError{
					Part:   b.definition,
					Member: binding.Member,
					Err:    fmt.Errorf("expected zero or one export for contract %q, found %d", binding.Import.ContractName, count),
				})
			}
		case catalog.ZeroOrMore:
			// Any count, including zero, is valid.
		}
	}
	return errs
}

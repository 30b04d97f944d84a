package runtime

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/vodia/compose/pkg/compose/catalog"
)

// RuntimeError is the error kind for the runtime failure scenarios of spec
// §7 items 3-6. Errors returned by tracked disposables during
// Provider.Dispose are aggregated as they are, not wrapped in RuntimeError. Kind distinguishes the scenario for callers that
// want to branch on it with errors.Is/errors.As; Message carries the
// human-readable detail spec §6 requires ("no error codes; message content
// is human-readable").
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Err     error
}

// RuntimeErrorKind enumerates the runtime failure scenarios from spec §7.
type RuntimeErrorKind int

const (
	// KindCardinalityViolation covers spec §7 item 3: ExactlyOne with zero
	// or multiple matches, or ZeroOrOne with multiple matches.
	KindCardinalityViolation RuntimeErrorKind = iota
	// KindCrossBoundaryViolation covers spec §7 item 4.
	KindCrossBoundaryViolation
	// KindMissingImportingConstructor covers spec §7 item 5.
	KindMissingImportingConstructor
	// KindSelfDisposeOnFacade covers spec §7 item 6.
	KindSelfDisposeOnFacade
)

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func newCardinalityError(def catalog.ImportDefinition, count int) error {
	return &RuntimeError{
		Kind:    KindCardinalityViolation,
		Message: fmt.Sprintf("import of contract %q (cardinality %s) matched %d exports", def.ContractName, def.Cardinality, count),
	}
}

func newCrossBoundaryError(boundary string, def catalog.PartDefinition) error {
	return &RuntimeError{
		Kind:    KindCrossBoundaryViolation,
		Message: fmt.Sprintf("sharing boundary %q required by part %s has not been activated on this provider", boundary, def),
	}
}

func newMissingConstructorError(def catalog.PartDefinition, cause error) error {
	return &RuntimeError{
		Kind:    KindMissingImportingConstructor,
		Message: fmt.Sprintf("part %s could not be instantiated", def),
		Err:     cause,
	}
}

// ErrSelfDisposeOnFacade is returned when a caller disposes the non-
// disposable self-export facade directly (spec §7 item 6, §4.6.4): the
// facade is an import, not the owner, so disposing it is an invalid-state
// error.
var ErrSelfDisposeOnFacade = &RuntimeError{
	Kind:    KindSelfDisposeOnFacade,
	Message: "cannot dispose the export provider's self-export facade directly; dispose the owning provider instead",
}

// aggregateDisposeErrors aggregates per-disposable failures the way the
// teacher aggregates per-part diagnostics, per spec §7's "implementers may
// choose to aggregate disposal errors".
func aggregateDisposeErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	agg := &multierror.Error{}
	for _, err := range errs {
		agg = multierror.Append(agg, err)
	}
	return agg.ErrorOrNil()
}

// IsCrossBoundaryViolation reports whether err is (or wraps) a §7 item 4
// cross-boundary violation.
func IsCrossBoundaryViolation(err error) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr) && rerr.Kind == KindCrossBoundaryViolation
}

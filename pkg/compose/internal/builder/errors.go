package builder

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// CompositionFailedError is the single configure-time error kind spec §7
// describes: invalid-catalog failures (reserved contract, per-part
// validation) and cycle-detected failures both surface as this type,
// optionally wrapping an aggregate of per-part errors via
// github.com/hashicorp/go-multierror, matching the teacher's
// multierrToDiags/*multierror.Error aggregation in loader.go.
type CompositionFailedError struct {
	Message string
	Errs    *multierror.Error
}

func (e *CompositionFailedError) Error() string {
	if e.Errs != nil && len(e.Errs.Errors) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, e.Errs.Error())
	}
	return e.Message
}

func (e *CompositionFailedError) Unwrap() error {
	if e.Errs == nil {
		return nil
	}
	return e.Errs.ErrorOrNil()
}

func newReservedContractError(contractName string) error {
	return &CompositionFailedError{
		Message: fmt.Sprintf("part advertises reserved export contract %q", contractName),
	}
}

func newInvalidCatalogError(errs []error) error {
	agg := &multierror.Error{}
	for _, err := range errs {
		agg = multierror.Append(agg, err)
	}
	return &CompositionFailedError{Message: "catalog failed validation", Errs: agg}
}

// ErrCycleDetected is wrapped by CompositionFailedError when Create detects
// a directed cycle among non-shared parts (§4.2, §7 cycle-detected).
var ErrCycleDetected = errors.New("compose: cycle detected among non-shared parts")

func newCycleDetectedError() error {
	return &CompositionFailedError{
		Message: ErrCycleDetected.Error(),
		Errs:    multierror.Append(&multierror.Error{}, ErrCycleDetected),
	}
}

package binding

import (
	"errors"
	"fmt"
)

// ErrNotResolved matches every failed resolution.
var ErrNotResolved = errors.New("value not resolved")

// ErrUndefinedValue is returned when normalization leaves nothing to look up.
var ErrUndefinedValue = fmt.Errorf("%w: value is not defined", ErrNotResolved)

// ErrUnsupportedDataSource is returned for a dataSource option of an unknown type.
var ErrUnsupportedDataSource = errors.New("unsupported data source")

// LookupError reports a failed collection lookup. The collection's error is
// kept as is.
type LookupError struct {
	Value any
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("looking up %v: %v", e.Value, e.Err)
}

// Unwrap exposes both ErrNotResolved and the collection error.
func (e *LookupError) Unwrap() []error {
	return []error{ErrNotResolved, e.Err}
}

// MismatchError reports a lookup whose record does not project to the
// requested value.
type MismatchError struct {
	Requested any
	Actual    any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("record resolved for %v projects to %v", e.Requested, e.Actual)
}

func (e *MismatchError) Unwrap() error { return ErrNotResolved }

// ErrNoCollection is returned when a lookup is attempted with no collection bound.
var ErrNoCollection = errors.New("no collection bound")

// VerifyError reports a value getter that panicked while projecting the
// record a lookup returned.
type VerifyError struct {
	Requested any
	Panic     any
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verifying record for %v: value getter panicked: %v", e.Requested, e.Panic)
}

func (e *VerifyError) Unwrap() error { return ErrNotResolved }

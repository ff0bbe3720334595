package sqlite

import (
	"errors"
	"fmt"
)

// ErrPastEnd is returned when a cursor that already reached the end
// sentinel is advanced again. This is a programming error in the caller's
// iteration loop, not a data condition, and should not be retried.
var ErrPastEnd = errors.New("cannot advance result cursor beyond the end of the result set")

// PrepareError reports a failure to compile SQL text into a statement.
type PrepareError struct {
	SQL string
	Err error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("failed to prepare statement %q: %v", e.SQL, e.Err)
}

func (e *PrepareError) Unwrap() error { return e.Err }

// BindError reports a rejected parameter bind. Index is the 1-based
// parameter index the bind was attempted at; Value describes the value.
// Binds that succeeded before the failure remain applied.
type BindError struct {
	Index int
	Value string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind parameter %d to value %s: %v", e.Index, e.Value, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// StepError reports an engine failure while executing a statement or
// stepping through its result rows. The in-flight result pass is
// unusable afterwards; Reset makes the statement reusable.
type StepError struct {
	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed to step statement: %v", e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

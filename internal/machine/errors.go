package machine

import (
	"errors"
	"fmt"
)

// Domain errors for machine operations.
var (
	// ErrInvalidArgument indicates bad construction or input arguments.
	ErrInvalidArgument = errors.New("machine: invalid argument")

	// ErrInvalidMove indicates a move token outside Left, Right and Stay.
	ErrInvalidMove = errors.New("machine: invalid move")

	// ErrArityMismatch indicates writes or moves whose length differs from the tape count.
	ErrArityMismatch = errors.New("machine: writes/moves length mismatch")
)

// StepError wraps a failed step with the configuration it was attempted from.
// The machine is left exactly as it was before the step.
type StepError struct {
	Step    int
	State   string
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (state %s): %v", e.Step, e.State, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

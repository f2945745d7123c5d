package ilp

import (
	"errors"
	"fmt"
)

// ErrSolverFailure is wrapped by every error caused by the solver not being able to run (missing executable, crash, garbled output)
var ErrSolverFailure = errors.New("solver failure")

type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusSolverError
)

func (status Status) String() string {
	switch status {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "solver error"
	}
}

// Result is the normalized verdict of a solver. Values holds the binding of each variable (Values[i] binds variable i+1) and is only set when Status is StatusOptimal
type Result struct {
	Status Status
	Values []bool
}

// Value returns the binding of a 1-based variable; any non-optimal result binds nothing
func (result Result) Value(variable uint64) bool {
	if result.Status != StatusOptimal || variable == 0 || variable > uint64(len(result.Values)) {
		return false
	}
	return result.Values[variable-1]
}

type Solver interface {
	// Solve returns a StatusOptimal result with a full assignment, or a non-optimal one without assignment.
	// Proven infeasibility (or unboundedness) is not an error; a nil error is returned along with the status.
	// Any failure to run the solver yields StatusSolverError and an error wrapping ErrSolverFailure
	Solve(model Model) (Result, error)
}

func failure(format string, args ...any) (Result, error) {
	return Result{Status: StatusSolverError}, fmt.Errorf("%w: %s", ErrSolverFailure, fmt.Sprintf(format, args...))
}

func optimal(variables uint64, values []bool) Result {
	// Pad or cut so the assignment covers exactly the model's variables
	assignment := make([]bool, variables)
	copy(assignment, values)
	return Result{Status: StatusOptimal, Values: assignment}
}

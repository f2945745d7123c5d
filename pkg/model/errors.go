package model

import "errors"

var (
	// ErrNotFound is wrapped by every catalog lookup miss
	ErrNotFound = errors.New("not found")
	// ErrInvalidLesson is wrapped when a lesson's required slots or classroom affinity cannot be resolved
	ErrInvalidLesson = errors.New("invalid lesson")
	// ErrNoSolution is returned when a schedule is requested from a non-optimal solver result
	ErrNoSolution = errors.New("no optimal solution")
)

type unassignableError struct{}

func (err unassignableError) Error() string {
	return "not all lessons can be assigned a classroom"
}

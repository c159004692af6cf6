package engine

import (
	"errors"
	"fmt"

	"github.com/solverlab/formula/internal/vid"
)

// ErrDuplicateChannel is returned by CreateChannel when a solver already
// exists for the VID.
var ErrDuplicateChannel = errors.New("engine: channel already exists for this variable")

// ErrUnknownChannel is returned by RemoveModifier/Diagnose when no solver
// exists for the VID.
var ErrUnknownChannel = errors.New("engine: no channel exists for this variable")

// ErrCycleDetected is returned by solve_from when a dependency cycle fails
// to reach a fixed point on its first lap (spec.md §4.7).
var ErrCycleDetected = errors.New("engine: cycle detected")

// CycleError carries the recursion path that triggered ErrCycleDetected.
type CycleError struct {
	Path []vid.VID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycleDetected, formatPath(e.Path))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

func formatPath(path []vid.VID) string {
	s := "["
	for i, v := range path {
		if i > 0 {
			s += " -> "
		}
		s += v.String()
	}
	return s + "]"
}

// MaxDepthError is returned when propagation's recursion stack exceeds the
// manager's configured MaxGraphDepth (spec.md §5: "Upstream callers wanting
// bounded work must enforce size limits on the dependency graph
// externally" — this is that mechanism, opt-in via Option).
type MaxDepthError struct {
	Limit int
}

func (e *MaxDepthError) Error() string {
	return fmt.Sprintf("engine: recursion depth exceeded MaxGraphDepth (%d)", e.Limit)
}

// Package modifier implements the modifier stack (C6): the ordered list of
// contributions a variable's solver applies on top of its format's default
// to produce the variable's current value.
package modifier

import (
	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/vid"
)

// Priority orders modifier kinds within a solver's stack: sets run before
// additive operations, which run before multiplicative operations, which run
// before min/max clamps (spec.md §4.6). Lower runs first.
type Priority int

const (
	PrioritySet Priority = iota * 100
	PriorityAdd
	PriorityMultiply
	PriorityMinMax
)

// Modifier is one contribution to a variable's value (spec.md §4.6). Source
// is an opaque caller-supplied identity (e.g. the equipment instance that
// attached the modifier) used, together with the modifier itself, as the
// dedup/removal key.
type Modifier interface {
	// Priority orders this modifier within a Solver's stack.
	Priority() Priority

	// Format is the format this modifier's result must be a subformat of.
	Format() format.Format

	// OperatorName identifies the kind of contribution for diagnose() records.
	OperatorName() string

	// Dependencies returns the VIDs this modifier's formula (if any)
	// references, using v to resolve identifiers in its formula's scope.
	Dependencies(v *ast.Visitor) ([]vid.VID, error)

	// Apply computes this modifier's output given the running input value
	// and the evaluation visitor, returning the value passed to the next
	// modifier in the stack.
	Apply(v *ast.Visitor, input any) (any, error)
}

// Step is one record in a Solver.Diagnose trace.
type Step struct {
	Source       any
	OperatorName string
	Intermediate any
}

// entry pairs a modifier with the source identity it was added under, the
// dedup/removal key spec.md §4.6 specifies for add_modifier/remove_modifier.
type entry struct {
	m      Modifier
	source any
}

func sameEntry(a, b entry) bool {
	return a.m == b.m && a.source == b.source
}

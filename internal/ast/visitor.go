package ast

import (
	"log"

	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
)

// EvalStore is the slice of the variable store (C4) the evaluation pass
// needs: reading a variable's current value.
type EvalStore interface {
	Get(id vid.VID) (any, bool)
}

// Visitor carries the inherited/synthesized state threaded through a single
// walk of an expression tree: the current scope instance, the collaborator
// libraries, and (for the evaluation pass only) the running INPUT value and
// a diagnostics sink. One Visitor is built per top-level CheckSemantics/
// CollectDependencies/Evaluate call; functions receive it so they can
// re-enter the same pass on their own argument subtrees (spec.md §4.5,
// "letting the function re-enter the evaluator on sub-trees").
//
// This replaces the original visitor-double-dispatch design with a single
// explicit context struct (see DESIGN.md, "Inherited/synthesized attributes
// in visitor passes"): PushInput is the scoped-acquisition guard that makes
// sure a pushed INPUT value is popped on every exit path, including error
// returns, via `defer v.PushInput(x)()` at each call site.
type Visitor struct {
	Scope     *scope.Instance
	Library   FormatLookup
	Operators OperatorLibrary
	Functions FunctionLibrary
	Store     EvalStore
	Owner     any
	Logger    *log.Logger

	// Args is the positional argument list available to the arg(n)
	// built-in, populated by the caller that invoked this formula with
	// explicit arguments (spec.md §6's arg(n) built-in). Empty for a
	// formula evaluated without an argument list.
	Args []any

	inputStack []any
}

// NewVisitor builds a visitor for a single pass invocation.
func NewVisitor(sc *scope.Instance, lib FormatLookup, ops OperatorLibrary, fns FunctionLibrary) *Visitor {
	return &Visitor{Scope: sc, Library: lib, Operators: ops, Functions: fns, Logger: log.Default()}
}

// PushInput sets the current INPUT value for the duration of the returned
// pop function; callers must `defer v.PushInput(x)()`.
func (v *Visitor) PushInput(value any) func() {
	v.inputStack = append(v.inputStack, value)
	return func() {
		v.inputStack = v.inputStack[:len(v.inputStack)-1]
	}
}

// Input returns the innermost pushed INPUT value, if any.
func (v *Visitor) Input() (any, bool) {
	if len(v.inputStack) == 0 {
		return nil, false
	}
	return v.inputStack[len(v.inputStack)-1], true
}

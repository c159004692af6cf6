package ast

import (
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
)

// FormatLookup is the slice of the variable library (C3) the AST passes
// need: resolving a declared name in a legal scope to its format. Defined
// here (rather than depending on the concrete internal/vid.Library type) so
// this package's passes stay decoupled from the library's storage choices.
type FormatLookup interface {
	FormatOf(ls *scope.Legal, name string) (format.Format, bool)
}

// OperatorAction is one candidate implementation of a binary operator for a
// specific pair of operand formats (spec.md §6).
type OperatorAction interface {
	Operator() string
	AbstractEvaluate(left, right format.Format) (format.Format, bool)
	Evaluate(left, right any) (any, error)
}

// UnaryAction is one candidate implementation of a unary operator.
type UnaryAction interface {
	Operator() string
	AbstractEvaluate(operand format.Format) (format.Format, bool)
	Evaluate(operand any) (any, error)
}

// OperatorLibrary resolves operator symbols to candidate actions. Multiple
// actions per operator are permitted; the evaluator/semantic pass picks the
// first whose AbstractEvaluate succeeds.
type OperatorLibrary interface {
	Binary(category Kind, op string) []OperatorAction
	Unary(category Kind, op string) []UnaryAction
}

// Function is an injected built-in function (spec.md §6): abs, min, max,
// if, arg(n), length, and any caller-supplied extensions.
type Function interface {
	Name() string
	CheckSemantics(v *Visitor, args []Node, asserted format.Format) (format.Format, error)
	GetDependencies(v *Visitor, bag *DependencyBag, args []Node) error
	Evaluate(v *Visitor, args []Node, asserted format.Format) (any, error)
}

// FunctionLibrary resolves a function name to its implementation.
type FunctionLibrary interface {
	Lookup(name string) (Function, bool)
}

// DependencyBag is the keyed bag of analyses the dependency pass
// accumulates (spec.md §4.5). "variables" and "arguments" are first-class;
// functions may ignore either.
type DependencyBag struct {
	Variables   []vid.VID
	seen        map[vid.VID]bool
	MaxArgument int // -1 means no arg(n) reference was seen
}

// NewDependencyBag returns an empty bag.
func NewDependencyBag() *DependencyBag {
	return &DependencyBag{seen: make(map[vid.VID]bool), MaxArgument: -1}
}

// AddVariable records a referenced VID, deduplicating repeats.
func (b *DependencyBag) AddVariable(v vid.VID) {
	if b.seen[v] {
		return
	}
	b.seen[v] = true
	b.Variables = append(b.Variables, v)
}

// NoteArgument records that an arg(n) built-in referenced index n.
func (b *DependencyBag) NoteArgument(n int) {
	if n > b.MaxArgument {
		b.MaxArgument = n
	}
}

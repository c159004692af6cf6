// Package ast implements the expression representation (C5): the parsed
// tree node kinds, the recursive-descent parser for the grammar in spec.md
// §6, and the three tree-walking passes (semantic check, dependency
// capture, evaluation) plus a canonical-text reconstruction pass.
//
// The AST is modeled as a Go sum type: one interface (Node) plus a closed
// set of concrete node structs, dispatched with a type switch in each pass
// rather than the visitor double-dispatch idiom the original implementation
// used — this gives the compiler a chance to flag a missing case and keeps
// each pass a single function instead of a family of Visit methods spread
// across every node type (see DESIGN.md, "Visitor double-dispatch").
package ast

// Kind identifies a node's variant for diagnostics and the few call sites
// that need to branch on it without a full type switch.
type Kind string

const (
	KindRoot       Kind = "root"
	KindParen      Kind = "paren"
	KindArithmetic Kind = "arithmetic"
	KindGeometric  Kind = "geometric"
	KindExponent   Kind = "exponent"
	KindRelational Kind = "relational"
	KindEquality   Kind = "equality"
	KindLogical    Kind = "logical"
	KindUnaryMinus Kind = "unary_minus"
	KindUnaryNot   Kind = "unary_not"
	KindNumber     Kind = "number"
	KindString     Kind = "string"
	KindIdentifier Kind = "identifier"
	KindFunction   Kind = "function"
	KindFuncParen  Kind = "function_paren"
	KindFuncBrack  Kind = "function_bracket"
)

// Node is any node in a parsed expression tree. Nodes are immutable once
// produced by Parse and are shared by reference across passes and across
// formula instances; no pass may mutate a node after parsing completes
// (spec.md §5, "Shared resources").
type Node interface {
	Kind() Kind
}

// Root wraps the whole parsed expression. Every parse produces exactly one.
type Root struct {
	Child Node
}

func (*Root) Kind() Kind { return KindRoot }

// Paren is an explicit parenthesization; it has no semantic effect beyond
// reconstruction fidelity (so canonical text round-trips parentheses the
// author wrote) and evaluates to its child's value.
type Paren struct {
	Child Node
}

func (*Paren) Kind() Kind { return KindParen }

// Binary is any two-operand operator node: arithmetic, geometric,
// exponentiation, relational, equality, or logical, distinguished by
// Category. The two children are not required to share a format; the
// operator library's action decides the result format (spec.md §4.5).
type Binary struct {
	Category Kind
	Op       string
	Left     Node
	Right    Node
}

func (b *Binary) Kind() Kind { return b.Category }

// Unary is a single-operand prefix operator: numeric "-" or boolean "!".
type Unary struct {
	Category Kind // KindUnaryMinus or KindUnaryNot
	Op       string
	Operand  Node
}

func (u *Unary) Kind() Kind { return u.Category }

// Number is a numeric literal, kept as the original source text so the
// semantic pass (not the parser) decides integer-vs-real per spec.md §4.5.
type Number struct {
	Text string
}

func (*Number) Kind() Kind { return KindNumber }

// String is a quoted-string literal; Text is the unescaped content (without
// the surrounding quotes).
type String struct {
	Text string
}

func (*String) Kind() Kind { return KindString }

// Identifier references a variable by name, resolved against the current
// scope instance by the variable library.
type Identifier struct {
	Name string
}

func (*Identifier) Kind() Kind { return KindIdentifier }

// Function is a function-call node: a name plus a bracketed-argument-list
// child (always a *FuncParen in trees produced by this package's parser;
// *FuncBrack exists as a node kind for parity with spec.md §4.5 but no
// production in the grammar of §6 reaches it).
type Function struct {
	Name string
	Args *FuncParen
}

func (*Function) Kind() Kind { return KindFunction }

// FuncParen is the structural argument-list node for a parenthesized call.
// It only ever appears as Function.Args; visiting it directly (outside of
// the Function-node handling that unwraps it) is an invariant violation.
type FuncParen struct {
	Args []Node
}

func (*FuncParen) Kind() Kind { return KindFuncParen }

// FuncBrack is the structural argument-list node for bracketed call syntax.
// Reserved for parity with spec.md §4.5's node-kind list; unreachable from
// the grammar in §6 and therefore never constructed by Parse.
type FuncBrack struct {
	Args []Node
}

func (*FuncBrack) Kind() Kind { return KindFuncBrack }

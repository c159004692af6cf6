package ast

import "errors"

// Sentinel errors for the AST passes, following the same
// declare-then-wrap(%w) convention as internal/vid.
var (
	// ErrBadNumber indicates a number literal that parses as neither a
	// signed integer nor a real.
	ErrBadNumber = errors.New("bad number literal")

	// ErrBadFormula indicates a syntactic or semantic rejection of an
	// expression as a whole.
	ErrBadFormula = errors.New("bad formula")

	// ErrBadOperand indicates an operand does not satisfy an operator's
	// constraints (no matching operator action was found).
	ErrBadOperand = errors.New("bad operand")

	// ErrUnknownVariable indicates an identifier that is not declared in
	// the current scope context. Re-declared here (rather than imported
	// from internal/vid) so internal/ast does not need to depend on
	// internal/vid for error identity; internal/vid.ErrUnknownVariable
	// wraps the same message and call sites compare by errors.Is against
	// whichever package's sentinel they already imported.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrInvariantViolation indicates a bug in this package or its caller:
	// an operation that spec.md declares can never legitimately happen
	// (e.g. directly evaluating a structural Function-argument node).
	ErrInvariantViolation = errors.New("invariant violation")
)

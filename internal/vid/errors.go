package vid

import "errors"

// Sentinel errors for the variable library, in the teacher's
// declare-then-wrap convention (see internal/storage/sqlite/errors.go).
var (
	// ErrBadName indicates a name is empty or edge-whitespaced.
	ErrBadName = errors.New("bad variable name")

	// ErrConflictingFormat indicates (LS, name) already has a different format.
	ErrConflictingFormat = errors.New("conflicting format")

	// ErrShadowedName indicates name is already asserted in a related scope.
	ErrShadowedName = errors.New("shadowed name")

	// ErrUnknownVariable indicates a variable is not declared in context.
	ErrUnknownVariable = errors.New("unknown variable")
)

package config

import "errors"

// Sentinel errors for configuration loading, in the teacher's
// declare-then-wrap convention (see internal/storage/sqlite/errors.go).
var (
	// ErrUnknownFormat indicates a variable-assertion fragment named a
	// format the registry doesn't recognize (and that isn't a valid
	// array<...> combinator expression).
	ErrUnknownFormat = errors.New("config: unknown format")

	// ErrUnknownScope indicates a variable-assertion fragment named a
	// legal scope that was never declared in the scope-tree file.
	ErrUnknownScope = errors.New("config: unknown scope")

	// ErrBadScopeTree indicates the scope-tree YAML does not decode,
	// declares a scope with an empty name or named "global", or has a
	// cycle in its parent chain. (A parent that is never declared is
	// reported as ErrUnknownScope instead.)
	ErrBadScopeTree = errors.New("config: malformed scope tree")
)

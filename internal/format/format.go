// Package format implements the format registry (C1): the catalog of value
// types a variable or expression may carry, their subformat relation, and
// their text parse/serialize rules.
package format

import (
	"fmt"
)

// Kind names a format so it can be looked up by string, asserted in
// configuration files, and compared for identity without pointer aliasing
// concerns across packages.
type Kind string

// Format is a handle identifying the value type a variable or expression
// carries. Implementations are expected to be immutable singletons; the
// registry is the only place new Formats are constructed.
type Format interface {
	// Name returns the format's managed-class identity.
	Name() Kind

	// IsSubformatOf reports whether every value of this format is also a
	// valid value of other. Subformat is reflexive: F.IsSubformatOf(F) is
	// always true.
	IsSubformatOf(other Format) bool

	// Parse converts source text into a value of this format, or fails.
	Parse(text string) (any, error)

	// Unparse renders a value of this format back to text.
	Unparse(value any) (string, error)

	// Default returns the format's default value and whether one exists.
	Default() (any, bool)

	// Accepts reports whether value is a legal value of this format,
	// without attempting a parse.
	Accepts(value any) bool
}

// Registry maps format names to handles and answers subformat queries.
// It is the concrete default implementation of the §4.1 FormatManager
// collaborator contract.
type Registry struct {
	byName map[Kind]Format
}

// NewRegistry returns an empty registry. Callers typically call
// RegisterPrimitives immediately afterward.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[Kind]Format)}
}

// Register adds f to the registry under f.Name(). Re-registering the same
// name with the same handle is a no-op; re-registering it with a different
// handle (even one with the same name, such as a second ArrayOf result) is
// rejected, mirroring the variable library's own idempotent-assert rule so
// the two layers behave consistently.
func (r *Registry) Register(f Format) error {
	existing, ok := r.byName[f.Name()]
	if ok && existing != f {
		return fmt.Errorf("format %q already registered with a different handle", f.Name())
	}
	r.byName[f.Name()] = f
	return nil
}

// Lookup returns the format registered under name, if any.
func (r *Registry) Lookup(name Kind) (Format, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// DefaultFor returns the registered default value for f, if any.
func (r *Registry) DefaultFor(f Format) (any, bool) {
	return f.Default()
}

// IsSubformatOf reports whether a is a subformat of b, delegating to a's own
// IsSubformatOf so composite formats (arrays) can implement structural
// subtyping.
func (r *Registry) IsSubformatOf(a, b Format) bool {
	return a.IsSubformatOf(b)
}

// Parse parses text as a value of format f.
func (r *Registry) Parse(f Format, text string) (any, error) {
	return f.Parse(text)
}

// WithoutDefault returns every registered format for which Default reports
// false — the diagnostic spec.md §4.3 names as
// VariableLibrary.formats_without_default, surfaced here since formats are
// the registry's concern, not the variable library's.
func (r *Registry) WithoutDefault() []Format {
	var out []Format
	for _, f := range r.byName {
		if _, ok := f.Default(); !ok {
			out = append(out, f)
		}
	}
	return out
}

package vid

import (
	"fmt"
	"strings"

	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/scope"
)

// Library is the concrete (LS, name) -> Format assertion table (C3). It is
// not safe for concurrent use, matching the engine's single-threaded model
// (spec.md §5).
type Library struct {
	byScope map[*scope.Legal]map[string]format.Format
	byName  map[string][]*scope.Legal
}

// NewLibrary returns an empty variable library.
func NewLibrary() *Library {
	return &Library{
		byScope: make(map[*scope.Legal]map[string]format.Format),
		byName:  make(map[string][]*scope.Legal),
	}
}

// Assert declares that name may exist in ls with format f. It fails with
// ErrConflictingFormat if (ls, name) already has a different format, with
// ErrShadowedName if name is already asserted in an ancestor or descendant
// of ls, and with ErrBadName if the name is empty or edge-whitespaced.
// Re-asserting an identical (ls, name, f) triple is idempotent.
func (l *Library) Assert(name string, ls *scope.Legal, f format.Format) error {
	if name == "" || name != strings.TrimSpace(name) {
		return fmt.Errorf("assert %q: %w", name, ErrBadName)
	}

	if names, ok := l.byScope[ls]; ok {
		if existing, ok := names[name]; ok {
			if existing == f {
				return nil // idempotent re-assert
			}
			return fmt.Errorf("assert %q in %q: %w", name, ls.Name(), ErrConflictingFormat)
		}
	}

	for _, other := range l.byName[name] {
		if other == ls {
			continue
		}
		if ls.IsRelatedTo(other) {
			return fmt.Errorf("assert %q in %q: already asserted in related scope %q: %w",
				name, ls.Name(), other.Name(), ErrShadowedName)
		}
	}

	if l.byScope[ls] == nil {
		l.byScope[ls] = make(map[string]format.Format)
	}
	l.byScope[ls][name] = f
	l.byName[name] = append(l.byName[name], ls)
	return nil
}

// IsLegal reports whether name has been asserted for ls.
func (l *Library) IsLegal(ls *scope.Legal, name string) bool {
	_, ok := l.FormatOf(ls, name)
	return ok
}

// FormatOf returns the format asserted for (ls, name), if any.
func (l *Library) FormatOf(ls *scope.Legal, name string) (format.Format, bool) {
	names, ok := l.byScope[ls]
	if !ok {
		return nil, false
	}
	f, ok := names[name]
	return f, ok
}

// IdentifierFor resolves name in the legal scope backing si into a VID. It
// fails with ErrUnknownVariable if the name was never asserted for that
// legal scope.
func (l *Library) IdentifierFor(si *scope.Instance, name string) (VID, error) {
	f, ok := l.FormatOf(si.Legal(), name)
	if !ok {
		return VID{}, fmt.Errorf("%q in scope %q: %w", name, si.Legal().Name(), ErrUnknownVariable)
	}
	return VID{Scope: si, Name: name, Format: f}, nil
}

// FormatsWithoutDefault returns every asserted format for which the format
// registry reports no default value, for diagnostics.
func (l *Library) FormatsWithoutDefault() []format.Format {
	seen := make(map[format.Kind]format.Format)
	for _, names := range l.byScope {
		for _, f := range names {
			seen[f.Name()] = f
		}
	}
	var out []format.Format
	for _, f := range seen {
		if _, ok := f.Default(); !ok {
			out = append(out, f)
		}
	}
	return out
}

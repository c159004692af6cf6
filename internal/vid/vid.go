// Package vid implements the variable identifier and the variable library
// (C3): the legal (scope, name) -> format assertions that make a VID
// meaningful, and the VID type itself.
package vid

import (
	"fmt"

	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/scope"
)

// VID is the triple (scope instance, name, format) that names one reactive
// cell. Equality is structural on all three fields.
type VID struct {
	Scope  *scope.Instance
	Name   string
	Format format.Format
}

// Equal reports structural equality of two VIDs.
func (v VID) Equal(o VID) bool {
	return v.Scope == o.Scope && v.Name == o.Name && v.Format == o.Format
}

// String renders a VID for diagnostics and error messages.
func (v VID) String() string {
	scopeName := "global"
	if v.Scope != nil && v.Scope.Legal() != nil && v.Scope.Legal().Parent() != nil {
		scopeName = fmt.Sprintf("%s#%s", v.Scope.Legal().Name(), v.Scope.ID())
	}
	return fmt.Sprintf("%s.%s", scopeName, v.Name)
}

// Less orders VIDs lexicographically on scope-instance identity then name,
// giving ordered containers of VIDs (e.g. sorted dependency sets in
// diagnostics) a deterministic order.
func Less(a, b VID) bool {
	if a.Scope != b.Scope {
		return fmt.Sprintf("%p", a.Scope) < fmt.Sprintf("%p", b.Scope)
	}
	return a.Name < b.Name
}

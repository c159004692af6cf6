package ast

import (
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/vid"
)

// vidFor builds the VID an Identifier node resolves to in v's current scope.
func vidFor(v *Visitor, name string, f format.Format) vid.VID {
	return vid.VID{Scope: v.Scope, Name: name, Format: f}
}

package engine

import (
	"fmt"

	"github.com/solverlab/formula/internal/format"
)

func errNoDefault(f format.Format) error {
	return fmt.Errorf("engine: format %s has no default value registered", f.Name())
}

// SolverFactory is the injected collaborator spec.md §6 names: it supplies
// and tracks the factory-wide default value used to seed a new Solver for a
// format, separate from the format registry's own Default() (a caller may
// override a format's effective default without touching the registry).
type SolverFactory interface {
	// BuildDefault returns the default value a new solver over f should
	// start from.
	BuildDefault(f format.Format) (any, error)

	// SetDefault overrides the default value used for f from now on.
	SetDefault(f format.Format, value any)

	// GetDefault returns the value BuildDefault would currently return.
	GetDefault(f format.Format) (any, error)
}

// DefaultSolverFactory falls back to the format registry's own Default()
// until overridden per-format with SetDefault.
type DefaultSolverFactory struct {
	registry  *format.Registry
	overrides map[format.Kind]any
}

// NewDefaultSolverFactory returns a factory backed by registry.
func NewDefaultSolverFactory(registry *format.Registry) *DefaultSolverFactory {
	return &DefaultSolverFactory{registry: registry, overrides: make(map[format.Kind]any)}
}

func (f *DefaultSolverFactory) BuildDefault(fm format.Format) (any, error) {
	return f.GetDefault(fm)
}

func (f *DefaultSolverFactory) SetDefault(fm format.Format, value any) {
	f.overrides[fm.Name()] = value
}

func (f *DefaultSolverFactory) GetDefault(fm format.Format) (any, error) {
	if v, ok := f.overrides[fm.Name()]; ok {
		return v, nil
	}
	if v, ok := f.registry.DefaultFor(fm); ok {
		return v, nil
	}
	return nil, errNoDefault(fm)
}

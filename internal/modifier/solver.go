package modifier

import (
	"fmt"
	"sort"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/scope"
)

// ErrDuplicateModifier is returned by AddModifier when the (modifier, source)
// pair is already present.
var ErrDuplicateModifier = fmt.Errorf("%w: modifier already attached under this source", ast.ErrInvariantViolation)

// Solver is a single variable's modifier stack (spec.md §4.6's Solver<F>).
// It is not safe for concurrent use, matching the engine's single-threaded
// model (spec.md §5).
type Solver struct {
	format  format.Format
	base    any
	entries []entry
}

// New returns a solver over format f starting from default value def.
func New(f format.Format, def any) *Solver {
	return &Solver{format: f, base: def}
}

// Format returns the solver's format.
func (s *Solver) Format() format.Format { return s.format }

// Default returns the solver's starting value, before any modifier runs.
func (s *Solver) Default() any { return s.base }

// AddModifier inserts m under source in priority order. It rejects an exact
// (m, source) duplicate and a format mismatch (spec.md §4.6).
func (s *Solver) AddModifier(m Modifier, source any) error {
	if !m.Format().IsSubformatOf(s.format) {
		return fmt.Errorf("modifier format %s is not a subformat of solver format %s: %w",
			m.Format().Name(), s.format.Name(), ast.ErrBadOperand)
	}
	next := entry{m: m, source: source}
	for _, e := range s.entries {
		if sameEntry(e, next) {
			return ErrDuplicateModifier
		}
	}
	s.entries = append(s.entries, next)
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].m.Priority() < s.entries[j].m.Priority()
	})
	return nil
}

// RemoveModifier removes the first (m, source) match. No-op if absent.
func (s *Solver) RemoveModifier(m Modifier, source any) {
	target := entry{m: m, source: source}
	for i, e := range s.entries {
		if sameEntry(e, target) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Modifiers returns the current stack in application order.
func (s *Solver) Modifiers() []Modifier {
	out := make([]Modifier, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.m
	}
	return out
}

// Process starts from the solver's default and runs every modifier in
// priority order, threading the running value as each step's input
// (spec.md §4.6).
func (s *Solver) Process(v *ast.Visitor) (any, error) {
	value := s.base
	for _, e := range s.entries {
		next, err := e.apply(v, value)
		if err != nil {
			return nil, err
		}
		value = next
	}
	return value, nil
}

// apply runs e's modifier on input. When e's source is a scope instance,
// v's scope is switched to it for the call, so the modifier's formula
// resolves identifiers in the instance it was attached from.
func (e entry) apply(v *ast.Visitor, input any) (any, error) {
	if si, ok := e.source.(*scope.Instance); ok && si != nil {
		prev := v.Scope
		v.Scope = si
		defer func() { v.Scope = prev }()
	}
	return e.m.Apply(v, input)
}

// Diagnose runs the same sequence as Process but also returns a trace
// step per modifier application, for debugging (spec.md §4.6).
func (s *Solver) Diagnose(v *ast.Visitor) ([]Step, any, error) {
	value := s.base
	steps := make([]Step, 0, len(s.entries))
	for _, e := range s.entries {
		next, err := e.apply(v, value)
		if err != nil {
			return steps, nil, err
		}
		steps = append(steps, Step{Source: e.source, OperatorName: e.m.OperatorName(), Intermediate: next})
		value = next
	}
	return steps, value, nil
}

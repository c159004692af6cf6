// Package formula provides the public surface of the reactive formula
// engine for external callers: a thin facade over internal/engine,
// internal/format, internal/scope, and internal/vid, mirroring the
// teacher's own minimal root-package facade (beads.go).
//
// Most callers should use New to build an Engine with the default format
// registry, operator library, and function library, then Assert variables,
// Open scope instances, and AddModifier/RemoveModifier to drive it.
package formula

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/builtin"
	"github.com/solverlab/formula/internal/engine"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/modifier"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/store"
	"github.com/solverlab/formula/internal/vid"
)

// Core types for working with the engine.
type (
	VID         = vid.VID
	Format      = format.Format
	Kind        = format.Kind
	LegalScope  = scope.Legal
	ScopeInst   = scope.Instance
	Modifier    = modifier.Modifier
	Step        = modifier.Step
	Node        = ast.Root
)

// Format constants matching the four primitives spec.md §3 names as
// examples.
var (
	IntegerFormat = format.IntegerFormat
	RealFormat    = format.RealFormat
	BooleanFormat = format.BooleanFormat
	StringFormat  = format.StringFormat
)

// ArrayOf returns the composite array-of-elem format (spec.md §4.1).
func ArrayOf(elem Format) Format { return format.ArrayOf(elem) }

// Parse parses formula source text into an expression tree per the grammar
// in spec.md §6.
func Parse(src string) (*Node, error) { return ast.Parse(src) }

// Engine bundles the solver manager (C7) together with the collaborators it
// needs to be immediately usable: a format registry with the primitives
// registered, a scope manager rooted at the global scope, and a variable
// library — everything spec.md §3 calls "library configuration".
type Engine struct {
	Registry *format.Registry
	Scopes   *scope.Manager
	Library  *vid.Library
	Ops      ast.OperatorLibrary
	Fns      ast.FunctionLibrary

	mgr *engine.Manager
}

// Option configures an Engine at construction time, threading through to
// the underlying engine.Manager.
type Option = engine.Option

// WithMaxGraphDepth bounds solve_from's recursion stack (see
// engine.WithMaxGraphDepth).
func WithMaxGraphDepth(n int) Option { return engine.WithMaxGraphDepth(n) }

// WithTracerProvider wires an OpenTelemetry tracer provider that solve_from
// spans are recorded against (see engine.WithTracerProvider). cmd/formulaeng
// uses this to wire a stdout trace exporter when --telemetry is set.
func WithTracerProvider(tp trace.TracerProvider) Option { return engine.WithTracerProvider(tp) }

// WithMeterProvider wires an OpenTelemetry meter provider the engine's
// recompute counter is registered against (see engine.WithMeterProvider).
func WithMeterProvider(mp metric.MeterProvider) Option { return engine.WithMeterProvider(mp) }

// New builds an Engine with the default format registry (the four
// primitives), the default OperatorLibrary and FunctionLibrary
// (internal/builtin), and a fresh scope manager and variable library.
func New(opts ...Option) (*Engine, error) {
	registry := format.NewRegistry()
	if err := format.RegisterPrimitives(registry); err != nil {
		return nil, err
	}
	scopes := scope.NewManager()
	lib := vid.NewLibrary()
	ops := builtin.Operators{}
	fns := builtin.NewFunctions()
	factory := engine.NewDefaultSolverFactory(registry)

	return &Engine{
		Registry: registry,
		Scopes:   scopes,
		Library:  lib,
		Ops:      ops,
		Fns:      fns,
		mgr:      engine.NewManager(lib, ops, fns, factory, opts...),
	}, nil
}

// Assert declares that name may exist in ls with format f (spec.md §4.3).
func (e *Engine) Assert(name string, ls *LegalScope, f Format) error {
	return e.Library.Assert(name, ls, f)
}

// DeclareScope declares a new legal scope named name as a child of parent.
func (e *Engine) DeclareScope(parent *LegalScope, name string) (*LegalScope, error) {
	return e.Scopes.DeclareChild(parent, name)
}

// Global returns the implicit root legal scope.
func (e *Engine) Global() *LegalScope { return e.Scopes.Global() }

// GlobalInstance returns the single global scope instance.
func (e *Engine) GlobalInstance() *ScopeInst { return e.Scopes.GlobalInstance() }

// Open opens a scope instance of ls nested under parentInst, for owner.
func (e *Engine) Open(ls *LegalScope, parentInst *ScopeInst, owner any) (*ScopeInst, error) {
	return e.Scopes.Open(ls, parentInst, owner)
}

// Identifier resolves name in si into a VID (spec.md §4.3).
func (e *Engine) Identifier(si *ScopeInst, name string) (VID, error) {
	return e.Library.IdentifierFor(si, name)
}

// AddModifier attaches mod under source to id, creating channels as needed
// and propagating recomputation to every transitive dependent (spec.md
// §4.7). It returns whether id's stored value changed.
func (e *Engine) AddModifier(id VID, mod Modifier, source any) (bool, error) {
	return e.mgr.AddModifier(id, mod, source)
}

// RemoveModifier detaches the (mod, source) pair from id and propagates.
func (e *Engine) RemoveModifier(id VID, mod Modifier, source any) error {
	return e.mgr.RemoveModifier(id, mod, source)
}

// CreateChannel eagerly builds id's solver and computes its default value
// without attaching any modifier.
func (e *Engine) CreateChannel(id VID) error { return e.mgr.CreateChannel(id) }

// Diagnose returns id's current per-modifier evaluation trace (spec.md §4.6).
func (e *Engine) Diagnose(id VID) ([]Step, any, error) { return e.mgr.Diagnose(id) }

// Get returns id's current stored value.
func (e *Engine) Get(id VID) (any, bool) { return e.mgr.Result().Get(id) }

// Result returns the engine's read-only view of computed values (spec.md
// §5: "readers may hold the store as a read-only view").
func (e *Engine) Result() *store.Store { return e.mgr.Result() }

// Set attaches a constant Set modifier to id under source — the common case
// of spec.md's scenario S1 ("set(a, 3)").
func (e *Engine) Set(id VID, value any, source any) (bool, error) {
	return e.AddModifier(id, modifier.NewSet(id.Format, modifier.Const(value)), source)
}

// SetFormula attaches a formula-evaluated Set modifier to id under source.
func (e *Engine) SetFormula(id VID, src string, source any) (bool, error) {
	op, err := modifier.Formula(src)
	if err != nil {
		return false, err
	}
	return e.AddModifier(id, modifier.NewSet(id.Format, op), source)
}

// AddFormula attaches a formula-evaluated Add modifier to id under source —
// spec.md's scenario S1 ("add(a→b, formula=\"a+2\")").
func (e *Engine) AddFormula(id VID, src string, source any) (bool, error) {
	op, err := modifier.Formula(src)
	if err != nil {
		return false, err
	}
	return e.AddModifier(id, modifier.NewAdd(id.Format, op), source)
}

// Package engine implements the solver manager (C7): the channel table,
// dependency graph, and the solve_from propagation algorithm that keeps
// every variable's stored value consistent with its modifier stack
// (spec.md §4.7).
package engine

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/graph"
	"github.com/solverlab/formula/internal/modifier"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/store"
	"github.com/solverlab/formula/internal/vid"
)

const instrumentationName = "github.com/solverlab/formula/internal/engine"

// Manager is the concrete solver manager. It is not safe for concurrent
// use; callers needing multi-threaded access must wrap it in external
// mutual exclusion (spec.md §5).
type Manager struct {
	channels map[vid.VID]*modifier.Solver
	dg       *graph.Graph
	result   *store.Store
	library  *vid.Library
	ops      ast.OperatorLibrary
	fns      ast.FunctionLibrary
	factory  SolverFactory
	logger   *log.Logger

	tracer    trace.Tracer
	recompute metric.Int64Counter

	maxDepth int
	stack    []vid.VID
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithMaxGraphDepth bounds solve_from's recursion stack, raising a
// MaxDepthError instead of recursing unboundedly. Zero (the default) means
// unbounded, matching spec.md §5 exactly unless a caller opts in.
func WithMaxGraphDepth(n int) Option {
	return func(m *Manager) { m.maxDepth = n }
}

// WithLogger overrides the manager's diagnostic logger (default log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithTracerProvider wires an OpenTelemetry tracer provider; defaults to
// the global provider configured by the caller (or a no-op tracer if none).
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider wires an OpenTelemetry meter provider for the
// recompute counter; defaults to a no-op meter if none is supplied.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Manager) {
		counter, err := mp.Meter(instrumentationName).Int64Counter(
			"formula.engine.recompute",
			metric.WithDescription("number of solve_from recomputations"),
		)
		if err == nil {
			m.recompute = counter
		}
	}
}

// NewManager builds a solver manager over library's legality rules,
// evaluating formulas with ops/fns, seeding new solvers from factory.
func NewManager(library *vid.Library, ops ast.OperatorLibrary, fns ast.FunctionLibrary, factory SolverFactory, opts ...Option) *Manager {
	m := &Manager{
		channels: make(map[vid.VID]*modifier.Solver),
		dg:       graph.New(),
		result:   store.New(),
		library:  library,
		ops:      ops,
		fns:      fns,
		factory:  factory,
		logger:   log.Default(),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.recompute == nil {
		noopCounter, _ := noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("formula.engine.recompute")
		m.recompute = noopCounter
	}
	return m
}

// Result returns the manager's read-only view of computed values, matching
// spec.md §5's "readers may hold the store as a read-only view".
func (m *Manager) Result() *store.Store { return m.result }

func (m *Manager) newVisitor(si *scope.Instance) *ast.Visitor {
	v := ast.NewVisitor(si, m.library, m.ops, m.fns)
	v.Store = m.result
	v.Logger = m.logger
	return v
}

// scopeFor picks the scope instance a modifier's formula resolves
// identifiers against: source's own scope instance when source is one
// (spec.md §8 scenario S6: a modifier attached to a Global variable but
// sourced from an Equipment instance resolves "bonus" in that instance),
// falling back to the VID's own scope otherwise.
func scopeFor(id vid.VID, source any) *scope.Instance {
	if si, ok := source.(*scope.Instance); ok && si != nil {
		return si
	}
	return id.Scope
}

// CreateChannel builds an empty solver for id and runs solve_from to
// populate its default value. Fails with ErrDuplicateChannel if id already
// has a channel.
func (m *Manager) CreateChannel(id vid.VID) error {
	if _, ok := m.channels[id]; ok {
		return fmt.Errorf("%s: %w", id, ErrDuplicateChannel)
	}
	return m.ensureChannel(id)
}

func (m *Manager) createChannelUnchecked(id vid.VID) error {
	def, err := m.factory.BuildDefault(id.Format)
	if err != nil {
		return err
	}
	m.channels[id] = modifier.New(id.Format, def)
	m.dg.AddNode(id)
	return nil
}

// ensureChannel creates id's channel and computes its default via
// solve_from if it doesn't already exist (spec.md §4.7's add_modifier:
// "ensures a solver exists for each dependency (recursively, so
// dependencies of dependencies produce defaults first)"). A no-op if id
// already has a channel.
func (m *Manager) ensureChannel(id vid.VID) error {
	if _, ok := m.channels[id]; ok {
		return nil
	}
	if err := m.createChannelUnchecked(id); err != nil {
		return err
	}
	ctx, span := m.tracer.Start(context.Background(), "engine.create_channel",
		trace.WithAttributes(attribute.String("variable", id.String())))
	defer span.End()
	return m.solveFrom(ctx, id)
}

// AddModifier attaches mod under source to id's solver, creating channels
// for id and its unresolved dependencies as needed, wires the dependency
// edges, and propagates. Returns whether id's stored value changed.
func (m *Manager) AddModifier(id vid.VID, mod modifier.Modifier, source any) (bool, error) {
	if !m.library.IsLegal(id.Scope.Legal(), id.Name) {
		return false, fmt.Errorf("%s: %w", id, vid.ErrUnknownVariable)
	}
	if err := m.ensureChannel(id); err != nil {
		return false, err
	}

	depVisitor := m.newVisitor(scopeFor(id, source))
	deps, err := mod.Dependencies(depVisitor)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		if err := m.ensureChannel(dep); err != nil {
			return false, err
		}
	}

	channel := m.channels[id]
	prior, hadPrior := m.result.Get(id)
	if err := channel.AddModifier(mod, source); err != nil {
		return false, err
	}

	tag := graph.EdgeTag{Modifier: mod, Source: source}
	for _, dep := range deps {
		m.dg.AddEdge(dep, id, tag)
	}

	ctx, span := m.tracer.Start(context.Background(), "engine.add_modifier",
		trace.WithAttributes(attribute.String("variable", id.String()), attribute.String("operator", mod.OperatorName())))
	defer span.End()
	if err := m.solveFrom(ctx, id); err != nil {
		return false, err
	}
	newVal, _ := m.result.Get(id)
	return !hadPrior || !valuesEqual(prior, newVal), nil
}

// RemoveModifier detaches the (mod, source) pair from id's solver, removes
// the matching dependency edges, and propagates. Fails with
// ErrUnknownChannel if id has no channel.
func (m *Manager) RemoveModifier(id vid.VID, mod modifier.Modifier, source any) error {
	channel, ok := m.channels[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownChannel)
	}

	depVisitor := m.newVisitor(scopeFor(id, source))
	deps, err := mod.Dependencies(depVisitor)
	if err != nil {
		return err
	}

	// spec.md §9's second Open Question: a declared dependency with no
	// matching edge is an InvariantViolation here, not a silently-logged
	// no-op — the dependency graph and the solver's own Dependencies() must
	// always agree on what a modifier depends on.
	tag := graph.EdgeTag{Modifier: mod, Source: source}
	for _, dep := range deps {
		if m.dg.RemoveEdges(dep, id, tag) == 0 {
			return fmt.Errorf("%s depends on %s but no matching edge exists: %w", id, dep, ast.ErrInvariantViolation)
		}
	}
	channel.RemoveModifier(mod, source)

	ctx, span := m.tracer.Start(context.Background(), "engine.remove_modifier",
		trace.WithAttributes(attribute.String("variable", id.String()), attribute.String("operator", mod.OperatorName())))
	defer span.End()
	return m.solveFrom(ctx, id)
}

// Diagnose returns id's current modifier trace. Fails with
// ErrUnknownChannel if id has no channel.
func (m *Manager) Diagnose(id vid.VID) ([]modifier.Step, any, error) {
	channel, ok := m.channels[id]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", id, ErrUnknownChannel)
	}
	return channel.Diagnose(m.newVisitor(id.Scope))
}

// GetDefault delegates to the solver factory.
func (m *Manager) GetDefault(f format.Format) (any, error) {
	return m.factory.GetDefault(f)
}

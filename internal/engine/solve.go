package engine

import (
	"context"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/solverlab/formula/internal/vid"
)

// valuesEqual compares two stored values for change detection. Primitive
// values compare by ==; array values ([]any) are compared structurally
// since a slice is not a comparable Go type (spec.md §4.7's "compare with
// the previous value").
func valuesEqual(a, b any) bool {
	if av, ok := a.([]any); ok {
		bv, ok := b.([]any)
		if !ok {
			return false
		}
		return reflect.DeepEqual(av, bv)
	}
	return a == b
}

// solveFrom is the propagation algorithm of spec.md §4.7: recompute v,
// compare against its prior value, and on change recurse into every direct
// dependent. A value that changes having already appeared earlier on the
// recursion stack is a diverging cycle (ErrCycleDetected); a value that
// stops changing after one pass through a self-reference is a stable cycle
// and is allowed.
func (m *Manager) solveFrom(ctx context.Context, v vid.VID) (retErr error) {
	if m.maxDepth > 0 && len(m.stack) >= m.maxDepth {
		return &MaxDepthError{Limit: m.maxDepth}
	}

	warning := false
	for _, prior := range m.stack {
		if prior == v {
			warning = true
			break
		}
	}

	ctx, span := m.tracer.Start(ctx, "engine.solve_from",
		trace.WithAttributes(attribute.String("variable", v.String()), attribute.Bool("revisit", warning)))
	defer func() {
		if retErr != nil {
			span.RecordError(retErr)
			span.SetStatus(codes.Error, retErr.Error())
		}
		span.End()
	}()

	m.stack = append(m.stack, v)
	defer func() { m.stack = m.stack[:len(m.stack)-1] }()

	channel := m.channels[v]
	visitor := m.newVisitor(v.Scope)
	newVal, err := channel.Process(visitor)
	if err != nil {
		return err
	}
	m.recompute.Add(ctx, 1, metric.WithAttributes(attribute.String("variable", v.Name)))

	prior, hadPrior := m.result.Get(v)
	if _, _, err := m.result.Put(v, newVal); err != nil {
		return err
	}
	changed := !hadPrior || !valuesEqual(prior, newVal)
	if !changed {
		return nil
	}

	if warning {
		span.AddEvent("engine.cycle_detected")
		return &CycleError{Path: append([]vid.VID{}, m.stack...)}
	}

	for _, dep := range m.dg.Successors(v) {
		if err := m.solveFrom(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

package modifier

import (
	"fmt"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/vid"
)

// ArrayComponentModifier wraps an inner modifier to act on position Index of
// an array (spec.md §4.6): "If the target array has length ≤ k at
// evaluation time, the modifier is a no-op and returns the input unchanged.
// Otherwise it copies the array, pushes input[k] as the inner evaluation's
// INPUT, runs M<T>, and stores the result at position k."
type ArrayComponentModifier struct {
	inner  Modifier
	index  int
	format format.Format
}

// NewArrayComponent wraps inner to act on array position index.
func NewArrayComponent(inner Modifier, index int) *ArrayComponentModifier {
	return &ArrayComponentModifier{inner: inner, index: index, format: format.ArrayOf(inner.Format())}
}

func (m *ArrayComponentModifier) Priority() Priority    { return m.inner.Priority() }
func (m *ArrayComponentModifier) Format() format.Format { return m.format }
func (m *ArrayComponentModifier) OperatorName() string  { return "array_component:" + m.inner.OperatorName() }

func (m *ArrayComponentModifier) Dependencies(v *ast.Visitor) ([]vid.VID, error) {
	return m.inner.Dependencies(v)
}

func (m *ArrayComponentModifier) Apply(v *ast.Visitor, input any) (any, error) {
	arr, ok := input.([]any)
	if !ok {
		return nil, fmt.Errorf("modifier: array-component applied to non-array input %v: %w", input, ast.ErrInvariantViolation)
	}
	if len(arr) <= m.index {
		return input, nil
	}
	out := make([]any, len(arr))
	copy(out, arr)
	result, err := m.inner.Apply(v, arr[m.index])
	if err != nil {
		return nil, err
	}
	out[m.index] = result
	return out, nil
}

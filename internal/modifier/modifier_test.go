package modifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/builtin"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/modifier"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
)

type stubLibrary struct {
	formats map[string]format.Format
}

func (s stubLibrary) FormatOf(ls *scope.Legal, name string) (format.Format, bool) {
	f, ok := s.formats[name]
	return f, ok
}

type stubStore struct {
	values map[vid.VID]any
}

func (s stubStore) Get(id vid.VID) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

func newVisitor(t *testing.T, formats map[string]format.Format, values map[vid.VID]any) *ast.Visitor {
	t.Helper()
	mgr := scope.NewManager()
	if values == nil {
		values = map[vid.VID]any{}
	}
	v := ast.NewVisitor(mgr.GlobalInstance(), stubLibrary{formats: formats}, builtin.Operators{}, builtin.NewFunctions())
	v.Store = stubStore{values: values}
	return v
}

func TestSolverEmptyStackHoldsDefault(t *testing.T) {
	v := newVisitor(t, nil, nil)
	s := modifier.New(format.IntegerFormat, int64(0))
	val, err := s.Process(v)
	require.NoError(t, err)
	assert.Equal(t, int64(0), val)
}

func TestSolverAppliesSetThenAddInPriorityOrder(t *testing.T) {
	v := newVisitor(t, nil, nil)
	s := modifier.New(format.IntegerFormat, int64(0))
	set := modifier.NewSet(format.IntegerFormat, modifier.Const(int64(3)))
	add := modifier.NewAdd(format.IntegerFormat, modifier.Const(int64(2)))

	require.NoError(t, s.AddModifier(add, "srcAdd"))
	require.NoError(t, s.AddModifier(set, "srcSet"))

	val, err := s.Process(v)
	require.NoError(t, err)
	assert.Equal(t, int64(5), val) // set(3) runs first regardless of insertion order, then +2
}

func TestSolverRejectsDuplicateModifier(t *testing.T) {
	s := modifier.New(format.IntegerFormat, int64(0))
	add := modifier.NewAdd(format.IntegerFormat, modifier.Const(int64(1)))
	require.NoError(t, s.AddModifier(add, "src"))
	err := s.AddModifier(add, "src")
	assert.ErrorIs(t, err, modifier.ErrDuplicateModifier)
}

func TestSolverRemoveModifierIsNoopIfAbsent(t *testing.T) {
	s := modifier.New(format.IntegerFormat, int64(0))
	add := modifier.NewAdd(format.IntegerFormat, modifier.Const(int64(1)))
	s.RemoveModifier(add, "src") // no panic, no error return
	assert.Empty(t, s.Modifiers())
}

func TestSolverDiagnoseTracesEachStep(t *testing.T) {
	v := newVisitor(t, nil, nil)
	s := modifier.New(format.IntegerFormat, int64(0))
	require.NoError(t, s.AddModifier(modifier.NewSet(format.IntegerFormat, modifier.Const(int64(10))), "a"))
	require.NoError(t, s.AddModifier(modifier.NewAdd(format.IntegerFormat, modifier.Const(int64(5))), "b"))

	steps, final, err := s.Diagnose(v)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "set", steps[0].OperatorName)
	assert.Equal(t, int64(10), steps[0].Intermediate)
	assert.Equal(t, "add", steps[1].OperatorName)
	assert.Equal(t, int64(15), steps[1].Intermediate)
	assert.Equal(t, int64(15), final)
}

func TestAddModifierFormulaReferencesInput(t *testing.T) {
	v := newVisitor(t, nil, nil)
	s := modifier.New(format.IntegerFormat, int64(10))
	op, err := modifier.Formula("INPUT * 2")
	require.NoError(t, err)
	add := modifier.NewAdd(format.IntegerFormat, op)
	require.NoError(t, s.AddModifier(add, "src"))
	val, err := s.Process(v)
	require.NoError(t, err)
	assert.Equal(t, int64(30), val) // 10 + (10*2)
}

func TestArrayComponentNoopWhenIndexOutOfRange(t *testing.T) {
	v := newVisitor(t, nil, nil)
	inner := modifier.NewAdd(format.IntegerFormat, modifier.Const(int64(5)))
	comp := modifier.NewArrayComponent(inner, 7)
	input := []any{int64(10), int64(20), int64(30)}
	out, err := comp.Apply(v, input)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestArrayComponentAppliesInnerAtIndex(t *testing.T) {
	v := newVisitor(t, nil, nil)
	inner := modifier.NewAdd(format.IntegerFormat, modifier.Const(int64(5)))
	comp := modifier.NewArrayComponent(inner, 1)
	input := []any{int64(10), int64(20), int64(30)}
	out, err := comp.Apply(v, input)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(25), int64(30)}, out)
}

func TestMinMaxCombine(t *testing.T) {
	v := newVisitor(t, nil, nil)
	s := modifier.New(format.IntegerFormat, int64(50))
	require.NoError(t, s.AddModifier(modifier.NewMax(format.IntegerFormat, modifier.Const(int64(10))), "a"))
	require.NoError(t, s.AddModifier(modifier.NewMin(format.IntegerFormat, modifier.Const(int64(20))), "b"))
	val, err := s.Process(v)
	require.NoError(t, err)
	assert.Equal(t, int64(20), val)
}

package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverlab/formula/internal/builtin"
	"github.com/solverlab/formula/internal/engine"
	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/modifier"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
)

type harness struct {
	mgr     *engine.Manager
	library *vid.Library
	scopes  *scope.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	registry := format.NewRegistry()
	require.NoError(t, format.RegisterPrimitives(registry))
	lib := vid.NewLibrary()
	scopes := scope.NewManager()
	factory := engine.NewDefaultSolverFactory(registry)
	mgr := engine.NewManager(lib, builtin.Operators{}, builtin.NewFunctions(), factory)
	return &harness{mgr: mgr, library: lib, scopes: scopes}
}

func (h *harness) assertGlobal(t *testing.T, name string, f format.Format) vid.VID {
	t.Helper()
	require.NoError(t, h.library.Assert(name, h.scopes.Global(), f))
	return vid.VID{Scope: h.scopes.GlobalInstance(), Name: name, Format: f}
}

func addFormula(t *testing.T, src string) modifier.Modifier {
	t.Helper()
	op, err := modifier.Formula(src)
	require.NoError(t, err)
	return modifier.NewAdd(format.IntegerFormat, op)
}

func setFormula(t *testing.T, src string) modifier.Modifier {
	t.Helper()
	op, err := modifier.Formula(src)
	require.NoError(t, err)
	return modifier.NewSet(format.IntegerFormat, op)
}

func setConst(v int64) modifier.Modifier {
	return modifier.NewSet(format.IntegerFormat, modifier.Const(v))
}

func intVal(t *testing.T, h *harness, id vid.VID) int64 {
	t.Helper()
	val, ok := h.mgr.Result().Get(id)
	require.True(t, ok)
	n, ok := val.(int64)
	require.True(t, ok)
	return n
}

// S1: simple chain.
func TestScenarioSimpleChain(t *testing.T) {
	h := newHarness(t)
	a := h.assertGlobal(t, "a", format.IntegerFormat)
	b := h.assertGlobal(t, "b", format.IntegerFormat)
	c := h.assertGlobal(t, "c", format.IntegerFormat)

	_, err := h.mgr.AddModifier(a, setConst(3), "s1")
	require.NoError(t, err)
	_, err = h.mgr.AddModifier(b, addFormula(t, "a + 2"), "s2")
	require.NoError(t, err)
	_, err = h.mgr.AddModifier(c, setFormula(t, "b * 4"), "s3")
	require.NoError(t, err)

	assert.Equal(t, int64(3), intVal(t, h, a))
	assert.Equal(t, int64(5), intVal(t, h, b))
	assert.Equal(t, int64(20), intVal(t, h, c))

	_, err = h.mgr.AddModifier(a, setConst(5), "s1x")
	require.NoError(t, err)
	assert.Equal(t, int64(5), intVal(t, h, a))
	assert.Equal(t, int64(7), intVal(t, h, b))
	assert.Equal(t, int64(28), intVal(t, h, c))
}

// S2: removal.
func TestScenarioRemoval(t *testing.T) {
	h := newHarness(t)
	a := h.assertGlobal(t, "a", format.IntegerFormat)
	b := h.assertGlobal(t, "b", format.IntegerFormat)
	c := h.assertGlobal(t, "c", format.IntegerFormat)

	_, err := h.mgr.AddModifier(a, setConst(5), "s1")
	require.NoError(t, err)
	bMod := addFormula(t, "a + 2")
	_, err = h.mgr.AddModifier(b, bMod, "s2")
	require.NoError(t, err)
	_, err = h.mgr.AddModifier(c, setFormula(t, "b * 4"), "s3")
	require.NoError(t, err)

	require.NoError(t, h.mgr.RemoveModifier(b, bMod, "s2"))
	assert.Equal(t, int64(5), intVal(t, h, a))
	assert.Equal(t, int64(0), intVal(t, h, b))
	assert.Equal(t, int64(0), intVal(t, h, c))
}

// S3: stable self-reference cycle.
func TestScenarioStableCycle(t *testing.T) {
	h := newHarness(t)
	x := h.assertGlobal(t, "x", format.IntegerFormat)
	y := h.assertGlobal(t, "y", format.IntegerFormat)

	_, err := h.mgr.AddModifier(x, addFormula(t, "y"), "sx")
	require.NoError(t, err)
	_, err = h.mgr.AddModifier(y, addFormula(t, "x"), "sy")
	require.NoError(t, err)

	assert.Equal(t, int64(0), intVal(t, h, x))
	assert.Equal(t, int64(0), intVal(t, h, y))
}

// S4: divergent cycle.
func TestScenarioDivergentCycle(t *testing.T) {
	h := newHarness(t)
	x := h.assertGlobal(t, "x", format.IntegerFormat)
	y := h.assertGlobal(t, "y", format.IntegerFormat)

	_, err := h.mgr.AddModifier(x, setConst(1), "setx")
	require.NoError(t, err)
	_, err = h.mgr.AddModifier(x, addFormula(t, "y + 1"), "addx")
	require.NoError(t, err)

	_, err = h.mgr.AddModifier(y, addFormula(t, "x + 1"), "addy")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrCycleDetected)
	var cycleErr *engine.CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Len(t, cycleErr.Path, 3)
	assert.Equal(t, "y", cycleErr.Path[0].Name)
	assert.Equal(t, "x", cycleErr.Path[1].Name)
	assert.Equal(t, "y", cycleErr.Path[2].Name)
}

func TestCreateChannelRejectsDuplicate(t *testing.T) {
	h := newHarness(t)
	x := h.assertGlobal(t, "x", format.IntegerFormat)
	require.NoError(t, h.mgr.CreateChannel(x))
	err := h.mgr.CreateChannel(x)
	assert.ErrorIs(t, err, engine.ErrDuplicateChannel)
}

func TestRemoveModifierUnknownChannel(t *testing.T) {
	h := newHarness(t)
	x := h.assertGlobal(t, "x", format.IntegerFormat)
	err := h.mgr.RemoveModifier(x, setConst(1), "src")
	assert.ErrorIs(t, err, engine.ErrUnknownChannel)
}

func TestAddModifierRejectsIllegalVariable(t *testing.T) {
	h := newHarness(t)
	id := vid.VID{Scope: h.scopes.GlobalInstance(), Name: "ghost", Format: format.IntegerFormat}
	_, err := h.mgr.AddModifier(id, setConst(1), "src")
	assert.ErrorIs(t, err, vid.ErrUnknownVariable)
}

func TestDiagnoseReportsSteps(t *testing.T) {
	h := newHarness(t)
	a := h.assertGlobal(t, "a", format.IntegerFormat)
	_, err := h.mgr.AddModifier(a, setConst(3), "s1")
	require.NoError(t, err)
	_, err = h.mgr.AddModifier(a, addFormula(t, "2"), "s2")
	require.NoError(t, err)

	steps, final, err := h.mgr.Diagnose(a)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, int64(5), final)
}

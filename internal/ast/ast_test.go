// Package ast_test exercises the AST passes end to end against the default
// builtin.Operators/builtin.Functions collaborators, rather than against
// hand-rolled stubs, so the grammar and the passes are tested together the
// way a formula author actually experiences them.
package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/builtin"
	"github.com/solverlab/formula/internal/format"
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

func TestSemanticCheckAcceptsMatchingAssertion(t *testing.T) {
	v := newVisitor(t, map[string]format.Format{"x": format.IntegerFormat}, nil)
	root, err := ast.Parse("x + 1")
	require.NoError(t, err)
	f, err := ast.CheckSemantics(v, root, format.RealFormat)
	require.NoError(t, err)
	assert.Equal(t, format.Integer, f.Name())
}

func TestSemanticCheckRejectsAssertionMismatch(t *testing.T) {
	v := newVisitor(t, nil, nil)
	root, err := ast.Parse(`"abc"`)
	require.NoError(t, err)
	_, err = ast.CheckSemantics(v, root, format.IntegerFormat)
	assert.ErrorIs(t, err, ast.ErrBadFormula)
}

func TestSemanticCheckUnknownVariable(t *testing.T) {
	v := newVisitor(t, nil, nil)
	root, err := ast.Parse("y + 1")
	require.NoError(t, err)
	_, err = ast.CheckSemantics(v, root, nil)
	assert.ErrorIs(t, err, ast.ErrUnknownVariable)
}

func TestSemanticCheckInputDefaultsToAsserted(t *testing.T) {
	v := newVisitor(t, nil, nil)
	root, err := ast.Parse("INPUT")
	require.NoError(t, err)
	f, err := ast.CheckSemantics(v, root, format.IntegerFormat)
	require.NoError(t, err)
	assert.Equal(t, format.Integer, f.Name())
}

func TestDependencyCollectionGathersVariablesNotInput(t *testing.T) {
	v := newVisitor(t, map[string]format.Format{"x": format.IntegerFormat, "y": format.RealFormat}, nil)
	root, err := ast.Parse("x + y + INPUT")
	require.NoError(t, err)
	bag := ast.NewDependencyBag()
	require.NoError(t, ast.CollectDependencies(v, root, bag))
	require.Len(t, bag.Variables, 2)
	names := []string{bag.Variables[0].Name, bag.Variables[1].Name}
	assert.Contains(t, names, "x")
	assert.Contains(t, names, "y")
}

func TestDependencyCollectionThroughFunction(t *testing.T) {
	v := newVisitor(t, map[string]format.Format{"x": format.IntegerFormat}, nil)
	root, err := ast.Parse("max(x, 1, 2)")
	require.NoError(t, err)
	bag := ast.NewDependencyBag()
	require.NoError(t, ast.CollectDependencies(v, root, bag))
	require.Len(t, bag.Variables, 1)
	assert.Equal(t, "x", bag.Variables[0].Name)
}

func TestDependencyCollectionNotesArgIndex(t *testing.T) {
	v := newVisitor(t, nil, nil)
	root, err := ast.Parse("arg(2) + arg(0)")
	require.NoError(t, err)
	bag := ast.NewDependencyBag()
	require.NoError(t, ast.CollectDependencies(v, root, bag))
	assert.Equal(t, 2, bag.MaxArgument)
}

func TestEvaluateReadsStoredValue(t *testing.T) {
	mgr := scope.NewManager()
	id := vid.VID{Scope: mgr.GlobalInstance(), Name: "x", Format: format.IntegerFormat}
	v := newVisitor(t, map[string]format.Format{"x": format.IntegerFormat}, map[vid.VID]any{id: int64(10)})
	root, err := ast.Parse("x * 2")
	require.NoError(t, err)
	val, err := ast.Evaluate(v, root, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20), val)
}

func TestEvaluateMissingValueSubstitutesDefault(t *testing.T) {
	v := newVisitor(t, map[string]format.Format{"x": format.IntegerFormat}, nil)
	root, err := ast.Parse("x + 1")
	require.NoError(t, err)
	val, err := ast.Evaluate(v, root, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
}

func TestEvaluateInputUsesPushedValue(t *testing.T) {
	v := newVisitor(t, nil, nil)
	pop := v.PushInput(int64(5))
	defer pop()
	root, err := ast.Parse("INPUT + 1")
	require.NoError(t, err)
	val, err := ast.Evaluate(v, root, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), val)
}

func TestEvaluateInputOutsideContextFails(t *testing.T) {
	v := newVisitor(t, nil, nil)
	root, err := ast.Parse("INPUT")
	require.NoError(t, err)
	_, err = ast.Evaluate(v, root, nil)
	assert.ErrorIs(t, err, ast.ErrInvariantViolation)
}

func TestReconstructRoundTripsOperatorsAndParens(t *testing.T) {
	src := `(1 + 2) * max(a, "b", 3.5) && !x`
	root, err := ast.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, ast.Reconstruct(root))
}

func TestReconstructDistinguishesExplicitParens(t *testing.T) {
	withParens, err := ast.Parse("(1 + 2) * 3")
	require.NoError(t, err)
	withoutParens, err := ast.Parse("1 + 2 * 3")
	require.NoError(t, err)
	assert.NotEqual(t, ast.Reconstruct(withParens), ast.Reconstruct(withoutParens))
}

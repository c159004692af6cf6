package format_test

import (
	"testing"

	"github.com/solverlab/formula/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *format.Registry {
	t.Helper()
	r := format.NewRegistry()
	require.NoError(t, format.RegisterPrimitives(r))
	return r
}

func TestPrimitiveLookup(t *testing.T) {
	r := newRegistry(t)
	f, ok := r.Lookup(format.Integer)
	require.True(t, ok)
	assert.Equal(t, format.Integer, f.Name())
}

func TestIntegerIsSubformatOfReal(t *testing.T) {
	assert.True(t, format.IntegerFormat.IsSubformatOf(format.RealFormat))
	assert.False(t, format.RealFormat.IsSubformatOf(format.IntegerFormat))
	assert.True(t, format.IntegerFormat.IsSubformatOf(format.IntegerFormat))
}

func TestRegisterIdempotent(t *testing.T) {
	r := format.NewRegistry()
	require.NoError(t, r.Register(format.IntegerFormat))
	require.NoError(t, r.Register(format.IntegerFormat))
}

func TestRegisterConflict(t *testing.T) {
	r := format.NewRegistry()
	require.NoError(t, r.Register(format.IntegerFormat))
	arr1 := format.ArrayOf(format.IntegerFormat)
	arr2 := format.ArrayOf(format.IntegerFormat)
	require.NoError(t, r.Register(arr1))
	err := r.Register(arr2)
	assert.Error(t, err, "two distinct array handles sharing a name should conflict")
}

func TestArrayParseUnparse(t *testing.T) {
	arr := format.ArrayOf(format.IntegerFormat)
	v, err := arr.Parse("1,2,3")
	require.NoError(t, err)
	s, err := arr.Unparse(v)
	require.NoError(t, err)
	assert.Equal(t, "1,2,3", s)
}

func TestArraySubformat(t *testing.T) {
	arr := format.ArrayOf(format.IntegerFormat)
	arr2 := format.ArrayOf(format.RealFormat)
	assert.True(t, arr.IsSubformatOf(arr2))
	assert.False(t, arr2.IsSubformatOf(arr))
}

func TestWithoutDefault(t *testing.T) {
	r := newRegistry(t)
	assert.Empty(t, r.WithoutDefault(), "primitives all carry defaults")
}

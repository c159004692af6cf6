package scope_test

import (
	"testing"

	"github.com/solverlab/formula/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalScope(t *testing.T) {
	m := scope.NewManager()
	assert.Nil(t, m.Global().Parent())
	assert.Equal(t, m.GlobalInstance(), m.GlobalInstance())
}

func TestDeclareChildIdempotent(t *testing.T) {
	m := scope.NewManager()
	a, err := m.DeclareChild(m.Global(), "Equipment")
	require.NoError(t, err)
	b, err := m.DeclareChild(m.Global(), "Equipment")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestOpenEnforcesParentConsistency(t *testing.T) {
	m := scope.NewManager()
	equip, err := m.DeclareChild(m.Global(), "Equipment")
	require.NoError(t, err)

	e1, err := m.Open(equip, m.GlobalInstance(), nil)
	require.NoError(t, err)
	assert.Equal(t, equip, e1.Legal())
	assert.Equal(t, m.GlobalInstance(), e1.Parent())

	_, err = m.Open(equip, nil, nil)
	assert.Error(t, err, "non-global scope requires a parent instance")
}

func TestOpenRejectsMismatchedParent(t *testing.T) {
	m := scope.NewManager()
	equip, err := m.DeclareChild(m.Global(), "Equipment")
	require.NoError(t, err)
	nested, err := m.DeclareChild(equip, "Slot")
	require.NoError(t, err)

	// Slot's legal parent is Equipment, not global: opening it directly
	// under the global instance must fail.
	_, err = m.Open(nested, m.GlobalInstance(), nil)
	assert.Error(t, err)
}

func TestDistinctInstancesOfSameLegalScope(t *testing.T) {
	m := scope.NewManager()
	equip, err := m.DeclareChild(m.Global(), "Equipment")
	require.NoError(t, err)

	e1, err := m.Open(equip, m.GlobalInstance(), nil)
	require.NoError(t, err)
	e2, err := m.Open(equip, m.GlobalInstance(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, e1.ID(), e2.ID())
	assert.NotSame(t, e1, e2)
}

func TestIsRelatedTo(t *testing.T) {
	m := scope.NewManager()
	equip, _ := m.DeclareChild(m.Global(), "Equipment")
	slot, _ := m.DeclareChild(equip, "Slot")
	other, _ := m.DeclareChild(m.Global(), "Other")

	assert.True(t, m.Global().IsRelatedTo(equip))
	assert.True(t, equip.IsRelatedTo(slot))
	assert.False(t, equip.IsRelatedTo(other))
}

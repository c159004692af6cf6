package vid_test

import (
	"testing"

	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertIdempotent(t *testing.T) {
	m := scope.NewManager()
	l := vid.NewLibrary()
	require.NoError(t, l.Assert("hp", m.Global(), format.IntegerFormat))
	require.NoError(t, l.Assert("hp", m.Global(), format.IntegerFormat))
}

func TestAssertConflictingFormat(t *testing.T) {
	m := scope.NewManager()
	l := vid.NewLibrary()
	require.NoError(t, l.Assert("hp", m.Global(), format.IntegerFormat))
	err := l.Assert("hp", m.Global(), format.RealFormat)
	assert.ErrorIs(t, err, vid.ErrConflictingFormat)
}

func TestAssertBadName(t *testing.T) {
	m := scope.NewManager()
	l := vid.NewLibrary()
	assert.ErrorIs(t, l.Assert("", m.Global(), format.IntegerFormat), vid.ErrBadName)
	assert.ErrorIs(t, l.Assert(" hp", m.Global(), format.IntegerFormat), vid.ErrBadName)
}

func TestAssertShadowedName(t *testing.T) {
	m := scope.NewManager()
	equip, err := m.DeclareChild(m.Global(), "Equipment")
	require.NoError(t, err)
	l := vid.NewLibrary()
	require.NoError(t, l.Assert("bonus", m.Global(), format.IntegerFormat))

	err = l.Assert("bonus", equip, format.IntegerFormat)
	assert.ErrorIs(t, err, vid.ErrShadowedName)

	// Unrelated sibling scopes may reuse the name.
	other, err := m.DeclareChild(m.Global(), "Other")
	require.NoError(t, err)
	require.NoError(t, l.Assert("distinct", equip, format.IntegerFormat))
	require.NoError(t, l.Assert("distinct", other, format.IntegerFormat))
}

func TestIdentifierFor(t *testing.T) {
	m := scope.NewManager()
	l := vid.NewLibrary()
	require.NoError(t, l.Assert("hp", m.Global(), format.IntegerFormat))

	v, err := l.IdentifierFor(m.GlobalInstance(), "hp")
	require.NoError(t, err)
	assert.Equal(t, "hp", v.Name)
	assert.Equal(t, format.IntegerFormat, v.Format)

	_, err = l.IdentifierFor(m.GlobalInstance(), "missing")
	assert.ErrorIs(t, err, vid.ErrUnknownVariable)
}

func TestFormatsWithoutDefault(t *testing.T) {
	m := scope.NewManager()
	l := vid.NewLibrary()
	require.NoError(t, l.Assert("hp", m.Global(), format.IntegerFormat))
	assert.Empty(t, l.FormatsWithoutDefault())
}

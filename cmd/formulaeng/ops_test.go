package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFlags sets the package-level flag vars a test needs and restores them
// afterward, since buildSession reads from globals the way cobra leaves them
// after flag parsing.
func withFlags(t *testing.T, scopes string, vars []string, opsLog string) {
	t.Helper()
	oldScopes, oldVars, oldOpsLog, oldTelemetry := flagScopes, flagVars, flagOpsLog, flagTelemetry
	t.Cleanup(func() {
		flagScopes, flagVars, flagOpsLog, flagTelemetry = oldScopes, oldVars, oldOpsLog, oldTelemetry
	})
	flagScopes, flagVars, flagOpsLog, flagTelemetry = scopes, vars, opsLog, false
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSessionReplaysOpsLogDeterministically(t *testing.T) {
	dir := t.TempDir()
	scopesPath := writeTempFile(t, dir, "scopes.yaml", "scopes: []\n")
	opsLogPath := filepath.Join(dir, "ops.jsonl")
	withFlags(t, scopesPath, nil, opsLogPath)

	s, err := buildSession()
	require.NoError(t, err)
	defer s.shutdown()

	require.NoError(t, s.apply(op{Kind: "assert", Scope: "global", Name: "a", Format: "integer"}))
	require.NoError(t, s.apply(op{Kind: "assert", Scope: "global", Name: "b", Format: "integer"}))
	require.NoError(t, s.apply(op{Kind: "set", Instance: "global", Var: "a", Const: "3", Source: "s1"}))
	require.NoError(t, s.apply(op{Kind: "add", Instance: "global", Var: "b", Formula: "a + 2", Source: "s2"}))

	id, err := s.resolveVID("global", "b")
	require.NoError(t, err)
	v, ok := s.eng.Get(id)
	require.True(t, ok)
	assert.Equal(t, int64(5), v)

	// A second session replaying the same log from scratch must reach the
	// same result — the log records instructions, never cached values
	// (spec.md's non-goal of cross-process persistence of computed values).
	for _, o := range []op{
		{Kind: "assert", Scope: "global", Name: "a", Format: "integer"},
		{Kind: "assert", Scope: "global", Name: "b", Format: "integer"},
		{Kind: "set", Instance: "global", Var: "a", Const: "3", Source: "s1"},
		{Kind: "add", Instance: "global", Var: "b", Formula: "a + 2", Source: "s2"},
	} {
		require.NoError(t, s.append(o))
	}

	s2, err := buildSession()
	require.NoError(t, err)
	defer s2.shutdown()
	id2, err := s2.resolveVID("global", "b")
	require.NoError(t, err)
	v2, ok := s2.eng.Get(id2)
	require.True(t, ok)
	assert.Equal(t, int64(5), v2)
}

func TestSessionDeclareScopeAndOpenInstance(t *testing.T) {
	dir := t.TempDir()
	scopesPath := writeTempFile(t, dir, "scopes.yaml", "scopes: []\n")
	opsLogPath := filepath.Join(dir, "ops.jsonl")
	withFlags(t, scopesPath, nil, opsLogPath)

	s, err := buildSession()
	require.NoError(t, err)
	defer s.shutdown()

	require.NoError(t, s.apply(op{Kind: "declare_scope", Name: "Equipment"}))
	require.NoError(t, s.apply(op{Kind: "assert", Scope: "Equipment", Name: "bonus", Format: "integer"}))
	require.NoError(t, s.apply(op{Kind: "open", Scope: "Equipment", Instance: "e1"}))
	require.NoError(t, s.apply(op{Kind: "set", Instance: "e1", Var: "bonus", Const: "2", Source: "src1"}))

	id, err := s.resolveVID("e1", "bonus")
	require.NoError(t, err)
	v, ok := s.eng.Get(id)
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestSessionRemoveModifierReverts(t *testing.T) {
	dir := t.TempDir()
	scopesPath := writeTempFile(t, dir, "scopes.yaml", "scopes: []\n")
	opsLogPath := filepath.Join(dir, "ops.jsonl")
	withFlags(t, scopesPath, nil, opsLogPath)

	s, err := buildSession()
	require.NoError(t, err)
	defer s.shutdown()

	require.NoError(t, s.apply(op{Kind: "assert", Scope: "global", Name: "a", Format: "integer"}))
	require.NoError(t, s.apply(op{Kind: "set", Instance: "global", Var: "a", Const: "3", Source: "s1"}))

	id, err := s.resolveVID("global", "a")
	require.NoError(t, err)
	v, _ := s.eng.Get(id)
	assert.Equal(t, int64(3), v)

	require.NoError(t, s.apply(op{Kind: "remove", Instance: "global", Var: "a", Const: "3", Source: "s1", Format: "set"}))
	v, ok := s.eng.Get(id)
	require.True(t, ok)
	assert.Equal(t, int64(0), v, "removing the only Set modifier falls back to the format's default")
}

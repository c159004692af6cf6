package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solverlab/formula/internal/format"
	"github.com/solverlab/formula/internal/graph"
	"github.com/solverlab/formula/internal/scope"
	"github.com/solverlab/formula/internal/vid"
)

func testVID(si *scope.Instance, name string) vid.VID {
	return vid.VID{Scope: si, Name: name, Format: format.IntegerFormat}
}

func TestAddEdgeAndSuccessors(t *testing.T) {
	mgr := scope.NewManager()
	a := testVID(mgr.GlobalInstance(), "a")
	b := testVID(mgr.GlobalInstance(), "b")

	g := graph.New()
	tag := graph.EdgeTag{Modifier: "m1", Source: "s1"}
	g.AddEdge(a, b, tag)

	assert.ElementsMatch(t, []vid.VID{b}, g.Successors(a))
	assert.True(t, g.HasNode(a))
	assert.True(t, g.HasNode(b))
}

func TestRemoveEdgesOnlyRemovesMatchingTag(t *testing.T) {
	mgr := scope.NewManager()
	a := testVID(mgr.GlobalInstance(), "a")
	b := testVID(mgr.GlobalInstance(), "b")

	g := graph.New()
	tagA := graph.EdgeTag{Modifier: "m1", Source: "s1"}
	tagB := graph.EdgeTag{Modifier: "m2", Source: "s2"}
	g.AddEdge(a, b, tagA)
	g.AddEdge(a, b, tagB)

	removed := g.RemoveEdges(a, b, tagA)
	assert.Equal(t, 1, removed)
	assert.ElementsMatch(t, []vid.VID{b}, g.Successors(a)) // tagB edge remains

	removed = g.RemoveEdges(a, b, tagB)
	assert.Equal(t, 1, removed)
	assert.Empty(t, g.Successors(a))
}

func TestRemoveEdgesNoMatchIsNoop(t *testing.T) {
	mgr := scope.NewManager()
	a := testVID(mgr.GlobalInstance(), "a")
	b := testVID(mgr.GlobalInstance(), "b")

	g := graph.New()
	removed := g.RemoveEdges(a, b, graph.EdgeTag{Modifier: "m1", Source: "s1"})
	assert.Equal(t, 0, removed)
}

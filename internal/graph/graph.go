// Package graph implements the dependency graph (DG) the solver manager
// (C7) propagates recomputation over: a directed multigraph from a
// dependency VID to the variable whose modifier depends on it, with each
// edge tagged by the (modifier, source) identity that created it so the
// exact edge set added by one add_modifier call can be removed again by
// the matching remove_modifier call (spec.md §4.7).
package graph

import "github.com/solverlab/formula/internal/vid"

// EdgeTag identifies the modifier attachment that caused an edge to exist.
// Two edges with the same (From, To) but different tags are distinct edges
// (a multigraph, not a simple graph): spec.md §8's invariant 2 requires
// "exactly one edge d → V tagged with (M, source)" to exist per dependency,
// not exactly one edge per (d, V) pair.
type EdgeTag struct {
	Modifier any
	Source   any
}

type edge struct {
	to  vid.VID
	tag EdgeTag
}

// Graph is the dependency multigraph: nodes are VIDs, edges point from a
// dependency to its dependent.
type Graph struct {
	nodes map[vid.VID]bool
	out   map[vid.VID][]edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[vid.VID]bool), out: make(map[vid.VID][]edge)}
}

// AddNode ensures v has a node in the graph, even with no edges.
func (g *Graph) AddNode(v vid.VID) {
	g.nodes[v] = true
}

// HasNode reports whether v has been added to the graph.
func (g *Graph) HasNode(v vid.VID) bool {
	return g.nodes[v]
}

// AddEdge records that to depends on from, tagged by tag. Either endpoint
// that is not yet a node is added as one.
func (g *Graph) AddEdge(from, to vid.VID, tag EdgeTag) {
	g.nodes[from] = true
	g.nodes[to] = true
	g.out[from] = append(g.out[from], edge{to: to, tag: tag})
}

// RemoveEdges removes every edge from -> to tagged with tag. Returns the
// number of edges removed (0 or 1 under the invariant in spec.md §8, but
// the implementation does not assume that and removes every match).
func (g *Graph) RemoveEdges(from, to vid.VID, tag EdgeTag) int {
	edges := g.out[from]
	kept := edges[:0]
	removed := 0
	for _, e := range edges {
		if e.to == to && e.tag == tag {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.out[from] = kept
	return removed
}

// Successors returns every node that directly depends on v (the edges
// v -> d, returning each d), the set solve_from propagates into.
func (g *Graph) Successors(v vid.VID) []vid.VID {
	edges := g.out[v]
	out := make([]vid.VID, len(edges))
	for i, e := range edges {
		out[i] = e.to
	}
	return out
}

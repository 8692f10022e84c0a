package navgraph

import (
	"time"

	"evac-navigator/internal/geom"
)

// Visibility reports whether solid geometry blocks the straight segment
// between two points. Edge discovery treats it as a pure function.
type Visibility interface {
	Obstructed(a, b geom.Vec3) bool
}

// VisibilityFunc adapts a function to Visibility.
type VisibilityFunc func(a, b geom.Vec3) bool

func (f VisibilityFunc) Obstructed(a, b geom.Vec3) bool {
	return f(a, b)
}

// OpenSpace is a Visibility with no obstacles.
var OpenSpace Visibility = VisibilityFunc(func(a, b geom.Vec3) bool { return false })

// Seed describes a node to place with Populate.
type Seed struct {
	Position geom.Vec3 `json:"position"`
	Exit     bool      `json:"exit"`
}

// link adds whichever directions of the edge a-b are missing and counts it
// once. Caller holds the write lock and has checked that a does not list b.
func (g *Graph) link(a, b *node) {
	if !a.hasNeighbor(b.id) {
		a.neighbors = append(a.neighbors, b.id)
	}
	if !b.hasNeighbor(a.id) {
		b.neighbors = append(b.neighbors, a.id)
	}
	g.edges++
}

// connect links n to every node within the threshold whose segment is
// unobstructed and returns the number of edges added. Caller holds the write
// lock.
func (g *Graph) connect(n *node) int {
	added := 0
	for _, id := range g.index.within(n.pos, g.threshold) {
		if id == n.id || n.hasNeighbor(id) {
			continue
		}
		other := g.nodes[id]
		if geom.Distance(n.pos, other.pos) > g.threshold {
			continue
		}
		if g.visibility.Obstructed(n.pos, other.pos) {
			continue
		}
		g.link(n, other)
		added++
	}
	return added
}

// Connect links the node to every other node within the threshold that it
// can see. Existing edges are neither duplicated nor dropped, so repeated
// calls on an unchanged graph are no-ops. It returns the number of edges
// added; an unknown ID adds none.
func (g *Graph) Connect(id NodeID) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	added := g.connect(n)
	edgeGauge.Set(float64(g.edges))
	return added
}

// RebuildAll clears every neighbor list and reconnects all nodes against the
// current positions, threshold and visibility. It returns the edge count.
func (g *Graph) RebuildAll() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rebuild()
}

func (g *Graph) rebuild() int {
	startTime := time.Now()

	for _, n := range g.nodes {
		n.neighbors = n.neighbors[:0]
	}
	g.edges = 0
	for _, id := range g.order {
		g.connect(g.nodes[id])
	}

	elapsed := time.Since(startTime)
	rebuildDuration.Observe(elapsed.Seconds())
	edgeGauge.Set(float64(g.edges))
	g.logger.Info("graph rebuilt", "nodes", len(g.nodes), "edges", g.edges, "elapsed", elapsed)
	return g.edges
}

// Populate places every seed and then connects the whole graph, as if each
// node had run its own connection pass at start-up. It returns the new IDs in
// seed order.
func (g *Graph) Populate(seeds []Seed) []NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]NodeID, 0, len(seeds))
	for _, s := range seeds {
		ids = append(ids, g.place(s.Position, s.Exit).id)
	}
	g.rebuild()
	return ids
}

// SetVisibility swaps the obstruction oracle. Edges are not touched; call
// RebuildAll to apply the new environment.
func (g *Graph) SetVisibility(v Visibility) {
	if v == nil {
		v = OpenSpace
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.visibility = v
}

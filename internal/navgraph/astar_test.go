package navgraph

import (
	"container/heap"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evac-navigator/internal/geom"
)

func TestFindPath_Trivial(t *testing.T) {
	g, ids := lineGraph(t, 10)
	pf := NewPathFinder(g)

	path := pf.FindPath(ids[2], ids[2])
	assert.Equal(t, Path{ids[2]}, path)
	assert.Equal(t, 0.0, g.PathCost(path))
}

func TestFindPath_Line(t *testing.T) {
	t.Run("adjacent links only", func(t *testing.T) {
		g, ids := lineGraph(t, 6)
		path := NewPathFinder(g).FindPath(ids[0], ids[4])

		assert.Equal(t, Path(ids), path)
		assert.Equal(t, 20.0, g.PathCost(path))
	})

	t.Run("skip links tie on cost", func(t *testing.T) {
		g, ids := lineGraph(t, 10)
		path := NewPathFinder(g).FindPath(ids[0], ids[4])

		require.NotEmpty(t, path)
		assert.Equal(t, ids[0], path[0])
		assert.Equal(t, ids[4], path[len(path)-1])
		assert.Equal(t, 20.0, g.PathCost(path))
	})
}

func TestFindPath_Unreachable(t *testing.T) {
	t.Run("gap cut by obstruction", func(t *testing.T) {
		g, ids := lineGraph(t, 10)
		// every edge spanning the gap between nodes 2 and 3
		g.Disconnect(ids[1], ids[2])
		g.Disconnect(ids[0], ids[2])
		g.Disconnect(ids[1], ids[3])

		path := NewPathFinder(g).FindPath(ids[0], ids[4])
		assert.NotNil(t, path)
		assert.Empty(t, path)
	})

	t.Run("alternate route survives", func(t *testing.T) {
		g, ids := lineGraph(t, 10)
		g.Disconnect(ids[1], ids[2])

		path := NewPathFinder(g).FindPath(ids[0], ids[4])
		assert.Equal(t, 20.0, g.PathCost(path))
		assert.NotContains(t, pairs(path), [2]NodeID{ids[1], ids[2]})
	})

	t.Run("separate components", func(t *testing.T) {
		g := newTestGraph(t)
		a := g.AddNode(geom.V(0, 0, 0), false)
		g.AddNode(geom.V(3, 0, 0), false)
		b := g.AddNode(geom.V(100, 0, 0), true)

		assert.Empty(t, NewPathFinder(g).FindPath(a, b))
	})
}

func TestFindPath_InvalidIDs(t *testing.T) {
	g, ids := lineGraph(t, 10)
	pf := NewPathFinder(g)

	assert.Empty(t, pf.FindPath(NodeID(-3), ids[0]))
	assert.Empty(t, pf.FindPath(ids[0], NodeID(500)))

	var nilFinder *PathFinder
	assert.Empty(t, nilFinder.FindPath(ids[0], ids[1]))
}

func TestFindPath_HandComputed(t *testing.T) {
	// S reaches G either over A (5 + 5) or over B (2*sqrt(17) ≈ 8.246);
	// C pulls the search toward G first but is a dead end.
	allowed := map[[2]geom.Vec3]bool{}
	var (
		s = geom.V(0, 0, 0)
		a = geom.V(4, 0, 3)
		b = geom.V(4, 0, -1)
		c = geom.V(6, 0, 0)
		d = geom.V(8, 0, 0)
	)
	for _, e := range [][2]geom.Vec3{{s, a}, {a, d}, {s, b}, {b, d}, {s, c}} {
		allowed[e] = true
		allowed[[2]geom.Vec3{e[1], e[0]}] = true
	}
	vis := VisibilityFunc(func(p, q geom.Vec3) bool { return !allowed[[2]geom.Vec3{p, q}] })

	g := newTestGraph(t, WithVisibility(vis))
	ids := g.Populate([]Seed{{Position: s}, {Position: a}, {Position: b}, {Position: c}, {Position: d, Exit: true}})

	path := NewPathFinder(g).FindPath(ids[0], ids[4])
	assert.Equal(t, Path{ids[0], ids[2], ids[4]}, path)
	assert.InDelta(t, 2*math.Sqrt(17), g.PathCost(path), 1e-9)
}

func TestFindPath_Optimal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		g := newTestGraph(t, WithThreshold(9))
		seeds := make([]Seed, 9)
		for i := range seeds {
			seeds[i] = Seed{Position: geom.V(rng.Float64()*20, 0, rng.Float64()*20)}
		}
		ids := g.Populate(seeds)
		pf := NewPathFinder(g)

		for _, goal := range ids[1:] {
			path := pf.FindPath(ids[0], goal)
			best := bruteForceCost(g, ids[0], goal)
			if math.IsInf(best, 1) {
				assert.Empty(t, path, "round %d goal %d", round, goal)
				continue
			}
			require.NotEmpty(t, path, "round %d goal %d", round, goal)
			assert.InDelta(t, best, g.PathCost(path), 1e-9, "round %d goal %d", round, goal)
			assertWalkable(t, g, path)
		}
	}
}

// bruteForceCost enumerates every simple path.
func bruteForceCost(g *Graph, start, goal NodeID) float64 {
	best := math.Inf(1)
	visited := map[NodeID]bool{start: true}
	var walk func(at NodeID, cost float64)
	walk = func(at NodeID, cost float64) {
		if cost >= best {
			return
		}
		if at == goal {
			best = cost
			return
		}
		from, _ := g.Node(at)
		for _, nb := range from.Neighbors {
			if visited[nb] {
				continue
			}
			to, _ := g.Node(nb)
			visited[nb] = true
			walk(nb, cost+geom.Distance(from.Position, to.Position))
			visited[nb] = false
		}
	}
	walk(start, 0)
	return best
}

func assertWalkable(t *testing.T, g *Graph, path Path) {
	t.Helper()
	for _, p := range pairs(path) {
		assert.Contains(t, g.Neighbors(p[0]), p[1], "path steps over a missing edge")
	}
}

func pairs(path Path) [][2]NodeID {
	var out [][2]NodeID
	for i := 0; i+1 < len(path); i++ {
		out = append(out, [2]NodeID{path[i], path[i+1]})
	}
	return out
}

func TestFrontier_TiesKeepPushOrder(t *testing.T) {
	pq := &frontier{}
	for i, f := range []float64{3, 1, 3, 1, 2} {
		heap.Push(pq, frontierEntry{id: NodeID(i), f: f, seq: i})
	}

	var order []NodeID
	for pq.Len() > 0 {
		order = append(order, heap.Pop(pq).(frontierEntry).id)
	}
	assert.Equal(t, []NodeID{1, 3, 4, 0, 2}, order)
}

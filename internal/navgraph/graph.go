// Package navgraph maintains the evacuation waypoint graph and searches it.
//
// A Graph owns a set of nodes placed in world space. Two nodes are linked by
// an undirected edge iff they lie within the connection threshold of each
// other and the Visibility oracle reports the straight segment between them
// as unobstructed. Edges carry no weight; traversal cost is the Euclidean
// distance between endpoints, computed on demand.
//
// # Thread Safety
//
// Graph follows a single-writer/many-reader discipline. Structural mutation
// (AddNode, RebuildAll, MoveNode, Disconnect, SetExit, SetVisibility) takes
// the write lock; queries and A* searches hold the read lock for their whole
// duration. Read gives callers a consistent View across several queries.
package navgraph

import (
	"log/slog"
	"math"
	"sync"

	"evac-navigator/internal/geom"
)

// DefaultThreshold is the maximum edge length, in meters.
const DefaultThreshold = 10.0

// DefaultSpawnOffset is how far AddNodeBeside places the new node along +X.
const DefaultSpawnOffset = 2.0

// NodeID identifies a node for the lifetime of its graph. IDs are never reused.
type NodeID int

// Node is a read-only copy of a waypoint.
type Node struct {
	ID        NodeID    `json:"id"`
	Position  geom.Vec3 `json:"position"`
	Exit      bool      `json:"exit"`
	Neighbors []NodeID  `json:"neighbors"`
}

type node struct {
	id        NodeID
	pos       geom.Vec3
	exit      bool
	neighbors []NodeID // insertion order, symmetric, no self loops
	entry     *nodeEntry
}

func (n *node) hasNeighbor(id NodeID) bool {
	for _, nb := range n.neighbors {
		if nb == id {
			return true
		}
	}
	return false
}

func (n *node) removeNeighbor(id NodeID) bool {
	for i, nb := range n.neighbors {
		if nb == id {
			n.neighbors = append(n.neighbors[:i], n.neighbors[i+1:]...)
			return true
		}
	}
	return false
}

func (n *node) snapshot() Node {
	return Node{
		ID:        n.id,
		Position:  n.pos,
		Exit:      n.exit,
		Neighbors: append([]NodeID(nil), n.neighbors...),
	}
}

// Graph is the waypoint graph. Create it with New.
type Graph struct {
	mu          sync.RWMutex
	nodes       map[NodeID]*node
	order       []NodeID // ascending, since IDs are allocated monotonically
	nextID      NodeID
	edges       int
	threshold   float64
	spawnOffset float64
	visibility  Visibility
	index       *spatialIndex
	logger      *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithThreshold sets the maximum distance between connected nodes.
func WithThreshold(d float64) Option {
	return func(g *Graph) { g.threshold = d }
}

// WithVisibility sets the obstruction oracle. The default is OpenSpace.
func WithVisibility(v Visibility) Option {
	return func(g *Graph) {
		if v != nil {
			g.visibility = v
		}
	}
}

// WithSpawnOffset sets the +X offset used by AddNodeBeside.
func WithSpawnOffset(d float64) Option {
	return func(g *Graph) { g.spawnOffset = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) (*Graph, error) {
	g := &Graph{
		nodes:       make(map[NodeID]*node),
		threshold:   DefaultThreshold,
		spawnOffset: DefaultSpawnOffset,
		visibility:  OpenSpace,
		index:       newSpatialIndex(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if !(g.threshold > 0) || math.IsInf(g.threshold, 0) {
		return nil, ErrInvalidThreshold
	}
	return g, nil
}

// Threshold returns the connection threshold.
func (g *Graph) Threshold() float64 {
	return g.threshold
}

// Read runs fn with the graph read-locked. fn must not call mutating methods
// on g.
func (g *Graph) Read(fn func(v View)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(View{g: g})
}

// place allocates a node without connecting it. Caller holds the write lock.
func (g *Graph) place(pos geom.Vec3, exit bool) *node {
	n := &node{id: g.nextID, pos: pos, exit: exit}
	g.nextID++
	n.entry = g.index.insert(n.id, pos)
	g.nodes[n.id] = n
	g.order = append(g.order, n.id)
	return n
}

// AddNode creates a node at pos and connects it. Only the new node's
// connectivity is evaluated; links between existing nodes that the new node
// might affect are left alone until RebuildAll.
func (g *Graph) AddNode(pos geom.Vec3, exit bool) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.place(pos, exit)
	added := g.connect(n)
	edgeGauge.Set(float64(g.edges))
	g.logger.Debug("node added", "node", n.id, "position", pos.String(), "exit", exit, "edges", added)
	return n.id
}

// AddNodeBeside creates a node offset along +X from an existing node and
// connects it.
func (g *Graph) AddNodeBeside(id NodeID) (NodeID, error) {
	g.mu.RLock()
	n, ok := g.nodes[id]
	var pos geom.Vec3
	if ok {
		pos = n.pos.Add(geom.Right.Scale(g.spawnOffset))
	}
	g.mu.RUnlock()
	if !ok {
		return 0, ErrNodeNotFound
	}
	return g.AddNode(pos, false), nil
}

// MoveNode changes a node's position. Existing edges are kept even if they
// no longer satisfy the threshold or visibility rule; only RebuildAll
// resynchronizes them with the new geometry.
func (g *Graph) MoveNode(id NodeID, pos geom.Vec3) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	g.index.move(n.entry, pos)
	n.pos = pos
	return nil
}

// SetExit flags or unflags a node as a pathfinding destination.
func (g *Graph) SetExit(id NodeID, exit bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	n.exit = exit
	return nil
}

// Disconnect removes the edge between a and b in both directions. It reports
// whether an edge existed.
func (g *Graph) Disconnect(a, b NodeID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	na, okA := g.nodes[a]
	nb, okB := g.nodes[b]
	if !okA || !okB {
		return false
	}
	removed := na.removeNeighbor(b)
	nb.removeNeighbor(a)
	if removed {
		g.edges--
		edgeGauge.Set(float64(g.edges))
	}
	return removed
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return View{g: g}.Node(id)
}

// Nodes returns copies of all nodes in ID order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].snapshot())
	}
	return out
}

// Exits returns the IDs of exit nodes in ID order.
func (g *Graph) Exits() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return View{g: g}.Exits()
}

// Neighbors returns a copy of a node's neighbor list.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return View{g: g}.Neighbors(id)
}

// Nearest returns the node closest to p.
func (g *Graph) Nearest(p geom.Vec3) (NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return View{g: g}.Nearest(p)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges
}

// PathCost sums the Euclidean lengths of consecutive path segments.
func (g *Graph) PathCost(p Path) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return View{g: g}.PathCost(p)
}

// Lines returns every edge once as a segment, for debug overlays.
func (g *Graph) Lines() [][2]geom.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	lines := make([][2]geom.Vec3, 0, g.edges)
	for _, id := range g.order {
		n := g.nodes[id]
		for _, nb := range n.neighbors {
			if n.id < nb {
				lines = append(lines, [2]geom.Vec3{n.pos, g.nodes[nb].pos})
			}
		}
	}
	return lines
}

// View is a read-locked window onto a Graph, obtained from Graph.Read. It
// must not escape the callback.
type View struct {
	g *Graph
}

func (v View) Len() int {
	return len(v.g.nodes)
}

func (v View) Node(id NodeID) (Node, bool) {
	n, ok := v.g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.snapshot(), true
}

// Position returns a node's position.
func (v View) Position(id NodeID) (geom.Vec3, bool) {
	n, ok := v.g.nodes[id]
	if !ok {
		return geom.Zero, false
	}
	return n.pos, true
}

func (v View) Neighbors(id NodeID) []NodeID {
	n, ok := v.g.nodes[id]
	if !ok {
		return nil
	}
	return append([]NodeID(nil), n.neighbors...)
}

func (v View) Exits() []NodeID {
	var exits []NodeID
	for _, id := range v.g.order {
		if v.g.nodes[id].exit {
			exits = append(exits, id)
		}
	}
	return exits
}

// Nearest returns the node with the smallest Euclidean distance to p; ties go
// to the lowest ID. It reports false when the graph is empty.
func (v View) Nearest(p geom.Vec3) (NodeID, bool) {
	seed, ok := v.g.index.nearestSeed(p)
	if !ok {
		return 0, false
	}

	best := seed
	bestDist := geom.Distance(p, v.g.nodes[seed].pos)
	for _, id := range v.g.index.within(p, seedRadius(bestDist)) {
		d := geom.Distance(p, v.g.nodes[id].pos)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best, true
}

// Positions maps a path to world positions. Unknown IDs are skipped.
func (v View) Positions(p Path) []geom.Vec3 {
	out := make([]geom.Vec3, 0, len(p))
	for _, id := range p {
		if n, ok := v.g.nodes[id]; ok {
			out = append(out, n.pos)
		}
	}
	return out
}

// PathCost sums the Euclidean lengths of consecutive path segments. An empty
// or single-node path costs zero.
func (v View) PathCost(p Path) float64 {
	return geom.PolylineLength(v.Positions(p))
}

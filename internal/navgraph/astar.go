package navgraph

import (
	"container/heap"

	"evac-navigator/internal/geom"
)

// Path is an ordered node sequence from start to goal inclusive. An empty
// path means no route exists.
type Path []NodeID

// frontierEntry is one frontier push. A node may be pushed several times as
// its cost improves; older entries are recognised as stale on pop.
type frontierEntry struct {
	id  NodeID
	g   float64 // cost from start when pushed
	f   float64 // g + heuristic
	seq int     // push order, breaks f ties
}

// frontier implements heap.Interface for A* algorithm
type frontier []frontierEntry

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq frontier) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *frontier) Push(x any) {
	*pq = append(*pq, x.(frontierEntry))
}

func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	*pq = old[0 : n-1]
	return entry
}

// PathFinder runs A* searches over a Graph.
type PathFinder struct {
	graph *Graph
}

func NewPathFinder(g *Graph) *PathFinder {
	return &PathFinder{graph: g}
}

// FindPath returns the shortest path from start to goal, holding the graph's
// read lock for the duration of the search.
func (pf *PathFinder) FindPath(start, goal NodeID) Path {
	if pf == nil || pf.graph == nil {
		return Path{}
	}
	var p Path
	pf.graph.Read(func(v View) {
		p = pf.Search(v, start, goal)
	})
	return p
}

// Search runs A* inside an existing read-locked view.
//
// The heuristic is the straight-line distance to goal, which is admissible
// and consistent because every edge costs exactly its Euclidean length, so
// the first time goal is popped its path is optimal. Unknown IDs and
// unreachable goals both yield an empty path.
func (pf *PathFinder) Search(v View, start, goal NodeID) Path {
	nodes := v.g.nodes
	startNode, okStart := nodes[start]
	goalNode, okGoal := nodes[goal]
	if !okStart || !okGoal {
		pathSearchTotal.WithLabelValues("invalid").Inc()
		return Path{}
	}
	if start == goal {
		pathSearchTotal.WithLabelValues("trivial").Inc()
		return Path{start}
	}

	goalPos := goalNode.pos
	gScore := map[NodeID]float64{start: 0}
	cameFrom := make(map[NodeID]NodeID)

	openSet := &frontier{}
	heap.Init(openSet)
	seq := 0
	heap.Push(openSet, frontierEntry{id: start, g: 0, f: geom.Distance(startNode.pos, goalPos), seq: seq})

	expanded := 0
	defer func() { pathSearchExpanded.Observe(float64(expanded)) }()

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(frontierEntry)
		if current.g > gScore[current.id] {
			pathSearchStale.Inc()
			continue
		}
		expanded++

		// Check if we reached the goal
		if current.id == goal {
			pathSearchTotal.WithLabelValues("found").Inc()
			return reconstruct(cameFrom, start, goal)
		}

		currentNode := nodes[current.id]
		for _, neighborID := range currentNode.neighbors {
			neighbor := nodes[neighborID]
			tentativeG := current.g + geom.Distance(currentNode.pos, neighbor.pos)

			if best, seen := gScore[neighborID]; seen && tentativeG >= best {
				continue
			}
			cameFrom[neighborID] = current.id
			gScore[neighborID] = tentativeG
			seq++
			heap.Push(openSet, frontierEntry{
				id:  neighborID,
				g:   tentativeG,
				f:   tentativeG + geom.Distance(neighbor.pos, goalPos),
				seq: seq,
			})
		}
	}

	// No path found
	pathSearchTotal.WithLabelValues("unreachable").Inc()
	return Path{}
}

func reconstruct(cameFrom map[NodeID]NodeID, start, goal NodeID) Path {
	path := Path{goal}
	for id := goal; id != start; {
		id = cameFrom[id]
		path = append(path, id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

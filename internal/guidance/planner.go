// Package guidance turns the waypoint graph into per-tick evacuation
// guidance: the route from a moving reference point to the cheapest
// reachable exit, a directional arrow, and floor markers along the route.
//
// A scheduler calls Controller.Tick once per simulation step. Each tick is a
// pure function of the graph and the reference point, apart from the arrow
// rotation (smoothed across ticks) and the last route, which is kept when a
// tick cannot compute a new one so presentation does not flicker.
package guidance

import (
	"math"

	"evac-navigator/internal/geom"
	"evac-navigator/internal/navgraph"
)

// Outcome says how far a planning pass got.
type Outcome string

const (
	// OutcomeRouted means a route to an exit was found.
	OutcomeRouted Outcome = "routed"
	// OutcomeNoNodes means the graph is empty.
	OutcomeNoNodes Outcome = "no_nodes"
	// OutcomeNoExit means no exit is reachable from the nearest node.
	OutcomeNoExit Outcome = "no_exit"
)

// Plan is the route chosen for one reference point.
type Plan struct {
	Nearest   navgraph.NodeID `json:"nearest"`
	Exit      navgraph.NodeID `json:"exit"`
	Path      navgraph.Path   `json:"path"`
	Cost      float64         `json:"cost"`
	Positions []geom.Vec3     `json:"positions"`
}

// Planner selects the best exit and route. It keeps no state between calls
// and is safe for concurrent use.
type Planner struct {
	graph  *navgraph.Graph
	finder *navgraph.PathFinder
}

func NewPlanner(g *navgraph.Graph) *Planner {
	return &Planner{graph: g, finder: navgraph.NewPathFinder(g)}
}

// Plan computes the route from the node nearest ref to the cheapest
// reachable exit. On OutcomeNoExit the returned plan carries only Nearest.
func (p *Planner) Plan(ref geom.Vec3) (Plan, Outcome) {
	var (
		plan    Plan
		outcome Outcome
	)
	p.graph.Read(func(v navgraph.View) {
		plan, outcome = p.PlanIn(v, ref)
	})
	return plan, outcome
}

// PlanIn is Plan against an already read-locked view.
//
// Every exit is searched in ID order and the strictly cheapest route wins, so
// ties keep the lowest exit ID. Exits with no route are skipped rather than
// counted as free. This costs one A* search per exit per call.
func (p *Planner) PlanIn(v navgraph.View, ref geom.Vec3) (Plan, Outcome) {
	nearest, ok := v.Nearest(ref)
	if !ok {
		return Plan{}, OutcomeNoNodes
	}

	plan := Plan{Nearest: nearest}
	bestCost := math.Inf(1)
	var best navgraph.Path
	exits := v.Exits()
	for _, exit := range exits {
		path := p.finder.Search(v, nearest, exit)
		if len(path) == 0 {
			continue
		}
		if cost := v.PathCost(path); cost < bestCost {
			bestCost = cost
			best = path
			plan.Exit = exit
		}
	}
	exitsEvaluated.Observe(float64(len(exits)))
	if best == nil {
		return plan, OutcomeNoExit
	}

	plan.Path = best
	plan.Cost = bestCost
	plan.Positions = v.Positions(best)
	return plan, OutcomeRouted
}

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"evac-navigator/internal/config"
	"evac-navigator/internal/floorplan"
	"evac-navigator/internal/navgraph"
)

var errNoSource = errors.New("no floor plan or graph snapshot configured")

func floorPlanOptions(c config.Config) floorplan.Options {
	return floorplan.Options{
		DefaultHeight:   c.FloorPlan.DefaultObstacleHeight,
		SimplifyEpsilon: c.FloorPlan.SimplifyEpsilon,
		Logger:          slog.Default(),
	}
}

// loadGraph builds the graph from the configured snapshot or floor plan. The
// floor plan, when present, supplies obstacles and exit zones either way.
func loadGraph(c config.Config) (*navgraph.Graph, *floorplan.Plan, error) {
	var plan *floorplan.Plan
	if c.FloorPlan.Path != "" {
		var err error
		if plan, err = floorplan.Load(c.FloorPlan.Path, floorPlanOptions(c)); err != nil {
			return nil, nil, err
		}
	}

	opts := c.GraphOptions()
	switch {
	case c.Graph.Snapshot != "":
		if plan != nil {
			opts = append(opts, navgraph.WithVisibility(plan.Obstacles))
		}
		g, err := navgraph.LoadFile(c.Graph.Snapshot, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load graph %s: %w", c.Graph.Snapshot, err)
		}
		return g, plan, nil
	case plan != nil:
		g, err := plan.NewGraph(opts...)
		if err != nil {
			return nil, nil, err
		}
		return g, plan, nil
	default:
		return nil, nil, errNoSource
	}
}

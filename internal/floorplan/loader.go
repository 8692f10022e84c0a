// Package floorplan loads the training environment from a GeoJSON floor plan
// and answers line-of-sight queries against its obstacles.
//
// Plan coordinates map onto the world floor: GeoJSON x is world X and
// GeoJSON y is world Z. Feature properties carry the vertical dimension:
//
//   - Point features are waypoints: "exit" (bool) and "elevation" (Y, m).
//   - Polygon and MultiPolygon features are obstacles unless "kind" is
//     "exit_zone": "base" (m, default 0) and "height" (m, default from
//     Options).
package floorplan

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"evac-navigator/internal/geom"
	"evac-navigator/internal/navgraph"
)

const (
	kindObstacle = "obstacle"
	kindExitZone = "exit_zone"
	kindNode     = "node"
)

// DefaultObstacleHeight is used for obstacles without a "height" property.
const DefaultObstacleHeight = 3.0

// Options tunes how a floor plan is interpreted.
type Options struct {
	// DefaultHeight is the obstacle height when a feature has none.
	DefaultHeight float64
	// SimplifyEpsilon enables Douglas-Peucker simplification of obstacle
	// footprints when positive.
	SimplifyEpsilon float64
	Logger          *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.DefaultHeight <= 0 {
		o.DefaultHeight = DefaultObstacleHeight
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Plan is a parsed floor plan.
type Plan struct {
	Nodes     []navgraph.Seed
	Obstacles *Obstacles
	ExitZones []Zone
}

// Load reads and parses a floor plan file.
func Load(path string, opts Options) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read floor plan %s: %w", path, err)
	}
	plan, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("floor plan %s: %w", path, err)
	}
	return plan, nil
}

// Parse converts a GeoJSON FeatureCollection into a Plan. Features with
// unsupported geometry are skipped with a warning.
func Parse(data []byte, opts Options) (*Plan, error) {
	opts = opts.withDefaults()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFloorPlan, err)
	}

	plan := &Plan{}
	var obstacles []Obstacle
	for i, feature := range fc.Features {
		props := feature.Properties
		name, err := stringProp(props, fmt.Sprintf("#%d", i), "name", fmt.Sprintf("feature-%d", i))
		if err != nil {
			return nil, err
		}

		switch g := feature.Geometry.(type) {
		case orb.Point:
			kind, err := stringProp(props, name, "kind", kindNode)
			if err != nil {
				return nil, err
			}
			if kind != kindNode {
				opts.Logger.Warn("point feature with non-node kind skipped", "feature", name, "kind", kind)
				continue
			}
			elevation, err := floatProp(props, name, "elevation", 0)
			if err != nil {
				return nil, err
			}
			exit, err := boolProp(props, name, "exit", false)
			if err != nil {
				return nil, err
			}
			plan.Nodes = append(plan.Nodes, navgraph.Seed{
				Position: geom.V(g[0], elevation, g[1]),
				Exit:     exit,
			})

		case orb.Polygon:
			if obstacles, plan.ExitZones, err = addFootprint(obstacles, plan.ExitZones, name, g, props, opts); err != nil {
				return nil, err
			}

		case orb.MultiPolygon:
			for j, poly := range g {
				if obstacles, plan.ExitZones, err = addFootprint(obstacles, plan.ExitZones, fmt.Sprintf("%s/%d", name, j), poly, props, opts); err != nil {
					return nil, err
				}
			}

		case nil:
			opts.Logger.Warn("feature without geometry skipped", "feature", name)

		default:
			opts.Logger.Warn("unsupported floor plan geometry skipped", "feature", name, "type", feature.Geometry.GeoJSONType())
		}
	}

	if len(plan.Nodes) == 0 {
		return nil, ErrNoNodes
	}

	loaded := len(obstacles)
	obstacles = removeContained(simplifyFootprints(obstacles, opts.SimplifyEpsilon))
	plan.Obstacles = NewObstacles(obstacles)

	exits := 0
	for _, n := range plan.Nodes {
		if n.Exit {
			exits++
		}
	}
	opts.Logger.Info("floor plan parsed",
		"nodes", len(plan.Nodes),
		"exits", exits,
		"obstacles", plan.Obstacles.Len(),
		"obstacles_pruned", loaded-plan.Obstacles.Len(),
		"exit_zones", len(plan.ExitZones))
	if exits == 0 {
		opts.Logger.Warn("floor plan has no exit nodes; guidance will never find a route")
	}
	return plan, nil
}

func addFootprint(obstacles []Obstacle, zones []Zone, name string, poly orb.Polygon, props geojson.Properties, opts Options) ([]Obstacle, []Zone, error) {
	base, err := floatProp(props, name, "base", 0)
	if err != nil {
		return nil, nil, err
	}
	height, err := floatProp(props, name, "height", opts.DefaultHeight)
	if err != nil {
		return nil, nil, err
	}
	kind, err := stringProp(props, name, "kind", kindObstacle)
	if err != nil {
		return nil, nil, err
	}

	top := base + height
	switch kind {
	case kindExitZone:
		zones = append(zones, Zone{Name: name, Footprint: poly, Base: base, Top: top})
	case kindObstacle:
		obstacles = append(obstacles, Obstacle{Name: name, Footprint: poly, Base: base, Top: top})
	default:
		opts.Logger.Warn("unknown footprint kind skipped", "feature", name, "kind", kind)
	}
	return obstacles, zones, nil
}

// Populate adds the plan's waypoints to g and connects them.
func (p *Plan) Populate(g *navgraph.Graph) []navgraph.NodeID {
	return g.Populate(p.Nodes)
}

// NewGraph builds a graph over the plan's waypoints using its obstacles as
// the visibility oracle.
func (p *Plan) NewGraph(opts ...navgraph.Option) (*navgraph.Graph, error) {
	opts = append(opts, navgraph.WithVisibility(p.Obstacles))
	g, err := navgraph.New(opts...)
	if err != nil {
		return nil, err
	}
	p.Populate(g)
	return g, nil
}

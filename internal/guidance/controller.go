package guidance

import (
	"log/slog"

	"evac-navigator/internal/geom"
	"evac-navigator/internal/navgraph"
)

// Config tunes presentation.
type Config struct {
	// LookAheadRadius is how close the reference point must be to the first
	// path node before the arrow points at the second.
	LookAheadRadius float64
	// ArrowHeight is the arrow's fixed height above the floor.
	ArrowHeight float64
	// ArrowUpdateSpeed scales the per-tick slerp fraction (dt * speed).
	ArrowUpdateSpeed float64
	// MarkerSpacing is the distance between floor markers.
	MarkerSpacing float64
}

func DefaultConfig() Config {
	return Config{
		LookAheadRadius:  1,
		ArrowHeight:      1.5,
		ArrowUpdateSpeed: 5,
		MarkerSpacing:    2,
	}
}

// Frame is what one tick produced. Line is nil on ticks that did not
// republish it.
type Frame struct {
	Tick      uint64           `json:"tick"`
	Reference geom.Vec3        `json:"reference"`
	Outcome   Outcome          `json:"outcome"`
	Nearest   *navgraph.NodeID `json:"nearest,omitempty"`
	Plan      Plan             `json:"plan"`
	Line      []geom.Vec3      `json:"line,omitempty"`
	Arrow     *Pose            `json:"arrow,omitempty"`
	Markers   []geom.Vec3      `json:"markers"`
}

// Controller runs the per-tick guidance loop. It is not safe for concurrent
// ticks; one scheduler drives it.
type Controller struct {
	graph   *navgraph.Graph
	planner *Planner
	sink    Sink
	cfg     Config
	logger  *slog.Logger

	ticks    uint64
	current  Plan // last successful plan, reused when a tick cannot plan
	rotation geom.Quat
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

func WithConfig(cfg Config) ControllerOption {
	return func(c *Controller) { c.cfg = cfg }
}

func WithSink(s Sink) ControllerOption {
	return func(c *Controller) {
		if s != nil {
			c.sink = s
		}
	}
}

func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInitialRotation sets the arrow's starting orientation.
func WithInitialRotation(q geom.Quat) ControllerOption {
	return func(c *Controller) { c.rotation = q.Normalized() }
}

func NewController(g *navgraph.Graph, opts ...ControllerOption) *Controller {
	c := &Controller{
		graph:    g,
		planner:  NewPlanner(g),
		sink:     Discard,
		cfg:      DefaultConfig(),
		logger:   slog.Default(),
		rotation: geom.Identity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the route presentation is currently derived from.
func (c *Controller) Current() Plan {
	return c.current
}

// Rotation returns the arrow's current orientation.
func (c *Controller) Rotation() geom.Quat {
	return c.rotation
}

// Tick recomputes guidance for the reference point ref; dt is the time since
// the previous tick in seconds and drives arrow smoothing.
//
// When no route can be planned (empty graph, no reachable exit) the previous
// route stays in place: the path line is not republished, and the arrow and
// markers are derived from the previous route.
func (c *Controller) Tick(ref geom.Vec3, dt float64) Frame {
	c.ticks++
	frame := Frame{Tick: c.ticks, Reference: ref}

	var positions []geom.Vec3
	c.graph.Read(func(v navgraph.View) {
		plan, outcome := c.planner.PlanIn(v, ref)
		frame.Outcome = outcome
		if outcome != OutcomeNoNodes {
			nearest := plan.Nearest
			frame.Nearest = &nearest
		}
		if outcome == OutcomeRouted {
			c.current = plan
		}
		positions = v.Positions(c.current.Path)
	})
	frame.Plan = c.current
	ticksTotal.WithLabelValues(string(frame.Outcome)).Inc()

	if frame.Outcome == OutcomeRouted && len(positions) > 0 {
		frame.Line = pathLine(ref, positions)
		c.sink.PublishLine(frame.Line)
		routeCost.Set(c.current.Cost)
	}

	if len(positions) > 0 {
		target := arrowTarget(ref, positions, c.cfg.LookAheadRadius)
		c.rotation = steer(c.rotation, ref, target, dt*c.cfg.ArrowUpdateSpeed)
		pose := Pose{Position: ref.WithY(c.cfg.ArrowHeight), Rotation: c.rotation}
		frame.Arrow = &pose
		c.sink.PublishArrow(pose)
	}

	frame.Markers = placeMarkers(positions, c.cfg.MarkerSpacing)
	c.sink.PublishMarkers(frame.Markers)

	if frame.Outcome != OutcomeRouted {
		c.logger.Debug("guidance tick skipped", "tick", frame.Tick, "outcome", frame.Outcome, "reference", ref.String())
	} else {
		c.logger.Debug("guidance tick",
			"tick", frame.Tick,
			"nearest", c.current.Nearest,
			"exit", c.current.Exit,
			"hops", len(c.current.Path),
			"cost", c.current.Cost,
			"markers", len(frame.Markers))
	}
	return frame
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"evac-navigator/internal/geom"
	"evac-navigator/internal/guidance"
	"evac-navigator/internal/session"
)

const (
	defaultSimTimeout = 10 * time.Minute
	// exitRadius stands in for exit zones when the floor plan has none.
	exitRadius = 0.5
)

var (
	simStart   []float64
	simSpeed   float64
	simTimeout time.Duration
	simFrames  bool
)

var (
	errStuck      = errors.New("no route to an exit")
	errEmptyGraph = errors.New("graph has no nodes")
)

// nearPoint is a spherical exit region around an exit node.
type nearPoint struct {
	center geom.Vec3
	radius float64
}

func (n nearPoint) Contains(p geom.Vec3) bool {
	return geom.Distance(n.center, p) <= n.radius
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if len(simStart) != 3 {
		return fmt.Errorf("--from needs x,y,z, got %v", simStart)
	}
	if !(simSpeed > 0) {
		return fmt.Errorf("--speed must be positive, got %v", simSpeed)
	}
	timeout := simTimeout
	if timeout <= 0 {
		timeout = defaultSimTimeout
	}

	g, plan, err := loadGraph(cfg)
	if err != nil {
		return err
	}

	var regions []session.Region
	if plan != nil {
		for _, z := range plan.ExitZones {
			regions = append(regions, z)
		}
	}
	if len(regions) == 0 {
		for _, id := range g.Exits() {
			if n, ok := g.Node(id); ok {
				regions = append(regions, nearPoint{center: n.Position, radius: exitRadius})
			}
		}
	}

	// simulated time keeps drills reproducible
	clock := time.Now()
	now := func() time.Time { return clock }
	tracker := session.NewTracker(cfg.Profile(), session.WithClock(now))
	watcher := session.NewZoneWatcher(tracker, regions...)

	logger := slog.Default().With("session", tracker.ID())
	controller := guidance.NewController(g,
		guidance.WithConfig(cfg.GuidanceConfig()),
		guidance.WithSink(guidance.LogSink{Logger: logger}),
		guidance.WithLogger(logger),
	)

	step := cfg.TickInterval()
	dt := step.Seconds()
	pos := geom.V(simStart[0], simStart[1], simStart[2])
	enc := json.NewEncoder(cmd.OutOrStdout())

	for elapsed := time.Duration(0); elapsed <= timeout; elapsed += step {
		frame := controller.Tick(pos, dt)
		if simFrames {
			if err := enc.Encode(frame); err != nil {
				return err
			}
		}
		if frame.Outcome == guidance.OutcomeNoNodes {
			return errEmptyGraph
		}

		inside, err := watcher.Observe(cmd.Context(), pos)
		if err != nil {
			return err
		}
		if inside {
			logger.Info("exit reached", "position", pos.String(), "elapsed", elapsed)
			return printReport(cmd, tracker.Report())
		}

		if len(frame.Plan.Path) == 0 {
			return fmt.Errorf("%w from %s", errStuck, pos)
		}
		pos = walk(pos, frame.Plan.Positions, simSpeed*dt)
		clock = clock.Add(step)
	}
	return fmt.Errorf("exit not reached within %s", timeout)
}

// walk moves pos up to dist along the route without doubling back to a
// waypoint already passed.
func walk(pos geom.Vec3, route []geom.Vec3, dist float64) geom.Vec3 {
	for len(route) > 1 && geom.Distance(pos, route[1]) <= geom.Distance(route[0], route[1]) {
		route = route[1:]
	}
	for _, target := range route {
		d := geom.Distance(pos, target)
		if d <= dist {
			pos = target
			dist -= d
			continue
		}
		return geom.Lerp(pos, target, dist/d)
	}
	return pos
}

func printReport(cmd *cobra.Command, r session.Report) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}


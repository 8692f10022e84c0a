package guidance

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evac-navigator/internal/geom"
	"evac-navigator/internal/navgraph"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newGraph(t *testing.T, threshold float64, seeds ...navgraph.Seed) *navgraph.Graph {
	t.Helper()
	g, err := navgraph.New(navgraph.WithThreshold(threshold), navgraph.WithLogger(quiet))
	require.NoError(t, err)
	g.Populate(seeds)
	return g
}

// corridor is five nodes 5m apart along X, the last one an exit. With a
// threshold of 6 only neighbors are linked.
func corridor(t *testing.T) *navgraph.Graph {
	t.Helper()
	seeds := make([]navgraph.Seed, 5)
	for i := range seeds {
		seeds[i] = navgraph.Seed{Position: geom.V(float64(i)*5, 0, 0), Exit: i == 4}
	}
	return newGraph(t, 6, seeds...)
}

func newController(g *navgraph.Graph, rec *Recorder) *Controller {
	return NewController(g, WithSink(rec), WithLogger(quiet))
}

func assertFacing(t *testing.T, want geom.Vec3, q geom.Quat) {
	t.Helper()
	got := q.Forward()
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
	assert.InDelta(t, want.Z, got.Z, 1e-6)
}

func TestTick_Corridor(t *testing.T) {
	rec := &Recorder{}
	c := newController(corridor(t), rec)

	frame := c.Tick(geom.V(0, 0, 0), 1)

	assert.Equal(t, OutcomeRouted, frame.Outcome)
	require.NotNil(t, frame.Nearest)
	assert.Equal(t, navgraph.NodeID(0), *frame.Nearest)
	assert.Equal(t, navgraph.Path{0, 1, 2, 3, 4}, frame.Plan.Path)
	assert.Equal(t, navgraph.NodeID(4), frame.Plan.Exit)
	assert.InDelta(t, 20, frame.Plan.Cost, 1e-9)

	line, lines := rec.Line()
	assert.Equal(t, 1, lines)
	require.Len(t, line, 6)
	assert.Equal(t, geom.V(0, 0, 0), line[0], "line starts at the reference point")
	assert.Equal(t, geom.V(20, 0, 0), line[5])

	arrow, arrows := rec.Arrow()
	assert.Equal(t, 1, arrows)
	assert.Equal(t, geom.V(0, 1.5, 0), arrow.Position)

	// two markers per 5m segment at spacing 2
	markers, _ := rec.Markers()
	assert.Len(t, markers, 8)
	assert.Equal(t, geom.V(0, 0, 0), markers[0])
	assert.Equal(t, geom.V(2.5, 0, 0), markers[1])
	assert.Equal(t, geom.V(17.5, 0, 0), markers[7])
}

func TestTick_AtExit(t *testing.T) {
	rec := &Recorder{}
	c := newController(corridor(t), rec)

	frame := c.Tick(geom.V(20, 0, 0), 1)

	assert.Equal(t, OutcomeRouted, frame.Outcome)
	assert.Equal(t, navgraph.Path{4}, frame.Plan.Path)
	assert.Zero(t, frame.Plan.Cost)
	assert.Empty(t, frame.Markers)
	assert.NotNil(t, frame.Markers)

	// standing on the target gives no direction, so the arrow keeps facing +Z
	require.NotNil(t, frame.Arrow)
	assertFacing(t, geom.Forward, frame.Arrow.Rotation)
}

func TestTick_EmptyGraph(t *testing.T) {
	rec := &Recorder{}
	c := newController(newGraph(t, 10), rec)

	frame := c.Tick(geom.V(1, 0, 1), 0.1)

	assert.Equal(t, OutcomeNoNodes, frame.Outcome)
	assert.Nil(t, frame.Nearest)
	assert.Nil(t, frame.Arrow)
	assert.Nil(t, frame.Line)

	_, lines := rec.Line()
	_, arrows := rec.Arrow()
	markers, markerCount := rec.Markers()
	assert.Zero(t, lines)
	assert.Zero(t, arrows)
	assert.Equal(t, 1, markerCount, "markers are published every tick")
	assert.Empty(t, markers)
}

func TestTick_KeepsPreviousRoute(t *testing.T) {
	g := corridor(t)
	rec := &Recorder{}
	c := newController(g, rec)

	first := c.Tick(geom.V(0, 0, 0), 1)
	require.Equal(t, OutcomeRouted, first.Outcome)

	require.NoError(t, g.SetExit(4, false))
	second := c.Tick(geom.V(5, 0, 0), 1)

	assert.Equal(t, OutcomeNoExit, second.Outcome)
	require.NotNil(t, second.Nearest)
	assert.Equal(t, navgraph.NodeID(1), *second.Nearest)
	assert.Equal(t, first.Plan.Path, second.Plan.Path)
	assert.Equal(t, first.Plan.Path, c.Current().Path)
	assert.Nil(t, second.Line)

	_, lines := rec.Line()
	_, arrows := rec.Arrow()
	markers, markerCount := rec.Markers()
	assert.Equal(t, 1, lines, "line is only republished after a successful plan")
	assert.Equal(t, 2, arrows)
	assert.Equal(t, 2, markerCount)
	assert.Len(t, markers, 8)
}

func TestTick_LookAhead(t *testing.T) {
	tests := []struct {
		name string
		ref  geom.Vec3
		want geom.Vec3
	}{
		{"far from the first node", geom.V(0, 0, -3), geom.V(0, 0, 1)},
		{"within the radius", geom.V(0.5, 0, 0), geom.V(1, 0, 0)},
		{"height is flattened", geom.V(0.5, 0.5, 0), geom.V(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(corridor(t), &Recorder{})
			frame := c.Tick(tt.ref, 1)
			require.NotNil(t, frame.Arrow)
			assertFacing(t, tt.want, frame.Arrow.Rotation)
			assert.Equal(t, 1.5, frame.Arrow.Position.Y)
		})
	}
}

func TestTick_LookAheadIsStrict(t *testing.T) {
	// exactly one unit from node 0 still points at node 0
	c := newController(corridor(t), &Recorder{})
	frame := c.Tick(geom.V(0, 0, -1), 1)
	require.NotNil(t, frame.Arrow)
	assertFacing(t, geom.V(0, 0, 1), frame.Arrow.Rotation)
}

func TestTick_ArrowSmoothing(t *testing.T) {
	c := newController(corridor(t), &Recorder{})
	target := geom.LookRotation(geom.V(1, 0, 0))

	// dt*speed = 0.5 covers half of the 90 degree turn
	frame := c.Tick(geom.V(0.5, 0, 0), 0.1)
	require.NotNil(t, frame.Arrow)
	assert.InDelta(t, math.Pi/4, geom.Angle(geom.Identity, frame.Arrow.Rotation), 1e-6)
	assert.InDelta(t, math.Pi/4, geom.Angle(frame.Arrow.Rotation, target), 1e-6)

	frame = c.Tick(geom.V(0.5, 0, 0), 0.1)
	assert.InDelta(t, math.Pi/8, geom.Angle(frame.Arrow.Rotation, target), 1e-6)

	// no time passed, no turn
	before := c.Rotation()
	c.Tick(geom.V(0.5, 0, 0), 0)
	assert.InDelta(t, 0, geom.Angle(before, c.Rotation()), 1e-9)
}

func TestTick_InitialRotation(t *testing.T) {
	start := geom.LookRotation(geom.V(-1, 0, 0))
	c := NewController(corridor(t), WithLogger(quiet), WithInitialRotation(start))
	frame := c.Tick(geom.V(20, 0, 0), 1)
	require.NotNil(t, frame.Arrow)
	assertFacing(t, geom.V(-1, 0, 0), frame.Arrow.Rotation)
}

func TestPlan_SkipsUnreachableExits(t *testing.T) {
	g := newGraph(t, 6,
		navgraph.Seed{Position: geom.V(0, 0, 0)},
		navgraph.Seed{Position: geom.V(100, 0, 0), Exit: true},
		navgraph.Seed{Position: geom.V(5, 0, 0), Exit: true},
	)

	plan, outcome := NewPlanner(g).Plan(geom.Zero)

	assert.Equal(t, OutcomeRouted, outcome)
	assert.Equal(t, navgraph.NodeID(2), plan.Exit)
	assert.Equal(t, navgraph.Path{0, 2}, plan.Path)
	assert.InDelta(t, 5, plan.Cost, 1e-9)
	assert.Equal(t, []geom.Vec3{geom.V(0, 0, 0), geom.V(5, 0, 0)}, plan.Positions)
}

func TestPlan_TiePicksLowestExit(t *testing.T) {
	g := newGraph(t, 6,
		navgraph.Seed{Position: geom.V(0, 0, 0)},
		navgraph.Seed{Position: geom.V(5, 0, 0), Exit: true},
		navgraph.Seed{Position: geom.V(-5, 0, 0), Exit: true},
	)

	plan, outcome := NewPlanner(g).Plan(geom.V(0, 0, 0))

	assert.Equal(t, OutcomeRouted, outcome)
	assert.Equal(t, navgraph.NodeID(1), plan.Exit)
}

func TestPlan_NoExit(t *testing.T) {
	g := newGraph(t, 6,
		navgraph.Seed{Position: geom.V(0, 0, 0)},
		navgraph.Seed{Position: geom.V(5, 0, 0)},
	)

	plan, outcome := NewPlanner(g).Plan(geom.V(4, 0, 0))

	assert.Equal(t, OutcomeNoExit, outcome)
	assert.Equal(t, navgraph.NodeID(1), plan.Nearest)
	assert.Empty(t, plan.Path)
}

func TestPlaceMarkers(t *testing.T) {
	tests := []struct {
		name      string
		positions []geom.Vec3
		spacing   float64
		want      int
	}{
		{"empty", nil, 2, 0},
		{"single node", []geom.Vec3{geom.Zero}, 2, 0},
		{"shorter than spacing", []geom.Vec3{geom.Zero, geom.V(1.9, 0, 0)}, 2, 0},
		{"exact multiple", []geom.Vec3{geom.Zero, geom.V(6, 0, 0)}, 2, 3},
		{"per segment floor", []geom.Vec3{geom.Zero, geom.V(3, 0, 0), geom.V(3, 0, 5)}, 2, 3},
		{"non-positive spacing", []geom.Vec3{geom.Zero, geom.V(6, 0, 0)}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placeMarkers(tt.positions, tt.spacing)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}

	got := placeMarkers([]geom.Vec3{geom.Zero, geom.V(6, 0, 0)}, 2)
	assert.Equal(t, []geom.Vec3{geom.V(0, 0, 0), geom.V(2, 0, 0), geom.V(4, 0, 0)}, got)
}

func TestRecorder_Counts(t *testing.T) {
	rec := &Recorder{}
	rec.PublishLine([]geom.Vec3{geom.Zero})
	rec.PublishLine(nil)
	rec.PublishMarkers([]geom.Vec3{geom.Up})

	line, lines := rec.Line()
	assert.Nil(t, line)
	assert.Equal(t, 2, lines)

	markers, n := rec.Markers()
	assert.Equal(t, []geom.Vec3{geom.Up}, markers)
	assert.Equal(t, 1, n)
}

func TestTick_CountsOutcomes(t *testing.T) {
	before := testutil.ToFloat64(ticksTotal.WithLabelValues(string(OutcomeNoNodes)))
	c := newController(newGraph(t, 10), &Recorder{})
	c.Tick(geom.Zero, 0.1)
	c.Tick(geom.Zero, 0.1)
	assert.Equal(t, before+2, testutil.ToFloat64(ticksTotal.WithLabelValues(string(OutcomeNoNodes))))
}

package guidance

import (
	"log/slog"
	"sync"

	"evac-navigator/internal/geom"
)

// Sink receives presentation output. It owns whatever visuals it creates
// from the published points; the slices passed in are not reused by the
// controller.
type Sink interface {
	PublishLine(points []geom.Vec3)
	PublishArrow(pose Pose)
	PublishMarkers(points []geom.Vec3)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) PublishLine([]geom.Vec3)    {}
func (discard) PublishArrow(Pose)          {}
func (discard) PublishMarkers([]geom.Vec3) {}

// Recorder is a Sink that keeps the latest value of each output. It is safe
// for concurrent use.
type Recorder struct {
	mu          sync.RWMutex
	line        []geom.Vec3
	arrow       Pose
	markers     []geom.Vec3
	lineCount   int
	arrowCount  int
	markerCount int
}

func (r *Recorder) PublishLine(points []geom.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.line = points
	r.lineCount++
}

func (r *Recorder) PublishArrow(pose Pose) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.arrow = pose
	r.arrowCount++
}

func (r *Recorder) PublishMarkers(points []geom.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers = points
	r.markerCount++
}

// Line returns the last published path line and how many times it was
// published.
func (r *Recorder) Line() ([]geom.Vec3, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.line, r.lineCount
}

func (r *Recorder) Arrow() (Pose, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.arrow, r.arrowCount
}

func (r *Recorder) Markers() ([]geom.Vec3, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.markers, r.markerCount
}

// LogSink writes presentation output to a logger at debug level.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s LogSink) PublishLine(points []geom.Vec3) {
	s.logger().Debug("path line", "points", len(points), "length", geom.PolylineLength(points))
}

func (s LogSink) PublishArrow(pose Pose) {
	s.logger().Debug("arrow", "position", pose.Position.String(), "facing", pose.Rotation.Forward().String())
}

func (s LogSink) PublishMarkers(points []geom.Vec3) {
	s.logger().Debug("markers", "count", len(points))
}

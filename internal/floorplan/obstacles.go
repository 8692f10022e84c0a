package floorplan

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"evac-navigator/internal/geom"
)

// boundsPadding keeps degenerate footprints and axis-aligned segments from
// producing zero-length rectangles, which rtreego rejects.
const boundsPadding = 1e-6

// Obstacle is a solid prism: a floor footprint extruded from Base to Top.
type Obstacle struct {
	Name      string
	Footprint orb.Polygon
	Base      float64
	Top       float64
}

// overlapsHeight reports whether the vertical span [lo, hi] touches the prism.
func (o Obstacle) overlapsHeight(lo, hi float64) bool {
	return hi >= o.Base && lo <= o.Top
}

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	obstacle Obstacle
	bbox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// Obstacles is the environment's visibility oracle. It is immutable after
// construction and safe for concurrent use.
type Obstacles struct {
	tree *rtreego.Rtree
	all  []Obstacle
}

// NewObstacles indexes the given obstacles.
func NewObstacles(obstacles []Obstacle) *Obstacles {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	kept := make([]Obstacle, 0, len(obstacles))
	for _, o := range obstacles {
		if len(o.Footprint) == 0 || len(o.Footprint[0]) < 3 {
			continue
		}
		bbox, err := boundsRect(o.Footprint.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{obstacle: o, bbox: bbox})
		kept = append(kept, o)
	}
	return &Obstacles{tree: tree, all: kept}
}

// Len returns the number of indexed obstacles.
func (o *Obstacles) Len() int {
	if o == nil {
		return 0
	}
	return len(o.all)
}

// All returns the indexed obstacles.
func (o *Obstacles) All() []Obstacle {
	if o == nil {
		return nil
	}
	return append([]Obstacle(nil), o.all...)
}

// Obstructed implements navgraph.Visibility. A segment is obstructed when its
// floor projection is blocked by an obstacle footprint whose vertical extent
// overlaps the segment's.
func (o *Obstacles) Obstructed(a, b geom.Vec3) bool {
	if o == nil || len(o.all) == 0 {
		return false
	}

	seg := segment{p1: orb.Point{a.X, a.Z}, p2: orb.Point{b.X, b.Z}}
	query, err := boundsRect(orb.Bound{Min: seg.p1, Max: seg.p1}.Extend(seg.p2))
	if err != nil {
		return false
	}

	lo, hi := min(a.Y, b.Y), max(a.Y, b.Y)
	for _, item := range o.tree.SearchIntersect(query) {
		obstacle := item.(*obstacleEntry).obstacle
		if !obstacle.overlapsHeight(lo, hi) {
			continue
		}
		if blocksSegment(seg, obstacle.Footprint) {
			return true
		}
	}
	return false
}

// boundsRect converts a floor bound to an R-tree rectangle.
func boundsRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0] - boundsPadding, b.Min[1] - boundsPadding},
		[]float64{b.Max[0] - b.Min[0] + 2*boundsPadding, b.Max[1] - b.Min[1] + 2*boundsPadding},
	)
}

// Zone is a trigger region: a floor footprint extruded from Base to Top.
type Zone struct {
	Name      string
	Footprint orb.Polygon
	Base      float64
	Top       float64
}

// Contains reports whether p is inside the zone.
func (z Zone) Contains(p geom.Vec3) bool {
	if p.Y < z.Base || p.Y > z.Top {
		return false
	}
	return planar.PolygonContains(z.Footprint, orb.Point{p.X, p.Z})
}

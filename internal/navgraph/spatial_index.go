package navgraph

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"evac-navigator/internal/geom"
)

// pointTolerance is the half-extent of the box stored for each node; rtreego
// rejects zero-length rectangles.
const pointTolerance = 1e-6

// nodeEntry wraps a node position for R-tree storage
type nodeEntry struct {
	id   NodeID
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// spatialIndex answers proximity queries over node positions. It is guarded
// by the owning graph's lock.
type spatialIndex struct {
	tree *rtreego.Rtree
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{tree: rtreego.NewTree(3, 25, 50)} // 3D, min 25, max 50 entries per node
}

func toPoint(p geom.Vec3) rtreego.Point {
	return rtreego.Point{p.X, p.Y, p.Z}
}

func (si *spatialIndex) insert(id NodeID, p geom.Vec3) *nodeEntry {
	entry := &nodeEntry{id: id, bbox: toPoint(p).ToRect(pointTolerance)}
	si.tree.Insert(entry)
	return entry
}

// move re-indexes entry at p. The entry must be removed under its old bounds
// before they change.
func (si *spatialIndex) move(entry *nodeEntry, p geom.Vec3) {
	si.tree.Delete(entry)
	entry.bbox = toPoint(p).ToRect(pointTolerance)
	si.tree.Insert(entry)
}

// within returns the IDs of nodes inside the axis-aligned cube of half-size
// radius around p, sorted ascending. Callers filter by exact distance.
func (si *spatialIndex) within(p geom.Vec3, radius float64) []NodeID {
	side := 2 * (radius + pointTolerance)
	bbox, err := rtreego.NewRect(
		rtreego.Point{p.X - radius - pointTolerance, p.Y - radius - pointTolerance, p.Z - radius - pointTolerance},
		[]float64{side, side, side},
	)
	if err != nil {
		return nil
	}

	results := si.tree.SearchIntersect(bbox)
	ids := make([]NodeID, 0, len(results))
	for _, item := range results {
		ids = append(ids, item.(*nodeEntry).id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// nearestSeed returns some node close to p; the exact argmin is resolved by
// the caller with a within() query around the seed distance.
func (si *spatialIndex) nearestSeed(p geom.Vec3) (NodeID, bool) {
	if si.tree.Size() == 0 {
		return 0, false
	}
	obj := si.tree.NearestNeighbor(toPoint(p))
	if obj == nil {
		return 0, false
	}
	return obj.(*nodeEntry).id, true
}

// seedRadius widens a seed distance so the refinement box is never empty.
func seedRadius(d float64) float64 {
	return d + math.Max(pointTolerance, d*1e-9)
}

package floorplan

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// segment is a line segment on the floor plane
type segment struct {
	p1, p2 orb.Point
}

// segmentsIntersect checks if two segments intersect. Segments that only
// share an endpoint do not count.
func segmentsIntersect(s1, s2 segment) bool {
	p1, p2 := s1.p1, s1.p2
	p3, p4 := s2.p1, s2.p2

	if p1 == p3 || p1 == p4 || p2 == p3 || p2 == p4 {
		return false
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear cases
	switch {
	case d1 == 0 && onSegment(p3, p4, p1):
		return true
	case d2 == 0 && onSegment(p3, p4, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, p3):
		return true
	case d4 == 0 && onSegment(p1, p2, p4):
		return true
	}
	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if q lies within the bounding box of segment pr
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}

// crossesPolygon checks if the segment cuts any ring of the polygon,
// including hole boundaries.
func crossesPolygon(seg segment, poly orb.Polygon) bool {
	for _, ring := range poly {
		n := len(ring)
		for i := 0; i < n; i++ {
			edge := segment{p1: ring[i], p2: ring[(i+1)%n]}
			if edge.p1 == edge.p2 {
				continue
			}
			if segmentsIntersect(seg, edge) {
				return true
			}
		}
	}
	return false
}

// blocksSegment reports whether the footprint stands in the way of the
// segment: it crosses a boundary, or an endpoint or the midpoint lies inside.
func blocksSegment(seg segment, poly orb.Polygon) bool {
	if crossesPolygon(seg, poly) {
		return true
	}
	if planar.PolygonContains(poly, seg.p1) || planar.PolygonContains(poly, seg.p2) {
		return true
	}
	mid := orb.Point{(seg.p1[0] + seg.p2[0]) / 2, (seg.p1[1] + seg.p2[1]) / 2}
	return planar.PolygonContains(poly, mid)
}

package floorplan

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// removeContained drops obstacles that lie entirely inside another obstacle;
// they can never block a segment the outer one does not already block.
func removeContained(obstacles []Obstacle) []Obstacle {
	if len(obstacles) <= 1 {
		return obstacles
	}

	contained := make([]bool, len(obstacles))
	for i := range obstacles {
		if contained[i] {
			continue
		}
		for j := range obstacles {
			if i == j || contained[j] {
				continue
			}
			if isContainedIn(obstacles[i], obstacles[j]) {
				contained[i] = true
				break
			}
			if isContainedIn(obstacles[j], obstacles[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]Obstacle, 0, len(obstacles))
	for i, o := range obstacles {
		if !contained[i] {
			result = append(result, o)
		}
	}
	return result
}

// isContainedIn checks if obstacle a is fully contained within obstacle b
func isContainedIn(a, b Obstacle) bool {
	if len(a.Footprint) == 0 || len(b.Footprint) == 0 {
		return false
	}
	if a.Base < b.Base || a.Top > b.Top {
		return false
	}

	// quick bounding box check first
	outer := b.Footprint.Bound()
	inner := a.Footprint.Bound()
	if !outer.Contains(inner.Min) || !outer.Contains(inner.Max) {
		return false
	}

	for _, vertex := range a.Footprint[0] {
		if !planar.PolygonContains(b.Footprint, vertex) {
			return false
		}
	}
	return true
}

// simplifyFootprints reduces footprint detail with Douglas-Peucker. Rings
// that collapse below a triangle keep their original shape.
func simplifyFootprints(obstacles []Obstacle, epsilon float64) []Obstacle {
	if epsilon <= 0 {
		return obstacles
	}
	s := simplify.DouglasPeucker(epsilon)

	out := make([]Obstacle, len(obstacles))
	for i, o := range obstacles {
		out[i] = o
		simplified, ok := s.Simplify(o.Footprint.Clone()).(orb.Polygon)
		if ok && len(simplified) > 0 && len(simplified[0]) >= 4 {
			out[i].Footprint = simplified
		}
	}
	return out
}

package guidance

import (
	"math"

	"evac-navigator/internal/geom"
)

// Pose places the directional arrow.
type Pose struct {
	Position geom.Vec3 `json:"position"`
	Rotation geom.Quat `json:"rotation"`
}

// pathLine is the rendered route: the reference point followed by every path
// node.
func pathLine(ref geom.Vec3, positions []geom.Vec3) []geom.Vec3 {
	line := make([]geom.Vec3, 0, len(positions)+1)
	line = append(line, ref)
	return append(line, positions...)
}

// arrowTarget picks the waypoint the arrow points at: the first path node,
// or the second once ref is within lookAhead of the first.
func arrowTarget(ref geom.Vec3, positions []geom.Vec3, lookAhead float64) geom.Vec3 {
	target := positions[0]
	if len(positions) > 1 && geom.Distance(ref, positions[0]) < lookAhead {
		target = positions[1]
	}
	return target
}

// steer turns current toward the flattened direction from ref to target by
// the fraction t. A zero direction leaves the rotation unchanged.
func steer(current geom.Quat, ref, target geom.Vec3, t float64) geom.Quat {
	direction := target.Sub(ref).Flat()
	if direction.IsZero() {
		return current
	}
	return geom.Slerp(current, geom.LookRotation(direction), t)
}

// placeMarkers spaces markers along each path segment: floor(length/spacing)
// markers per segment, starting at the segment's first node. Paths with
// fewer than two nodes get none.
func placeMarkers(positions []geom.Vec3, spacing float64) []geom.Vec3 {
	if len(positions) < 2 || !(spacing > 0) {
		return []geom.Vec3{}
	}

	markers := []geom.Vec3{}
	for i := 0; i+1 < len(positions); i++ {
		start, end := positions[i], positions[i+1]
		n := int(math.Floor(geom.Distance(start, end) / spacing))
		for j := 0; j < n; j++ {
			t := float64(j) / float64(n)
			markers = append(markers, geom.Lerp(start, end, t))
		}
	}
	return markers
}

// Package geom holds the small amount of 3-D math the navigation core needs:
// world-space points and unit quaternions for the guidance arrow. The math
// itself is mgl64's; these types add the field names and JSON/YAML tags used
// by snapshots, config and the HTTP API.
//
// Coordinates follow the simulation's world frame: meters, Y up, Z forward.
package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Zero is the origin.
var Zero = Vec3{}

// Up is the world up axis.
var Up = Vec3{Y: 1}

// Right is the world right axis.
var Right = Vec3{X: 1}

// Forward is the axis an identity rotation faces.
var Forward = Vec3{Z: 1}

func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Vec converts v for use with mgl64.
func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func FromVec(m mgl64.Vec3) Vec3 {
	return Vec3{X: m[0], Y: m[1], Z: m[2]}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return FromVec(v.Vec().Add(o.Vec()))
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return FromVec(v.Vec().Sub(o.Vec()))
}

func (v Vec3) Scale(s float64) Vec3 {
	return FromVec(v.Vec().Mul(s))
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.Vec().Dot(o.Vec())
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return FromVec(v.Vec().Cross(o.Vec()))
}

func (v Vec3) Length() float64 {
	return v.Vec().Len()
}

// Normalized returns the unit vector in the direction of v, or Zero when v
// has no length.
func (v Vec3) Normalized() Vec3 {
	if v.IsZero() {
		return Zero
	}
	return FromVec(v.Vec().Normalize())
}

// Flat drops the vertical component, projecting v onto the ground plane.
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// WithY returns v with its vertical component replaced.
func (v Vec3) WithY(y float64) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Z}
}

func (v Vec3) IsZero() bool {
	return v == Zero
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Vec().Sub(b.Vec()).Len()
}

// Lerp interpolates linearly from a to b. t is not clamped.
func Lerp(a, b Vec3, t float64) Vec3 {
	va := a.Vec()
	return FromVec(va.Add(b.Vec().Sub(va).Mul(t)))
}

// PolylineLength sums the distances between consecutive points.
func PolylineLength(points []Vec3) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += Distance(points[i], points[i+1])
	}
	return total
}

package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat is a rotation quaternion. The zero value is not a valid rotation; use
// Identity.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity is the rotation that faces Forward with Up up.
var Identity = FromQuat(mgl64.QuatIdent())

// Quat converts q for use with mgl64.
func (q Quat) Quat() mgl64.Quat {
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}
}

func FromQuat(m mgl64.Quat) Quat {
	return Quat{X: m.V[0], Y: m.V[1], Z: m.V[2], W: m.W}
}

// AxisAngle builds the rotation of angle radians around axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	return FromQuat(mgl64.QuatRotate(angle, axis.Normalized().Vec()))
}

// LookRotation returns the rotation whose forward axis points along forward
// without roll: a yaw around Up followed by a pitch around the rotated right
// axis. A zero or vertical forward yields Identity.
func LookRotation(forward Vec3) Quat {
	f := forward.Normalized()
	if f.Flat().IsZero() {
		return Identity
	}
	yaw := mgl64.QuatRotate(math.Atan2(f.X, f.Z), Up.Vec())
	pitch := mgl64.QuatRotate(-math.Asin(mgl64.Clamp(f.Y, -1, 1)), Right.Vec())
	return FromQuat(yaw.Mul(pitch).Normalize())
}

func (q Quat) Dot(o Quat) float64 {
	return q.Quat().Dot(o.Quat())
}

// Normalized returns q scaled to unit length; a zero q yields Identity.
func (q Quat) Normalized() Quat {
	return FromQuat(q.Quat().Normalize())
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return FromVec(q.Quat().Rotate(v.Vec()))
}

// Forward is the direction the rotation faces.
func (q Quat) Forward() Vec3 {
	return q.Rotate(Forward)
}

// Angle returns the smallest angle in radians between two rotations.
func Angle(a, b Quat) float64 {
	d := math.Abs(a.Quat().Normalize().Dot(b.Quat().Normalize()))
	return 2 * math.Acos(mgl64.Clamp(d, 0, 1))
}

// Slerp interpolates spherically from a to b along the shorter arc. t is
// clamped to [0, 1].
func Slerp(a, b Quat, t float64) Quat {
	qa, qb := a.Quat().Normalize(), b.Quat().Normalize()
	if qa.Dot(qb) < 0 {
		qb = qb.Scale(-1)
	}
	return FromQuat(mgl64.QuatSlerp(qa, qb, mgl64.Clamp(t, 0, 1)))
}

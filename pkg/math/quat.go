package math

import "math"

// Quat is a rotation quaternion with scalar part W.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the no-op rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns a rotation of angle radians around a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin, cos := math.Sincos(float64(angle) / 2)
	v := axis.Scale(float32(sin))
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: float32(cos)}
}

// Normalize returns q scaled to unit length. Degenerate quaternions
// become the identity.
func (q Quat) Normalize() Quat {
	n := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if n < 1e-4 {
		return QuatIdentity()
	}
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Mat4 returns the rotation matrix for q.
func (q Quat) Mat4() Mat4 {
	q = q.Normalize()
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z

	m := Identity()
	m[0] = 1 - q.Y*y2 - q.Z*z2
	m[1] = q.X*y2 + q.W*z2
	m[2] = q.X*z2 - q.W*y2
	m[4] = q.X*y2 - q.W*z2
	m[5] = 1 - q.X*x2 - q.Z*z2
	m[6] = q.Y*z2 + q.W*x2
	m[8] = q.X*z2 + q.W*y2
	m[9] = q.Y*z2 - q.W*x2
	m[10] = 1 - q.X*x2 - q.Y*y2
	return m
}

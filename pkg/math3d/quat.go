package math3d

import "math"

// Quat is a rotation quaternion (X, Y, Z imaginary, W real), the form
// glTF stores node rotations in.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// Q creates a new Quat.
func Q(x, y, z, w float64) Quat {
	return Quat{x, y, z, w}
}

// QuatAxisAngle creates a quaternion rotating angle radians around axis.
func QuatAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{
		axis.X * s,
		axis.Y * s,
		axis.Z * s,
		math.Cos(angle / 2),
	}
}

// Len returns the quaternion magnitude.
func (q Quat) Len() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns the unit quaternion. A zero quaternion (which glTF
// files can never legally encode, but a zero-valued struct produces)
// normalizes to identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Mat4 converts the quaternion to a rotation matrix.
// The quaternion is normalized first.
func (q Quat) Mat4() Mat4 {
	q = q.Normalize()
	x, y, z, w := q.X, q.Y, q.Z, q.W

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0,
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0,
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Compose builds a transform matrix from translation, rotation and scale,
// applied in glTF order: T * R * S.
func Compose(translation Vec3, rotation Quat, scale Vec3) Mat4 {
	return Translate(translation).Mul(rotation.Mat4()).Mul(Scale(scale))
}

package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestQuatIdentityIsNoop(t *testing.T) {
	m := QuatIdentity().Mat4()
	if !m.IsIdentity() {
		t.Errorf("identity quaternion should produce identity matrix, got %v", m)
	}
}

func TestQuatAxisAngleMatchesRotationMatrix(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		want  func(float64) Mat4
	}{
		{"x-axis", V3(1, 0, 0), math.Pi / 3, RotateX},
		{"y-axis", V3(0, 1, 0), math.Pi / 4, RotateY},
		{"z-axis", V3(0, 0, 1), math.Pi / 2, RotateZ},
	}

	p := V3(1, 2, 3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatAxisAngle(tt.axis, tt.angle).Mat4().MulVec3(p)
			want := tt.want(tt.angle).MulVec3(p)
			if !vecNear(got, want, eps) {
				t.Errorf("rotated point = %v, want %v", got, want)
			}
		})
	}
}

func TestQuatZeroNormalizesToIdentity(t *testing.T) {
	var q Quat
	if q.Normalize() != QuatIdentity() {
		t.Error("zero quaternion should normalize to identity")
	}
	if !q.Mat4().IsIdentity() {
		t.Error("zero quaternion should convert to identity matrix")
	}
}

func TestComposeOrder(t *testing.T) {
	// T*R*S: a point at +X scaled by 2, rotated 90 degrees about Z,
	// then moved by (10, 0, 0) must land at (10, 2, 0).
	m := Compose(
		V3(10, 0, 0),
		QuatAxisAngle(V3(0, 0, 1), math.Pi/2),
		V3(2, 2, 2),
	)
	got := m.MulVec3(V3(1, 0, 0))
	if !vecNear(got, V3(10, 2, 0), eps) {
		t.Errorf("composed transform moved point to %v, want (10,2,0)", got)
	}
}

func TestComposeIdentity(t *testing.T) {
	m := Compose(Zero3(), QuatIdentity(), V3(1, 1, 1))
	if !m.IsIdentity() {
		t.Errorf("identity TRS should compose to identity, got %v", m)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := Compose(V3(3, -2, 7), QuatAxisAngle(V3(1, 1, 0), 0.7), V3(2, 3, 0.5))
	p := V3(1.5, -4, 2)

	back := m.Inverse().MulVec3(m.MulVec3(p))
	if !vecNear(back, p, 1e-9) {
		t.Errorf("inverse round trip gave %v, want %v", back, p)
	}
}

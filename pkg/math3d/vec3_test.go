package math3d

import "testing"

func TestVec3MinMax(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		min, max Vec3
	}{
		{
			name: "disjoint",
			a:    V3(1, 2, 3),
			b:    V3(4, 5, 6),
			min:  V3(1, 2, 3),
			max:  V3(4, 5, 6),
		},
		{
			name: "mixed components",
			a:    V3(1, 5, -3),
			b:    V3(4, 2, -6),
			min:  V3(1, 2, -6),
			max:  V3(4, 5, -3),
		},
		{
			name: "equal",
			a:    V3(2, 2, 2),
			b:    V3(2, 2, 2),
			min:  V3(2, 2, 2),
			max:  V3(2, 2, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Min(tt.b); got != tt.min {
				t.Errorf("Min = %v, want %v", got, tt.min)
			}
			if got := tt.a.Max(tt.b); got != tt.max {
				t.Errorf("Max = %v, want %v", got, tt.max)
			}
		})
	}
}

func TestVec3LerpEndpoints(t *testing.T) {
	a := V3(0, 2, -4)
	b := V3(8, -2, 4)

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
	if got := a.Lerp(b, 0.5); got != V3(4, 0, 0) {
		t.Errorf("Lerp(0.5) = %v, want (4 0 0)", got)
	}
}

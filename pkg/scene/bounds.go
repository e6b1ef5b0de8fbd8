package scene

import "github.com/carmandale/previewBuilder/pkg/math3d"

// Epsilon is the tolerance used when comparing bound and angle values.
const Epsilon = 1e-5

// Box is a world-space axis-aligned bounding box. A point or planar
// box (zero extent on one or more axes) is valid.
type Box struct {
	Min, Max math3d.Vec3
}

// BoxOf returns the box spanning min..max.
func BoxOf(min, max math3d.Vec3) Box {
	return Box{Min: min, Max: max}
}

// Extend grows the box to include p.
func (b Box) Extend(p math3d.Vec3) Box {
	return Box{
		Min: b.Min.Min(p),
		Max: b.Max.Max(p),
	}
}

// Union returns the component-wise union of two boxes.
func (b Box) Union(o Box) Box {
	return Box{
		Min: b.Min.Min(o.Min),
		Max: b.Max.Max(o.Max),
	}
}

// Center returns the box midpoint.
func (b Box) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b Box) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the axis-aligned box enclosing this box under m,
// built from the eight transformed corners.
func (b Box) Transform(m math3d.Mat4) Box {
	corners := [8]math3d.Vec3{
		math3d.V3(b.Min.X, b.Min.Y, b.Min.Z),
		math3d.V3(b.Max.X, b.Min.Y, b.Min.Z),
		math3d.V3(b.Min.X, b.Max.Y, b.Min.Z),
		math3d.V3(b.Max.X, b.Max.Y, b.Min.Z),
		math3d.V3(b.Min.X, b.Min.Y, b.Max.Z),
		math3d.V3(b.Max.X, b.Min.Y, b.Max.Z),
		math3d.V3(b.Min.X, b.Max.Y, b.Max.Z),
		math3d.V3(b.Max.X, b.Max.Y, b.Max.Z),
	}

	out := Box{}
	for i, c := range corners {
		p := m.MulVec3(c)
		if i == 0 {
			out = Box{Min: p, Max: p}
			continue
		}
		out = out.Extend(p)
	}
	return out
}

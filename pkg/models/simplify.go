package models

import (
	"github.com/fogleman/simplify"

	"github.com/carmandale/previewBuilder/pkg/math3d"
)

// Decimate reduces the mesh to roughly factor of its original face count
// using quadric error simplification. Vertex UVs and materials do not
// survive decimation, so this is only suitable for the preview quality
// tier where meshes are shaded flat.
//
// Meshes at or below minFaces faces are returned unchanged.
func Decimate(m *Mesh, factor float64, minFaces int) *Mesh {
	if factor <= 0 || factor >= 1 || len(m.Faces) <= minFaces {
		return m
	}

	triangles := make([]*simplify.Triangle, 0, len(m.Faces))
	for _, f := range m.Faces {
		v1 := toSimplifyVector(m.Vertices[f.V[0]].Position)
		v2 := toSimplifyVector(m.Vertices[f.V[1]].Position)
		v3 := toSimplifyVector(m.Vertices[f.V[2]].Position)
		triangles = append(triangles, simplify.NewTriangle(v1, v2, v3))
	}

	reduced := simplify.NewMesh(triangles).Simplify(factor)

	out := NewMesh(m.Name)
	vertexIdx := make(map[simplify.Vector]int, len(reduced.Triangles))
	intern := func(v simplify.Vector) int {
		if i, ok := vertexIdx[v]; ok {
			return i
		}
		i := len(out.Vertices)
		out.Vertices = append(out.Vertices, MeshVertex{
			Position: math3d.V3(v.X, v.Y, v.Z),
		})
		vertexIdx[v] = i
		return i
	}

	for _, t := range reduced.Triangles {
		out.Faces = append(out.Faces, Face{
			V:        [3]int{intern(t.V1), intern(t.V2), intern(t.V3)},
			Material: -1,
		})
	}

	out.CalculateSmoothNormals()
	out.CalculateBounds()

	return out
}

func toSimplifyVector(v math3d.Vec3) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

package scene

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/carmandale/previewBuilder/pkg/math3d"
	"github.com/carmandale/previewBuilder/pkg/models"
)

// Asset is an imported subject: the document's node arena plus the
// meshes those nodes reference. It carries no corrective transform;
// that is Normalize's job.
type Asset struct {
	Name   string
	Path   string
	Nodes  []Node
	Roots  []int
	Meshes []*models.Mesh
}

// LoadAsset parses a glTF or GLB file into an Asset. Parse failures
// come back as *AssetLoadError.
func LoadAsset(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}

	meshes := make([]*models.Mesh, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		m, err := models.FromDocumentMesh(doc, gm, filepath.Dir(path))
		if err != nil {
			return nil, &AssetLoadError{Path: path, Err: fmt.Errorf("mesh %q: %w", gm.Name, err)}
		}
		meshes[i] = m
	}

	nodes, roots := buildArena(doc)

	return &Asset{
		Name:   filepath.Base(path),
		Path:   path,
		Nodes:  nodes,
		Roots:  roots,
		Meshes: meshes,
	}, nil
}

// MeshNodes returns the indices of every mesh-bearing node reachable
// from the asset roots, at any depth.
func (a *Asset) MeshNodes() []int {
	seen := reachable(a.Nodes, a.Roots)
	var out []int
	for i := range a.Nodes {
		if seen[i] && a.Nodes[i].Mesh >= 0 {
			out = append(out, i)
		}
	}
	return out
}

// WorldTransforms computes each node's world transform with pre as the
// transform above every root.
func (a *Asset) WorldTransforms(pre math3d.Mat4) []math3d.Mat4 {
	return worldTransforms(a.Nodes, a.Roots, pre)
}

// buildArena flattens the document's node hierarchy into an arena with
// parent back-references, picking up the default scene's root list.
func buildArena(doc *gltf.Document) ([]Node, []int) {
	nodes := make([]Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		n := Node{
			Name:   gn.Name,
			Mesh:   -1,
			Camera: -1,
			Parent: -1,
		}
		if gn.Mesh != nil {
			n.Mesh = *gn.Mesh
		}
		if gn.Camera != nil {
			n.Camera = *gn.Camera
		}
		n.Children = append(n.Children, gn.Children...)

		if m := toMat4(gn.Matrix); !m.IsZero() && !m.IsIdentity() {
			n.Matrix = m
			n.HasMatrix = true
		} else {
			n.Translation = math3d.V3(
				float64(gn.Translation[0]),
				float64(gn.Translation[1]),
				float64(gn.Translation[2]),
			)
			n.Rotation = math3d.Q(
				float64(gn.Rotation[0]),
				float64(gn.Rotation[1]),
				float64(gn.Rotation[2]),
				float64(gn.Rotation[3]),
			).Normalize()
			// The decoder defaults an absent scale to (1,1,1), so a zero
			// scale here was authored and stays degenerate.
			n.Scale = math3d.V3(
				float64(gn.Scale[0]),
				float64(gn.Scale[1]),
				float64(gn.Scale[2]),
			)
		}
		nodes[i] = n
	}

	for i := range nodes {
		for _, c := range nodes[i].Children {
			nodes[c].Parent = i
		}
	}

	var roots []int
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = *doc.Scene
		}
		roots = append(roots, doc.Scenes[si].Nodes...)
	} else {
		for i := range nodes {
			if nodes[i].Parent == -1 {
				roots = append(roots, i)
			}
		}
	}

	return nodes, roots
}

func toMat4(m [16]float64) math3d.Mat4 {
	var out math3d.Mat4
	for i := range out {
		out[i] = float64(m[i])
	}
	return out
}

package scene

import (
	"math"

	"github.com/carmandale/previewBuilder/pkg/math3d"
)

// DefaultZOffset sinks the seated subject slightly below the stage
// floor so reconstruction noise at the base does not hover.
const DefaultZOffset = -0.04

// Root is a normalized subject: the imported asset plus the single
// corrective transform that seats it at the stage origin.
type Root struct {
	Asset     *Asset
	Bounds    Box         // union world box before the corrective offset
	Offset    math3d.Vec3 // (-center_x, -center_y, -min_z)
	Transform math3d.Mat4
}

// Normalize computes the union world-space bounding box over every
// mesh-bearing node and derives the corrective root transform that
// centers the subject on X/Y and rests its lowest point on the stage
// floor. Assets arrive Y-up and the stage is Z-up, so the box is
// measured under a +90 degree X rotation which becomes part of the
// corrective transform. The zOffset shift is applied before the box is
// measured, so re-seating absorbs it and the seated minimum stays at
// zero.
//
// An asset with no mesh-bearing nodes is unrenderable and returns
// *AssetLoadError. Degenerate boxes (point or planar subjects) seat
// like any other; the offset math divides by nothing.
func Normalize(asset *Asset, zOffset float64) (*Root, error) {
	meshNodes := asset.MeshNodes()
	if len(meshNodes) == 0 {
		return nil, &AssetLoadError{Path: asset.Path, Err: errNoMeshes}
	}

	pre := math3d.Translate(math3d.V3(0, 0, zOffset)).Mul(math3d.RotateX(math.Pi / 2))
	world := asset.WorldTransforms(pre)

	var union Box
	for i, ni := range meshNodes {
		mesh := asset.Meshes[asset.Nodes[ni].Mesh]
		min, max := mesh.GetBounds()
		box := BoxOf(min, max).Transform(world[ni])
		if i == 0 {
			union = box
			continue
		}
		union = union.Union(box)
	}

	center := union.Center()
	offset := math3d.V3(-center.X, -center.Y, -union.Min.Z)

	return &Root{
		Asset:     asset,
		Bounds:    union,
		Offset:    offset,
		Transform: math3d.Translate(offset).Mul(pre),
	}, nil
}

// NormalizeAsset loads, normalizes and attaches an asset in one step.
func NormalizeAsset(path string, base *BaseScene, zOffset float64) (*Stage, error) {
	asset, err := LoadAsset(path)
	if err != nil {
		return nil, err
	}
	root, err := Normalize(asset, zOffset)
	if err != nil {
		return nil, err
	}
	return base.Attach(root)
}

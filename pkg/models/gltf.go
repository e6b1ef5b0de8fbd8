package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/carmandale/previewBuilder/pkg/math3d"
)

// FromDocumentMesh builds a Mesh from a single glTF mesh entry, reading
// geometry through the document's accessors. docDir is the directory of
// the source file, used to resolve external texture URIs.
//
// Each glTF mesh stays separate so the caller can place it under its own
// node transform instead of flattening the whole document.
func FromDocumentMesh(doc *gltf.Document, gm *gltf.Mesh, docDir string) (*Mesh, error) {
	mesh := NewMesh(gm.Name)
	materialIdx := make(map[int]int) // glTF material index -> mesh.Materials index

	for _, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Lines and points carry no surface to render or bound
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		matIdx := -1
		if prim.Material != nil {
			gi := *prim.Material
			mi, seen := materialIdx[gi]
			if !seen {
				mat, err := readMaterial(doc, doc.Materials[gi], docDir)
				if err != nil {
					return nil, fmt.Errorf("material %q: %w", doc.Materials[gi].Name, err)
				}
				mi = len(mesh.Materials)
				mesh.Materials = append(mesh.Materials, mat)
				materialIdx[gi] = mi
			}
			matIdx = mi
		}

		baseVertex := len(mesh.Vertices)
		for i := range positions {
			v := MeshVertex{
				Position: math3d.V3(float64(positions[i][0]), float64(positions[i][1]), float64(positions[i][2])),
			}
			if i < len(normals) {
				v.Normal = math3d.V3(float64(normals[i][0]), float64(normals[i][1]), float64(normals[i][2]))
			}
			if i < len(uvs) {
				// glTF uses a top-left UV origin (V=0 at top), flip V for bottom-left
				v.UV = math3d.V2(float64(uvs[i][0]), 1.0-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		// glTF front faces wind CCW, but the rasterizer expects CW
		// (due to the Y flip in screen space), so swap the winding here
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, Face{
				V: [3]int{
					baseVertex + int(indices[i]),
					baseVertex + int(indices[i+2]),
					baseVertex + int(indices[i+1]),
				},
				Material: matIdx,
			})
		}
	}

	if !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// readMaterial converts a glTF material, decoding its base color texture
// when one is referenced.
func readMaterial(doc *gltf.Document, gm *gltf.Material, docDir string) (Material, error) {
	mat := Material{
		Name:      gm.Name,
		BaseColor: [4]float64{1, 1, 1, 1},
		Roughness: 1,
	}

	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		return mat, nil
	}

	if pbr.BaseColorFactor != nil {
		for i, c := range pbr.BaseColorFactor {
			mat.BaseColor[i] = float64(c)
		}
	}
	if pbr.MetallicFactor != nil {
		mat.Metallic = float64(*pbr.MetallicFactor)
	}
	if pbr.RoughnessFactor != nil {
		mat.Roughness = float64(*pbr.RoughnessFactor)
	}

	if pbr.BaseColorTexture != nil {
		img, err := textureImage(doc, int(pbr.BaseColorTexture.Index), docDir)
		if err != nil {
			return mat, err
		}
		if img != nil {
			mat.BaseMap = img
			mat.HasTexture = true
		}
	}

	return mat, nil
}

// textureImage decodes the image backing a glTF texture. Returns nil
// without error when the texture has no resolvable source.
func textureImage(doc *gltf.Document, texIdx int, docDir string) (image.Image, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, nil
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil {
		return nil, nil
	}
	src := *tex.Source
	if src < 0 || src >= len(doc.Images) {
		return nil, nil
	}
	gimg := doc.Images[src]

	var data []byte
	switch {
	case gimg.BufferView != nil:
		bv := doc.BufferViews[*gimg.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, nil
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case gimg.URI != "":
		b, err := os.ReadFile(filepath.Join(docDir, gimg.URI))
		if err != nil {
			return nil, fmt.Errorf("read texture %s: %w", gimg.URI, err)
		}
		data = b
	default:
		return nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	return img, nil
}

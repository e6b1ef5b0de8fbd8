package scene

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/carmandale/previewBuilder/pkg/math3d"
	"github.com/carmandale/previewBuilder/pkg/models"
)

const khrLightsPunctual = "KHR_lights_punctual"

// StageCamera is the base scene's authored camera, resolved to a world
// transform.
type StageCamera struct {
	Name      string
	Transform math3d.Mat4
	YFov      float64 // vertical field of view, radians
	ZNear     float64
	ZFar      float64
	Aspect    float64 // 0 when the document leaves it to the viewport
}

// Light is a stage light resolved to world space. Type is one of
// "directional", "point" or "spot".
type Light struct {
	Name      string
	Type      string
	Color     [3]float64
	Intensity float64
	Transform math3d.Mat4
}

// Direction returns the light's forward axis (local -Z in world space),
// meaningful for directional and spot lights.
func (l Light) Direction() math3d.Vec3 {
	return l.Transform.MulVec3Dir(math3d.V3(0, 0, -1)).Normalize()
}

// BaseScene is the externally authored stage: camera, lights and any
// backdrop geometry. It is read-only; the only permitted operation is
// attaching a normalized subject, which builds a new Stage and leaves
// the base untouched.
type BaseScene struct {
	Path   string
	Nodes  []Node
	Roots  []int
	Meshes []*models.Mesh
	Camera StageCamera
	Lights []Light
}

// Stage is a base scene with a normalized subject attached under it.
type Stage struct {
	Base *BaseScene
	Root *Root
}

// LoadBaseScene parses the stage file and resolves its camera and
// lights. A stage without at least one perspective camera returns
// *BaseSceneError.
func LoadBaseScene(path string) (*BaseScene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &BaseSceneError{Path: path, Err: err}
	}

	meshes := make([]*models.Mesh, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		m, err := models.FromDocumentMesh(doc, gm, filepath.Dir(path))
		if err != nil {
			return nil, &BaseSceneError{Path: path, Err: fmt.Errorf("mesh %q: %w", gm.Name, err)}
		}
		meshes[i] = m
	}

	nodes, roots := buildArena(doc)
	world := worldTransforms(nodes, roots, math3d.Identity())
	seen := reachable(nodes, roots)

	b := &BaseScene{
		Path:   path,
		Nodes:  nodes,
		Roots:  roots,
		Meshes: meshes,
	}

	camFound := false
	for i := range nodes {
		if !seen[i] || nodes[i].Camera < 0 || camFound {
			continue
		}
		gc := doc.Cameras[nodes[i].Camera]
		if gc.Perspective == nil {
			continue
		}
		cam := StageCamera{
			Name:      gc.Name,
			Transform: world[i],
			YFov:      float64(gc.Perspective.Yfov),
			ZNear:     float64(gc.Perspective.Znear),
		}
		if gc.Perspective.Zfar != nil {
			cam.ZFar = float64(*gc.Perspective.Zfar)
		}
		if gc.Perspective.AspectRatio != nil {
			cam.Aspect = float64(*gc.Perspective.AspectRatio)
		}
		b.Camera = cam
		camFound = true
	}
	if !camFound {
		return nil, &BaseSceneError{Path: path, Err: fmt.Errorf("no perspective camera")}
	}

	b.Lights = resolveLights(doc, nodes, world, seen)

	return b, nil
}

// Attach places a normalized subject under the stage. The base scene
// is not modified; camera and light transforms are exactly those read
// at load time.
func (b *BaseScene) Attach(root *Root) (*Stage, error) {
	if root == nil {
		return nil, &BaseSceneError{Path: b.Path, Err: fmt.Errorf("nothing to attach")}
	}
	return &Stage{Base: b, Root: root}, nil
}

// KHR_lights_punctual document payloads. The extension is not
// registered with the decoder, so it arrives as raw JSON.
type khrLightDef struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Color     *[3]float64 `json:"color"`
	Intensity *float64    `json:"intensity"`
}

type khrLightList struct {
	Lights []khrLightDef `json:"lights"`
}

type khrLightRef struct {
	Light int `json:"light"`
}

// resolveLights reads KHR_lights_punctual lights, falling back to
// name-tagged nodes ("light" in the node name) as default directional
// lights for stages authored without the extension.
func resolveLights(doc *gltf.Document, nodes []Node, world []math3d.Mat4, seen []bool) []Light {
	var defs khrLightList
	if raw, ok := doc.Extensions[khrLightsPunctual]; ok {
		if msg, ok := raw.(json.RawMessage); ok {
			_ = json.Unmarshal(msg, &defs)
		}
	}

	var lights []Light
	for i, gn := range doc.Nodes {
		if i >= len(seen) || !seen[i] {
			continue
		}

		if raw, ok := gn.Extensions[khrLightsPunctual]; ok {
			var ref khrLightRef
			if msg, ok := raw.(json.RawMessage); ok && json.Unmarshal(msg, &ref) == nil &&
				ref.Light >= 0 && ref.Light < len(defs.Lights) {
				def := defs.Lights[ref.Light]
				l := Light{
					Name:      def.Name,
					Type:      def.Type,
					Color:     [3]float64{1, 1, 1},
					Intensity: 1,
					Transform: world[i],
				}
				if def.Color != nil {
					l.Color = *def.Color
				}
				if def.Intensity != nil {
					l.Intensity = *def.Intensity
				}
				if l.Name == "" {
					l.Name = gn.Name
				}
				lights = append(lights, l)
				continue
			}
		}

		if nodes[i].Camera < 0 && nodes[i].Mesh < 0 &&
			strings.Contains(strings.ToLower(gn.Name), "light") {
			lights = append(lights, Light{
				Name:      gn.Name,
				Type:      "directional",
				Color:     [3]float64{1, 1, 1},
				Intensity: 1,
				Transform: world[i],
			})
		}
	}

	return lights
}

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/carmandale/previewBuilder/pkg/math3d"
	"github.com/carmandale/previewBuilder/pkg/models"
	"github.com/carmandale/previewBuilder/pkg/scene"
)

// FramePattern is the frame filename format: zero-padded frame index,
// starting at 0.
const FramePattern = "preview.%04d.jpg"

// SequenceOptions configures frame sequence rendering.
type SequenceOptions struct {
	Width      int // Defaults to 252
	Height     int // Defaults to 384
	Quality    int // JPEG quality, defaults to 92
	Workers    int // Defaults to GOMAXPROCS
	Background Color
}

func (o SequenceOptions) withDefaults() SequenceOptions {
	if o.Width <= 0 {
		o.Width = 252
	}
	if o.Height <= 0 {
		o.Height = 384
	}
	if o.Quality <= 0 {
		o.Quality = 92
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Background == (Color{}) {
		o.Background = RGB(255, 255, 255)
	}
	return o
}

// meshDraw is one mesh ready for drawing: its surfaces resolved and
// its transform either fixed (stage geometry) or per-frame (subject).
type meshDraw struct {
	mesh     *models.Mesh
	surfaces []Surface
	local    math3d.Mat4 // node world transform relative to the subject root
	animated bool
}

// FrameName returns the filename for a frame index.
func FrameName(frame int) string {
	return fmt.Sprintf(FramePattern, frame)
}

// RenderSequence renders every frame of the animated scene into outDir
// and returns the written paths in frame order. Frames are independent
// and rendered across a worker pool; the animation data is immutable
// so workers share it freely. progress may be nil; it is called under
// a lock with the number of completed frames.
//
// A failed render removes any frames already written so a partial
// sequence never survives.
func RenderSequence(anim *scene.AnimatedScene, outDir string, opts SequenceOptions, progress func(done, total int)) ([]string, error) {
	opts = opts.withDefaults()
	base := anim.Stage.Base
	subject := anim.Stage.Root.Asset

	draws := stageDraws(base)
	draws = append(draws, subjectDraws(subject)...)

	lights := stageLights(base)

	paths := make([]string, anim.FrameCount)
	for f := range paths {
		paths[f] = filepath.Join(outDir, FrameName(f))
	}

	frames := make(chan int)
	errs := make(chan error, opts.Workers)
	var mu sync.Mutex
	done := 0

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each worker owns its camera and buffers; the cached
			// camera matrices are not safe to share.
			cam := stageCamera(base, opts.Width, opts.Height)
			fb := NewFramebuffer(opts.Width, opts.Height)
			r := NewRasterizer(cam, fb)

			for f := range frames {
				if err := renderFrame(r, fb, anim, subject, draws, lights, opts, f, paths[f]); err != nil {
					errs <- fmt.Errorf("frame %d: %w", f, err)
					return
				}
				if progress != nil {
					mu.Lock()
					done++
					progress(done, anim.FrameCount)
					mu.Unlock()
				}
			}
		}()
	}

	for f := 0; f < anim.FrameCount; f++ {
		select {
		case frames <- f:
		case err := <-errs:
			close(frames)
			wg.Wait()
			removeFrames(paths)
			return nil, err
		}
	}
	close(frames)
	wg.Wait()

	select {
	case err := <-errs:
		removeFrames(paths)
		return nil, err
	default:
	}

	return paths, nil
}

func renderFrame(r *Rasterizer, fb *Framebuffer, anim *scene.AnimatedScene, subject *scene.Asset, draws []meshDraw, lights []DirectionalLight, opts SequenceOptions, frame int, path string) error {
	fb.Clear(opts.Background)
	r.ClearDepth()
	r.ResetCullingStats()

	frameRoot := anim.FrameTransform(frame)
	for _, d := range draws {
		transform := d.local
		if d.animated {
			transform = frameRoot.Mul(d.local)
		}
		r.DrawMeshMaterials(d.mesh, transform, d.surfaces, Surface{Color: RGB(200, 200, 200)}, lights)
	}

	return fb.SaveJPEG(path, opts.Quality)
}

// stageCamera builds a render camera from the base scene's authored
// camera. The authored aspect ratio wins when present; otherwise the
// output dimensions decide it.
func stageCamera(base *scene.BaseScene, width, height int) *Camera {
	cam := NewCamera()
	cam.SetTransform(base.Camera.Transform)
	cam.SetFOV(base.Camera.YFov)

	far := base.Camera.ZFar
	if far <= 0 {
		far = 1000
	}
	cam.SetClipPlanes(base.Camera.ZNear, far)

	aspect := base.Camera.Aspect
	if aspect <= 0 {
		aspect = float64(width) / float64(height)
	}
	cam.SetAspectRatio(aspect)

	return cam
}

// stageLights converts the base scene lights for shading. A stage
// authored without lights gets a neutral key light above the camera.
func stageLights(base *scene.BaseScene) []DirectionalLight {
	if len(base.Lights) == 0 {
		dir := base.Camera.Transform.Translation().Add(math3d.V3(0, 0, 2)).Normalize()
		return []DirectionalLight{{
			Dir:       dir,
			Color:     [3]float64{1, 1, 1},
			Intensity: 1,
		}}
	}

	lights := make([]DirectionalLight, 0, len(base.Lights))
	for _, l := range base.Lights {
		lights = append(lights, DirectionalLight{
			Dir:       l.Direction().Negate(),
			Color:     l.Color,
			Intensity: l.Intensity,
		})
	}
	return lights
}

// stageDraws prepares the base scene's own geometry (backdrop, floor
// card) at its authored world transforms.
func stageDraws(base *scene.BaseScene) []meshDraw {
	if len(base.Meshes) == 0 {
		return nil
	}
	world := worldTransformsOf(base.Nodes, base.Roots)

	var draws []meshDraw
	for i := range base.Nodes {
		mi := base.Nodes[i].Mesh
		if mi < 0 || mi >= len(base.Meshes) {
			continue
		}
		draws = append(draws, meshDraw{
			mesh:     base.Meshes[mi],
			surfaces: meshSurfaces(base.Meshes[mi]),
			local:    world[i],
		})
	}
	return draws
}

// subjectDraws prepares the subject's meshes with transforms relative
// to the subject root, to be stacked on the per-frame root transform.
func subjectDraws(subject *scene.Asset) []meshDraw {
	world := subject.WorldTransforms(math3d.Identity())

	var draws []meshDraw
	for _, ni := range subject.MeshNodes() {
		mesh := subject.Meshes[subject.Nodes[ni].Mesh]
		draws = append(draws, meshDraw{
			mesh:     mesh,
			surfaces: meshSurfaces(mesh),
			local:    world[ni],
			animated: true,
		})
	}
	return draws
}

func worldTransformsOf(nodes []scene.Node, roots []int) []math3d.Mat4 {
	asset := scene.Asset{Nodes: nodes, Roots: roots}
	return asset.WorldTransforms(math3d.Identity())
}

// meshSurfaces resolves a mesh's materials into shading surfaces.
func meshSurfaces(mesh *models.Mesh) []Surface {
	surfaces := make([]Surface, mesh.MaterialCount())
	for i := range surfaces {
		mat := mesh.GetMaterial(i)
		surfaces[i] = Surface{
			Color: RGB(
				uint8(mat.BaseColor[0]*255),
				uint8(mat.BaseColor[1]*255),
				uint8(mat.BaseColor[2]*255),
			),
		}
		if mat.HasTexture && mat.BaseMap != nil {
			surfaces[i].Texture = TextureFromImage(mat.BaseMap)
		}
	}
	return surfaces
}

func removeFrames(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

package render

import (
	"math"

	"github.com/carmandale/previewBuilder/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Surface describes how a triangle batch is shaded: a base color,
// optionally modulated by a texture.
type Surface struct {
	Color   Color
	Texture *Texture
}

// DirectionalLight lights the scene from a fixed direction. Dir points
// toward the light and must be normalized.
type DirectionalLight struct {
	Dir       math3d.Vec3
	Color     [3]float64
	Intensity float64
}

// Rasterizer handles software triangle rasterization with a depth
// buffer and frustum culling.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64 // Depth buffer (1D array, row-major)
	frustum      Frustum   // Cached frustum planes
	frustumDirty bool
	CullingStats CullingStats
}

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
	}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the frustum as needing recalculation.
// Call this when the camera moves or its projection changes.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// UpdateFrustum recalculates the frustum planes from the camera.
func (r *Rasterizer) UpdateFrustum() {
	if r.frustumDirty {
		r.frustum = ExtractFrustum(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests if a world-space AABB is visible in the frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	r.UpdateFrustum()
	return r.frustum.IntersectAABB(worldBounds)
}

// IsVisibleTransformed tests if a local-space AABB is visible after transformation.
func (r *Rasterizer) IsVisibleTransformed(localBounds AABB, transform math3d.Mat4) bool {
	return r.IsVisible(localBounds.Transform(transform))
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // Depth (for Z-buffer)
	W    float64 // W coordinate (for perspective-correct interpolation)
	Lit  Color   // Surface color with per-vertex lighting applied
	UV   math3d.Vec2
}

// shadeVertex computes the lit surface color at a vertex: ambient plus
// the diffuse contribution of every light, channel-wise.
func shadeVertex(normal math3d.Vec3, surfColor Color, lights []DirectionalLight) Color {
	const ambient = 0.3
	rgb := [3]float64{ambient, ambient, ambient}
	for _, l := range lights {
		d := normal.Dot(l.Dir)
		if d <= 0 {
			continue
		}
		d *= 0.7 * l.Intensity
		rgb[0] += d * l.Color[0]
		rgb[1] += d * l.Color[1]
		rgb[2] += d * l.Color[2]
	}
	return TintColor(surfColor, rgb)
}

// project transforms a triangle to screen space and applies per-vertex
// lighting. Returns false when the triangle can be skipped outright
// (fully behind the camera or back-facing).
func (r *Rasterizer) project(tri Triangle, surf Surface, lights []DirectionalLight) ([3]screenVertex, bool) {
	var sv [3]screenVertex
	allBehind := true

	viewProj := r.camera.ViewProjectionMatrix()

	for i := 0; i < 3; i++ {
		clipPos := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))

		if clipPos.W > 0 {
			allBehind = false
		}

		// Perspective divide
		if clipPos.W != 0 {
			sv[i].X = clipPos.X / clipPos.W
			sv[i].Y = clipPos.Y / clipPos.W
			sv[i].Z = clipPos.Z / clipPos.W
		}
		sv[i].W = clipPos.W

		// NDC to screen coordinates
		sv[i].X = (sv[i].X + 1) * 0.5 * float64(r.Width())
		sv[i].Y = (1 - sv[i].Y) * 0.5 * float64(r.Height()) // Y flipped

		sv[i].Lit = shadeVertex(tri.V[i].Normal, surf.Color, lights)
		sv[i].UV = tri.V[i].UV
	}

	if allBehind {
		return sv, false
	}

	// Backface culling (using screen-space winding)
	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	if edge1.X*edge2.Y-edge1.Y*edge2.X < 0 {
		return sv, false
	}

	return sv, true
}

// DrawTriangleShaded rasterizes one lit triangle, sampling the surface
// texture with perspective-correct UVs when one is present.
func (r *Rasterizer) DrawTriangleShaded(tri Triangle, surf Surface, lights []DirectionalLight) {
	sv, ok := r.project(tri, surf, lights)
	if !ok {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	// Perspective-correct interpolation factors (1/w per vertex)
	var invW [3]float64
	for i := 0; i < 3; i++ {
		if sv[i].W != 0 {
			invW[i] = 1.0 / sv[i].W
		}
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)

			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			// Gouraud-interpolated lit color
			lit := interpolateColor3(sv[0].Lit, sv[1].Lit, sv[2].Lit, bc)

			out := lit
			if surf.Texture != nil {
				w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
				oneOverW := w0 + w1 + w2
				if oneOverW == 0 {
					continue
				}
				u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
				v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW
				out = ModulateColor(surf.Texture.Sample(u, v), lit)
			}

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, out)
		}
	}
}

// MeshSource provides mesh data without importing the models package.
type MeshSource interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshSource extends MeshSource with a local-space bounding box
// for frustum culling.
type BoundedMeshSource interface {
	MeshSource
	GetBounds() (min, max math3d.Vec3)
}

// MaterialMeshSource extends MeshSource with per-face material indices.
type MaterialMeshSource interface {
	MeshSource
	GetFaceMaterial(i int) int
}

// tryFrustumCull culls a mesh by its bounds when it has them.
// Returns true if the mesh is not visible.
func (r *Rasterizer) tryFrustumCull(mesh MeshSource, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshSource)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++

	minBounds, maxBounds := bounded.GetBounds()
	if !r.IsVisibleTransformed(AABB{Min: minBounds, Max: maxBounds}, transform) {
		r.CullingStats.MeshesCulled++
		return true
	}

	r.CullingStats.MeshesDrawn++
	return false
}

// worldTriangle assembles a world-space triangle for face i of a mesh.
func worldTriangle(mesh MeshSource, i int, transform math3d.Mat4) Triangle {
	face := mesh.GetFace(i)

	var tri Triangle
	for j := 0; j < 3; j++ {
		p, n, uv := mesh.GetVertex(face[j])
		tri.V[j] = Vertex{
			Position: transform.MulVec3(p),
			Normal:   transform.MulVec3Dir(n).Normalize(),
			UV:       uv,
		}
	}
	return tri
}

// DrawMesh renders a mesh with a single surface for every face.
// Automatically performs frustum culling if the mesh provides bounds.
func (r *Rasterizer) DrawMesh(mesh MeshSource, transform math3d.Mat4, surf Surface, lights []DirectionalLight) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		r.DrawTriangleShaded(worldTriangle(mesh, i, transform), surf, lights)
	}
}

// DrawMeshMaterials renders a mesh using per-face material surfaces.
// Faces whose material index falls outside surfaces use the fallback.
// Automatically performs frustum culling if the mesh provides bounds.
func (r *Rasterizer) DrawMeshMaterials(mesh MaterialMeshSource, transform math3d.Mat4, surfaces []Surface, fallback Surface, lights []DirectionalLight) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		surf := fallback
		if mi := mesh.GetFaceMaterial(i); mi >= 0 && mi < len(surfaces) {
			surf = surfaces[mi]
		}
		r.DrawTriangleShaded(worldTriangle(mesh, i, transform), surf, lights)
	}
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	// Round to nearest. Barycentric weights carry float error, and
	// truncation would dim a flat-shaded triangle by one count.
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z+0.5),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z+0.5),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z+0.5),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

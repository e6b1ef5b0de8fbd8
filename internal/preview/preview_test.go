package preview

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/carmandale/previewBuilder/internal/config"
	"github.com/carmandale/previewBuilder/pkg/encode"
	"github.com/carmandale/previewBuilder/pkg/mesher"
	"github.com/carmandale/previewBuilder/pkg/render"
)

func TestPreviewNumber(t *testing.T) {
	tests := []struct {
		name string
		num  int
		ok   bool
	}{
		{"p-001", 1, true},
		{"p-042", 42, true},
		{"p-1234", 1234, true},
		{"p-", 0, false},
		{"p-abc", 0, false},
		{"p-+5", 0, false},
		{"p--3", 0, false},
		{"p-4 2", 0, false},
		{"q-001", 0, false},
		{"renders", 0, false},
	}

	for _, tc := range tests {
		num, ok := previewNumber(tc.name)
		if num != tc.num || ok != tc.ok {
			t.Errorf("previewNumber(%q) = %d, %v, want %d, %v", tc.name, num, ok, tc.num, tc.ok)
		}
	}
}

func TestNextPreviewDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "previews")

	// First allocation creates the root itself.
	dir, err := NextPreviewDir(root)
	if err != nil {
		t.Fatalf("NextPreviewDir: %v", err)
	}
	if filepath.Base(dir) != "p-001" {
		t.Errorf("first dir = %s, want p-001", filepath.Base(dir))
	}

	dir, err = NextPreviewDir(root)
	if err != nil {
		t.Fatalf("NextPreviewDir: %v", err)
	}
	if filepath.Base(dir) != "p-002" {
		t.Errorf("second dir = %s, want p-002", filepath.Base(dir))
	}
}

func TestNextPreviewDirSkipsGaps(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"p-001", "p-017", "notes", "p-xyz"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// A stray file does not count either.
	if err := os.WriteFile(filepath.Join(root, "p-099"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, err := NextPreviewDir(root)
	if err != nil {
		t.Fatalf("NextPreviewDir: %v", err)
	}
	if filepath.Base(dir) != "p-018" {
		t.Errorf("dir = %s, want p-018 (continue past highest)", filepath.Base(dir))
	}
}

// writeSubjectGLB builds a small triangle model on disk.
func writeSubjectGLB(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{
		{-1, 0, 0}, {1, 0, 0}, {0, 2, 0},
	})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "subject",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "subject", Mesh: gltf.Index(0)}}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)

	path := filepath.Join(dir, "subject.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

// writeStageGLB builds a camera plus key light stage rig on disk.
func writeStageGLB(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()
	doc.Cameras = []*gltf.Camera{{
		Name: "camera",
		Perspective: &gltf.Perspective{
			Yfov:  0.7,
			Znear: 0.1,
			Zfar:  gltf.Float(100),
		},
	}}
	doc.Extensions = gltf.Extensions{
		"KHR_lights_punctual": json.RawMessage(
			`{"lights":[{"name":"key","type":"directional","intensity":1}]}`),
	}
	doc.Nodes = []*gltf.Node{
		{Name: "camera", Camera: gltf.Index(0), Translation: [3]float64{0, -4, 1.5}},
		{Name: "key", Extensions: gltf.Extensions{
			"KHR_lights_punctual": json.RawMessage(`{"light":0}`),
		}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0, 1}}}
	doc.Scene = gltf.Index(0)

	path := filepath.Join(dir, "stage.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

// fakeFFmpeg pretends to encode by touching its final argument.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a unix shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor a; do last=$a; done\ntouch \"$last\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testBuilder(t *testing.T, root string) *Builder {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Root = root
	cfg.Scene.BaseScene = writeStageGLB(t, t.TempDir())
	cfg.Render.FrameCount = 4
	cfg.Render.Width = 32
	cfg.Render.Height = 48

	return &Builder{
		Config:  cfg,
		Mesher:  &mesher.Mesher{},
		Encoder: &encode.Encoder{Binary: fakeFFmpeg(t)},
	}
}

func TestBuildFromModel(t *testing.T) {
	root := filepath.Join(t.TempDir(), "previews")
	b := testBuilder(t, root)
	model := writeSubjectGLB(t, t.TempDir())

	res, err := b.Build(context.Background(), "", model)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if filepath.Base(res.Dir) != "p-001" {
		t.Errorf("Dir = %s, want p-001", res.Dir)
	}
	if res.Frames != 4 {
		t.Errorf("Frames = %d, want 4", res.Frames)
	}
	if filepath.Base(res.WebM) != "p-001.webm" {
		t.Errorf("WebM = %s, want p-001.webm", res.WebM)
	}

	for f := 0; f < res.Frames; f++ {
		frame := filepath.Join(res.Dir, "renders", render.FrameName(f))
		if _, err := os.Stat(frame); err != nil {
			t.Errorf("missing frame: %v", err)
		}
	}
	if _, err := os.Stat(res.Poster); err != nil {
		t.Errorf("missing poster: %v", err)
	}
	if _, err := os.Stat(res.WebM); err != nil {
		t.Errorf("missing webm: %v", err)
	}
}

func TestBuildRequiresOneInput(t *testing.T) {
	b := testBuilder(t, t.TempDir())

	if _, err := b.Build(context.Background(), "", ""); err == nil {
		t.Error("expected error with no inputs")
	}
	if _, err := b.Build(context.Background(), "photos", "model.glb"); err == nil {
		t.Error("expected error with both inputs")
	}
}

func TestBuildFailureRemovesDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "previews")
	b := testBuilder(t, root)

	_, err := b.Build(context.Background(), "", filepath.Join(t.TempDir(), "missing.glb"))
	if err == nil {
		t.Fatal("expected error for missing model")
	}

	entries, readErr := os.ReadDir(root)
	if readErr != nil {
		t.Fatalf("reading root: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("failed build left %d entries behind", len(entries))
	}

	// The numbering restarts cleanly after the cleanup.
	model := writeSubjectGLB(t, t.TempDir())
	res, err := b.Build(context.Background(), "", model)
	if err != nil {
		t.Fatalf("Build after failure: %v", err)
	}
	if filepath.Base(res.Dir) != "p-001" {
		t.Errorf("Dir = %s, want p-001", res.Dir)
	}
}

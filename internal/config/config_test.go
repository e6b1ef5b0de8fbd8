package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Render.FrameCount != 180 {
		t.Errorf("expected frame_count 180, got %d", cfg.Render.FrameCount)
	}
	if cfg.Render.Width != 252 {
		t.Errorf("expected width 252, got %d", cfg.Render.Width)
	}
	if cfg.Render.Height != 384 {
		t.Errorf("expected height 384, got %d", cfg.Render.Height)
	}

	if cfg.Scene.BaseScene != "turntable_base_v01.glb" {
		t.Errorf("expected base scene turntable_base_v01.glb, got %s", cfg.Scene.BaseScene)
	}
	if cfg.Scene.ZOffset != -0.04 {
		t.Errorf("expected z_offset -0.04, got %f", cfg.Scene.ZOffset)
	}

	if cfg.Mesher.Quality != "preview" {
		t.Errorf("expected quality 'preview', got %s", cfg.Mesher.Quality)
	}
	if cfg.Mesher.Binary != "groove-mesher" {
		t.Errorf("expected mesher binary groove-mesher, got %s", cfg.Mesher.Binary)
	}

	if cfg.Encode.Binary != "ffmpeg" {
		t.Errorf("expected encode binary ffmpeg, got %s", cfg.Encode.Binary)
	}
	if cfg.Encode.FrameRate != 30 {
		t.Errorf("expected frame_rate 30, got %d", cfg.Encode.FrameRate)
	}

	if cfg.Output.Root != "previews" {
		t.Errorf("expected output root 'previews', got %s", cfg.Output.Root)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "previewbuilder.yaml")

	yamlContent := `
render:
  frame_count: 90
  width: 504
  height: 768

scene:
  base_scene: "/stages/custom_v02.glb"
  z_offset: -0.1

mesher:
  quality: final

output:
  root: "/srv/previews"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Render.FrameCount != 90 {
		t.Errorf("expected frame_count 90, got %d", cfg.Render.FrameCount)
	}
	if cfg.Render.Width != 504 || cfg.Render.Height != 768 {
		t.Errorf("expected 504x768, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Scene.BaseScene != "/stages/custom_v02.glb" {
		t.Errorf("expected custom base scene, got %s", cfg.Scene.BaseScene)
	}
	if cfg.Scene.ZOffset != -0.1 {
		t.Errorf("expected z_offset -0.1, got %f", cfg.Scene.ZOffset)
	}
	if cfg.Mesher.Quality != "final" {
		t.Errorf("expected quality 'final', got %s", cfg.Mesher.Quality)
	}
	if cfg.Output.Root != "/srv/previews" {
		t.Errorf("expected output root /srv/previews, got %s", cfg.Output.Root)
	}

	// Untouched sections keep their defaults.
	if cfg.Encode.FrameRate != 30 {
		t.Errorf("expected default frame_rate 30, got %d", cfg.Encode.FrameRate)
	}
	if cfg.Mesher.Binary != "groove-mesher" {
		t.Errorf("expected default mesher binary, got %s", cfg.Mesher.Binary)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("render: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"one frame", func(c *Config) { c.Render.FrameCount = 1 }, false},
		{"zero width", func(c *Config) { c.Render.Width = 0 }, false},
		{"negative height", func(c *Config) { c.Render.Height = -1 }, false},
		{"bad quality", func(c *Config) { c.Mesher.Quality = "draft" }, false},
		{"final quality", func(c *Config) { c.Mesher.Quality = "final" }, true},
		{"zero frame rate", func(c *Config) { c.Encode.FrameRate = 0 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestResolveBaseSceneAbsolute(t *testing.T) {
	cfg := Default()
	cfg.Scene.BaseScene = "/stages/rig.glb"

	if got := cfg.ResolveBaseScene(); got != "/stages/rig.glb" {
		t.Errorf("absolute path should pass through, got %s", got)
	}
}

func TestResolveBaseSceneCwd(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rig.glb")
	if err := os.WriteFile(path, []byte("glTF"), 0o644); err != nil {
		t.Fatal(err)
	}

	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(oldWd)

	cfg := Default()
	cfg.Scene.BaseScene = "rig.glb"

	if got := cfg.ResolveBaseScene(); got != "rig.glb" {
		t.Errorf("existing relative path should pass through, got %s", got)
	}
}

// Package config handles preview builder configuration loading.
package config

import "fmt"

// Config holds all pipeline settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Mesher  MesherConfig  `yaml:"mesher"`
	Encode  EncodeConfig  `yaml:"encode"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds turntable render settings.
type RenderConfig struct {
	FrameCount int `yaml:"frame_count"`
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	Workers    int `yaml:"workers"` // 0 means one per CPU
}

// SceneConfig holds stage assembly settings.
type SceneConfig struct {
	BaseScene string  `yaml:"base_scene"` // Camera and light rig, co-located by default
	ZOffset   float64 `yaml:"z_offset"`   // Extra seating offset below the ground plane
}

// MesherConfig holds groove-mesher settings.
type MesherConfig struct {
	Binary  string `yaml:"binary"`
	Quality string `yaml:"quality"` // "preview" or "final"
}

// EncodeConfig holds ffmpeg settings.
type EncodeConfig struct {
	Binary    string `yaml:"binary"`
	FrameRate int    `yaml:"frame_rate"`
}

// OutputConfig holds output placement settings.
type OutputConfig struct {
	Root string `yaml:"root"` // Directory receiving p-NNN preview dirs
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the pipeline's standard values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			FrameCount: 180,
			Width:      252,
			Height:     384,
			Workers:    0,
		},
		Scene: SceneConfig{
			BaseScene: "turntable_base_v01.glb",
			ZOffset:   -0.04,
		},
		Mesher: MesherConfig{
			Binary:  "groove-mesher",
			Quality: "preview",
		},
		Encode: EncodeConfig{
			Binary:    "ffmpeg",
			FrameRate: 30,
		},
		Output: OutputConfig{
			Root: "previews",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Render.FrameCount < 2 {
		return fmt.Errorf("render.frame_count must be at least 2, got %d", c.Render.FrameCount)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Mesher.Quality != "preview" && c.Mesher.Quality != "final" {
		return fmt.Errorf("mesher.quality must be %q or %q, got %q", "preview", "final", c.Mesher.Quality)
	}
	if c.Encode.FrameRate <= 0 {
		return fmt.Errorf("encode.frame_rate must be positive, got %d", c.Encode.FrameRate)
	}
	return nil
}

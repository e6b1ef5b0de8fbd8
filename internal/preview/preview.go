// Package preview orchestrates the turntable pipeline: model
// generation, stage assembly, frame rendering, poster scaling and WebM
// encoding, all inside a freshly allocated p-NNN directory.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/carmandale/previewBuilder/internal/config"
	"github.com/carmandale/previewBuilder/internal/progress"
	"github.com/carmandale/previewBuilder/pkg/encode"
	"github.com/carmandale/previewBuilder/pkg/mesher"
	"github.com/carmandale/previewBuilder/pkg/models"
	"github.com/carmandale/previewBuilder/pkg/render"
	"github.com/carmandale/previewBuilder/pkg/scene"
)

// Preview tier meshes are decimated before rendering. Small meshes are
// left alone.
const (
	previewDecimateFactor = 0.5
	previewMinFaces       = 1000
)

// posterQuality is the JPEG quality of the poster thumbnail.
const posterQuality = 85

// Builder runs the preview pipeline.
type Builder struct {
	Config  *config.Config
	Mesher  *mesher.Mesher
	Encoder *encode.Encoder
	Log     *zap.Logger
	Console io.Writer // Progress meters; nil disables them
}

// Result describes a finished preview build.
type Result struct {
	Dir     string        // The allocated p-NNN directory
	Model   string        // The model file that was staged
	WebM    string        // The encoded clip, <dir>/p-NNN.webm
	Poster  string        // The scaled frame 0 thumbnail
	Frames  int           // Number of rendered frames
	Elapsed time.Duration // Total wall time
}

// Build runs the pipeline. Exactly one of sourceDir (a photo set for
// the mesher) or modelPath (an existing glTF/GLB model) must be given.
// On failure the allocated output directory is removed so a failed run
// leaves nothing behind.
func (b *Builder) Build(ctx context.Context, sourceDir, modelPath string) (*Result, error) {
	if (sourceDir == "") == (modelPath == "") {
		return nil, errors.New("exactly one of a source photo directory or a model path is required")
	}

	cfg := b.Config
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()

	dir, err := NextPreviewDir(cfg.Output.Root)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(dir)
	log.Info("allocated preview directory", zap.String("dir", dir))

	res, err := b.build(ctx, log, dir, name, sourceDir, modelPath)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	res.Elapsed = time.Since(start)
	log.Info("preview complete",
		zap.String("webm", res.WebM),
		zap.Int("frames", res.Frames),
		zap.Duration("total", res.Elapsed))
	return res, nil
}

func (b *Builder) build(ctx context.Context, log *zap.Logger, dir, name, sourceDir, modelPath string) (*Result, error) {
	cfg := b.Config
	quality := mesher.QualityPreview
	if cfg.Mesher.Quality == "final" {
		quality = mesher.QualityFinal
	}

	if sourceDir != "" {
		out := filepath.Join(dir, name+".glb")
		stage := time.Now()

		meter := b.meter("Generating model")
		err := b.Mesher.Run(ctx, sourceDir, out, quality, func(pct int) {
			if meter != nil {
				meter.SetPercent(pct)
			}
		})
		finishMeter(meter)
		if err != nil {
			return nil, fmt.Errorf("meshing %s: %w", sourceDir, err)
		}

		modelPath = mesher.OutputPath(out, quality)
		log.Info("model generated",
			zap.String("model", modelPath),
			zap.Duration("elapsed", time.Since(stage)))
	}

	stage := time.Now()
	base, err := scene.LoadBaseScene(cfg.ResolveBaseScene())
	if err != nil {
		return nil, err
	}

	asset, err := scene.LoadAsset(modelPath)
	if err != nil {
		return nil, err
	}
	if quality == mesher.QualityPreview {
		decimateAsset(asset, log)
	}

	root, err := scene.Normalize(asset, cfg.Scene.ZOffset)
	if err != nil {
		return nil, err
	}
	stg, err := base.Attach(root)
	if err != nil {
		return nil, err
	}
	anim, err := scene.Animate(stg, cfg.Render.FrameCount)
	if err != nil {
		return nil, err
	}
	log.Info("stage assembled",
		zap.String("model", modelPath),
		zap.Float64("offset_x", root.Offset.X),
		zap.Float64("offset_y", root.Offset.Y),
		zap.Float64("offset_z", root.Offset.Z),
		zap.Duration("elapsed", time.Since(stage)))

	stage = time.Now()
	rendersDir := filepath.Join(dir, "renders")
	if err := os.MkdirAll(rendersDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating renders dir: %w", err)
	}

	meter := b.meter("Rendering frames")
	frames, err := render.RenderSequence(anim, rendersDir, render.SequenceOptions{
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		Workers: cfg.Render.Workers,
	}, func(done, total int) {
		if meter != nil {
			meter.Report(done, total)
		}
	})
	finishMeter(meter)
	if err != nil {
		return nil, err
	}
	log.Info("frames rendered",
		zap.Int("count", len(frames)),
		zap.Duration("elapsed", time.Since(stage)))

	stage = time.Now()
	poster := filepath.Join(dir, "poster.jpg")
	if err := writePoster(frames[0], poster); err != nil {
		return nil, err
	}
	log.Info("poster written",
		zap.String("poster", poster),
		zap.Duration("elapsed", time.Since(stage)))

	stage = time.Now()
	webm := filepath.Join(dir, name+".webm")

	meter = b.meter("Encoding WebM")
	err = b.Encoder.EncodeWebM(ctx, rendersDir, webm, len(frames), func(pct int) {
		if meter != nil {
			meter.SetPercent(pct)
		}
	})
	finishMeter(meter)
	if err != nil {
		return nil, err
	}
	log.Info("clip encoded",
		zap.String("webm", webm),
		zap.Duration("elapsed", time.Since(stage)))

	return &Result{
		Dir:    dir,
		Model:  modelPath,
		WebM:   webm,
		Poster: poster,
		Frames: len(frames),
	}, nil
}

// decimateAsset reduces dense meshes in place for the preview tier.
func decimateAsset(asset *scene.Asset, log *zap.Logger) {
	for i, m := range asset.Meshes {
		before := m.TriangleCount()
		out := models.Decimate(m, previewDecimateFactor, previewMinFaces)
		if out != m {
			log.Debug("decimated mesh",
				zap.String("mesh", m.Name),
				zap.Int("faces_before", before),
				zap.Int("faces_after", out.TriangleCount()))
		}
		asset.Meshes[i] = out
	}
}

// writePoster scales frame 0 to half size as the preview thumbnail.
func writePoster(framePath, posterPath string) error {
	f, err := os.Open(framePath)
	if err != nil {
		return fmt.Errorf("opening poster frame: %w", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding poster frame: %w", err)
	}

	width := img.Bounds().Dx() / 2
	if width < 1 {
		width = 1
	}
	thumb := resize.Resize(uint(width), 0, img, resize.Lanczos3)

	out, err := os.Create(posterPath)
	if err != nil {
		return fmt.Errorf("creating poster: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: posterQuality}); err != nil {
		return fmt.Errorf("encoding poster: %w", err)
	}
	return nil
}

func (b *Builder) meter(label string) *progress.Meter {
	if b.Console == nil {
		return nil
	}
	m := progress.NewMeter(b.Console, label)
	m.Start()
	return m
}

func finishMeter(m *progress.Meter) {
	if m != nil {
		m.Finish()
	}
}

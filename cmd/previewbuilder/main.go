// previewbuilder - Turntable preview generator
// Builds a rotating WebM preview of a 3D model: photos go through
// groove-mesher, the model is seated on the stage, 180 frames are
// rendered and encoded into a p-NNN output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/carmandale/previewBuilder/internal/config"
	"github.com/carmandale/previewBuilder/internal/logger"
	"github.com/carmandale/previewBuilder/internal/preview"
	"github.com/carmandale/previewBuilder/pkg/encode"
	"github.com/carmandale/previewBuilder/pkg/mesher"
)

var (
	sourcePath = flag.String("source", "", "Path to a source photo directory (runs the mesher)")
	modelPath  = flag.String("model", "", "Path to an existing glTF/GLB model")
	quiet      = flag.Bool("quiet", false, "Disable progress meters")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "previewbuilder - Turntable preview generator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: previewbuilder [options] (-source <photos> | -model <file.glb>)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	config.ParseFlags()

	if (*sourcePath == "") == (*modelPath == "") {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &preview.Builder{
		Config:  cfg,
		Mesher:  &mesher.Mesher{Binary: cfg.Mesher.Binary},
		Encoder: &encode.Encoder{Binary: cfg.Encode.Binary, FrameRate: cfg.Encode.FrameRate},
		Log:     logger.Log,
	}
	if !*quiet {
		b.Console = os.Stdout
	}

	res, err := b.Build(ctx, *sourcePath, *modelPath)
	if err != nil {
		return err
	}

	logger.Info("done",
		zap.String("dir", res.Dir),
		zap.String("webm", res.WebM),
		zap.Duration("elapsed", res.Elapsed))
	fmt.Printf("Preview ready: %s\n", res.WebM)
	return nil
}

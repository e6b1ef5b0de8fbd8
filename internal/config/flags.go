package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagFrames   = flag.Int("frames", 0, "Number of turntable frames")
	flagWidth    = flag.Int("width", 0, "Frame width in pixels")
	flagHeight   = flag.Int("height", 0, "Frame height in pixels")
	flagBase     = flag.String("base-scene", "", "Path to the camera/light stage file")
	flagZOffset  = flag.Float64("z-offset", 0, "Extra seating offset on the stage Z axis")
	flagFinal    = flag.Bool("final", false, "Build a final quality model")
	flagPreview  = flag.Bool("preview", false, "Build a preview quality model (default)")
	flagMesher   = flag.String("mesher", "", "Path to the groove-mesher binary")
	flagFFmpeg   = flag.String("ffmpeg", "", "Path to the ffmpeg binary")
	flagOutput   = flag.String("output", "", "Output root directory")
	flagLogFile  = flag.String("log-file", "", "Log file path (rotated)")
	flagLogLevel = flag.String("log-level", "", "Log level: debug, info, warn, error")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. Only flags the
// user actually set are applied, so zero is a usable override value.
func applyFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Logging.Level = "debug"
		case "frames":
			cfg.Render.FrameCount = *flagFrames
		case "width":
			cfg.Render.Width = *flagWidth
		case "height":
			cfg.Render.Height = *flagHeight
		case "base-scene":
			cfg.Scene.BaseScene = *flagBase
		case "z-offset":
			cfg.Scene.ZOffset = *flagZOffset
		case "final":
			cfg.Mesher.Quality = "final"
		case "preview":
			cfg.Mesher.Quality = "preview"
		case "mesher":
			cfg.Mesher.Binary = *flagMesher
		case "ffmpeg":
			cfg.Encode.Binary = *flagFFmpeg
		case "output":
			cfg.Output.Root = *flagOutput
		case "log-file":
			cfg.Logging.LogFile = *flagLogFile
		case "log-level":
			cfg.Logging.Level = *flagLogLevel
		}
	})
}

// Package main provides the CLI entry point for twopass.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/twopass/pkg/adapters/blockencoder"
	"github.com/user/twopass/pkg/adapters/filesink"
	"github.com/user/twopass/pkg/adapters/logger"
	"github.com/user/twopass/pkg/adapters/mp4sink"
	"github.com/user/twopass/pkg/adapters/nullsink"
	"github.com/user/twopass/pkg/adapters/osfilesystem"
	"github.com/user/twopass/pkg/adapters/patternsource"
	"github.com/user/twopass/pkg/adapters/yuvreader"
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/config"
	"github.com/user/twopass/pkg/orchestrator"
	"github.com/user/twopass/pkg/pipeline"
	"github.com/user/twopass/pkg/ports"
	"github.com/user/twopass/pkg/stages/analyze"
	"github.com/user/twopass/pkg/stages/encodepass"
	"github.com/user/twopass/pkg/twopass"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:  "twopass",
		Usage: l10n.T("Two-pass block video encoder for raw I420 input"),
		Commands: []*cli.Command{
			encodeCommand(),
			analyzeCommand(),
			demoCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commonFlags are shared by encode, analyze, and demo.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Frame width in pixels (must be even)")},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Frame height in pixels (must be even)")},
		&cli.Float64Flag{Name: "fps", Value: 30.0, Usage: l10n.T("Frames per second")},
		&cli.IntFlag{Name: "lookahead", Value: 8, Usage: l10n.T("Frames buffered before the first packet is emitted")},
		&cli.IntFlag{Name: "keyframe-interval", Aliases: []string{"g"}, Value: 120, Usage: l10n.T("Maximum frames between keyframes")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output")},
		&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: l10n.T("Directory for debug output")},
	}
}

func encodeCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output MP4 file path (required)")},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML config file path")},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Value: "medium", Usage: l10n.T("Quality preset (low, medium, high)")},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Value: -1, Usage: l10n.T("Base quantizer (0-63, lower is better, overrides preset)")},
		&cli.IntFlag{Name: "bitrate", Aliases: []string{"b"}, Value: -1, Usage: l10n.T("Target bitrate in kbps (0 = quality only, overrides preset)")},
		&cli.BoolFlag{Name: "single-pass", Usage: l10n.T("Skip the analysis pass")},
		&cli.StringFlag{Name: "stats", Usage: l10n.T("Reuse a stats file from a previous analyze run")},
		&cli.BoolFlag{Name: "strict-stats", Usage: l10n.T("Reject malformed stats instead of degrading to single pass")},
	)
	return &cli.Command{
		Name:      "encode",
		Usage:     l10n.T("Encode a raw I420 file as MP4 video"),
		ArgsUsage: "<input.yuv>",
		Flags:     flags,
		Action:    runEncode,
	}
}

func analyzeCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output stats file path (required)")},
	)
	return &cli.Command{
		Name:      "analyze",
		Usage:     l10n.T("Run the analysis pass only and save the stats file"),
		ArgsUsage: "<input.yuv>",
		Flags:     flags,
		Action:    runAnalyze,
	}
}

func demoCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output MP4 file path (required)")},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Value: "medium", Usage: l10n.T("Quality preset (low, medium, high)")},
		&cli.IntFlag{Name: "frames", Value: 90, Usage: l10n.T("Number of synthetic frames to generate")},
		&cli.IntFlag{Name: "scene-cut-at", Value: 45, Usage: l10n.T("Frame index of the synthetic scene cut (-1 = none)")},
		&cli.BoolFlag{Name: "single-pass", Usage: l10n.T("Skip the analysis pass")},
	)
	return &cli.Command{
		Name:   "demo",
		Usage:  l10n.T("Encode a synthetic test pattern as MP4 video"),
		Flags:  flags,
		Action: runDemo,
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Println(l10n.F("twopass version %s", version))
			return nil
		},
	}
}

// buildLogger creates the logger from the shared logging flags.
func buildLogger(c *cli.Context) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()
	return ctx, cancel
}

// buildSink creates the debug sink from the shared debug flags.
func buildSink(c *cli.Context, fs ports.FileSystem) (ports.DebugSink, error) {
	if !c.Bool("debug") {
		return nullsink.New(), nil
	}
	dir := c.String("debug-dir")
	if err := fs.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}
	return filesink.New(dir, fs), nil
}

func buildOrchestrator(c *cli.Context, fs ports.FileSystem, log ports.Logger) (*orchestrator.Orchestrator, error) {
	sink, err := buildSink(c, fs)
	if err != nil {
		return nil, err
	}
	factory := func() ports.EncodeEngine { return blockencoder.New() }
	return orchestrator.New(
		analyze.NewStage(factory, log),
		encodepass.NewStage(factory, mp4sink.New(), log),
		fs,
		sink,
		log,
	), nil
}

// buildEncodeConfig layers preset, yaml config file, and flag overrides.
func buildEncodeConfig(c *cli.Context, fs ports.FileSystem) (orchestrator.Config, error) {
	builder := twopass.NewConfigBuilder().
		WithQualityPreset(twopass.QualityPreset(c.String("preset")))

	if path := c.String("config"); path != "" {
		fileCfg, err := config.Load(fs, path)
		if err != nil {
			return orchestrator.Config{}, err
		}
		if err := fileCfg.Validate(); err != nil {
			return orchestrator.Config{}, err
		}
		builder.
			WithSize(fileCfg.Width, fileCfg.Height).
			WithFPS(fileCfg.FPS).
			WithQuality(fileCfg.Quality).
			WithTargetBitrate(fileCfg.TargetBitrate).
			WithLookaheadDepth(fileCfg.LookaheadDepth).
			WithKeyframeInterval(fileCfg.KeyframeInterval).
			WithStrictStats(fileCfg.StrictStats)
	}

	if c.IsSet("width") || c.IsSet("height") {
		builder.WithSize(c.Int("width"), c.Int("height"))
	}
	if c.IsSet("fps") {
		builder.WithFPS(c.Float64("fps"))
	}
	if q := c.Int("quality"); q >= 0 {
		builder.WithQuality(q)
	}
	if b := c.Int("bitrate"); b >= 0 {
		builder.WithTargetBitrate(b)
	}
	if c.IsSet("lookahead") {
		builder.WithLookaheadDepth(c.Int("lookahead"))
	}
	if c.IsSet("keyframe-interval") {
		builder.WithKeyframeInterval(c.Int("keyframe-interval"))
	}
	builder.
		WithTwoPass(!c.Bool("single-pass")).
		WithStrictStats(c.Bool("strict-stats"))

	cfg := builder.Build()

	orchCfg := orchestrator.Config{
		OutputPath:       c.String("output"),
		Width:            cfg.Width,
		Height:           cfg.Height,
		FPS:              cfg.FPS,
		TwoPass:          cfg.TwoPass,
		LookaheadDepth:   cfg.LookaheadDepth,
		TargetBitrate:    cfg.TargetBitrate,
		Quality:          cfg.Quality,
		KeyframeInterval: cfg.KeyframeInterval,
		StrictStats:      cfg.StrictStats,
	}

	if path := c.String("stats"); path != "" {
		stats, err := fs.ReadFile(path)
		if err != nil {
			return orchestrator.Config{}, fmt.Errorf("read stats file: %w", err)
		}
		orchCfg.StatsInput = stats
	}
	return orchCfg, nil
}

func runEncode(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New(l10n.T("exactly one input file is required"))
	}
	input := c.Args().First()

	log := buildLogger(c)
	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	cfg, err := buildEncodeConfig(c, fs)
	if err != nil {
		return err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New(l10n.T("width and height are required"))
	}

	frames, err := yuvreader.New(fs).ReadFrames(input, cfg.Width, cfg.Height, cfg.FPS)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(c, fs, log)
	if err != nil {
		return err
	}

	log.Info(l10n.F("Encoding %d frames from %s...", len(frames), input))
	result, err := orch.Run(ctx, cfg, frames)
	if err != nil {
		return err
	}

	log.Info(l10n.F("Output saved to %s (%d frames, %d keyframes, %d bytes)",
		cfg.OutputPath, result.FrameCount, result.Keyframes, result.VideoFileSize))
	return nil
}

func runAnalyze(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New(l10n.T("exactly one input file is required"))
	}
	input := c.Args().First()

	width := c.Int("width")
	height := c.Int("height")
	if width <= 0 || height <= 0 {
		return errors.New(l10n.T("width and height are required"))
	}

	log := buildLogger(c)
	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	frames, err := yuvreader.New(fs).ReadFrames(input, width, height, c.Float64("fps"))
	if err != nil {
		return err
	}

	factory := func() ports.EncodeEngine { return blockencoder.New() }
	stage := analyze.NewStage(factory, log)

	log.Info(l10n.F("Analyzing %d frames from %s...", len(frames), input))
	result, err := stage.Execute(ctx, buildAnalyzeInput(c, width, height, frames))
	if err != nil {
		return err
	}

	if err := fs.WriteFile(c.String("output"), result.Stats); err != nil {
		return fmt.Errorf("write stats file: %w", err)
	}
	log.Info(l10n.F("Stats saved to %s (%d records, %d bytes)",
		c.String("output"), result.Records, len(result.Stats)))
	return nil
}

func runDemo(c *cli.Context) error {
	log := buildLogger(c)
	ctx, cancel := signalContext(log)
	defer cancel()

	width := c.Int("width")
	height := c.Int("height")
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 360
	}

	src, err := patternsource.New(patternsource.Options{
		Width:      width,
		Height:     height,
		FPS:        c.Float64("fps"),
		FrameCount: c.Int("frames"),
		SceneCutAt: c.Int("scene-cut-at"),
	})
	if err != nil {
		return err
	}

	settings := twopass.GetQualitySettings(twopass.QualityPreset(c.String("preset")))

	fs := osfilesystem.New()
	orch, err := buildOrchestrator(c, fs, log)
	if err != nil {
		return err
	}

	cfg := orchestrator.Config{
		OutputPath:       c.String("output"),
		Width:            width,
		Height:           height,
		FPS:              c.Float64("fps"),
		TwoPass:          !c.Bool("single-pass"),
		LookaheadDepth:   c.Int("lookahead"),
		TargetBitrate:    settings.TargetBitrate,
		Quality:          settings.Quality,
		KeyframeInterval: c.Int("keyframe-interval"),
	}

	log.Info(l10n.F("Encoding %d synthetic frames...", c.Int("frames")))
	result, err := orch.Run(ctx, cfg, src.Frames())
	if err != nil {
		return err
	}

	log.Info(l10n.F("Output saved to %s (%d frames, %d keyframes, %d bytes)",
		cfg.OutputPath, result.FrameCount, result.Keyframes, result.VideoFileSize))
	return nil
}

func buildAnalyzeInput(c *cli.Context, width, height int, frames []*codec.RawFrame) pipeline.AnalyzeInput {
	return pipeline.AnalyzeInput{
		Frames:           frames,
		Width:            width,
		Height:           height,
		FPS:              c.Float64("fps"),
		LookaheadDepth:   c.Int("lookahead"),
		KeyframeInterval: c.Int("keyframe-interval"),
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"converty/internal/batch"
	"converty/internal/config"
	"converty/internal/format"
	"converty/internal/imageio"
	"converty/internal/version"
)

const (
	exitOK          = 0
	exitFailed      = 1 // a file failed, nothing matched, or input unreadable
	exitUsage       = 2 // bad flags, geometry or config; nothing was processed
	exitInterrupted = 130
)

func main() {
	// First signal stops dispatching new files; in-flight conversions still finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

const examples = `
Examples:
  Convert all files in a directory using a preset:
    converty examples/SS2_2M --type ss2

  Convert a single file with explicit geometry:
    converty image.raw --width 1920 --height 1280 --format uyvy

  Convert and save to a specific folder:
    converty inputs/ --type ss3 --output results/

Presets:
  ss2: 1920x1280, uyvy
  ss3: 1920x1536, uyvy
  ss4: 1920x1536, nv12
`

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(version.Name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	preset := fs.String("type", "", "preset ("+strings.Join(format.PresetNames(), ", ")+"); sets width, height and format")
	width := fs.Int("width", 0, "image width (explicit geometry, with --height and --format)")
	height := fs.Int("height", 0, "image height (explicit geometry, with --width and --format)")
	pixFmt := fs.String("format", "", "pixel format: uyvy or nv12 (explicit geometry)")
	output := fs.String("output", "", "output directory (default <input dir>/png)")
	recursive := fs.Bool("recursive", true, "descend into subdirectories")
	matchSize := fs.Bool("match-size", false, "also convert files whose size equals one frame, whatever their extension")
	workers := fs.Int("workers", 0, "concurrent conversions (env CONVERTY_WORKERS, default GOMAXPROCS)")
	encoder := fs.String("encoder", "", "output encoder: "+strings.Join(imageio.EncoderNames, ", ")+" (env CONVERTY_ENCODER)")
	reportPath := fs.String("report", "", "write a YAML batch report to this path")
	cfgPath := fs.String("config", os.Getenv("CONVERTY_CONFIG"), "YAML config file (env CONVERTY_CONFIG)")
	debug := fs.Bool("debug", false, "enable debug logging (env CONVERTY_DEBUG)")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Convert raw YUV images (UYVY/NV12) to PNG.\n\nUsage: %s <input file or directory> [flags]\n\n", version.Name)
		fs.PrintDefaults()
		fmt.Fprint(stderr, examples)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one input path is required.")
		fs.Usage()
		return exitUsage
	}
	input := fs.Arg(0)

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitUsage
		}
	}
	cfg.ApplyEnv()
	if fs.Changed("workers") {
		cfg.Workers = *workers
	}
	if fs.Changed("encoder") {
		cfg.Encoder = *encoder
	}
	if fs.Changed("recursive") {
		cfg.Recursive = *recursive
	}
	if fs.Changed("match-size") {
		cfg.MatchSize = *matchSize
	}
	if fs.Changed("debug") {
		cfg.Debug = *debug
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	req := format.Request{Preset: *preset, Width: *width, Height: *height, Format: *pixFmt}
	geom, err := format.Resolve(req)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		fmt.Fprintln(stderr, "Specify --type OR provide --width, --height and --format.")
		return exitUsage
	}
	if req.Preset != "" && geom.Preset == "" {
		logger.Warn("explicit geometry overrides preset", "preset", req.Preset, "geometry", geom.String())
	}

	enc, err := imageio.NewEncoder(cfg.Encoder)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}
	driver, err := batch.NewDriver(batch.Options{
		Geometry:      geom,
		OutputDir:     *output,
		OutputDirName: cfg.OutputDirName,
		Recursive:     cfg.Recursive,
		Extensions:    cfg.Extensions,
		MatchSize:     cfg.MatchSize,
		Workers:       cfg.Workers,
		Encoder:       enc,
	}, logger)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}

	typ := geom.Preset
	if typ == "" {
		typ = "Custom"
	}
	fmt.Fprintf(stdout, "Settings: Type=%s, Size=%dx%d, Format=%s, Encoder=%s\n", typ, geom.Width, geom.Height, geom.Layout, enc.Name())
	logger.Debug("starting", "version", version.String(), "workers", cfg.Workers, "extensions", cfg.Extensions)

	report, err := driver.Run(ctx, input)
	if report != nil && *reportPath != "" {
		if werr := report.SaveYAML(*reportPath); werr != nil {
			logger.Error("write report", "path", *reportPath, "err", werr)
		}
	}
	switch {
	case errors.Is(err, batch.ErrNoInputs):
		fmt.Fprintf(stdout, "No matching files found (%s).\n", strings.Join(cfg.Extensions, ", "))
		return exitFailed
	case err != nil:
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailed
	}

	if len(report.Results) == 1 && !report.Results[0].OK() {
		fmt.Fprintf(stderr, "Error: %s: %v\n", report.Results[0].Input, report.Results[0].Err)
	}
	report.Summary(stdout)

	switch {
	case ctx.Err() != nil:
		return exitInterrupted
	case !report.OK():
		return exitFailed
	}
	return exitOK
}

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/banshee-data/simlidar/internal/config"
)

type options struct {
	cfg         *config.ViewerConfig
	maxTicks    int
	seed        uint64
	debug       bool
	showVersion bool
}

// parseFlags loads the config file named by -config (or the built-in
// defaults) and applies every flag given on the command line on top of it.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("lidar-viewer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to a JSON viewer config (default: built-in defaults)")
	maxTicks := fs.Int("max-ticks", 0, "Stop after this many simulation ticks (0 runs until interrupted)")
	seed := fs.Uint64("seed", 1, "Seed for the synthetic world and spawn point choice")
	debug := fs.Bool("debug", false, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Print the version and exit")

	host := fs.String("host", "localhost", "IP of the simulator host, or the ingest bind address")
	port := fs.Int("port", 2000, "TCP port of the simulator, or the ingest listen port")
	timeout := fs.String("timeout", "2s", "Simulator response timeout")
	source := fs.String("source", config.SourceSynthetic, "Frame source: synthetic or ingest")
	noRendering := fs.Bool("no-rendering", false, "Use the simulator's no-rendering mode")
	semantic := fs.Bool("semantic", false, "Use the semantic sensor, which provides ground truth tags")
	noNoise := fs.Bool("no-noise", false, "Remove drop-off and noise from the raycast sensor")
	noAutopilot := fs.Bool("no-autopilot", false, "Disable the autopilot so the vehicle remains stopped")
	showAxis := fs.Bool("show-axis", false, "Show the cartesian axes in rendered views")
	filter := fs.String("filter", "model3", "Vehicle blueprint filter")
	upperFOV := fs.Float64("upper-fov", 15.0, "Sensor upper field of view in degrees")
	lowerFOV := fs.Float64("lower-fov", -25.0, "Sensor lower field of view in degrees")
	channels := fs.Float64("channels", 64.0, "Sensor channel count")
	rangeM := fs.Float64("range", 30.0, "Sensor maximum range in meters")
	pps := fs.Int("points-per-second", 500000, "Sensor points per second")
	offX := fs.Float64("x", 0, "Sensor offset along X in meters")
	offY := fs.Float64("y", 0, "Sensor offset along Y in meters")
	offZ := fs.Float64("z", 0, "Sensor offset along Z in meters")
	cosShading := fs.Bool("cos-shading", false, "Shade semantic points by incidence angle")
	record := fs.Bool("record", false, "Record point clouds as snapshot files")
	recordingsDir := fs.String("recordings-dir", "recordings", "Parent directory for recording sessions")
	format := fs.String("format", "ply", "Snapshot format: ply or pcd")
	threshold := fs.Int("point-diff-threshold", 100, "Minimum point count change between snapshots")
	dbPath := fs.String("db", "", "Path to the session catalogue database (empty disables it)")
	renderHTML := fs.String("render-html", "", "Write an interactive 3D page to this path")
	renderPNG := fs.String("render-png", "", "Write a top-down image to this path")
	renderEvery := fs.Int("render-every", 10, "Rewrite rendered files every N updates")
	httpListen := fs.String("http", "", "Monitor HTTP listen address (empty disables it)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := config.DefaultViewerConfig()
	if *configPath != "" {
		loaded, err := config.LoadViewerConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = host
		case "port":
			cfg.Port = port
		case "timeout":
			cfg.Timeout = timeout
		case "source":
			cfg.Source = source
		case "no-rendering":
			cfg.NoRendering = noRendering
		case "semantic":
			cfg.Semantic = semantic
		case "no-noise":
			cfg.NoNoise = noNoise
		case "no-autopilot":
			autopilot := !*noAutopilot
			cfg.Autopilot = &autopilot
		case "show-axis":
			cfg.ShowAxis = showAxis
		case "filter":
			cfg.VehicleFilter = filter
		case "upper-fov":
			cfg.UpperFOV = upperFOV
		case "lower-fov":
			cfg.LowerFOV = lowerFOV
		case "channels":
			cfg.Channels = channels
		case "range":
			cfg.Range = rangeM
		case "points-per-second":
			cfg.PointsPerSecond = pps
		case "x":
			cfg.OffsetX = offX
		case "y":
			cfg.OffsetY = offY
		case "z":
			cfg.OffsetZ = offZ
		case "cos-shading":
			cfg.CosShading = cosShading
		case "record":
			cfg.Record = record
		case "recordings-dir":
			cfg.RecordingsDir = recordingsDir
		case "format":
			cfg.SnapshotFormat = format
		case "point-diff-threshold":
			cfg.PointDiffThreshold = threshold
		case "db":
			cfg.DBPath = dbPath
		case "render-html":
			cfg.RenderHTML = renderHTML
		case "render-png":
			cfg.RenderPNG = renderPNG
		case "render-every":
			cfg.RenderEvery = renderEvery
		case "http":
			cfg.HTTPListen = httpListen
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	if *maxTicks < 0 {
		return nil, fmt.Errorf("max-ticks must be non-negative, got %d", *maxTicks)
	}

	return &options{
		cfg:         cfg,
		maxTicks:    *maxTicks,
		seed:        *seed,
		debug:       *debug,
		showVersion: *showVersion,
	}, nil
}

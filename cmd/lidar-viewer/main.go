// Command lidar-viewer attaches a simulated ranging sensor to a vehicle,
// decodes every frame it delivers into a coloured point set and renders,
// records and catalogues the result until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"maps"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/simlidar/internal/config"
	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/ingest"
	"github.com/banshee-data/simlidar/internal/lidar/monitor"
	"github.com/banshee-data/simlidar/internal/lidar/palette"
	"github.com/banshee-data/simlidar/internal/lidar/parse"
	"github.com/banshee-data/simlidar/internal/lidar/pipeline"
	"github.com/banshee-data/simlidar/internal/lidar/recorder"
	"github.com/banshee-data/simlidar/internal/lidar/sim"
	"github.com/banshee-data/simlidar/internal/lidar/visualiser"
	"github.com/banshee-data/simlidar/internal/lidardb"
	"github.com/banshee-data/simlidar/internal/monitoring"
	"github.com/banshee-data/simlidar/internal/version"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("lidar-viewer: %v", err)
	}
	if opts.showVersion {
		fmt.Println("lidar-viewer", version.String())
		return
	}
	monitoring.SetDebug(opts.debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, opts)
	if ctx.Err() != nil {
		log.Print(" - Exited by user.")
	}
	if err != nil {
		log.Printf("lidar-viewer: %v", err)
		stop()
		os.Exit(1)
	}
	log.Printf("Graceful shutdown complete after %d ticks (%d snapshots)", res.Ticks, res.Snapshots)
}

// result is what a finished run reports back to main and to tests.
type result struct {
	pipeline.LoopStats
	SessionID    string
	RecordingDir string
	EndReason    string
}

// run owns every resource of one viewing session. All of them are released
// before it returns, whichever way the loop ended.
func run(ctx context.Context, opts *options) (res result, err error) {
	cfg := opts.cfg

	kind := lidar.SensorRaycast
	if cfg.GetSemantic() {
		kind = lidar.SensorSemantic
	}
	bp, err := sim.BlueprintFor(sim.BlueprintOptions{
		Semantic:        cfg.GetSemantic(),
		NoNoise:         cfg.GetNoNoise(),
		UpperFOV:        cfg.GetUpperFOV(),
		LowerFOV:        cfg.GetLowerFOV(),
		Channels:        cfg.GetChannels(),
		Range:           cfg.GetRange(),
		PointsPerSecond: cfg.GetPointsPerSecond(),
		DeltaSeconds:    cfg.GetDeltaSeconds(),
	})
	if err != nil {
		return res, fmt.Errorf("sensor blueprint: %w", err)
	}

	// Background services stop when run returns.
	bgCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	var (
		world     sim.World
		ingestSrv *ingest.Server
	)
	switch cfg.GetSource() {
	case config.SourceIngest:
		addr := net.JoinHostPort(cfg.GetHost(), strconv.Itoa(cfg.GetPort()))
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return res, fmt.Errorf("ingest listen: %w", err)
		}
		ingestSrv = ingest.NewServer(kind)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ingestSrv.Serve(bgCtx, lis); err != nil {
				monitoring.Logf("[Ingest] server error: %v", err)
			}
		}()
		world = ingest.NewWorld(ingestSrv, cfg.GetTimeout())
		monitoring.Logf("[Viewer] waiting for %s frames on %s", kind, addr)
	default:
		synth := sim.DefaultSyntheticConfig()
		synth.Seed = opts.seed
		world = sim.NewSynthetic(synth)
	}

	actors := palette.NewSeededActorColorTable(opts.seed)
	decoder, err := parse.NewDecoder(kind, actors)
	if err != nil {
		return res, err
	}
	if sd, ok := decoder.(*parse.SemanticDecoder); ok {
		sd.ShadeByCosAngle = cfg.GetCosShading()
	}

	stats := lidar.NewFrameStats()
	listener := pipeline.NewListener(pipeline.ListenerConfig{Decoder: decoder, Stats: stats})

	ox, oy, oz := cfg.GetOffset()
	session, err := pipeline.OpenSession(world, pipeline.SessionConfig{
		DeltaSeconds:  cfg.GetDeltaSeconds(),
		NoRendering:   cfg.GetNoRendering(),
		VehicleFilter: cfg.GetVehicleFilter(),
		Autopilot:     cfg.GetAutopilot(),
		Blueprint:     bp,
		Offset:        sim.Location{X: ox, Y: oy, Z: oz},
		Actors:        actors,
		Rand:          rand.New(rand.NewPCG(opts.seed, opts.seed)),
	}, buildRenderer(cfg, kind), listener.OnFrame)
	if err != nil {
		return res, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("teardown: %w", cerr))
		}
	}()

	loopCfg := pipeline.LoopConfig{
		Source:          listener,
		Renderer:        session.Renderer(),
		World:           world,
		RegisterAtFrame: cfg.GetRegisterAtFrame(),
		FrameSleep:      cfg.GetFrameSleep(),
		StatsInterval:   cfg.GetStatsInterval(),
		MaxTicks:        opts.maxTicks,
		Stats:           stats,
	}
	if loopCfg.RegisterAtFrame == 0 {
		loopCfg.RegisterAtFrame = -1
	}

	var rec *recorder.Recorder
	if cfg.GetRecord() {
		rec, err = recorder.NewRecorder(recorder.Config{
			Root:   cfg.GetRecordingsDir(),
			Format: cfg.GetSnapshotFormat(),
			Kind:   kind,
		})
		if err != nil {
			return res, err
		}
		defer func() {
			if cerr := rec.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close recorder: %w", cerr))
			}
		}()
		res.RecordingDir = rec.Dir()
		loopCfg.Recorder = rec
		loopCfg.Policy = pipeline.NewRecordPolicy(cfg.GetPointDiffThreshold())
	}

	var ldb *lidardb.LidarDB
	if path := cfg.GetDBPath(); path != "" {
		ldb, err = lidardb.Open(path)
		if err != nil {
			return res, fmt.Errorf("open catalogue: %w", err)
		}
		defer ldb.Close()

		attrs := maps.Clone(bp.Attributes)
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs["blueprint"] = bp.ID
		res.SessionID, err = ldb.StartSession(lidardb.Session{
			SensorKind:     kind.String(),
			Source:         cfg.GetSource(),
			Blueprint:      attrs,
			RecordingDir:   res.RecordingDir,
			SnapshotFormat: cfg.GetSnapshotFormat(),
		})
		if err != nil {
			return res, err
		}
		monitoring.Logf("[Viewer] catalogue session %s", res.SessionID)
		loopCfg.OnSnapshot = catalogueSnapshot(ldb, res.SessionID)
	}

	loop := pipeline.NewLoop(loopCfg)

	if addr := cfg.GetHTTPListen(); addr != "" {
		wcfg := monitor.WebServerConfig{
			Address:       addr,
			SensorKind:    kind,
			Source:        cfg.GetSource(),
			Store:         listener.Store(),
			Stats:         stats,
			Loop:          loop,
			DB:            ldb,
			RecordingsDir: cfg.GetRecordingsDir(),
			MaxViewPoints: cfg.GetMaxViewPoints(),
		}
		if ingestSrv != nil {
			wcfg.Ingest = ingestSrv
		}
		ws := monitor.NewWebServer(wcfg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Start(bgCtx); err != nil {
				monitoring.Logf("[Monitor] %v", err)
			}
		}()
	}

	loopStats, runErr := loop.Run(ctx)
	cancel()
	res.LoopStats = loopStats
	res.EndReason = endReason(ctx, runErr, opts.maxTicks, loopStats)
	monitoring.Logf("[Viewer] loop ended after %d ticks: %s", loopStats.Ticks, res.EndReason)

	if ldb != nil {
		if err := ldb.EndSession(res.SessionID, time.Now(), loopStats.Ticks, res.EndReason); err != nil {
			monitoring.Logf("[Viewer] failed to close catalogue session: %v", err)
		}
	}
	return res, runErr
}

// buildRenderer always renders headless and adds a file renderer for each
// configured output.
func buildRenderer(cfg *config.ViewerConfig, kind lidar.SensorKind) pipeline.Renderer {
	title := fmt.Sprintf("Simulated %s LiDAR", kind)
	renderers := visualiser.Multi{visualiser.NewHeadless()}
	if path := cfg.GetRenderHTML(); path != "" {
		renderers = append(renderers, visualiser.NewEChartsRenderer(visualiser.EChartsConfig{
			Path:      path,
			Title:     title,
			Every:     cfg.GetRenderEvery(),
			MaxPoints: cfg.GetMaxViewPoints(),
			ShowAxis:  cfg.GetShowAxis(),
		}))
	}
	if path := cfg.GetRenderPNG(); path != "" {
		renderers = append(renderers, visualiser.NewPlotRenderer(visualiser.PlotConfig{
			Path:      path,
			Title:     title,
			Every:     cfg.GetRenderEvery(),
			MaxPoints: cfg.GetMaxViewPoints(),
			ShowAxis:  cfg.GetShowAxis(),
		}))
	}
	if len(renderers) == 1 {
		return renderers[0]
	}
	return renderers
}

func catalogueSnapshot(ldb *lidardb.LidarDB, sessionID string) func(int, string, *lidar.Frame) {
	return func(index int, path string, f *lidar.Frame) {
		var size int64
		if fi, err := os.Stat(path); err == nil {
			size = fi.Size()
		}
		if _, err := ldb.RecordSnapshot(lidardb.Snapshot{
			SessionID: sessionID,
			Index:     index,
			Seq:       f.Seq,
			Points:    f.Points.Len(),
			File:      path,
			Bytes:     size,
		}); err != nil {
			monitoring.Logf("[Viewer] failed to catalogue snapshot %d: %v", index, err)
		}
	}
}

func endReason(ctx context.Context, runErr error, maxTicks int, st pipeline.LoopStats) string {
	switch {
	case runErr != nil:
		return "error: " + runErr.Error()
	case ctx.Err() != nil:
		return "interrupted"
	case maxTicks > 0 && st.Ticks >= maxTicks:
		return "max_ticks"
	default:
		return "window_closed"
	}
}

// Command frame-pusher plays the simulator side of the ingest bridge: it
// streams raw sensor buffers to a lidar-viewer running with source=ingest.
// Frames come from the built-in synthetic world or from a directory of
// .bin files holding one raw buffer each.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/ingest"
	"github.com/banshee-data/simlidar/internal/lidar/sim"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

var (
	target   = flag.String("target", "localhost:2000", "Ingest server address")
	kindName = flag.String("kind", "raycast", "Sensor kind: raycast or semantic")
	rate     = flag.Float64("rate", 20, "Frames per second")
	count    = flag.Int("count", 0, "Stop after this many frames (0 runs until interrupted)")
	dir      = flag.String("dir", "", "Directory of raw .bin frames to replay in name order (default: synthetic)")
	seed     = flag.Uint64("seed", 1, "Seed for the synthetic world")
	pps      = flag.Int("points-per-second", 100000, "Synthetic sensor points per second")
)

func main() {
	flag.Parse()

	kind, ok := lidar.ParseSensorKind(*kindName)
	if !ok {
		log.Fatalf("unknown sensor kind %q", *kindName)
	}
	if *rate <= 0 {
		log.Fatalf("rate must be positive, got %f", *rate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var src frameSource
	var err error
	if *dir != "" {
		src, err = newDirSource(*dir)
	} else {
		src, err = newSyntheticSource(kind, *seed, *pps, 1 / *rate)
	}
	if err != nil {
		log.Fatalf("frame source: %v", err)
	}

	client, err := ingest.Dial(*target)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer client.Close()

	sent, err := push(ctx, client, kind, src, *count, time.Duration(float64(time.Second) / *rate))
	log.Printf("sent %d frames to %s", sent, *target)
	if err != nil {
		log.Printf("push failed: %v", err)
		stop()
		os.Exit(1)
	}
}

// frameSource yields raw sensor buffers.
type frameSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// push streams frames from src at one per interval until count frames are
// sent (count 0 means no limit) or ctx is done. Cancellation is a normal
// exit; the stream is closed and acknowledged either way.
func push(ctx context.Context, client *ingest.Client, kind lidar.SensorKind, src frameSource, count int, interval time.Duration) (int, error) {
	// The stream outlives ctx so the half-close still reaches the server.
	stream, err := client.PushFrames(context.WithoutCancel(ctx), kind)
	if err != nil {
		return 0, err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var sendErr error
	for count == 0 || stream.Sent() < count {
		raw, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				sendErr = fmt.Errorf("next frame: %w", err)
			}
			break
		}
		if err := stream.Send(raw); err != nil {
			// The server's reason arrives with CloseAndRecv.
			break
		}
		monitoring.Debugf("[Pusher] frame %d: %d bytes", stream.Sent(), len(raw))

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err := stream.CloseAndRecv(); err != nil {
		return stream.Sent(), errors.Join(sendErr, fmt.Errorf("close stream: %w", err))
	}
	return stream.Sent(), sendErr
}

// syntheticSource ticks an in-process world and returns what its sensor
// captured.
type syntheticSource struct {
	world *sim.Synthetic
	last  []byte
}

func newSyntheticSource(kind lidar.SensorKind, seed uint64, pointsPerSecond int, delta float64) (*syntheticSource, error) {
	cfg := sim.DefaultSyntheticConfig()
	cfg.Seed = seed
	world := sim.NewSynthetic(cfg)
	if err := world.ApplySettings(sim.Settings{SynchronousMode: true, FixedDeltaSeconds: delta}); err != nil {
		return nil, err
	}

	bp, err := sim.BlueprintFor(sim.BlueprintOptions{
		Semantic:        kind == lidar.SensorSemantic,
		UpperFOV:        15,
		LowerFOV:        -25,
		Channels:        32,
		Range:           30,
		PointsPerSecond: pointsPerSecond,
		DeltaSeconds:    delta,
	})
	if err != nil {
		return nil, err
	}
	spawns, err := world.SpawnPoints()
	if err != nil {
		return nil, err
	}
	if len(spawns) == 0 {
		return nil, sim.ErrNoSpawnPoints
	}
	vehicle, err := world.SpawnVehicle("model3", spawns[0], true)
	if err != nil {
		return nil, err
	}
	sensor, err := world.SpawnSensor(bp, sim.MountTransform(sim.Location{}), vehicle)
	if err != nil {
		return nil, err
	}

	s := &syntheticSource{world: world}
	if err := sensor.Listen(func(raw []byte) {
		s.last = append(s.last[:0], raw...)
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *syntheticSource) Next(ctx context.Context) ([]byte, error) {
	s.last = s.last[:0]
	if _, err := s.world.Tick(ctx); err != nil {
		return nil, err
	}
	out := make([]byte, len(s.last))
	copy(out, s.last)
	return out, nil
}

// dirSource replays .bin files in name order, wrapping around at the end.
type dirSource struct {
	files []string
	next  int
}

func newDirSource(dir string) (*dirSource, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.bin"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .bin frames in %s", dir)
	}
	sort.Strings(files)
	return &dirSource{files: files}, nil
}

func (d *dirSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	return os.ReadFile(path)
}

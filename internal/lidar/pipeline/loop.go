package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/monitoring"
	"github.com/banshee-data/simlidar/internal/timeutil"
)

// State is the loop's position in the per-frame cycle.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateAccumulating
	StateSwapped
	StateRendered
	StateRecorded
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateAccumulating:
		return "accumulating"
	case StateSwapped:
		return "swapped"
	case StateRendered:
		return "rendered"
	case StateRecorded:
		return "recorded"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Ticker advances the simulation by one fixed step.
type Ticker interface {
	Tick(ctx context.Context) (uint64, error)
}

// FrameSource is where the loop reads frames from. Done and Err report a
// fatal listener failure.
type FrameSource interface {
	Store() *lidar.FrameStore
	Done() <-chan struct{}
	Err() error
}

// Defaults for LoopConfig fields left zero.
const (
	DefaultRegisterAtFrame = 2
	DefaultFrameSleep      = 5 * time.Millisecond
	DefaultStatsInterval   = 5 * time.Second
)

// LoopConfig holds the loop's collaborators and tuning.
type LoopConfig struct {
	Source   FrameSource
	Renderer Renderer
	World    Ticker

	// Recorder and Policy are both required for recording; either nil
	// disables it.
	Recorder SnapshotSink
	Policy   *RecordPolicy

	// OnSnapshotError is called for every failed snapshot write. The loop
	// keeps running regardless.
	OnSnapshotError func(index int, err error)
	// OnSnapshot is called after each successful snapshot write.
	OnSnapshot func(index int, path string, f *lidar.Frame)

	// RegisterAtFrame is the tick on which geometry is handed to the
	// renderer. Use a negative value for tick 0.
	RegisterAtFrame int
	FrameSleep      time.Duration
	StatsInterval   time.Duration
	// MaxTicks stops the loop after this many ticks; zero runs until
	// cancelled.
	MaxTicks int

	Clock timeutil.Clock
	Stats *lidar.FrameStats
}

// LoopStats summarises a finished run.
type LoopStats struct {
	Ticks          int
	Updates        int
	Registered     bool
	Snapshots      int
	SnapshotErrors int
	LastPoints     int
}

// Loop runs the tick/render/record cycle.
type Loop struct {
	cfg   LoopConfig
	state atomic.Int32
}

// NewLoop creates a loop, filling in defaults.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.RegisterAtFrame == 0 {
		cfg.RegisterAtFrame = DefaultRegisterAtFrame
	} else if cfg.RegisterAtFrame < 0 {
		cfg.RegisterAtFrame = 0
	}
	if cfg.FrameSleep == 0 {
		cfg.FrameSleep = DefaultFrameSleep
	}
	if cfg.StatsInterval == 0 {
		cfg.StatsInterval = DefaultStatsInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Loop{cfg: cfg}
}

// State returns the current state.
func (l *Loop) State() State { return State(l.state.Load()) }

func (l *Loop) setState(s State) { l.state.Store(int32(s)) }

// Run executes ticks until ctx is cancelled, the renderer reports the window
// closed, MaxTicks is reached or a collaborator fails. Cancellation and a
// closed window are normal exits and return a nil error.
func (l *Loop) Run(ctx context.Context) (LoopStats, error) {
	var st LoopStats
	cfg := l.cfg
	clock := cfg.Clock
	defer l.setState(StateStopped)

	l.setState(StateListening)
	lastLog := clock.Now()
	lastTick := clock.Now()
	var fpsSum float64

	for tick := 0; cfg.MaxTicks == 0 || tick < cfg.MaxTicks; tick++ {
		select {
		case <-ctx.Done():
			return st, nil
		case <-cfg.Source.Done():
			return st, cfg.Source.Err()
		default:
		}

		l.setState(StateAccumulating)
		f := cfg.Source.Store().Latest()
		ps := framePoints(f)

		if tick == cfg.RegisterAtFrame && !st.Registered {
			if err := cfg.Renderer.Register(ps); err != nil {
				return st, fmt.Errorf("register geometry: %w", err)
			}
			st.Registered = true
		}
		if st.Registered {
			if err := cfg.Renderer.Update(ps); err != nil {
				return st, fmt.Errorf("update geometry: %w", err)
			}
			st.Updates++
		}
		st.LastPoints = ps.Len()
		l.setState(StateSwapped)

		if err := cfg.Renderer.Render(); err != nil {
			if errors.Is(err, ErrWindowClosed) {
				monitoring.Logf("[Pipeline] render window closed after %d ticks", st.Ticks)
				return st, nil
			}
			return st, fmt.Errorf("render: %w", err)
		}
		if cfg.Stats != nil {
			cfg.Stats.AddRender()
		}
		l.setState(StateRendered)

		if l.record(tick, f, &st) {
			l.setState(StateRecorded)
		}

		clock.Sleep(cfg.FrameSleep)
		if _, err := cfg.World.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return st, nil
			}
			return st, fmt.Errorf("world tick %d: %w", tick, err)
		}
		st.Ticks++

		if dt := clock.Since(lastTick); dt > 0 {
			fpsSum += 1 / dt.Seconds()
		}
		lastTick = clock.Now()

		if clock.Since(lastLog) >= cfg.StatsInterval {
			if cfg.Stats != nil {
				if msg := cfg.Stats.GetAndReset().Format(); msg != "" {
					monitoring.Logf("%s", msg)
				}
			}
			monitoring.Logf("[Pipeline] FPS: %.1f over %d ticks", fpsSum/float64(st.Ticks), st.Ticks)
			lastLog = clock.Now()
		}
	}
	return st, nil
}

// record writes a snapshot when recording is enabled and the policy agrees.
// It returns true when a snapshot was written.
func (l *Loop) record(tick int, f *lidar.Frame, st *LoopStats) bool {
	cfg := l.cfg
	if cfg.Recorder == nil || cfg.Policy == nil || f == nil {
		return false
	}
	n := f.Points.Len()
	if !cfg.Policy.ShouldRecord(n) {
		return false
	}
	path, err := cfg.Recorder.Snapshot(tick, f)
	if cfg.Stats != nil {
		cfg.Stats.AddSnapshot(err)
	}
	if err != nil {
		st.SnapshotErrors++
		if cfg.OnSnapshotError != nil {
			cfg.OnSnapshotError(tick, err)
		} else {
			monitoring.Logf("[Pipeline] snapshot %d failed: %v", tick, err)
		}
		return false
	}
	cfg.Policy.Commit(n)
	st.Snapshots++
	if cfg.OnSnapshot != nil {
		cfg.OnSnapshot(tick, path, f)
	}
	return true
}

var emptyPoints = lidar.NewPointSet(0)

func framePoints(f *lidar.Frame) *lidar.PointSet {
	if f == nil || f.Points == nil {
		return emptyPoints
	}
	return f.Points
}

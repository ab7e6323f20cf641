package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/parse"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

// FrameStatsInterface records listener throughput.
type FrameStatsInterface interface {
	AddFrame(bytes, points int)
	AddDropped()
}

// noopStats is a FrameStatsInterface that does nothing.
type noopStats struct{}

func (noopStats) AddFrame(bytes, points int) {}
func (noopStats) AddDropped()                {}

// Listener turns sensor callbacks into published frames.
//
// OnFrame never blocks. At most one decode runs at a time; a buffer that
// arrives while a decode is in flight waits in a single pending slot, and a
// newer arrival replaces it. The first decode error is latched: Done is
// closed, Err reports it and further frames are ignored.
type Listener struct {
	decoder parse.Decoder
	store   *lidar.FrameStore
	stats   FrameStatsInterface

	decodeMu sync.Mutex
	pending  atomic.Pointer[[]byte]

	decoded atomic.Uint64
	dropped atomic.Uint64

	errOnce sync.Once
	err     atomic.Pointer[error]
	done    chan struct{}
}

// ListenerConfig contains the listener's collaborators.
type ListenerConfig struct {
	Decoder parse.Decoder
	Store   *lidar.FrameStore
	Stats   FrameStatsInterface
}

// NewListener creates a Listener publishing into cfg.Store.
func NewListener(cfg ListenerConfig) *Listener {
	stats := cfg.Stats
	if stats == nil {
		stats = noopStats{}
	}
	store := cfg.Store
	if store == nil {
		store = &lidar.FrameStore{}
	}
	return &Listener{
		decoder: cfg.Decoder,
		store:   store,
		stats:   stats,
		done:    make(chan struct{}),
	}
}

// Store returns the frame store the listener publishes to.
func (l *Listener) Store() *lidar.FrameStore { return l.store }

// OnFrame is the sensor callback. raw is copied before OnFrame returns.
func (l *Listener) OnFrame(raw []byte) {
	if l.err.Load() != nil {
		return
	}
	buf := append([]byte(nil), raw...)
	if prev := l.pending.Swap(&buf); prev != nil {
		l.dropped.Add(1)
		l.stats.AddDropped()
	}
	l.drain()
}

// drain decodes pending buffers until the slot is empty, unless another
// goroutine already holds the decoder.
func (l *Listener) drain() {
	for {
		if !l.decodeMu.TryLock() {
			return
		}
		for p := l.pending.Swap(nil); p != nil; p = l.pending.Swap(nil) {
			l.decode(*p)
		}
		l.decodeMu.Unlock()
		// A buffer may have landed between the last Swap and Unlock.
		if l.pending.Load() == nil {
			return
		}
	}
}

func (l *Listener) decode(raw []byte) {
	if l.err.Load() != nil {
		return
	}
	f, err := l.decoder.Decode(raw)
	if err != nil {
		l.fail(fmt.Errorf("decode %s frame (%d bytes): %w", l.decoder.Kind(), len(raw), err))
		return
	}
	l.store.Swap(f)
	l.decoded.Add(1)
	l.stats.AddFrame(len(raw), f.Points.Len())
	monitoring.Debugf("[Pipeline] frame %d: %d of %d points in %v", f.Seq, f.Points.Len(), f.RawPoints, f.DecodeDuration)
}

func (l *Listener) fail(err error) {
	l.errOnce.Do(func() {
		l.err.Store(&err)
		l.pending.Store(nil)
		monitoring.Logf("[Pipeline] listener stopped: %v", err)
		close(l.done)
	})
}

// Done is closed when the listener has latched a decode error.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Err returns the latched decode error, if any.
func (l *Listener) Err() error {
	if p := l.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Decoded returns the number of frames published.
func (l *Listener) Decoded() uint64 { return l.decoded.Load() }

// Dropped returns the number of buffers replaced before they were decoded.
func (l *Listener) Dropped() uint64 { return l.dropped.Load() }

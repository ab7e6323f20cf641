package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/sim"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

// DefaultTickTimeout bounds how long Tick waits for the producer.
const DefaultTickTimeout = 2 * time.Second

// ErrTickTimeout is returned by Tick when no frame arrived in time.
var ErrTickTimeout = errors.New("timed out waiting for an ingested frame")

// World adapts a Server to sim.World. The producer owns the real scene, so
// spawned actors are placeholders and each Tick waits for the next pushed
// frame.
type World struct {
	server  *Server
	timeout time.Duration

	mu       sync.Mutex
	settings sim.Settings
	tmSync   bool
	nextID   uint32
	frame    uint64
	actors   map[uint32]*actor
	sensors  map[uint32]*sensor
}

var _ sim.World = (*World)(nil)

type actor struct {
	world *World
	id    uint32
}

type sensor struct {
	actor
	kind lidar.SensorKind
	fn   func([]byte)
}

// NewWorld returns a world fed by server. timeout <= 0 selects
// DefaultTickTimeout.
func NewWorld(server *Server, timeout time.Duration) *World {
	if timeout <= 0 {
		timeout = DefaultTickTimeout
	}
	return &World{
		server:  server,
		timeout: timeout,
		actors:  make(map[uint32]*actor),
		sensors: make(map[uint32]*sensor),
	}
}

// Settings implements sim.World.
func (w *World) Settings() (sim.Settings, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings, nil
}

// ApplySettings implements sim.World. The producer sets its own pace, so
// settings are only recorded.
func (w *World) ApplySettings(s sim.Settings) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settings = s
	return nil
}

// SetTrafficManagerSync implements sim.World.
func (w *World) SetTrafficManagerSync(enabled bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tmSync = enabled
	return nil
}

// SpawnPoints implements sim.World with a single origin spawn point.
func (w *World) SpawnPoints() ([]sim.Transform, error) {
	return []sim.Transform{{}}, nil
}

// SpawnVehicle implements sim.World with a placeholder actor.
func (w *World) SpawnVehicle(filter string, at sim.Transform, autopilot bool) (sim.Actor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a := w.newActorLocked()
	monitoring.Logf("[Ingest] placeholder vehicle %d for filter %q", a.id, filter)
	return a, nil
}

// SpawnSensor implements sim.World. The blueprint must describe the layout
// the server accepts.
func (w *World) SpawnSensor(bp sim.SensorBlueprint, at sim.Transform, parent sim.Actor) (sim.Sensor, error) {
	kind, err := bp.Kind()
	if err != nil {
		return nil, err
	}
	if kind != w.server.Kind() {
		return nil, fmt.Errorf("ingest server accepts %s frames, blueprint %s produces %s", w.server.Kind(), bp.ID, kind)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if parent != nil {
		if _, ok := w.actors[parent.ID()]; !ok {
			return nil, fmt.Errorf("parent %d: %w", parent.ID(), sim.ErrActorDestroyed)
		}
	}
	a := w.newActorLocked()
	s := &sensor{actor: *a, kind: kind}
	w.sensors[s.id] = s
	return s, nil
}

func (w *World) newActorLocked() *actor {
	w.nextID++
	a := &actor{world: w, id: w.nextID}
	w.actors[a.id] = a
	return a
}

// ActorIDs implements sim.World.
func (w *World) ActorIDs() ([]uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]uint32, 0, len(w.actors))
	for id := range w.actors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Tick waits for the next ingested frame and hands it to every listening
// sensor on the caller's goroutine.
func (w *World) Tick(ctx context.Context) (uint64, error) {
	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	var raw []byte
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
		return 0, fmt.Errorf("%w after %v", ErrTickTimeout, w.timeout)
	case raw = <-w.server.Frames():
	}

	w.mu.Lock()
	w.frame++
	frame := w.frame
	var fns []func([]byte)
	ids := make([]uint32, 0, len(w.sensors))
	for id := range w.sensors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if fn := w.sensors[id].fn; fn != nil {
			fns = append(fns, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(raw)
	}
	return frame, nil
}

// ID implements sim.Actor.
func (a *actor) ID() uint32 { return a.id }

// Destroy implements sim.Actor.
func (a *actor) Destroy() error {
	w := a.world
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.actors[a.id]; !ok {
		return fmt.Errorf("actor %d: %w", a.id, sim.ErrActorDestroyed)
	}
	delete(w.actors, a.id)
	delete(w.sensors, a.id)
	return nil
}

// Kind implements sim.Sensor.
func (s *sensor) Kind() lidar.SensorKind { return s.kind }

// Listen implements sim.Sensor.
func (s *sensor) Listen(fn func(raw []byte)) error {
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sensors[s.id]; !ok {
		return fmt.Errorf("sensor %d: %w", s.id, sim.ErrActorDestroyed)
	}
	s.fn = fn
	return nil
}

// Stop implements sim.Sensor.
func (s *sensor) Stop() error {
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()
	s.fn = nil
	return nil
}

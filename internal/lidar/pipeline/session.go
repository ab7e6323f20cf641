package pipeline

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/banshee-data/simlidar/internal/lidar/palette"
	"github.com/banshee-data/simlidar/internal/lidar/sim"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

// SessionConfig describes the simulator resources a session acquires.
type SessionConfig struct {
	DeltaSeconds  float64
	NoRendering   bool
	VehicleFilter string
	Autopilot     bool
	Blueprint     sim.SensorBlueprint
	Offset        sim.Location

	// Actors, when set, is seeded with a colour for every actor already in
	// the world.
	Actors *palette.ActorColorTable
	// Rand picks the spawn point. Nil uses the global source.
	Rand *rand.Rand
}

// Session owns the world settings, vehicle, sensor and renderer for one
// viewing run. Close releases them in a fixed order: world settings,
// traffic-manager sync, sensor subscription, vehicle, sensor, renderer.
type Session struct {
	world    sim.World
	renderer Renderer

	original    sim.Settings
	savedConfig bool
	tmSync      bool
	vehicle     sim.Actor
	sensor      sim.Sensor
	listening   bool

	closeOnce sync.Once
	closeErr  error
}

// OpenSession acquires the session's resources and subscribes onFrame to the
// sensor. The session takes ownership of renderer. If any step fails,
// everything acquired so far is released and the joined errors returned.
func OpenSession(world sim.World, cfg SessionConfig, renderer Renderer, onFrame func(raw []byte)) (*Session, error) {
	s := &Session{world: world, renderer: renderer}
	if err := s.open(cfg, onFrame); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

func (s *Session) open(cfg SessionConfig, onFrame func(raw []byte)) error {
	if cfg.Actors != nil {
		ids, err := s.world.ActorIDs()
		if err != nil {
			return fmt.Errorf("list actors: %w", err)
		}
		n := cfg.Actors.AssignAll(ids)
		monitoring.Logf("[Session] assigned colours to %d actors", n)
	}

	orig, err := s.world.Settings()
	if err != nil {
		return fmt.Errorf("read world settings: %w", err)
	}
	s.original = orig
	s.savedConfig = true

	if err := s.world.SetTrafficManagerSync(true); err != nil {
		return fmt.Errorf("enable traffic manager sync: %w", err)
	}
	s.tmSync = true

	if err := s.world.ApplySettings(sim.Settings{
		SynchronousMode:   true,
		FixedDeltaSeconds: cfg.DeltaSeconds,
		NoRenderingMode:   cfg.NoRendering,
	}); err != nil {
		return fmt.Errorf("apply world settings: %w", err)
	}

	spawns, err := s.world.SpawnPoints()
	if err != nil {
		return fmt.Errorf("list spawn points: %w", err)
	}
	if len(spawns) == 0 {
		return sim.ErrNoSpawnPoints
	}
	var pick int
	if cfg.Rand != nil {
		pick = cfg.Rand.IntN(len(spawns))
	} else {
		pick = rand.IntN(len(spawns))
	}
	vehicle, err := s.world.SpawnVehicle(cfg.VehicleFilter, spawns[pick], cfg.Autopilot)
	if err != nil {
		return fmt.Errorf("spawn vehicle %q: %w", cfg.VehicleFilter, err)
	}
	s.vehicle = vehicle

	sensor, err := s.world.SpawnSensor(cfg.Blueprint, sim.MountTransform(cfg.Offset), vehicle)
	if err != nil {
		return fmt.Errorf("spawn sensor %s: %w", cfg.Blueprint.ID, err)
	}
	s.sensor = sensor

	if err := sensor.Listen(onFrame); err != nil {
		return fmt.Errorf("subscribe sensor %d: %w", sensor.ID(), err)
	}
	s.listening = true

	monitoring.Logf("[Session] vehicle %d with %s sensor %d at spawn point %d",
		vehicle.ID(), sensor.Kind(), sensor.ID(), pick)
	return nil
}

// Sensor returns the spawned sensor.
func (s *Session) Sensor() sim.Sensor { return s.sensor }

// Vehicle returns the spawned vehicle.
func (s *Session) Vehicle() sim.Actor { return s.vehicle }

// Renderer returns the renderer owned by the session.
func (s *Session) Renderer() Renderer { return s.renderer }

// Close releases every acquired resource. Each step runs even when an
// earlier one fails; the failures are joined. Close is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.savedConfig {
			if err := s.world.ApplySettings(s.original); err != nil {
				errs = append(errs, fmt.Errorf("restore world settings: %w", err))
			}
		}
		if s.tmSync {
			if err := s.world.SetTrafficManagerSync(false); err != nil {
				errs = append(errs, fmt.Errorf("disable traffic manager sync: %w", err))
			}
		}
		if s.listening {
			if err := s.sensor.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop sensor: %w", err))
			}
		}
		if s.vehicle != nil {
			if err := s.vehicle.Destroy(); err != nil {
				errs = append(errs, fmt.Errorf("destroy vehicle %d: %w", s.vehicle.ID(), err))
			}
		}
		if s.sensor != nil {
			if err := s.sensor.Destroy(); err != nil {
				errs = append(errs, fmt.Errorf("destroy sensor %d: %w", s.sensor.ID(), err))
			}
		}
		if s.renderer != nil {
			if err := s.renderer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close renderer: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			monitoring.Logf("[Session] teardown finished with errors: %v", s.closeErr)
		} else {
			monitoring.Logf("[Session] teardown complete")
		}
	})
	return s.closeErr
}

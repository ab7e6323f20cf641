// Package sim defines the simulator collaborators the viewer drives: a
// world that advances in fixed steps, actors that can be spawned and
// destroyed, and ranging sensors that deliver raw frame buffers.
package sim

//go:generate mockgen -destination=../mocks/mock_sim.go -package=mocks github.com/banshee-data/simlidar/internal/lidar/sim World,Sensor,Actor

import (
	"context"
	"errors"

	"github.com/banshee-data/simlidar/internal/lidar"
)

// ErrNoSpawnPoints is returned when a world offers nowhere to place a vehicle.
var ErrNoSpawnPoints = errors.New("world has no spawn points")

// ErrActorDestroyed is returned by operations on an actor that no longer exists.
var ErrActorDestroyed = errors.New("actor destroyed")

// Settings are the world stepping parameters saved and restored around a session.
type Settings struct {
	SynchronousMode   bool    `json:"synchronous_mode"`
	FixedDeltaSeconds float64 `json:"fixed_delta_seconds"`
	NoRenderingMode   bool    `json:"no_rendering_mode"`
}

// Location is a position in world metres.
type Location struct {
	X, Y, Z float64
}

// Add returns the component-wise sum.
func (l Location) Add(o Location) Location {
	return Location{X: l.X + o.X, Y: l.Y + o.Y, Z: l.Z + o.Z}
}

// Rotation is an orientation in degrees.
type Rotation struct {
	Pitch, Yaw, Roll float64
}

// Transform places an actor in the world or relative to its parent.
type Transform struct {
	Location Location
	Rotation Rotation
}

// SensorMount is the sensor position relative to the vehicle before any
// user offset is applied.
var SensorMount = Location{X: -0.5, Z: 1.8}

// MountTransform returns the sensor transform for a user offset.
func MountTransform(offset Location) Transform {
	return Transform{Location: SensorMount.Add(offset)}
}

// Actor is anything spawned into the world.
type Actor interface {
	ID() uint32
	Destroy() error
}

// Sensor is a ranging sensor actor. Listen registers the callback invoked
// once per captured frame with the raw payload; the buffer is only valid for
// the duration of the call.
type Sensor interface {
	Actor
	Kind() lidar.SensorKind
	Listen(fn func(raw []byte)) error
	Stop() error
}

// World is the simulator surface used by a viewing session.
type World interface {
	Settings() (Settings, error)
	ApplySettings(s Settings) error
	SetTrafficManagerSync(enabled bool) error
	SpawnPoints() ([]Transform, error)
	SpawnVehicle(filter string, at Transform, autopilot bool) (Actor, error)
	SpawnSensor(bp SensorBlueprint, at Transform, parent Actor) (Sensor, error)
	ActorIDs() ([]uint32, error)
	Tick(ctx context.Context) (uint64, error)
}

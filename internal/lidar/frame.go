package lidar

import (
	"sync/atomic"
	"time"
)

// SensorKind identifies the payload layout produced by a ranging sensor.
type SensorKind int

const (
	SensorRaycast  SensorKind = iota // x, y, z, intensity
	SensorSemantic                   // x, y, z, cos-angle, instance-id, class-tag
)

// String returns the wire name used in config files and gRPC metadata.
func (k SensorKind) String() string {
	switch k {
	case SensorRaycast:
		return "raycast"
	case SensorSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// ParseSensorKind is the inverse of SensorKind.String.
func ParseSensorKind(s string) (SensorKind, bool) {
	switch s {
	case "raycast":
		return SensorRaycast, true
	case "semantic":
		return SensorSemantic, true
	}
	return 0, false
}

// Frame is one decode-colourise-filter result.
type Frame struct {
	Seq            uint64
	Kind           SensorKind
	Points         *PointSet
	RawPoints      int // samples in the payload before filtering
	DecodedAt      time.Time
	DecodeDuration time.Duration
}

// FrameStore publishes the most recently decoded frame. There is exactly one
// writer (the sensor listener); any number of readers may Load concurrently.
type FrameStore struct {
	latest atomic.Pointer[Frame]
	seq    atomic.Uint64
}

// Swap publishes a new frame, assigning it the next sequence number, and
// returns the frame it replaced.
func (s *FrameStore) Swap(f *Frame) *Frame {
	f.Seq = s.seq.Add(1)
	return s.latest.Swap(f)
}

// Latest returns the most recent frame or nil if none has been decoded.
func (s *FrameStore) Latest() *Frame {
	return s.latest.Load()
}

// Count returns how many frames have been published.
func (s *FrameStore) Count() uint64 {
	return s.seq.Load()
}

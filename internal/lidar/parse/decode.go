package parse

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/palette"
)

/*
Simulated ranging-sensor payload decoders.

A sensor delivers one flat little-endian buffer per captured frame. Two
layouts exist:

RAYCAST (16 bytes per point):
├── x, y, z     float32
└── intensity   float32

SEMANTIC (24 bytes per point):
├── x, y, z     float32
├── cos_angle   float32 (cosine of the incidence angle)
├── object_idx  uint32  (actor instance id, 0 when no actor was hit)
└── object_tag  uint32  (semantic class tag, index into the class palette)

A buffer whose length is not an exact multiple of the stride is rejected as a
whole. Trailing partial records are never decoded.
*/

const (
	FLOAT_SIZE           = 4
	RAW_FIELDS           = 4                       // x, y, z, intensity
	RAW_SAMPLE_SIZE      = RAW_FIELDS * FLOAT_SIZE // 16 bytes
	SEMANTIC_SAMPLE_SIZE = 4*FLOAT_SIZE + 2*4      // 24 bytes
	INTENSITY_DECAY      = 0.004                   // atmospheric attenuation rate per metre
	INTENSITY_REF_RANGE  = 100.0                   // metres
)

// IntensityEpsilon replaces any intensity that is not strictly positive
// (including NaN) before the logarithm in the intensity colour transform.
// It is part of the decoder's public contract.
const IntensityEpsilon = 1e-6

// intensityLogRef is ln(exp(-0.004*100)) = -0.4.
var intensityLogRef = math.Log(math.Exp(-INTENSITY_DECAY * INTENSITY_REF_RANGE))

var (
	// ErrMalformedFrame is returned when a buffer length is not a multiple of
	// the record stride.
	ErrMalformedFrame = errors.New("malformed sensor frame")

	// ErrClassOutOfRange aliases the palette error so callers can test decode
	// failures against this package alone.
	ErrClassOutOfRange = palette.ErrClassOutOfRange
)

// Decoder turns one raw sensor buffer into a frame.
type Decoder interface {
	Kind() lidar.SensorKind
	Decode(raw []byte) (*lidar.Frame, error)
}

// NewDecoder returns the decoder for kind.
func NewDecoder(kind lidar.SensorKind, actors *palette.ActorColorTable) (Decoder, error) {
	switch kind {
	case lidar.SensorRaycast:
		return NewIntensityDecoder(), nil
	case lidar.SensorSemantic:
		return NewSemanticDecoder(actors), nil
	default:
		return nil, fmt.Errorf("unsupported sensor kind %d", kind)
	}
}

func checkStride(raw []byte, stride int, layout string) (int, error) {
	if len(raw)%stride != 0 {
		return 0, fmt.Errorf("%w: %s buffer of %d bytes is not a multiple of %d",
			ErrMalformedFrame, layout, len(raw), stride)
	}
	return len(raw) / stride, nil
}

func f32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

func u32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func newFrame(kind lidar.SensorKind, ps *lidar.PointSet, raw int, start time.Time) *lidar.Frame {
	now := time.Now()
	return &lidar.Frame{
		Kind:           kind,
		Points:         ps,
		RawPoints:      raw,
		DecodedAt:      now,
		DecodeDuration: now.Sub(start),
	}
}

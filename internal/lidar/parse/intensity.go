package parse

import (
	"math"
	"time"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/palette"
	"gonum.org/v1/gonum/spatial/r3"
)

// IntensityDecoder decodes RAYCAST buffers and colours every point from the
// intensity ramp. No points are filtered.
type IntensityDecoder struct {
	Ramp *palette.Ramp
}

// NewIntensityDecoder returns a decoder using the plasma ramp.
func NewIntensityDecoder() *IntensityDecoder {
	return &IntensityDecoder{Ramp: palette.Plasma()}
}

// Kind implements Decoder.
func (d *IntensityDecoder) Kind() lidar.SensorKind { return lidar.SensorRaycast }

// Decode implements Decoder.
func (d *IntensityDecoder) Decode(raw []byte) (*lidar.Frame, error) {
	start := time.Now()
	ps, err := DecodeIntensity(raw, d.Ramp)
	if err != nil {
		return nil, err
	}
	return newFrame(lidar.SensorRaycast, ps, ps.Len(), start), nil
}

// DecodeIntensity decodes a RAYCAST buffer into positions (x negated) and
// ramp colours.
func DecodeIntensity(raw []byte, ramp *palette.Ramp) (*lidar.PointSet, error) {
	n, err := checkStride(raw, RAW_SAMPLE_SIZE, "raycast")
	if err != nil {
		return nil, err
	}

	ps := &lidar.PointSet{
		Positions: make([]r3.Vec, n),
		Colors:    make([]r3.Vec, n),
	}
	for i := 0; i < n; i++ {
		rec := raw[i*RAW_SAMPLE_SIZE : (i+1)*RAW_SAMPLE_SIZE]
		pos := r3.Vec{X: f32(rec[0:4]), Y: f32(rec[4:8]), Z: f32(rec[8:12])}
		ps.Positions[i] = lidar.FlipX(pos)
		ps.Colors[i] = ramp.At(IntensityToRamp(f32(rec[12:16])))
	}
	return ps, nil
}

// IntensityToRamp maps a return intensity to a ramp coordinate:
//
//	t = 1 - ln(I) / ln(exp(-0.004*100))
//
// I is clamped to IntensityEpsilon when it is not strictly positive. The
// result is not clamped; Ramp.At handles out-of-domain values.
func IntensityToRamp(intensity float64) float64 {
	if !(intensity > 0) {
		intensity = IntensityEpsilon
	}
	return 1.0 - math.Log(intensity)/intensityLogRef
}

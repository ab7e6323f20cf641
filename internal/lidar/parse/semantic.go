package parse

import (
	"math"
	"time"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/palette"
	"gonum.org/v1/gonum/spatial/r3"
)

// SemanticSample is one decoded SEMANTIC record before colouring.
type SemanticSample struct {
	Position r3.Vec // sensor frame, not yet axis-corrected
	CosAngle float64
	ObjIdx   uint32
	ObjTag   uint32
}

// SemanticDecoder decodes SEMANTIC buffers, colours points by class with a
// per-actor override, and drops points whose final colour is the suppressed
// sentinel.
type SemanticDecoder struct {
	Palette *palette.ClassPalette
	Actors  *palette.ActorColorTable // read only; may be nil

	// ShadeByCosAngle scales kept colours by the incidence cosine, floored
	// at MinShade so a kept point never shades to the suppressed sentinel.
	ShadeByCosAngle bool
}

// MinShade is the smallest factor cos-angle shading applies. Grazing,
// back-facing and NaN incidence all shade to it.
const MinShade = 0.15

// NewSemanticDecoder returns a decoder using the default class palette.
func NewSemanticDecoder(actors *palette.ActorColorTable) *SemanticDecoder {
	return &SemanticDecoder{Palette: palette.Default(), Actors: actors}
}

// Kind implements Decoder.
func (d *SemanticDecoder) Kind() lidar.SensorKind { return lidar.SensorSemantic }

// Decode implements Decoder.
func (d *SemanticDecoder) Decode(raw []byte) (*lidar.Frame, error) {
	start := time.Now()
	samples, err := ReadSemanticSamples(raw)
	if err != nil {
		return nil, err
	}
	ps, err := d.Colorize(samples)
	if err != nil {
		return nil, err
	}
	return newFrame(lidar.SensorSemantic, ps, len(samples), start), nil
}

// ReadSemanticSamples splits a SEMANTIC buffer into records.
func ReadSemanticSamples(raw []byte) ([]SemanticSample, error) {
	n, err := checkStride(raw, SEMANTIC_SAMPLE_SIZE, "semantic")
	if err != nil {
		return nil, err
	}
	out := make([]SemanticSample, n)
	for i := range out {
		rec := raw[i*SEMANTIC_SAMPLE_SIZE : (i+1)*SEMANTIC_SAMPLE_SIZE]
		out[i] = SemanticSample{
			Position: r3.Vec{X: f32(rec[0:4]), Y: f32(rec[4:8]), Z: f32(rec[8:12])},
			CosAngle: f32(rec[12:16]),
			ObjIdx:   u32(rec[16:20]),
			ObjTag:   u32(rec[20:24]),
		}
	}
	return out, nil
}

// Colorize resolves each sample's colour and applies the visibility filter.
// The whole batch is rejected if any class tag is outside the palette.
// Output order matches input order.
func (d *SemanticDecoder) Colorize(samples []SemanticSample) (*lidar.PointSet, error) {
	colors := make([]r3.Vec, len(samples))
	for i, s := range samples {
		c, err := d.Palette.Color(s.ObjTag)
		if err != nil {
			return nil, err
		}
		colors[i] = c
	}

	if d.Actors != nil {
		// Resolve each distinct instance once per batch.
		seen := make(map[uint32]*r3.Vec)
		for i, s := range samples {
			override, ok := seen[s.ObjIdx]
			if !ok {
				if c, found := d.Actors.Lookup(s.ObjIdx); found {
					override = &c
				}
				seen[s.ObjIdx] = override
			}
			if override != nil {
				colors[i] = *override
			}
		}
	}

	ps := lidar.NewPointSet(len(samples))
	for i, s := range samples {
		if palette.IsSuppressed(colors[i]) {
			continue
		}
		c := colors[i]
		if d.ShadeByCosAngle {
			c = r3.Scale(clampCos(s.CosAngle), c)
		}
		ps.Append(lidar.FlipY(s.Position), c)
	}
	return ps, nil
}

func clampCos(v float64) float64 {
	if math.IsNaN(v) || v < MinShade {
		return MinShade
	}
	if v > 1 {
		return 1
	}
	return v
}

package parse

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// RawSample is one RAYCAST record in sensor coordinates.
type RawSample struct {
	Position  r3.Vec
	Intensity float64
}

// EncodeRaw serialises samples in the RAYCAST layout. It is the inverse of
// the sensor side of DecodeIntensity and is used by simulators and tests.
func EncodeRaw(samples []RawSample) []byte {
	buf := make([]byte, len(samples)*RAW_SAMPLE_SIZE)
	for i, s := range samples {
		rec := buf[i*RAW_SAMPLE_SIZE:]
		putF32(rec[0:4], s.Position.X)
		putF32(rec[4:8], s.Position.Y)
		putF32(rec[8:12], s.Position.Z)
		putF32(rec[12:16], s.Intensity)
	}
	return buf
}

// EncodeSemantic serialises samples in the SEMANTIC layout.
func EncodeSemantic(samples []SemanticSample) []byte {
	buf := make([]byte, len(samples)*SEMANTIC_SAMPLE_SIZE)
	for i, s := range samples {
		rec := buf[i*SEMANTIC_SAMPLE_SIZE:]
		putF32(rec[0:4], s.Position.X)
		putF32(rec[4:8], s.Position.Y)
		putF32(rec[8:12], s.Position.Z)
		putF32(rec[12:16], s.CosAngle)
		binary.LittleEndian.PutUint32(rec[16:20], s.ObjIdx)
		binary.LittleEndian.PutUint32(rec[20:24], s.ObjTag)
	}
	return buf
}

func putF32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

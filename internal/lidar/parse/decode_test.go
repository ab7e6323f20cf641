package parse

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/palette"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func randomRaw(rng *rand.Rand, n int) []RawSample {
	out := make([]RawSample, n)
	for i := range out {
		out[i] = RawSample{
			Position:  r3.Vec{X: rng.Float64()*60 - 30, Y: rng.Float64()*60 - 30, Z: rng.Float64()*4 - 2},
			Intensity: rng.Float64(),
		}
	}
	return out
}

func randomSemantic(rng *rand.Rand, n int) []SemanticSample {
	out := make([]SemanticSample, n)
	for i := range out {
		out[i] = SemanticSample{
			Position: r3.Vec{X: rng.Float64()*60 - 30, Y: rng.Float64()*60 - 30, Z: rng.Float64()*4 - 2},
			CosAngle: rng.Float64(),
			ObjIdx:   uint32(rng.IntN(5)),
			ObjTag:   uint32(rng.IntN(palette.NumClasses)),
		}
	}
	return out
}

func assertColorsInRange(t *testing.T, ps *lidar.PointSet) {
	t.Helper()
	require.NoError(t, ps.Validate())
}

func TestDecodeIntensity_PointCount(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{0, 1, 7, 1000} {
		raw := EncodeRaw(randomRaw(rng, n))
		require.Len(t, raw, n*RAW_SAMPLE_SIZE)

		ps, err := DecodeIntensity(raw, palette.Plasma())
		require.NoError(t, err)
		assert.Equal(t, n, len(ps.Positions))
		assert.Equal(t, n, len(ps.Colors))
		assertColorsInRange(t, ps)
	}
}

func TestDecodeIntensity_NegatesX(t *testing.T) {
	raw := EncodeRaw([]RawSample{{Position: r3.Vec{X: 1, Y: 2, Z: 3}, Intensity: 0.5}})
	ps, err := DecodeIntensity(raw, palette.Plasma())
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: -1, Y: 2, Z: 3}, ps.Positions[0])
}

func TestDecodeIntensity_Malformed(t *testing.T) {
	raw := EncodeRaw([]RawSample{{Intensity: 1}, {Intensity: 1}})
	for _, n := range []int{1, 15, 17, 31} {
		_, err := DecodeIntensity(raw[:n], palette.Plasma())
		require.Error(t, err, "len %d", n)
		assert.True(t, errors.Is(err, ErrMalformedFrame))
	}
}

func TestDecodeIntensity_NonPositiveIntensityFallsBack(t *testing.T) {
	ramp := palette.Plasma()
	raw := EncodeRaw([]RawSample{
		{Intensity: 0},
		{Intensity: -1},
		{Intensity: math.NaN()},
		{Intensity: IntensityEpsilon},
	})
	ps, err := DecodeIntensity(raw, ramp)
	require.NoError(t, err)

	want := ramp.At(IntensityToRamp(IntensityEpsilon))
	for i, c := range ps.Colors {
		assert.Equal(t, want, c, "point %d", i)
		assert.False(t, math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsNaN(c.Z))
	}
}

func TestIntensityToRamp(t *testing.T) {
	// I = 1 → t = 1; I = exp(-0.4) → t = 0.
	assert.InDelta(t, 1.0, IntensityToRamp(1.0), 1e-12)
	assert.InDelta(t, 0.0, IntensityToRamp(math.Exp(-0.4)), 1e-12)
	assert.InDelta(t, 0.5, IntensityToRamp(math.Exp(-0.2)), 1e-12)
	assert.False(t, math.IsInf(IntensityToRamp(0), 0))
}

func TestDecodeIntensity_RampColor(t *testing.T) {
	ramp := palette.Plasma()
	raw := EncodeRaw([]RawSample{{Intensity: 1.0}, {Intensity: math.Exp(-0.4)}})
	ps, err := DecodeIntensity(raw, ramp)
	require.NoError(t, err)
	assert.Equal(t, ramp.At(1), ps.Colors[0])
	assert.Equal(t, ramp.At(0), ps.Colors[1])
}

func TestIntensityDecoder_Idempotent(t *testing.T) {
	raw := EncodeRaw(randomRaw(rand.New(rand.NewPCG(3, 4)), 500))
	d := NewIntensityDecoder()

	a, err := d.Decode(raw)
	require.NoError(t, err)
	b, err := d.Decode(raw)
	require.NoError(t, err)

	if diff := cmp.Diff(a.Points, b.Points); diff != "" {
		t.Errorf("decode not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, lidar.SensorRaycast, a.Kind)
	assert.Equal(t, 500, a.RawPoints)
}

func TestSemanticDecoder_NegatesY(t *testing.T) {
	raw := EncodeSemantic([]SemanticSample{{Position: r3.Vec{X: 1, Y: 2, Z: 3}, ObjTag: 14}})
	f, err := NewSemanticDecoder(nil).Decode(raw)
	require.NoError(t, err)
	require.Equal(t, 1, f.Points.Len())
	assert.Equal(t, r3.Vec{X: 1, Y: -2, Z: 3}, f.Points.Positions[0])
	assert.InDelta(t, 142.0/255.0, f.Points.Colors[0].Z, 1e-12)
}

func TestSemanticDecoder_FiltersSuppressedClasses(t *testing.T) {
	samples := []SemanticSample{
		{Position: r3.Vec{X: 1}, ObjTag: 1},  // road, hidden
		{Position: r3.Vec{X: 2}, ObjTag: 14}, // car
		{Position: r3.Vec{X: 3}, ObjTag: 11}, // sky, hidden
		{Position: r3.Vec{X: 4}, ObjTag: 12}, // pedestrian
		{Position: r3.Vec{X: 5}, ObjTag: 0},  // none, hidden
	}
	f, err := NewSemanticDecoder(nil).Decode(EncodeSemantic(samples))
	require.NoError(t, err)

	require.Equal(t, 2, f.Points.Len())
	assert.Equal(t, 2.0, f.Points.Positions[0].X)
	assert.Equal(t, 4.0, f.Points.Positions[1].X)
	assert.Equal(t, 5, f.RawPoints)
}

func TestSemanticDecoder_ClassOutOfRange(t *testing.T) {
	samples := []SemanticSample{{ObjTag: 3}, {ObjTag: uint32(palette.NumClasses)}}
	_, err := NewSemanticDecoder(nil).Decode(EncodeSemantic(samples))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassOutOfRange))
}

func TestSemanticDecoder_Malformed(t *testing.T) {
	raw := EncodeSemantic([]SemanticSample{{ObjTag: 3}})
	_, err := NewSemanticDecoder(nil).Decode(append(raw, 0, 0, 0, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFrame))

	_, err = NewSemanticDecoder(nil).Decode(EncodeRaw([]RawSample{{}}))
	assert.True(t, errors.Is(err, ErrMalformedFrame), "16-byte record is not a semantic stride")
}

func TestSemanticDecoder_ActorOverride(t *testing.T) {
	actors := palette.NewSeededActorColorTable(9)
	carColor := actors.Assign(7)

	samples := []SemanticSample{
		{Position: r3.Vec{X: 1}, ObjIdx: 7, ObjTag: 3}, // building tagged with actor 7
		{Position: r3.Vec{X: 2}, ObjIdx: 8, ObjTag: 3}, // unknown actor keeps class colour
		{Position: r3.Vec{X: 3}, ObjIdx: 7, ObjTag: 1}, // hidden class resurrected by actor colour
	}
	f, err := NewSemanticDecoder(actors).Decode(EncodeSemantic(samples))
	require.NoError(t, err)
	require.Equal(t, 3, f.Points.Len())

	building, _ := palette.Default().Color(3)
	assert.Equal(t, carColor, f.Points.Colors[0])
	assert.Equal(t, building, f.Points.Colors[1])
	assert.Equal(t, carColor, f.Points.Colors[2])
}

func TestSemanticDecoder_BlackActorColorIsSuppressed(t *testing.T) {
	samples := []SemanticSample{{ObjIdx: 1, ObjTag: 14}, {ObjIdx: 2, ObjTag: 14}}
	d := NewSemanticDecoder(nil)
	d.Actors = blackActorTable(t, 1)

	f, err := d.Decode(EncodeSemantic(samples))
	require.NoError(t, err)
	require.Equal(t, 1, f.Points.Len())
}

// blackActorTable returns a table where id is pinned to pure black.
func blackActorTable(t *testing.T, id uint32) *palette.ActorColorTable {
	t.Helper()
	tbl := palette.NewSeededActorColorTable(0)
	require.True(t, tbl.Preassign(id, palette.Suppressed))
	return tbl
}

func TestSemanticDecoder_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	actors := palette.NewSeededActorColorTable(5)
	actors.AssignAll([]uint32{1, 3})
	d := NewSemanticDecoder(actors)

	for iter := 0; iter < 20; iter++ {
		n := rng.IntN(400)
		raw := EncodeSemantic(randomSemantic(rng, n))

		f, err := d.Decode(raw)
		require.NoError(t, err)
		assert.LessOrEqual(t, f.Points.Len(), n)
		assertColorsInRange(t, f.Points)
		for _, c := range f.Points.Colors {
			assert.False(t, palette.IsSuppressed(c))
		}

		again, err := d.Decode(raw)
		require.NoError(t, err)
		if diff := cmp.Diff(f.Points, again.Points); diff != "" {
			t.Fatalf("decode not idempotent:\n%s", diff)
		}
	}
}

func TestSemanticDecoder_ActorColorStableAcrossFrames(t *testing.T) {
	actors := palette.NewSeededActorColorTable(21)
	actors.Assign(4)
	d := NewSemanticDecoder(actors)

	frame1 := EncodeSemantic([]SemanticSample{{ObjIdx: 4, ObjTag: 14}})
	frame2 := EncodeSemantic([]SemanticSample{{ObjIdx: 9, ObjTag: 12}, {ObjIdx: 4, ObjTag: 9}})

	f1, err := d.Decode(frame1)
	require.NoError(t, err)
	actors.AssignAll([]uint32{9, 10, 11})
	f2, err := d.Decode(frame2)
	require.NoError(t, err)

	assert.Equal(t, f1.Points.Colors[0], f2.Points.Colors[1])
}

func TestSemanticDecoder_CosShading(t *testing.T) {
	samples := []SemanticSample{{CosAngle: 0.5, ObjTag: 13}} // rider (1,0,0)
	d := NewSemanticDecoder(nil)
	d.ShadeByCosAngle = true

	f, err := d.Decode(EncodeSemantic(samples))
	require.NoError(t, err)
	require.Equal(t, 1, f.Points.Len())
	assert.InDelta(t, 0.5, f.Points.Colors[0].X, 1e-6)
}

func TestSemanticDecoder_CosShadingNeverSuppresses(t *testing.T) {
	samples := []SemanticSample{
		{CosAngle: 0, ObjTag: 14},
		{CosAngle: -0.3, ObjTag: 12},
		{CosAngle: math.NaN(), ObjTag: 13},
		{CosAngle: 0.05, ObjTag: 13},
	}
	d := NewSemanticDecoder(nil)
	d.ShadeByCosAngle = true

	f, err := d.Decode(EncodeSemantic(samples))
	require.NoError(t, err)
	require.Equal(t, len(samples), f.Points.Len())
	for i, c := range f.Points.Colors {
		assert.False(t, palette.IsSuppressed(c), "point %d shaded to %v", i, c)
	}
	// rider (1,0,0) at the floor
	assert.InDelta(t, MinShade, f.Points.Colors[2].X, 1e-6)
	assert.InDelta(t, MinShade, f.Points.Colors[3].X, 1e-6)
}

func TestNewDecoder(t *testing.T) {
	d, err := NewDecoder(lidar.SensorRaycast, nil)
	require.NoError(t, err)
	assert.Equal(t, lidar.SensorRaycast, d.Kind())

	d, err = NewDecoder(lidar.SensorSemantic, palette.NewActorColorTable())
	require.NoError(t, err)
	assert.Equal(t, lidar.SensorSemantic, d.Kind())

	_, err = NewDecoder(lidar.SensorKind(99), nil)
	assert.Error(t, err)
}

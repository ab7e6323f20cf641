package lidar

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPointSet_AppendAndValidate(t *testing.T) {
	ps := NewPointSet(2)
	ps.Append(r3.Vec{X: 1}, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	ps.Append(r3.Vec{Y: 1}, r3.Vec{X: 1, Y: 0, Z: 0})
	assert.Equal(t, 2, ps.Len())
	assert.NoError(t, ps.Validate())

	var nilSet *PointSet
	assert.Equal(t, 0, nilSet.Len())
	assert.NoError(t, nilSet.Validate())
	assert.Nil(t, nilSet.Clone())
}

func TestPointSet_ValidateFailures(t *testing.T) {
	ps := &PointSet{Positions: []r3.Vec{{}}, Colors: nil}
	assert.Error(t, ps.Validate())

	ps = &PointSet{Positions: []r3.Vec{{}}, Colors: []r3.Vec{{X: 1.5}}}
	assert.Error(t, ps.Validate())
}

func TestPointSet_CloneIsDeep(t *testing.T) {
	ps := NewPointSet(1)
	ps.Append(r3.Vec{X: 1}, r3.Vec{Z: 1})
	c := ps.Clone()
	c.Positions[0].X = 99
	assert.Equal(t, 1.0, ps.Positions[0].X)
}

func TestRGB8(t *testing.T) {
	r, g, b := RGB8(r3.Vec{X: 0, Y: 142.0 / 255.0, Z: 1})
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(142), g)
	assert.Equal(t, uint8(255), b)

	r, _, b = RGB8(r3.Vec{X: -0.2, Z: 3})
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(255), b)
}

func TestFlip(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	assert.Equal(t, r3.Vec{X: -1, Y: 2, Z: 3}, FlipX(p))
	assert.Equal(t, r3.Vec{X: 1, Y: -2, Z: 3}, FlipY(p))
}

func TestSensorKind(t *testing.T) {
	for _, k := range []SensorKind{SensorRaycast, SensorSemantic} {
		got, ok := ParseSensorKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseSensorKind("radar")
	assert.False(t, ok)
	assert.Equal(t, "unknown", SensorKind(7).String())
}

func TestFrameStore(t *testing.T) {
	var s FrameStore
	assert.Nil(t, s.Latest())

	prev := s.Swap(&Frame{RawPoints: 1})
	assert.Nil(t, prev)
	first := s.Latest()
	require.NotNil(t, first)
	assert.Equal(t, uint64(1), first.Seq)

	prev = s.Swap(&Frame{RawPoints: 2})
	assert.Same(t, first, prev)
	assert.Equal(t, uint64(2), s.Latest().Seq)
	assert.Equal(t, uint64(2), s.Count())
}

func TestFrameStore_ConcurrentReaders(t *testing.T) {
	var s FrameStore
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for i := 0; i < 1000; i++ {
				if f := s.Latest(); f != nil {
					assert.GreaterOrEqual(t, f.Seq, last)
					last = f.Seq
				}
			}
		}()
	}
	for i := 0; i < 1000; i++ {
		s.Swap(&Frame{})
	}
	wg.Wait()
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	ps := NewPointSet(2)
	ps.Append(r3.Vec{X: 3, Y: 4, Z: 0}, r3.Vec{})
	ps.Append(r3.Vec{X: -1, Y: 0, Z: 2}, r3.Vec{})
	s := Summarize(ps)
	assert.Equal(t, 2, s.Points)
	assert.Equal(t, r3.Vec{X: -1, Y: 0, Z: 0}, s.Min)
	assert.Equal(t, r3.Vec{X: 3, Y: 4, Z: 2}, s.Max)
	assert.InDelta(t, (5.0+2.23606797749979)/2, s.MeanRange, 1e-9)
	assert.InDelta(t, 5.0, s.MaxRange, 1e-12)
}

package pipeline

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/palette"
	"github.com/banshee-data/simlidar/internal/lidar/parse"
	"gonum.org/v1/gonum/spatial/r3"
)

// gatedDecoder records every payload it decodes and can hold the first
// decode open until released.
type gatedDecoder struct {
	mu      sync.Mutex
	seen    [][]byte
	started chan struct{}
	release chan struct{}
	gate    bool
}

func newGatedDecoder() *gatedDecoder {
	return &gatedDecoder{started: make(chan struct{}), release: make(chan struct{}), gate: true}
}

func (d *gatedDecoder) Kind() lidar.SensorKind { return lidar.SensorRaycast }

func (d *gatedDecoder) Decode(raw []byte) (*lidar.Frame, error) {
	d.mu.Lock()
	d.seen = append(d.seen, raw)
	first := d.gate
	d.gate = false
	d.mu.Unlock()
	if first {
		close(d.started)
		<-d.release
	}
	ps := lidar.NewPointSet(1)
	ps.Append(r3.Vec{X: float64(raw[0])}, r3.Vec{})
	return &lidar.Frame{Points: ps, RawPoints: len(raw)}, nil
}

func (d *gatedDecoder) payloads() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []byte
	for _, p := range d.seen {
		ids = append(ids, p[0])
	}
	return ids
}

func TestListener_PublishesDecodedFrames(t *testing.T) {
	stats := lidar.NewFrameStats()
	l := NewListener(ListenerConfig{Decoder: parse.NewIntensityDecoder(), Stats: stats})

	raw := parse.EncodeRaw([]parse.RawSample{
		{Position: r3.Vec{X: 1, Y: 2, Z: 3}, Intensity: 0.5},
		{Position: r3.Vec{X: 4, Y: 5, Z: 6}, Intensity: 0.9},
	})
	l.OnFrame(raw)

	f := l.Store().Latest()
	require.NotNil(t, f)
	assert.Equal(t, uint64(1), f.Seq)
	assert.Equal(t, 2, f.Points.Len())
	assert.Equal(t, uint64(1), l.Decoded())
	assert.NoError(t, l.Err())

	s := stats.GetAndReset()
	assert.Equal(t, int64(1), s.Frames)
	assert.Equal(t, int64(len(raw)), s.Bytes)
}

func TestListener_CopiesBuffer(t *testing.T) {
	d := newGatedDecoder()
	d.gate = false
	l := NewListener(ListenerConfig{Decoder: d})

	raw := []byte{7, 0, 0, 0}
	l.OnFrame(raw)
	raw[0] = 9
	assert.Equal(t, []byte{7}, d.payloads())
}

func TestListener_ReplacesPendingWithLatest(t *testing.T) {
	d := newGatedDecoder()
	l := NewListener(ListenerConfig{Decoder: d})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.OnFrame([]byte{1})
	}()
	<-d.started

	// Decoder is busy: these must return immediately.
	returned := make(chan struct{})
	go func() {
		l.OnFrame([]byte{2})
		l.OnFrame([]byte{3})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("OnFrame blocked while a decode was in flight")
	}

	close(d.release)
	wg.Wait()

	assert.Equal(t, []byte{1, 3}, d.payloads())
	assert.Equal(t, uint64(1), l.Dropped())
	assert.Equal(t, uint64(2), l.Decoded())
	assert.Equal(t, 3.0, l.Store().Latest().Points.Positions[0].X)
}

func TestListener_DecodeErrorIsLatched(t *testing.T) {
	l := NewListener(ListenerConfig{Decoder: parse.NewIntensityDecoder()})

	l.OnFrame(make([]byte, 17))
	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed after decode error")
	}
	err := l.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, parse.ErrMalformedFrame))

	// Later valid frames are ignored.
	l.OnFrame(make([]byte, 16))
	assert.Nil(t, l.Store().Latest())
	assert.Zero(t, l.Decoded())
}

func TestListener_SemanticClassOutOfRange(t *testing.T) {
	l := NewListener(ListenerConfig{Decoder: parse.NewSemanticDecoder(palette.NewSeededActorColorTable(1))})
	l.OnFrame(parse.EncodeSemantic([]parse.SemanticSample{{ObjTag: uint32(palette.NumClasses)}}))
	assert.ErrorIs(t, l.Err(), parse.ErrClassOutOfRange)
}

func TestListener_ConcurrentDelivery(t *testing.T) {
	l := NewListener(ListenerConfig{Decoder: parse.NewIntensityDecoder()})
	raw := parse.EncodeRaw([]parse.RawSample{{Position: r3.Vec{X: 1}, Intensity: 0.5}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.OnFrame(raw)
			}
		}()
	}
	wg.Wait()

	assert.NoError(t, l.Err())
	assert.Equal(t, uint64(400), l.Decoded()+l.Dropped())
	assert.Equal(t, l.Decoded(), l.Store().Count())
}

package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/mocks"
	"github.com/banshee-data/simlidar/internal/lidar/palette"
	"github.com/banshee-data/simlidar/internal/lidar/parse"
	"github.com/banshee-data/simlidar/internal/lidar/sim"
)

type sessionMocks struct {
	world    *mocks.MockWorld
	vehicle  *mocks.MockActor
	sensor   *mocks.MockSensor
	renderer *mocks.MockRenderer
}

func newSessionMocks(ctrl *gomock.Controller) sessionMocks {
	m := sessionMocks{
		world:    mocks.NewMockWorld(ctrl),
		vehicle:  mocks.NewMockActor(ctrl),
		sensor:   mocks.NewMockSensor(ctrl),
		renderer: mocks.NewMockRenderer(ctrl),
	}
	m.vehicle.EXPECT().ID().Return(uint32(10)).AnyTimes()
	m.sensor.EXPECT().ID().Return(uint32(11)).AnyTimes()
	m.sensor.EXPECT().Kind().Return(lidar.SensorRaycast).AnyTimes()
	return m
}

func testSessionConfig(t *testing.T) SessionConfig {
	t.Helper()
	bp, err := sim.BlueprintFor(sim.BlueprintOptions{
		UpperFOV: 15, LowerFOV: -25, Channels: 64, Range: 30,
		PointsPerSecond: 500000, DeltaSeconds: 0.05,
	})
	require.NoError(t, err)
	return SessionConfig{
		DeltaSeconds:  0.05,
		VehicleFilter: "model3",
		Autopilot:     true,
		Blueprint:     bp,
		Offset:        sim.Location{Z: 0.5},
		Rand:          rand.New(rand.NewPCG(1, 2)),
	}
}

var originalSettings = sim.Settings{SynchronousMode: false, FixedDeltaSeconds: 0}

func TestOpenSession_AcquireAndReleaseOrder(t *testing.T) {
	quiet(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newSessionMocks(ctrl)
	cfg := testSessionConfig(t)
	cfg.Actors = palette.NewSeededActorColorTable(3)

	gomock.InOrder(
		m.world.EXPECT().ActorIDs().Return([]uint32{5, 6}, nil),
		m.world.EXPECT().Settings().Return(originalSettings, nil),
		m.world.EXPECT().SetTrafficManagerSync(true).Return(nil),
		m.world.EXPECT().ApplySettings(sim.Settings{SynchronousMode: true, FixedDeltaSeconds: 0.05}).Return(nil),
		m.world.EXPECT().SpawnPoints().Return([]sim.Transform{{}, {}}, nil),
		m.world.EXPECT().SpawnVehicle("model3", gomock.Any(), true).Return(m.vehicle, nil),
		m.world.EXPECT().SpawnSensor(cfg.Blueprint, sim.MountTransform(sim.Location{Z: 0.5}), m.vehicle).Return(m.sensor, nil),
		m.sensor.EXPECT().Listen(gomock.Any()).Return(nil),

		m.world.EXPECT().ApplySettings(originalSettings).Return(nil),
		m.world.EXPECT().SetTrafficManagerSync(false).Return(nil),
		m.sensor.EXPECT().Stop().Return(nil),
		m.vehicle.EXPECT().Destroy().Return(nil),
		m.sensor.EXPECT().Destroy().Return(nil),
		m.renderer.EXPECT().Close().Return(nil),
	)

	s, err := OpenSession(m.world, cfg, m.renderer, func([]byte) {})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Actors.Len())
	assert.Equal(t, uint32(10), s.Vehicle().ID())
	assert.Equal(t, uint32(11), s.Sensor().ID())

	require.NoError(t, s.Close())
	// Second close is a no-op.
	require.NoError(t, s.Close())
}

func TestOpenSession_SensorFailureReleasesAcquired(t *testing.T) {
	quiet(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newSessionMocks(ctrl)
	cfg := testSessionConfig(t)

	errSpawn := errors.New("spawn failed because of collision at spawn position")
	gomock.InOrder(
		m.world.EXPECT().Settings().Return(originalSettings, nil),
		m.world.EXPECT().SetTrafficManagerSync(true).Return(nil),
		m.world.EXPECT().ApplySettings(gomock.Any()).Return(nil),
		m.world.EXPECT().SpawnPoints().Return([]sim.Transform{{}}, nil),
		m.world.EXPECT().SpawnVehicle("model3", sim.Transform{}, true).Return(m.vehicle, nil),
		m.world.EXPECT().SpawnSensor(gomock.Any(), gomock.Any(), m.vehicle).Return(nil, errSpawn),

		m.world.EXPECT().ApplySettings(originalSettings).Return(nil),
		m.world.EXPECT().SetTrafficManagerSync(false).Return(nil),
		m.vehicle.EXPECT().Destroy().Return(nil),
		m.renderer.EXPECT().Close().Return(nil),
	)

	s, err := OpenSession(m.world, cfg, m.renderer, func([]byte) {})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errSpawn)
}

func TestOpenSession_NoSpawnPoints(t *testing.T) {
	quiet(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newSessionMocks(ctrl)

	gomock.InOrder(
		m.world.EXPECT().Settings().Return(originalSettings, nil),
		m.world.EXPECT().SetTrafficManagerSync(true).Return(nil),
		m.world.EXPECT().ApplySettings(gomock.Any()).Return(nil),
		m.world.EXPECT().SpawnPoints().Return(nil, nil),
		m.world.EXPECT().ApplySettings(originalSettings).Return(nil),
		m.world.EXPECT().SetTrafficManagerSync(false).Return(nil),
		m.renderer.EXPECT().Close().Return(nil),
	)

	_, err := OpenSession(m.world, testSessionConfig(t), m.renderer, func([]byte) {})
	assert.ErrorIs(t, err, sim.ErrNoSpawnPoints)
}

func TestSession_CloseRunsEveryStepAndJoinsErrors(t *testing.T) {
	quiet(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m := newSessionMocks(ctrl)

	m.world.EXPECT().Settings().Return(originalSettings, nil)
	m.world.EXPECT().SetTrafficManagerSync(true).Return(nil)
	m.world.EXPECT().ApplySettings(gomock.Not(originalSettings)).Return(nil)
	m.world.EXPECT().SpawnPoints().Return([]sim.Transform{{}}, nil)
	m.world.EXPECT().SpawnVehicle(gomock.Any(), gomock.Any(), gomock.Any()).Return(m.vehicle, nil)
	m.world.EXPECT().SpawnSensor(gomock.Any(), gomock.Any(), gomock.Any()).Return(m.sensor, nil)
	m.sensor.EXPECT().Listen(gomock.Any()).Return(nil)

	errRestore := errors.New("restore failed")
	errTM := errors.New("traffic manager gone")
	errVehicle := errors.New("vehicle already destroyed")
	gomock.InOrder(
		m.world.EXPECT().ApplySettings(originalSettings).Return(errRestore),
		m.world.EXPECT().SetTrafficManagerSync(false).Return(errTM),
		m.sensor.EXPECT().Stop().Return(nil),
		m.vehicle.EXPECT().Destroy().Return(errVehicle),
		m.sensor.EXPECT().Destroy().Return(nil),
		m.renderer.EXPECT().Close().Return(nil),
	)

	s, err := OpenSession(m.world, testSessionConfig(t), m.renderer, func([]byte) {})
	require.NoError(t, err)

	err = s.Close()
	assert.ErrorIs(t, err, errRestore)
	assert.ErrorIs(t, err, errTM)
	assert.ErrorIs(t, err, errVehicle)
}

// countingRenderer is a minimal in-package Renderer for end-to-end runs.
type countingRenderer struct {
	mu         sync.Mutex
	registered int
	updates    int
	renders    int
	lastPoints int
	closed     bool
}

func (r *countingRenderer) Register(ps *lidar.PointSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered++
	return nil
}

func (r *countingRenderer) Update(ps *lidar.PointSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.lastPoints = ps.Len()
	return nil
}

func (r *countingRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
	return nil
}

func (r *countingRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestSessionAndLoop_SyntheticWorld(t *testing.T) {
	quiet(t)
	for _, semantic := range []bool{false, true} {
		name := "raycast"
		if semantic {
			name = "semantic"
		}
		t.Run(name, func(t *testing.T) {
			world := sim.NewSynthetic(sim.DefaultSyntheticConfig())
			actors := palette.NewSeededActorColorTable(7)

			bp, err := sim.BlueprintFor(sim.BlueprintOptions{
				Semantic: semantic, UpperFOV: 15, LowerFOV: -25, Channels: 32,
				Range: 30, PointsPerSecond: 100000, DeltaSeconds: 0.05,
			})
			require.NoError(t, err)
			kind, err := bp.Kind()
			require.NoError(t, err)
			dec, err := parse.NewDecoder(kind, actors)
			require.NoError(t, err)

			l := NewListener(ListenerConfig{Decoder: dec})
			r := &countingRenderer{}
			s, err := OpenSession(world, SessionConfig{
				DeltaSeconds:  0.05,
				VehicleFilter: "model3",
				Autopilot:     true,
				Blueprint:     bp,
				Actors:        actors,
				Rand:          rand.New(rand.NewPCG(1, 1)),
			}, r, l.OnFrame)
			require.NoError(t, err)

			got, err := world.Settings()
			require.NoError(t, err)
			assert.True(t, got.SynchronousMode)
			assert.True(t, world.TrafficManagerSync())

			st, err := NewLoop(LoopConfig{
				Source:   l,
				Renderer: r,
				World:    world,
				MaxTicks: 10,
				Clock:    newMockClock(),
			}).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 10, st.Ticks)
			assert.Equal(t, uint64(10), l.Decoded())
			assert.Equal(t, 1, r.registered)
			assert.Equal(t, 8, r.updates)
			assert.Greater(t, r.lastPoints, 0)
			require.NoError(t, l.Store().Latest().Points.Validate())

			require.NoError(t, s.Close())
			got, err = world.Settings()
			require.NoError(t, err)
			assert.Equal(t, sim.Settings{}, got)
			assert.False(t, world.TrafficManagerSync())
			assert.True(t, r.closed)

			ids, err := world.ActorIDs()
			require.NoError(t, err)
			assert.Len(t, ids, sim.DefaultSyntheticConfig().Actors)
		})
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/simlidar/internal/config"
	"github.com/banshee-data/simlidar/internal/fsutil"
	"github.com/banshee-data/simlidar/internal/lidar/ingest"
	"github.com/banshee-data/simlidar/internal/lidar/recorder"
	"github.com/banshee-data/simlidar/internal/lidardb"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, opts.maxTicks)
	assert.Equal(t, uint64(1), opts.seed)
	assert.Equal(t, "localhost", opts.cfg.GetHost())
	assert.Equal(t, 2000, opts.cfg.GetPort())
	assert.True(t, opts.cfg.GetAutopilot())
	assert.Equal(t, config.SourceSynthetic, opts.cfg.GetSource())
}

func TestParseFlags_Overrides(t *testing.T) {
	opts, err := parseFlags([]string{
		"-semantic", "-no-autopilot", "-port", "3000", "-x", "1.5",
		"-record", "-format", "pcd", "-max-ticks", "40", "-source", "ingest",
	}, io.Discard)
	require.NoError(t, err)
	cfg := opts.cfg
	assert.True(t, cfg.GetSemantic())
	assert.False(t, cfg.GetAutopilot())
	assert.Equal(t, 3000, cfg.GetPort())
	x, _, _ := cfg.GetOffset()
	assert.Equal(t, 1.5, x)
	assert.True(t, cfg.GetRecord())
	assert.Equal(t, "pcd", cfg.GetSnapshotFormat())
	assert.Equal(t, 40, opts.maxTicks)
	assert.Equal(t, config.SourceIngest, cfg.GetSource())
}

func TestParseFlags_FlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"range": 50.0, "channels": 32, "semantic": true}`), 0644))

	opts, err := parseFlags([]string{"-config", path, "-channels", "16"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 50.0, opts.cfg.GetRange(), "from file")
	assert.Equal(t, 16.0, opts.cfg.GetChannels(), "flag wins")
	assert.True(t, opts.cfg.GetSemantic())
	assert.Equal(t, -25.0, opts.cfg.GetLowerFOV(), "default for unset field")
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"-format", "las"}},
		{"bad source", []string{"-source", "carla"}},
		{"fov inverted", []string{"-upper-fov", "-30"}},
		{"negative ticks", []string{"-max-ticks", "-1"}},
		{"stray argument", []string{"extra"}},
		{"missing config", []string{"-config", "/nonexistent/viewer.json"}},
		{"unknown flag", []string{"-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}

	_, err := parseFlags([]string{"-h"}, io.Discard)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func smallSensor(t *testing.T, extra ...string) *options {
	t.Helper()
	args := append([]string{"-points-per-second", "20000", "-channels", "16"}, extra...)
	opts, err := parseFlags(args, io.Discard)
	require.NoError(t, err)
	opts.cfg.FrameSleep = ptr("1ms")
	return opts
}

func ptr[T any](v T) *T { return &v }

func TestRun_SyntheticRecordsAndCatalogues(t *testing.T) {
	dir := t.TempDir()
	opts := smallSensor(t,
		"-record", "-recordings-dir", filepath.Join(dir, "recordings"),
		"-db", filepath.Join(dir, "viewer.db"),
		"-render-html", filepath.Join(dir, "view.html"),
		"-render-png", filepath.Join(dir, "view.png"),
		"-render-every", "2",
		"-max-ticks", "12",
	)

	res, err := run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Ticks)
	assert.True(t, res.Registered)
	assert.Equal(t, "max_ticks", res.EndReason)
	require.GreaterOrEqual(t, res.Snapshots, 1)

	for _, name := range []string{"view.html", "view.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	h, err := recorder.ReadHeader(fsutil.OSFileSystem{}, res.RecordingDir)
	require.NoError(t, err)
	assert.Len(t, h.Snapshots, res.Snapshots)

	ldb, err := lidardb.Open(filepath.Join(dir, "viewer.db"))
	require.NoError(t, err)
	defer ldb.Close()
	s, err := ldb.GetSession(res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "raycast", s.SensorKind)
	assert.Equal(t, "sensor.lidar.ray_cast", s.Blueprint["blueprint"])
	assert.Equal(t, 12, s.Ticks)
	assert.Equal(t, "max_ticks", s.EndReason)
	assert.Equal(t, res.Snapshots, s.Snapshots)
	require.NotNil(t, s.EndedAt)

	snaps, err := ldb.ListSnapshots(res.SessionID)
	require.NoError(t, err)
	require.NotEmpty(t, snaps)
	assert.Positive(t, snaps[0].Bytes)
}

func TestRun_SemanticCancelled(t *testing.T) {
	opts := smallSensor(t, "-semantic", "-cos-shading")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res, err := run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, "interrupted", res.EndReason)
	assert.Positive(t, res.Ticks)
}

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

func TestRun_IngestTimesOutWithoutBridge(t *testing.T) {
	opts := smallSensor(t, "-source", "ingest", "-host", "127.0.0.1",
		"-port", strconv.Itoa(freePort(t)), "-timeout", "50ms")

	res, err := run(context.Background(), opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrTickTimeout)
	assert.Equal(t, 0, res.Ticks)
	assert.Contains(t, res.EndReason, "error:")
}

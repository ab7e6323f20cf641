package lidar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameStats_GetAndReset(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }
	fs := NewFrameStatsWithClock(clock)

	fs.AddFrame(1600, 90)
	fs.AddFrame(1600, 100)
	fs.AddDropped()
	fs.AddRender()
	fs.AddSnapshot(nil)
	fs.AddSnapshot(errors.New("disk full"))

	now = now.Add(2 * time.Second)
	s := fs.GetAndReset()
	assert.Equal(t, int64(2), s.Frames)
	assert.Equal(t, int64(3200), s.Bytes)
	assert.Equal(t, int64(190), s.Points)
	assert.Equal(t, int64(1), s.Dropped)
	assert.Equal(t, int64(1), s.Renders)
	assert.Equal(t, int64(1), s.Snapshots)
	assert.Equal(t, int64(1), s.SnapshotErrors)
	assert.Equal(t, 2*time.Second, s.Duration)
	assert.InDelta(t, 1.0, s.FPS(), 1e-9)

	again := fs.GetAndReset()
	assert.Zero(t, again.Frames)
	assert.Zero(t, again.Duration)
	assert.Empty(t, again.Format())
}

func TestFrameStats_LatestAndUptime(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	fs := NewFrameStatsWithClock(func() time.Time { return now })
	assert.Nil(t, fs.Latest())

	fs.AddFrame(16, 1)
	now = now.Add(time.Second)
	fs.GetAndReset()
	fs.AddFrame(16, 1)

	latest := fs.Latest()
	if assert.NotNil(t, latest) {
		assert.Equal(t, int64(1), latest.Frames, "open interval not included")
	}
	now = now.Add(time.Second)
	assert.Equal(t, 2*time.Second, fs.Uptime())
}

func TestStatsSnapshot_Format(t *testing.T) {
	s := StatsSnapshot{Frames: 20, Points: 2_000_000, Dropped: 3, Duration: time.Second}
	msg := s.Format()
	assert.Contains(t, msg, "[Pipeline]")
	assert.Contains(t, msg, "20.0 fps")
	assert.Contains(t, msg, "2,000,000 points")
	assert.Contains(t, msg, "3 frames replaced")
	assert.NotContains(t, msg, "snapshots")
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{500000, "500,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatWithCommas(tt.input))
	}
}

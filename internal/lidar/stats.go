package lidar

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// FrameStats accumulates per-interval throughput counters for the frame
// pipeline. All methods are safe for concurrent use.
type FrameStats struct {
	mu           sync.Mutex
	frameCount   int64
	byteCount    int64
	droppedCount int64
	pointCount   int64
	renderCount  int64
	snapshots    int64
	snapshotErrs int64
	lastReset    time.Time
	startTime    time.Time
	latest       *StatsSnapshot
	now          func() time.Time
}

// NewFrameStats creates a new FrameStats instance.
func NewFrameStats() *FrameStats {
	return NewFrameStatsWithClock(time.Now)
}

// NewFrameStatsWithClock creates a FrameStats that reads time from now.
func NewFrameStatsWithClock(now func() time.Time) *FrameStats {
	t := now()
	return &FrameStats{
		lastReset: t,
		startTime: t,
		now:       now,
	}
}

// AddFrame records one decoded frame of the given raw size and kept points.
func (fs *FrameStats) AddFrame(bytes, points int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.frameCount++
	fs.byteCount += int64(bytes)
	fs.pointCount += int64(points)
}

// AddDropped records a frame replaced before it could be decoded.
func (fs *FrameStats) AddDropped() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.droppedCount++
}

// AddRender records one renderer redraw.
func (fs *FrameStats) AddRender() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.renderCount++
}

// AddSnapshot records a snapshot attempt and whether it failed.
func (fs *FrameStats) AddSnapshot(err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err != nil {
		fs.snapshotErrs++
		return
	}
	fs.snapshots++
}

// StatsSnapshot is one interval's worth of counters.
type StatsSnapshot struct {
	Frames         int64         `json:"frames"`
	Bytes          int64         `json:"bytes"`
	Dropped        int64         `json:"dropped"`
	Points         int64         `json:"points"`
	Renders        int64         `json:"renders"`
	Snapshots      int64         `json:"snapshots"`
	SnapshotErrors int64         `json:"snapshot_errors"`
	Duration       time.Duration `json:"duration_ns"`
}

// FPS returns decoded frames per second over the interval.
func (s StatsSnapshot) FPS() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Duration.Seconds()
}

// GetAndReset returns current stats and resets counters.
func (fs *FrameStats) GetAndReset() StatsSnapshot {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := fs.now()
	s := StatsSnapshot{
		Frames:         fs.frameCount,
		Bytes:          fs.byteCount,
		Dropped:        fs.droppedCount,
		Points:         fs.pointCount,
		Renders:        fs.renderCount,
		Snapshots:      fs.snapshots,
		SnapshotErrors: fs.snapshotErrs,
		Duration:       now.Sub(fs.lastReset),
	}

	fs.frameCount = 0
	fs.byteCount = 0
	fs.droppedCount = 0
	fs.pointCount = 0
	fs.renderCount = 0
	fs.snapshots = 0
	fs.snapshotErrs = 0
	fs.lastReset = now
	fs.latest = &s

	return s
}

// Latest returns the interval most recently closed by GetAndReset, or nil
// before the first one.
func (fs *FrameStats) Latest() *StatsSnapshot {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.latest == nil {
		return nil
	}
	s := *fs.latest
	return &s
}

// Uptime returns the time since the stats were created.
func (fs *FrameStats) Uptime() time.Duration {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.now().Sub(fs.startTime)
}

// LogStats logs and resets the interval counters. Nothing is logged for an
// idle interval.
func (fs *FrameStats) LogStats() {
	s := fs.GetAndReset()
	if msg := s.Format(); msg != "" {
		log.Print(msg)
	}
}

// Format renders the snapshot as a single log line.
func (s StatsSnapshot) Format() string {
	if s.Frames == 0 && s.Dropped == 0 && s.Renders == 0 {
		return ""
	}
	secs := s.Duration.Seconds()
	if secs <= 0 {
		secs = 1
	}
	msg := fmt.Sprintf("[Pipeline] stats (/sec): %.1f fps, %.2f MB, %s points, %.1f renders",
		s.FPS(), float64(s.Bytes)/secs/(1024*1024),
		FormatWithCommas(int64(float64(s.Points)/secs)), float64(s.Renders)/secs)
	if s.Dropped > 0 {
		msg += fmt.Sprintf(", %d frames replaced", s.Dropped)
	}
	if s.Snapshots > 0 || s.SnapshotErrors > 0 {
		msg += fmt.Sprintf(", %d snapshots (%d failed)", s.Snapshots+s.SnapshotErrors, s.SnapshotErrors)
	}
	return msg
}

// FormatWithCommas formats a number with thousands separators
func FormatWithCommas(n int64) string {
	str := fmt.Sprintf("%d", n)
	neg := false
	if n < 0 {
		neg = true
		str = str[1:]
	}
	if len(str) <= 3 {
		if neg {
			return "-" + str
		}
		return str
	}

	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	if neg {
		return "-" + result
	}
	return result
}

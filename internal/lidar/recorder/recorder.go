// Package recorder writes point-set snapshots to a per-session directory and
// reads them back.
package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/banshee-data/simlidar/internal/fsutil"
	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/monitoring"
	"github.com/banshee-data/simlidar/internal/timeutil"
)

// HeaderFile is written into the session directory on Close.
const HeaderFile = "session.json"

// ErrClosed is returned by Snapshot after Close.
var ErrClosed = errors.New("recorder is closed")

// SessionHeader describes a finished recording session.
type SessionHeader struct {
	Version    string          `json:"version"`
	CreatedNs  int64           `json:"created_ns"`
	SensorKind string          `json:"sensor_kind"`
	Format     string          `json:"format"`
	Snapshots  []SnapshotEntry `json:"snapshots"`
	StartNs    int64           `json:"start_ns"`
	EndNs      int64           `json:"end_ns"`
}

// SnapshotEntry is one written snapshot.
type SnapshotEntry struct {
	Index   int    `json:"index"`
	Seq     uint64 `json:"seq"`
	Points  int    `json:"points"`
	File    string `json:"file"`
	Bytes   int64  `json:"bytes"`
	TakenNs int64  `json:"taken_ns"`
}

// Config holds Recorder dependencies.
type Config struct {
	FS     fsutil.FileSystem // defaults to OSFileSystem
	Root   string            // parent of session directories, e.g. "recordings"
	Format string            // "ply" (default) or "pcd"
	Kind   lidar.SensorKind
	Clock  timeutil.Clock // defaults to RealClock
}

// Recorder writes snapshots as <root>/<YYYYMMDD_HHMMSS>/frame_%06d.<ext>.
type Recorder struct {
	fs     fsutil.FileSystem
	dir    string
	writer Writer
	clock  timeutil.Clock

	mu     sync.Mutex
	header SessionHeader
	closed bool
}

// NewRecorder creates the session directory and returns a Recorder writing
// into it.
func NewRecorder(cfg Config) (*Recorder, error) {
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Root == "" {
		cfg.Root = "recordings"
	}
	w, err := NewWriter(cfg.Format)
	if err != nil {
		return nil, err
	}

	now := cfg.Clock.Now()
	dir := filepath.Join(cfg.Root, timeutil.Stamp(now))
	if err := cfg.FS.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	format := cfg.Format
	if format == "" {
		format = "ply"
	}
	monitoring.Logf("[Recorder] recording %s snapshots to %s", format, dir)
	return &Recorder{
		fs:     cfg.FS,
		dir:    dir,
		writer: w,
		clock:  cfg.Clock,
		header: SessionHeader{
			Version:    "1.0",
			CreatedNs:  now.UnixNano(),
			SensorKind: cfg.Kind.String(),
			Format:     format,
		},
	}, nil
}

// Dir returns the session directory.
func (r *Recorder) Dir() string { return r.dir }

// FileName returns the snapshot file name for a loop index.
func (r *Recorder) FileName(index int) string {
	return fmt.Sprintf("frame_%06d%s", index, r.writer.Extension())
}

// Snapshot writes f's point set. The file is written under a temporary name
// and renamed into place so readers never observe a partial snapshot.
func (r *Recorder) Snapshot(index int, f *lidar.Frame) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}

	name := r.FileName(index)
	path := filepath.Join(r.dir, name)
	n, err := fsutil.WriteAtomic(r.fs, path, func(w io.Writer) error {
		return r.writer.WriteSnapshot(w, f.Points)
	})
	if err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", name, err)
	}

	now := r.clock.Now().UnixNano()
	if r.header.StartNs == 0 {
		r.header.StartNs = now
	}
	r.header.EndNs = now
	r.header.Snapshots = append(r.header.Snapshots, SnapshotEntry{
		Index:   index,
		Seq:     f.Seq,
		Points:  f.Points.Len(),
		File:    name,
		Bytes:   n,
		TakenNs: now,
	})
	monitoring.Debugf("[Recorder] wrote %s (%d points, %d bytes)", path, f.Points.Len(), n)
	return path, nil
}

// Count returns the number of snapshots written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.header.Snapshots)
}

// Header returns a copy of the session header.
func (r *Recorder) Header() SessionHeader {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.header
	h.Snapshots = append([]SnapshotEntry(nil), r.header.Snapshots...)
	return h
}

// Close writes the session header. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	data, err := json.MarshalIndent(r.header, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if _, err := fsutil.WriteAtomic(r.fs, filepath.Join(r.dir, HeaderFile), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	monitoring.Logf("[Recorder] session %s closed with %d snapshots", r.dir, len(r.header.Snapshots))
	return nil
}

// ReadHeader loads the header of a closed session directory.
func ReadHeader(fs fsutil.FileSystem, dir string) (SessionHeader, error) {
	var h SessionHeader
	data, err := fs.ReadFile(filepath.Join(dir, HeaderFile))
	if err != nil {
		return h, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("failed to parse header: %w", err)
	}
	return h, nil
}

// ReadSnapshot loads a PLY snapshot.
func ReadSnapshot(fs fsutil.FileSystem, path string) (*lidar.PointSet, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPLY(f)
}

// SessionTime parses a session directory name.
func SessionTime(dir string) (time.Time, error) {
	return timeutil.ParseStamp(filepath.Base(dir))
}

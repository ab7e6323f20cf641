// Package lidardb catalogues viewer sessions and the snapshots they wrote
// in a SQLite database. Snapshot payloads stay on disk; the database only
// holds where they are and what they contain.
package lidardb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/simlidar/internal/monitoring"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

type LidarDB struct {
	*sql.DB
}

// pragmas applied to every connection opened by Open.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema. Use ":memory:" for a throwaway database.
func Open(path string) (*LidarDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases and PRAGMAs consistent.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	ldb := &LidarDB{db}
	if err := ldb.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	version, _, err := ldb.MigrateVersion()
	if err != nil {
		db.Close()
		return nil, err
	}
	monitoring.Logf("[LidarDB] opened %s at schema version %d", path, version)
	return ldb, nil
}

// Session is one viewer run.
type Session struct {
	ID             string            `json:"session_id"`
	StartedAt      time.Time         `json:"started_at"`
	EndedAt        *time.Time        `json:"ended_at,omitempty"`
	SensorKind     string            `json:"sensor_kind"`
	Source         string            `json:"source"`
	Blueprint      map[string]string `json:"blueprint"`
	RecordingDir   string            `json:"recording_dir"`
	SnapshotFormat string            `json:"snapshot_format"`
	Ticks          int               `json:"ticks"`
	EndReason      string            `json:"end_reason"`
	Snapshots      int               `json:"snapshots"`
}

// Snapshot is one written point-cloud file.
type Snapshot struct {
	ID        int64     `json:"snapshot_id"`
	SessionID string    `json:"session_id"`
	Index     int       `json:"frame_index"`
	Seq       uint64    `json:"frame_seq"`
	Points    int       `json:"point_count"`
	File      string    `json:"file_path"`
	Bytes     int64     `json:"file_bytes"`
	TakenAt   time.Time `json:"taken_at"`
}

// StartSession inserts s and returns its id. A new UUID is assigned when
// s.ID is empty.
func (ldb *LidarDB) StartSession(s Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	if s.Source == "" {
		s.Source = "synthetic"
	}
	bp := s.Blueprint
	if bp == nil {
		bp = map[string]string{}
	}
	bpJSON, err := json.Marshal(bp)
	if err != nil {
		return "", fmt.Errorf("encode blueprint: %w", err)
	}
	_, err = ldb.Exec(`INSERT INTO viewer_sessions
		(session_id, started_unix_nanos, sensor_kind, source, blueprint_json, recording_dir, snapshot_format)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.StartedAt.UnixNano(), s.SensorKind, s.Source, string(bpJSON), s.RecordingDir, s.SnapshotFormat)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return s.ID, nil
}

// EndSession records how a session finished.
func (ldb *LidarDB) EndSession(id string, endedAt time.Time, ticks int, reason string) error {
	res, err := ldb.Exec(`UPDATE viewer_sessions
		SET ended_unix_nanos = ?, ticks = ?, end_reason = ?
		WHERE session_id = ?`, endedAt.UnixNano(), ticks, reason, id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordSnapshot inserts s and returns its row id.
func (ldb *LidarDB) RecordSnapshot(s Snapshot) (int64, error) {
	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now()
	}
	res, err := ldb.Exec(`INSERT INTO viewer_snapshots
		(session_id, frame_index, frame_seq, point_count, file_path, file_bytes, taken_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.Index, int64(s.Seq), s.Points, s.File, s.Bytes, s.TakenAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return res.LastInsertId()
}

const sessionColumns = `s.session_id, s.started_unix_nanos, s.ended_unix_nanos, s.sensor_kind, s.source,
	s.blueprint_json, s.recording_dir, s.snapshot_format, s.ticks, s.end_reason,
	(SELECT COUNT(*) FROM viewer_snapshots n WHERE n.session_id = s.session_id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (Session, error) {
	var (
		s       Session
		started int64
		ended   sql.NullInt64
		bpJSON  string
	)
	if err := r.Scan(&s.ID, &started, &ended, &s.SensorKind, &s.Source,
		&bpJSON, &s.RecordingDir, &s.SnapshotFormat, &s.Ticks, &s.EndReason, &s.Snapshots); err != nil {
		return Session{}, err
	}
	s.StartedAt = time.Unix(0, started)
	if ended.Valid {
		t := time.Unix(0, ended.Int64)
		s.EndedAt = &t
	}
	if err := json.Unmarshal([]byte(bpJSON), &s.Blueprint); err != nil {
		return Session{}, fmt.Errorf("decode blueprint for %s: %w", s.ID, err)
	}
	return s, nil
}

// ListSessions returns the newest sessions first. limit <= 0 returns all.
func (ldb *LidarDB) ListSessions(limit int) ([]Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM viewer_sessions s ORDER BY s.started_unix_nanos DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := ldb.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetSession returns one session.
func (ldb *LidarDB) GetSession(id string) (Session, error) {
	row := ldb.QueryRow(`SELECT `+sessionColumns+` FROM viewer_sessions s WHERE s.session_id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s, err
}

// ListSnapshots returns a session's snapshots in frame order.
func (ldb *LidarDB) ListSnapshots(sessionID string) ([]Snapshot, error) {
	rows, err := ldb.Query(`SELECT snapshot_id, session_id, frame_index, frame_seq, point_count,
			file_path, file_bytes, taken_unix_nanos
		FROM viewer_snapshots WHERE session_id = ? ORDER BY frame_index`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var (
			s     Snapshot
			seq   int64
			taken int64
		)
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Index, &seq, &s.Points, &s.File, &s.Bytes, &taken); err != nil {
			return nil, err
		}
		s.Seq = uint64(seq)
		s.TakenAt = time.Unix(0, taken)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// GetSnapshot returns one snapshot by row id.
func (ldb *LidarDB) GetSnapshot(id int64) (Snapshot, error) {
	var (
		s     Snapshot
		seq   int64
		taken int64
	)
	err := ldb.QueryRow(`SELECT snapshot_id, session_id, frame_index, frame_seq, point_count,
			file_path, file_bytes, taken_unix_nanos
		FROM viewer_snapshots WHERE snapshot_id = ?`, id).
		Scan(&s.ID, &s.SessionID, &s.Index, &seq, &s.Points, &s.File, &s.Bytes, &taken)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, err
	}
	s.Seq = uint64(seq)
	s.TakenAt = time.Unix(0, taken)
	return s, nil
}

// DeleteSession removes a session and, through the foreign key, its
// snapshot rows. Files on disk are left alone.
func (ldb *LidarDB) DeleteSession(id string) error {
	res, err := ldb.Exec(`DELETE FROM viewer_sessions WHERE session_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

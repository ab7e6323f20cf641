package lidardb

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/simlidar/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

func openTestDB(t *testing.T) *LidarDB {
	t.Helper()
	ldb, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })
	return ldb
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestOpen_MigratesToLatest(t *testing.T) {
	ldb := openTestDB(t)
	version, dirty, err := ldb.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	require.NoError(t, ldb.MigrateUp())
}

func TestOpen_InMemory(t *testing.T) {
	ldb, err := Open(":memory:")
	require.NoError(t, err)
	defer ldb.Close()

	_, err = ldb.StartSession(Session{SensorKind: "raycast"})
	require.NoError(t, err)
}

func TestMigrateDown(t *testing.T) {
	ldb := openTestDB(t)
	require.NoError(t, ldb.MigrateDown())
	version, _, err := ldb.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, ldb.MigrateUp())
	version, _, err = ldb.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestSessionLifecycle(t *testing.T) {
	ldb := openTestDB(t)

	id, err := ldb.StartSession(Session{
		StartedAt:      t0,
		SensorKind:     "semantic",
		Source:         "ingest",
		Blueprint:      map[string]string{"channels": "64", "range": "30.0"},
		RecordingDir:   "recordings/20260301_120000",
		SnapshotFormat: "ply",
	})
	require.NoError(t, err)
	assert.Len(t, id, 36, "uuid assigned")

	for i, n := range []int{1200, 1500} {
		_, err := ldb.RecordSnapshot(Snapshot{
			SessionID: id,
			Index:     i * 10,
			Seq:       uint64(i + 3),
			Points:    n,
			File:      filepath.Join("recordings/20260301_120000", "frame_000000.ply"),
			Bytes:     int64(n * 27),
			TakenAt:   t0.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	require.NoError(t, ldb.EndSession(id, t0.Add(time.Minute), 1200, "cancelled"))

	got, err := ldb.GetSession(id)
	require.NoError(t, err)
	end := t0.Add(time.Minute)
	want := Session{
		ID:             id,
		StartedAt:      t0,
		EndedAt:        &end,
		SensorKind:     "semantic",
		Source:         "ingest",
		Blueprint:      map[string]string{"channels": "64", "range": "30.0"},
		RecordingDir:   "recordings/20260301_120000",
		SnapshotFormat: "ply",
		Ticks:          1200,
		EndReason:      "cancelled",
		Snapshots:      2,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}

	snaps, err := ldb.ListSnapshots(id)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 0, snaps[0].Index)
	assert.Equal(t, 10, snaps[1].Index)
	assert.Equal(t, uint64(4), snaps[1].Seq)
	assert.Equal(t, int64(1500*27), snaps[1].Bytes)

	one, err := ldb.GetSnapshot(snaps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, snaps[1], one)
}

func TestListSessions_NewestFirst(t *testing.T) {
	ldb := openTestDB(t)
	for i := 0; i < 3; i++ {
		_, err := ldb.StartSession(Session{ID: string(rune('a' + i)), StartedAt: t0.Add(time.Duration(i) * time.Hour), SensorKind: "raycast"})
		require.NoError(t, err)
	}

	all, err := ldb.ListSessions(0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
	assert.Nil(t, all[0].EndedAt)
	assert.Equal(t, "synthetic", all[0].Source)
	assert.Empty(t, all[0].Blueprint)

	limited, err := ldb.ListSessions(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestNotFound(t *testing.T) {
	ldb := openTestDB(t)

	_, err := ldb.GetSession("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, ldb.EndSession("missing", t0, 0, ""), ErrNotFound)
	assert.ErrorIs(t, ldb.DeleteSession("missing"), ErrNotFound)
	_, err = ldb.GetSnapshot(99)
	assert.ErrorIs(t, err, ErrNotFound)

	snaps, err := ldb.ListSnapshots("missing")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestRecordSnapshot_RequiresSession(t *testing.T) {
	ldb := openTestDB(t)
	_, err := ldb.RecordSnapshot(Snapshot{SessionID: "nope", File: "x.ply"})
	assert.Error(t, err, "foreign key enforced")
}

func TestDeleteSession_CascadesSnapshots(t *testing.T) {
	ldb := openTestDB(t)
	id, err := ldb.StartSession(Session{SensorKind: "raycast"})
	require.NoError(t, err)
	_, err = ldb.RecordSnapshot(Snapshot{SessionID: id, File: "a.ply", Points: 200})
	require.NoError(t, err)

	require.NoError(t, ldb.DeleteSession(id))
	stats, err := ldb.Stats()
	require.NoError(t, err)
	assert.Equal(t, []TableStats{{"viewer_sessions", 0}, {"viewer_snapshots", 0}}, stats)
}

func TestAttachAdminRoutes(t *testing.T) {
	ldb := openTestDB(t)
	_, err := ldb.StartSession(Session{SensorKind: "raycast"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	require.NoError(t, ldb.AttachAdminRoutes(mux))

	t.Run("db-stats endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/debug/db-stats", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		// tsweb may refuse non-local callers; the route must still exist.
		require.NotEqual(t, http.StatusNotFound, w.Code)
		if w.Code == http.StatusOK {
			var stats []TableStats
			require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
			assert.Equal(t, int64(1), stats[0].Rows)
		}
	})

	t.Run("tailsql endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/debug/tailsql/", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.NotEqual(t, http.StatusNotFound, w.Code)
	})
}

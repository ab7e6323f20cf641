// Package monitor serves the viewer's HTTP status surface: health, live
// frame and throughput statistics, the session catalogue and browser views
// of the latest frame or a recorded snapshot.
package monitor

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/banshee-data/simlidar/internal/fsutil"
	"github.com/banshee-data/simlidar/internal/httputil"
	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/ingest"
	"github.com/banshee-data/simlidar/internal/lidar/pipeline"
	"github.com/banshee-data/simlidar/internal/lidar/recorder"
	"github.com/banshee-data/simlidar/internal/lidar/visualiser"
	"github.com/banshee-data/simlidar/internal/lidardb"
	"github.com/banshee-data/simlidar/internal/monitoring"
	"github.com/banshee-data/simlidar/internal/security"
	"github.com/banshee-data/simlidar/internal/version"
)

//go:embed status.html
var StatusHTML embed.FS

var statusTemplate = template.Must(template.ParseFS(StatusHTML, "status.html"))

// StateSource reports where the frame loop currently is.
type StateSource interface {
	State() pipeline.State
}

// IngestStatser reports counters of a frame ingest server.
type IngestStatser interface {
	Stats() ingest.ServerStats
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address    string
	SensorKind lidar.SensorKind
	Source     string

	Store  *lidar.FrameStore
	Stats  *lidar.FrameStats
	Loop   StateSource      // optional
	Ingest IngestStatser    // optional, set when frames arrive over gRPC
	DB     *lidardb.LidarDB // optional session catalogue

	// RecordingsDir bounds which snapshot files /view/snapshots may read.
	RecordingsDir string
	FS            fsutil.FileSystem
	MaxViewPoints int
	AssetsHost    string
}

// WebServer handles the HTTP interface for monitoring the viewer.
type WebServer struct {
	cfg    WebServerConfig
	server *http.Server
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(cfg WebServerConfig) *WebServer {
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}
	if cfg.Store == nil {
		cfg.Store = &lidar.FrameStore{}
	}
	if cfg.Stats == nil {
		cfg.Stats = lidar.NewFrameStats()
	}
	ws := &WebServer{cfg: cfg}
	ws.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// Start begins the HTTP server in a goroutine and blocks until ctx is done,
// then shuts the server down.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("[Monitor] starting HTTP server on %s", ws.cfg.Address)
		if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("monitor server: %w", err)
	case <-ctx.Done():
	}
	monitoring.Logf("[Monitor] shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("[Monitor] HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("[Monitor] HTTP server force close error: %v", err)
		}
	}

	monitoring.Logf("[Monitor] HTTP server routine stopped")
	return nil
}

// Close stops the server immediately.
func (ws *WebServer) Close() error {
	return ws.server.Close()
}

// Handler returns the routed handler. Exposed for tests and for embedding
// under another server.
func (ws *WebServer) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", ws.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", ws.handleStatus).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/frame/latest", ws.handleLatestFrame).Methods(http.MethodGet)
	api.HandleFunc("/stats", ws.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/sessions", ws.handleSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", ws.handleSession).Methods(http.MethodGet, http.MethodDelete)
	api.HandleFunc("/sessions/{id}/snapshots", ws.handleSessionSnapshots).Methods(http.MethodGet)
	api.HandleFunc("/recordings", ws.handleRecordings).Methods(http.MethodGet)

	r.HandleFunc("/view", ws.handleView).Methods(http.MethodGet)
	r.HandleFunc("/view/topdown.png", ws.handleTopDown).Methods(http.MethodGet)
	r.HandleFunc("/view/snapshots/{id:[0-9]+}", ws.handleSnapshotView).Methods(http.MethodGet)

	if ws.cfg.DB != nil {
		debug := http.NewServeMux()
		if err := ws.cfg.DB.AttachAdminRoutes(debug); err != nil {
			monitoring.Logf("[Monitor] debug routes disabled: %v", err)
		} else {
			r.PathPrefix("/debug/").Handler(debug)
		}
	}

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.MethodNotAllowed(w)
	})
	return r
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "lidar-viewer", "timestamp": "%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// FrameInfo describes the latest decoded frame.
type FrameInfo struct {
	Seq            uint64        `json:"seq"`
	Kind           string        `json:"sensor_kind"`
	Points         int           `json:"points"`
	RawPoints      int           `json:"raw_points"`
	DecodedAt      time.Time     `json:"decoded_at"`
	DecodeDuration time.Duration `json:"decode_duration_ns"`
	Summary        lidar.Summary `json:"summary"`
}

func frameInfo(f *lidar.Frame) *FrameInfo {
	if f == nil {
		return nil
	}
	info := &FrameInfo{
		Seq:            f.Seq,
		Kind:           f.Kind.String(),
		RawPoints:      f.RawPoints,
		DecodedAt:      f.DecodedAt,
		DecodeDuration: f.DecodeDuration,
	}
	if f.Points != nil {
		info.Points = f.Points.Len()
		info.Summary = lidar.Summarize(f.Points)
	}
	return info
}

func (ws *WebServer) handleLatestFrame(w http.ResponseWriter, r *http.Request) {
	info := frameInfo(ws.cfg.Store.Latest())
	if info == nil {
		httputil.NotFound(w, "no frame decoded yet")
		return
	}
	httputil.WriteJSONOK(w, info)
}

// StatsResponse is the body of /api/stats.
type StatsResponse struct {
	SensorKind  string               `json:"sensor_kind"`
	Source      string               `json:"source"`
	LoopState   string               `json:"loop_state"`
	Uptime      string               `json:"uptime"`
	Published   uint64               `json:"frames_published"`
	Interval    *lidar.StatsSnapshot `json:"interval,omitempty"`
	IntervalFPS float64              `json:"interval_fps"`
	Ingest      *ingest.ServerStats  `json:"ingest,omitempty"`
}

func (ws *WebServer) statsResponse() StatsResponse {
	resp := StatsResponse{
		SensorKind: ws.cfg.SensorKind.String(),
		Source:     ws.cfg.Source,
		LoopState:  ws.loopState(),
		Uptime:     ws.cfg.Stats.Uptime().Round(time.Second).String(),
		Published:  ws.cfg.Store.Count(),
		Interval:   ws.cfg.Stats.Latest(),
	}
	if resp.Interval != nil {
		resp.IntervalFPS = resp.Interval.FPS()
	}
	if ws.cfg.Ingest != nil {
		st := ws.cfg.Ingest.Stats()
		resp.Ingest = &st
	}
	return resp
}

func (ws *WebServer) loopState() string {
	if ws.cfg.Loop == nil {
		return "unknown"
	}
	return ws.cfg.Loop.State().String()
}

func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, ws.statsResponse())
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := ws.statsResponse()
	data := struct {
		SensorKind  string
		Source      string
		LoopState   string
		HTTPAddress string
		Uptime      string
		Version     string
		Frame       *FrameInfo
		Stats       *lidar.StatsSnapshot
		HasDB       bool
	}{
		SensorKind:  st.SensorKind,
		Source:      st.Source,
		LoopState:   st.LoopState,
		HTTPAddress: ws.cfg.Address,
		Uptime:      st.Uptime,
		Version:     version.String(),
		Frame:       frameInfo(ws.cfg.Store.Latest()),
		Stats:       st.Interval,
		HasDB:       ws.cfg.DB != nil,
	}

	var buf bytes.Buffer
	if err := statusTemplate.Execute(&buf, data); err != nil {
		http.Error(w, "Error executing template: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleSessions lists catalogued sessions, newest first.
// Query params:
//
//	limit (optional, default 20, max 200)
func (ws *WebServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if ws.cfg.DB == nil {
		httputil.ServiceUnavailable(w, "no session database configured")
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, 200)
	}
	sessions, err := ws.cfg.DB.ListSessions(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list sessions: %v", err))
		return
	}
	httputil.WriteJSONOK(w, sessions)
}

// Recording is a session directory found under the recordings root.
// Header fields are empty while the session is still open.
type Recording struct {
	Dir        string    `json:"dir"`
	Started    time.Time `json:"started"`
	Closed     bool      `json:"closed"`
	SensorKind string    `json:"sensor_kind,omitempty"`
	Format     string    `json:"format,omitempty"`
	Snapshots  int       `json:"snapshots"`
}

// handleRecordings lists session directories on disk, newest first. It works
// without a catalogue and also shows sessions the catalogue never saw.
func (ws *WebServer) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if ws.cfg.RecordingsDir == "" {
		httputil.ServiceUnavailable(w, "no recordings directory configured")
		return
	}
	entries, err := os.ReadDir(ws.cfg.RecordingsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		httputil.InternalServerError(w, fmt.Sprintf("list recordings: %v", err))
		return
	}

	out := []Recording{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		started, err := recorder.SessionTime(e.Name())
		if err != nil {
			continue
		}
		dir := filepath.Join(ws.cfg.RecordingsDir, e.Name())
		rec := Recording{Dir: dir, Started: started}
		if h, err := recorder.ReadHeader(ws.cfg.FS, dir); err == nil {
			rec.Closed = true
			rec.SensorKind = h.SensorKind
			rec.Format = h.Format
			rec.Snapshots = len(h.Snapshots)
		} else if !errors.Is(err, os.ErrNotExist) {
			monitoring.Debugf("[Monitor] recording %s: %v", dir, err)
		}
		out = append(out, rec)
	}
	// Stamped names sort chronologically and ReadDir returns them sorted.
	slices.Reverse(out)
	httputil.WriteJSONOK(w, out)
}

func (ws *WebServer) handleSession(w http.ResponseWriter, r *http.Request) {
	if ws.cfg.DB == nil {
		httputil.ServiceUnavailable(w, "no session database configured")
		return
	}
	id := mux.Vars(r)["id"]

	if r.Method == http.MethodDelete {
		if err := ws.cfg.DB.DeleteSession(id); err != nil {
			writeDBError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s, err := ws.cfg.DB.GetSession(id)
	if err != nil {
		writeDBError(w, err)
		return
	}
	httputil.WriteJSONOK(w, s)
}

func (ws *WebServer) handleSessionSnapshots(w http.ResponseWriter, r *http.Request) {
	if ws.cfg.DB == nil {
		httputil.ServiceUnavailable(w, "no session database configured")
		return
	}
	id := mux.Vars(r)["id"]
	if _, err := ws.cfg.DB.GetSession(id); err != nil {
		writeDBError(w, err)
		return
	}
	snaps, err := ws.cfg.DB.ListSnapshots(id)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list snapshots: %v", err))
		return
	}
	httputil.WriteJSONOK(w, snaps)
}

func writeDBError(w http.ResponseWriter, err error) {
	if errors.Is(err, lidardb.ErrNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	httputil.InternalServerError(w, err.Error())
}

func (ws *WebServer) latestPoints(w http.ResponseWriter) (*lidar.Frame, bool) {
	f := ws.cfg.Store.Latest()
	if f == nil || f.Points == nil {
		httputil.NotFound(w, "no frame decoded yet")
		return nil, false
	}
	return f, true
}

func (ws *WebServer) handleView(w http.ResponseWriter, r *http.Request) {
	f, ok := ws.latestPoints(w)
	if !ok {
		return
	}
	ws.writePage(w, f.Points, fmt.Sprintf("%s frame %d", f.Kind, f.Seq))
}

func (ws *WebServer) handleTopDown(w http.ResponseWriter, r *http.Request) {
	f, ok := ws.latestPoints(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := visualiser.WriteTopDownPNG(&buf, f.Points, visualiser.PlotConfig{
		Title:     fmt.Sprintf("%s frame %d", f.Kind, f.Seq),
		MaxPoints: ws.cfg.MaxViewPoints,
		ShowAxis:  true,
	})
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render image: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// handleSnapshotView renders a catalogued PLY snapshot. The file must live
// under the configured recordings directory.
func (ws *WebServer) handleSnapshotView(w http.ResponseWriter, r *http.Request) {
	if ws.cfg.DB == nil {
		httputil.ServiceUnavailable(w, "no session database configured")
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httputil.BadRequest(w, "snapshot id must be numeric")
		return
	}
	snap, err := ws.cfg.DB.GetSnapshot(id)
	if err != nil {
		writeDBError(w, err)
		return
	}
	if ws.cfg.RecordingsDir == "" {
		httputil.ServiceUnavailable(w, "no recordings directory configured")
		return
	}
	if err := security.ValidatePathWithinDirectory(snap.File, ws.cfg.RecordingsDir); err != nil {
		monitoring.Logf("[Monitor] refused snapshot %d: %v", id, err)
		httputil.WriteJSONError(w, http.StatusForbidden, "snapshot file is outside the recordings directory")
		return
	}
	if err := security.ValidateExtension(snap.File, ".ply"); err != nil {
		httputil.WriteJSONError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	ps, err := recorder.ReadSnapshot(ws.cfg.FS, snap.File)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("read snapshot: %v", err))
		return
	}
	ws.writePage(w, ps, fmt.Sprintf("snapshot %d (frame %d)", snap.ID, snap.Index))
}

func (ws *WebServer) writePage(w http.ResponseWriter, ps *lidar.PointSet, title string) {
	var buf bytes.Buffer
	err := visualiser.WriteScatter3D(&buf, ps, visualiser.PageOptions{
		Title:      title,
		MaxPoints:  ws.cfg.MaxViewPoints,
		ShowAxis:   true,
		AssetsHost: ws.cfg.AssetsHost,
	})
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render page: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

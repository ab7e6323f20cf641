package lidardb

import (
	"fmt"
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/simlidar/internal/httputil"
)

// TableStats is a row count for one table.
type TableStats struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// Stats returns the row counts of the catalogue tables.
func (ldb *LidarDB) Stats() ([]TableStats, error) {
	tables := []string{"viewer_sessions", "viewer_snapshots"}
	out := make([]TableStats, 0, len(tables))
	for _, name := range tables {
		var n int64
		if err := ldb.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", name)).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		out = append(out, TableStats{Name: name, Rows: n})
	}
	return out, nil
}

// AttachAdminRoutes mounts the debug pages on mux: a live SQL console at
// /debug/tailsql/ and table row counts at /debug/db-stats.
func (ldb *LidarDB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://simlidar.db", ldb.DB, &tailsql.DBOptions{
		Label: "Viewer sessions",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("db-stats", "Catalogue table row counts", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := ldb.Stats()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, stats)
	}))
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical viewer defaults file.
const DefaultConfigPath = "config/viewer.defaults.json"

// ViewerConfig is the root configuration for a viewer session. Fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// accessors supply defaults for everything else.
type ViewerConfig struct {
	// Simulator connection
	Host    *string `json:"host,omitempty"`
	Port    *int    `json:"port,omitempty"`
	Timeout *string `json:"timeout,omitempty"` // duration string like "2s"

	// World settings
	DeltaSeconds *float64 `json:"delta_seconds,omitempty"`
	NoRendering  *bool    `json:"no_rendering,omitempty"`

	// Vehicle
	VehicleFilter *string `json:"vehicle_filter,omitempty"`
	Autopilot     *bool   `json:"autopilot,omitempty"`

	// Sensor blueprint
	Semantic        *bool    `json:"semantic,omitempty"`
	NoNoise         *bool    `json:"no_noise,omitempty"`
	UpperFOV        *float64 `json:"upper_fov,omitempty"`
	LowerFOV        *float64 `json:"lower_fov,omitempty"`
	Channels        *float64 `json:"channels,omitempty"`
	Range           *float64 `json:"range,omitempty"`
	PointsPerSecond *int     `json:"points_per_second,omitempty"`
	OffsetX         *float64 `json:"offset_x,omitempty"`
	OffsetY         *float64 `json:"offset_y,omitempty"`
	OffsetZ         *float64 `json:"offset_z,omitempty"`
	CosShading      *bool    `json:"cos_shading,omitempty"`

	// Frame loop
	RegisterAtFrame *int    `json:"register_at_frame,omitempty"`
	FrameSleep      *string `json:"frame_sleep,omitempty"`
	StatsInterval   *string `json:"stats_interval,omitempty"`

	// Recording
	Record             *bool   `json:"record,omitempty"`
	RecordingsDir      *string `json:"recordings_dir,omitempty"`
	SnapshotFormat     *string `json:"snapshot_format,omitempty"` // "ply" or "pcd"
	PointDiffThreshold *int    `json:"point_diff_threshold,omitempty"`
	DBPath             *string `json:"db_path,omitempty"`

	// Rendering
	ShowAxis      *bool   `json:"show_axis,omitempty"`
	RenderHTML    *string `json:"render_html,omitempty"` // output path, empty disables
	RenderPNG     *string `json:"render_png,omitempty"`  // output path, empty disables
	RenderEvery   *int    `json:"render_every,omitempty"`
	MaxViewPoints *int    `json:"max_view_points,omitempty"`

	// Services
	HTTPListen *string `json:"http_listen,omitempty"`
	Source     *string `json:"source,omitempty"`
}

// Frame sources.
const (
	SourceSynthetic = "synthetic"
	SourceIngest    = "ingest"
)

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyViewerConfig returns a ViewerConfig with all fields set to nil.
func EmptyViewerConfig() *ViewerConfig {
	return &ViewerConfig{}
}

// DefaultViewerConfig returns a config with every field populated with its
// default, mirroring config/viewer.defaults.json.
func DefaultViewerConfig() *ViewerConfig {
	return &ViewerConfig{
		Host:               ptrString("localhost"),
		Port:               ptrInt(2000),
		Timeout:            ptrString("2s"),
		DeltaSeconds:       ptrFloat64(0.05),
		NoRendering:        ptrBool(false),
		VehicleFilter:      ptrString("model3"),
		Autopilot:          ptrBool(true),
		Semantic:           ptrBool(false),
		NoNoise:            ptrBool(false),
		UpperFOV:           ptrFloat64(15.0),
		LowerFOV:           ptrFloat64(-25.0),
		Channels:           ptrFloat64(64.0),
		Range:              ptrFloat64(30.0),
		PointsPerSecond:    ptrInt(500000),
		OffsetX:            ptrFloat64(0),
		OffsetY:            ptrFloat64(0),
		OffsetZ:            ptrFloat64(0),
		CosShading:         ptrBool(false),
		RegisterAtFrame:    ptrInt(2),
		FrameSleep:         ptrString("5ms"),
		StatsInterval:      ptrString("5s"),
		Record:             ptrBool(false),
		RecordingsDir:      ptrString("recordings"),
		SnapshotFormat:     ptrString("ply"),
		PointDiffThreshold: ptrInt(100),
		DBPath:             ptrString(""),
		ShowAxis:           ptrBool(false),
		RenderHTML:         ptrString(""),
		RenderPNG:          ptrString(""),
		RenderEvery:        ptrInt(10),
		MaxViewPoints:      ptrInt(20000),
		HTTPListen:         ptrString(""),
		Source:             ptrString(SourceSynthetic),
	}
}

// LoadViewerConfig loads a ViewerConfig from a JSON file.
// The file must have a .json extension and be under the max file size.
// Fields omitted from the JSON file keep their defaults, so partial configs
// are safe.
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyViewerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *ViewerConfig) Validate() error {
	if c.Port != nil && (*c.Port <= 0 || *c.Port > 65535) {
		return fmt.Errorf("port must be between 1 and 65535, got %d", *c.Port)
	}
	if c.DeltaSeconds != nil && *c.DeltaSeconds <= 0 {
		return fmt.Errorf("delta_seconds must be positive, got %f", *c.DeltaSeconds)
	}
	if c.UpperFOV != nil && c.LowerFOV != nil && *c.UpperFOV <= *c.LowerFOV {
		return fmt.Errorf("upper_fov (%f) must be above lower_fov (%f)", *c.UpperFOV, *c.LowerFOV)
	}
	if c.Channels != nil && *c.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %f", *c.Channels)
	}
	if c.Range != nil && *c.Range <= 0 {
		return fmt.Errorf("range must be positive, got %f", *c.Range)
	}
	if c.PointsPerSecond != nil && *c.PointsPerSecond <= 0 {
		return fmt.Errorf("points_per_second must be positive, got %d", *c.PointsPerSecond)
	}
	if c.RegisterAtFrame != nil && *c.RegisterAtFrame < 0 {
		return fmt.Errorf("register_at_frame must be non-negative, got %d", *c.RegisterAtFrame)
	}
	if c.PointDiffThreshold != nil && *c.PointDiffThreshold < 0 {
		return fmt.Errorf("point_diff_threshold must be non-negative, got %d", *c.PointDiffThreshold)
	}
	if c.SnapshotFormat != nil && *c.SnapshotFormat != "" && *c.SnapshotFormat != "ply" && *c.SnapshotFormat != "pcd" {
		return fmt.Errorf("snapshot_format must be \"ply\" or \"pcd\", got %q", *c.SnapshotFormat)
	}
	if c.Source != nil && *c.Source != "" && *c.Source != SourceSynthetic && *c.Source != SourceIngest {
		return fmt.Errorf("source must be %q or %q, got %q", SourceSynthetic, SourceIngest, *c.Source)
	}
	if c.RenderEvery != nil && *c.RenderEvery < 1 {
		return fmt.Errorf("render_every must be at least 1, got %d", *c.RenderEvery)
	}
	if c.MaxViewPoints != nil && *c.MaxViewPoints < 1 {
		return fmt.Errorf("max_view_points must be at least 1, got %d", *c.MaxViewPoints)
	}
	for name, v := range map[string]*string{
		"timeout":        c.Timeout,
		"frame_sleep":    c.FrameSleep,
		"stats_interval": c.StatsInterval,
	} {
		if v != nil && *v != "" {
			if _, err := time.ParseDuration(*v); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
			}
		}
	}
	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// GetHost returns the simulator host or "localhost".
func (c *ViewerConfig) GetHost() string { return stringOr(c.Host, "localhost") }

// GetPort returns the simulator port or 2000.
func (c *ViewerConfig) GetPort() int { return intOr(c.Port, 2000) }

// GetTimeout returns the client timeout or 2s.
func (c *ViewerConfig) GetTimeout() time.Duration { return durationOr(c.Timeout, 2*time.Second) }

// GetDeltaSeconds returns the fixed simulation step or 0.05.
func (c *ViewerConfig) GetDeltaSeconds() float64 { return floatOr(c.DeltaSeconds, 0.05) }

// GetNoRendering returns the no_rendering value or false.
func (c *ViewerConfig) GetNoRendering() bool { return boolOr(c.NoRendering, false) }

// GetVehicleFilter returns the vehicle blueprint filter or "model3".
func (c *ViewerConfig) GetVehicleFilter() string { return stringOr(c.VehicleFilter, "model3") }

// GetAutopilot returns the autopilot value or true.
func (c *ViewerConfig) GetAutopilot() bool { return boolOr(c.Autopilot, true) }

// GetSemantic returns whether the semantic sensor is used.
func (c *ViewerConfig) GetSemantic() bool { return boolOr(c.Semantic, false) }

// GetNoNoise returns the no_noise value or false.
func (c *ViewerConfig) GetNoNoise() bool { return boolOr(c.NoNoise, false) }

// GetUpperFOV returns the upper field of view in degrees or 15.
func (c *ViewerConfig) GetUpperFOV() float64 { return floatOr(c.UpperFOV, 15.0) }

// GetLowerFOV returns the lower field of view in degrees or -25.
func (c *ViewerConfig) GetLowerFOV() float64 { return floatOr(c.LowerFOV, -25.0) }

// GetChannels returns the channel count or 64.
func (c *ViewerConfig) GetChannels() float64 { return floatOr(c.Channels, 64.0) }

// GetRange returns the maximum range in metres or 30.
func (c *ViewerConfig) GetRange() float64 { return floatOr(c.Range, 30.0) }

// GetPointsPerSecond returns the sensor point rate or 500000.
func (c *ViewerConfig) GetPointsPerSecond() int { return intOr(c.PointsPerSecond, 500000) }

// GetOffset returns the user sensor offset in metres.
func (c *ViewerConfig) GetOffset() (x, y, z float64) {
	return floatOr(c.OffsetX, 0), floatOr(c.OffsetY, 0), floatOr(c.OffsetZ, 0)
}

// GetCosShading returns the cos_shading value or false.
func (c *ViewerConfig) GetCosShading() bool { return boolOr(c.CosShading, false) }

// GetRegisterAtFrame returns the tick at which geometry is registered or 2.
func (c *ViewerConfig) GetRegisterAtFrame() int { return intOr(c.RegisterAtFrame, 2) }

// GetFrameSleep returns the pause between render and tick or 5ms.
func (c *ViewerConfig) GetFrameSleep() time.Duration {
	return durationOr(c.FrameSleep, 5*time.Millisecond)
}

// GetStatsInterval returns the FPS logging interval or 5s.
func (c *ViewerConfig) GetStatsInterval() time.Duration {
	return durationOr(c.StatsInterval, 5*time.Second)
}

// GetRecord returns whether snapshots are recorded.
func (c *ViewerConfig) GetRecord() bool { return boolOr(c.Record, false) }

// GetRecordingsDir returns the recordings root or "recordings".
func (c *ViewerConfig) GetRecordingsDir() string { return stringOr(c.RecordingsDir, "recordings") }

// GetSnapshotFormat returns "ply" or "pcd".
func (c *ViewerConfig) GetSnapshotFormat() string {
	if c.SnapshotFormat == nil || *c.SnapshotFormat == "" {
		return "ply"
	}
	return *c.SnapshotFormat
}

// GetPointDiffThreshold returns the recording change threshold or 100.
func (c *ViewerConfig) GetPointDiffThreshold() int { return intOr(c.PointDiffThreshold, 100) }

// GetDBPath returns the catalogue database path; empty disables it.
func (c *ViewerConfig) GetDBPath() string { return stringOr(c.DBPath, "") }

// GetShowAxis returns the show_axis value or false.
func (c *ViewerConfig) GetShowAxis() bool { return boolOr(c.ShowAxis, false) }

// GetRenderHTML returns the HTML view output path; empty disables it.
func (c *ViewerConfig) GetRenderHTML() string { return stringOr(c.RenderHTML, "") }

// GetRenderPNG returns the PNG view output path; empty disables it.
func (c *ViewerConfig) GetRenderPNG() string { return stringOr(c.RenderPNG, "") }

// GetRenderEvery returns how many updates pass between file renders or 10.
func (c *ViewerConfig) GetRenderEvery() int { return intOr(c.RenderEvery, 10) }

// GetMaxViewPoints returns the decimation limit for views or 20000.
func (c *ViewerConfig) GetMaxViewPoints() int { return intOr(c.MaxViewPoints, 20000) }

// GetHTTPListen returns the monitor listen address; empty disables it.
func (c *ViewerConfig) GetHTTPListen() string { return stringOr(c.HTTPListen, "") }

// GetSource returns where frames come from: SourceSynthetic runs the
// built-in simulator, SourceIngest accepts frames over gRPC on host:port.
func (c *ViewerConfig) GetSource() string {
	if c.Source == nil || *c.Source == "" {
		return SourceSynthetic
	}
	return *c.Source
}

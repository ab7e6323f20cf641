package visualiser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/simlidar/internal/fsutil"
	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/pipeline"
	"github.com/banshee-data/simlidar/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultAssetsHost serves echarts and echarts-gl for rendered pages.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// axisLength is the length in metres of each drawn coordinate axis.
const axisLength = 1.0

var (
	// ErrNotRegistered is returned by Update before Register.
	ErrNotRegistered = errors.New("point set not registered")

	// ErrAlreadyRegistered is returned by a second Register.
	ErrAlreadyRegistered = errors.New("point set already registered")
)

// EChartsConfig configures an EChartsRenderer.
type EChartsConfig struct {
	FS         fsutil.FileSystem // defaults to OSFileSystem
	Path       string            // output page; empty keeps the page in memory only
	Title      string
	Every      int // write the page every Every updates; <= 0 means every update
	MaxPoints  int // decimation cap; 0 means DefaultMaxPoints, negative disables
	ShowAxis   bool
	AssetsHost string
}

// EChartsRenderer implements pipeline.Renderer by writing a 3D scatter page.
// Points keep their decoded colours; the optional axis series draws the
// sensor origin frame in red, green and blue.
type EChartsRenderer struct {
	cfg EChartsConfig

	mu         sync.Mutex
	current    *lidar.PointSet
	registered bool
	closed     bool
	updates    int
	writes     int
}

var _ pipeline.Renderer = (*EChartsRenderer)(nil)

// NewEChartsRenderer returns a renderer for cfg.
func NewEChartsRenderer(cfg EChartsConfig) *EChartsRenderer {
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}
	if cfg.Title == "" {
		cfg.Title = "Simulated LiDAR"
	}
	if cfg.Every <= 0 {
		cfg.Every = 1
	}
	if cfg.MaxPoints == 0 {
		cfg.MaxPoints = DefaultMaxPoints
	}
	if cfg.AssetsHost == "" {
		cfg.AssetsHost = DefaultAssetsHost
	}
	return &EChartsRenderer{cfg: cfg}
}

// Register implements pipeline.Renderer.
func (r *EChartsRenderer) Register(ps *lidar.PointSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registered {
		return ErrAlreadyRegistered
	}
	r.registered = true
	r.current = ps
	return r.flushLocked()
}

// Update implements pipeline.Renderer.
func (r *EChartsRenderer) Update(ps *lidar.PointSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.registered {
		return ErrNotRegistered
	}
	r.current = ps
	r.updates++
	if r.updates%r.cfg.Every != 0 {
		return nil
	}
	return r.flushLocked()
}

// Render implements pipeline.Renderer. A page has no input to poll, so the
// only signal is that Close has been called.
func (r *EChartsRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return pipeline.ErrWindowClosed
	}
	return nil
}

// Close writes the final page.
func (r *EChartsRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if !r.registered {
		return nil
	}
	return r.flushLocked()
}

// Writes returns how many times the page has been written.
func (r *EChartsRenderer) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// WriteHTML renders the current point set as a standalone page.
func (r *EChartsRenderer) WriteHTML(w io.Writer) error {
	r.mu.Lock()
	ps := r.current
	r.mu.Unlock()
	return WriteScatter3D(w, ps, PageOptions{
		Title:      r.cfg.Title,
		MaxPoints:  r.cfg.MaxPoints,
		ShowAxis:   r.cfg.ShowAxis,
		AssetsHost: r.cfg.AssetsHost,
	})
}

func (r *EChartsRenderer) flushLocked() error {
	if r.cfg.Path == "" {
		r.writes++
		return nil
	}
	var buf bytes.Buffer
	err := WriteScatter3D(&buf, r.current, PageOptions{
		Title:      r.cfg.Title,
		MaxPoints:  r.cfg.MaxPoints,
		ShowAxis:   r.cfg.ShowAxis,
		AssetsHost: r.cfg.AssetsHost,
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	if err := writeAtomic(r.cfg.FS, r.cfg.Path, &buf); err != nil {
		return err
	}
	r.writes++
	monitoring.Debugf("[Visualiser] wrote %s (%d points)", r.cfg.Path, r.current.Len())
	return nil
}

// PageOptions controls WriteScatter3D.
type PageOptions struct {
	Title      string
	Subtitle   string
	MaxPoints  int
	ShowAxis   bool
	AssetsHost string
}

// WriteScatter3D renders ps as an echarts-gl 3D scatter page.
func WriteScatter3D(w io.Writer, ps *lidar.PointSet, o PageOptions) error {
	if o.AssetsHost == "" {
		o.AssetsHost = DefaultAssetsHost
	}
	view := Decimate(ps, o.MaxPoints)
	subtitle := o.Subtitle
	if subtitle == "" {
		subtitle = fmt.Sprintf("points=%d shown=%d", ps.Len(), view.Len())
	}

	data := make([]opts.Chart3DData, 0, view.Len())
	for i, p := range view.Positions {
		data = append(data, opts.Chart3DData{
			Value:     []interface{}{p.X, p.Y, p.Z},
			ItemStyle: &opts.ItemStyle{Color: hexColor(view.Colors[i])},
		})
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Theme: "dark", Width: "1200px", Height: "900px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(false)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X (m)", Show: opts.Bool(true)}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y (m)", Show: opts.Bool(true)}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z (m)", Show: opts.Bool(true)}),
		charts.WithGrid3DOpts(opts.Grid3D{Show: opts.Bool(true), BoxWidth: 200, BoxDepth: 200, BoxHeight: 40}),
	)
	scatter.AddSeries("points", data, charts.WithItemStyleOpts(opts.ItemStyle{Opacity: opts.Float(0.9)}))
	if o.ShowAxis {
		scatter.AddSeries("axis", axisData())
	}
	return scatter.Render(w)
}

// axisData draws the three unit axes at the origin as short dotted lines.
func axisData() []opts.Chart3DData {
	axes := []struct {
		dir   r3.Vec
		color string
	}{
		{r3.Vec{X: 1}, "#ff0000"},
		{r3.Vec{Y: 1}, "#00ff00"},
		{r3.Vec{Z: 1}, "#0000ff"},
	}
	const steps = 10
	out := make([]opts.Chart3DData, 0, len(axes)*steps)
	for _, a := range axes {
		for i := 1; i <= steps; i++ {
			p := r3.Scale(axisLength*float64(i)/steps, a.dir)
			out = append(out, opts.Chart3DData{
				Value:     []interface{}{p.X, p.Y, p.Z},
				ItemStyle: &opts.ItemStyle{Color: a.color},
			})
		}
	}
	return out
}

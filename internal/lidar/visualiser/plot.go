package visualiser

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/simlidar/internal/fsutil"
	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/pipeline"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

// PlotConfig configures a PlotRenderer.
type PlotConfig struct {
	FS        fsutil.FileSystem // defaults to OSFileSystem
	Path      string            // PNG output path
	Title     string
	Every     int // write every Every updates; <= 0 means every update
	MaxPoints int // 0 means DefaultMaxPoints, negative disables decimation
	ShowAxis  bool
	Size      vg.Length // square image edge; defaults to 8 inches
}

// PlotRenderer implements pipeline.Renderer by saving a top-down (X/Y)
// scatter image of the current point set.
type PlotRenderer struct {
	cfg PlotConfig

	mu         sync.Mutex
	current    *lidar.PointSet
	registered bool
	closed     bool
	updates    int
	writes     int
}

var _ pipeline.Renderer = (*PlotRenderer)(nil)

// NewPlotRenderer returns a renderer for cfg.
func NewPlotRenderer(cfg PlotConfig) *PlotRenderer {
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}
	if cfg.Title == "" {
		cfg.Title = "Simulated LiDAR (top-down)"
	}
	if cfg.Every <= 0 {
		cfg.Every = 1
	}
	if cfg.MaxPoints == 0 {
		cfg.MaxPoints = DefaultMaxPoints
	}
	if cfg.Size <= 0 {
		cfg.Size = 8 * vg.Inch
	}
	return &PlotRenderer{cfg: cfg}
}

// Register implements pipeline.Renderer.
func (r *PlotRenderer) Register(ps *lidar.PointSet) error {
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
func (r *PlotRenderer) Update(ps *lidar.PointSet) error {
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

// Render implements pipeline.Renderer.
func (r *PlotRenderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return pipeline.ErrWindowClosed
	}
	return nil
}

// Close writes the final image.
func (r *PlotRenderer) Close() error {
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

// Writes returns how many images have been written.
func (r *PlotRenderer) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *PlotRenderer) flushLocked() error {
	var buf bytes.Buffer
	if err := WriteTopDownPNG(&buf, r.current, r.cfg); err != nil {
		return err
	}
	if r.cfg.Path != "" {
		if err := writeAtomic(r.cfg.FS, r.cfg.Path, &buf); err != nil {
			return err
		}
	}
	r.writes++
	monitoring.Debugf("[Visualiser] wrote %s (%d points)", r.cfg.Path, r.current.Len())
	return nil
}

// WriteTopDownPNG draws ps projected onto the ground plane.
func WriteTopDownPNG(w io.Writer, ps *lidar.PointSet, cfg PlotConfig) error {
	if cfg.Size <= 0 {
		cfg.Size = 8 * vg.Inch
	}
	view := Decimate(ps, cfg.MaxPoints)

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.BackgroundColor = color.Black
	p.Title.TextStyle.Color = color.White
	p.X.Label.TextStyle.Color = color.White
	p.Y.Label.TextStyle.Color = color.White
	p.Add(plotter.NewGrid())

	if view.Len() > 0 {
		xys := make(plotter.XYs, view.Len())
		for i, pos := range view.Positions {
			xys[i] = plotter.XY{X: pos.X, Y: pos.Y}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("create scatter: %w", err)
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			r, g, b := lidar.RGB8(view.Colors[i])
			return draw.GlyphStyle{
				Color:  color.RGBA{R: r, G: g, B: b, A: 255},
				Radius: vg.Points(0.6),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(sc)
	}

	if cfg.ShowAxis {
		for _, a := range []struct {
			to plotter.XY
			c  color.Color
		}{
			{plotter.XY{X: axisLength}, color.RGBA{R: 255, A: 255}},
			{plotter.XY{Y: axisLength}, color.RGBA{G: 255, A: 255}},
		} {
			line, err := plotter.NewLine(plotter.XYs{{}, a.to})
			if err != nil {
				return fmt.Errorf("create axis line: %w", err)
			}
			line.Color = a.c
			line.Width = vg.Points(2)
			p.Add(line)
		}
	}

	wt, err := p.WriterTo(cfg.Size, cfg.Size, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

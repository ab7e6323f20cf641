package palette

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// RampSize is the number of control points in the intensity colour ramp.
const RampSize = 256

// Ramp is a fixed piecewise-linear colour ramp over the domain [0,1].
// Inputs outside the domain take the colour of the nearest end point.
type Ramp struct {
	colors  []r3.Vec
	r, g, b interp.PiecewiseLinear
}

var plasma = mustRamp(plasmaTable[:])

// Plasma returns the shared 256-entry plasma ramp.
func Plasma() *Ramp {
	return plasma
}

// NewRamp builds a ramp from evenly spaced control colours.
func NewRamp(colors []r3.Vec) (*Ramp, error) {
	if len(colors) < 2 {
		return nil, fmt.Errorf("ramp needs at least 2 colors, got %d", len(colors))
	}
	xs := make([]float64, len(colors))
	rs := make([]float64, len(colors))
	gs := make([]float64, len(colors))
	bs := make([]float64, len(colors))
	for i, c := range colors {
		xs[i] = float64(i) / float64(len(colors)-1)
		rs[i], gs[i], bs[i] = c.X, c.Y, c.Z
	}

	ramp := &Ramp{colors: append([]r3.Vec(nil), colors...)}
	if err := ramp.r.Fit(xs, rs); err != nil {
		return nil, fmt.Errorf("fit red channel: %w", err)
	}
	if err := ramp.g.Fit(xs, gs); err != nil {
		return nil, fmt.Errorf("fit green channel: %w", err)
	}
	if err := ramp.b.Fit(xs, bs); err != nil {
		return nil, fmt.Errorf("fit blue channel: %w", err)
	}
	return ramp, nil
}

func mustRamp(colors []r3.Vec) *Ramp {
	r, err := NewRamp(colors)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of control colours.
func (r *Ramp) Len() int {
	return len(r.colors)
}

// At interpolates each channel independently at t. NaN maps to the low end.
func (r *Ramp) At(t float64) r3.Vec {
	if math.IsNaN(t) {
		t = 0
	}
	t = clampUnit(t)
	return r3.Vec{
		X: clampUnit(r.r.Predict(t)),
		Y: clampUnit(r.g.Predict(t)),
		Z: clampUnit(r.b.Predict(t)),
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

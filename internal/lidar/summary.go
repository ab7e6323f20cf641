package lidar

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Summary holds cheap per-frame statistics for monitoring.
type Summary struct {
	Points    int     `json:"points"`
	Min       r3.Vec  `json:"min"`
	Max       r3.Vec  `json:"max"`
	MeanRange float64 `json:"mean_range_m"`
	MaxRange  float64 `json:"max_range_m"`
}

// Summarize computes the bounding box and range statistics of ps.
func Summarize(ps *PointSet) Summary {
	n := ps.Len()
	if n == 0 {
		return Summary{}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	ranges := make([]float64, n)
	for i, p := range ps.Positions {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
		ranges[i] = r3.Norm(p)
	}

	s := Summary{
		Points:    n,
		Min:       r3.Vec{X: floats.Min(xs), Y: floats.Min(ys), Z: floats.Min(zs)},
		Max:       r3.Vec{X: floats.Max(xs), Y: floats.Max(ys), Z: floats.Max(zs)},
		MeanRange: stat.Mean(ranges, nil),
		MaxRange:  floats.Max(ranges),
	}
	if math.IsNaN(s.MeanRange) {
		s.MeanRange = 0
	}
	return s
}

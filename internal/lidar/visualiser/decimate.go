// Package visualiser renders decoded point sets for viewing. EChartsRenderer
// writes an interactive 3D page; PlotRenderer writes a top-down PNG.
package visualiser

import (
	"fmt"

	"github.com/banshee-data/simlidar/internal/lidar"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMaxPoints caps how many points a single view carries. Browsers
// struggle with more than a few tens of thousands of 3D scatter items.
const DefaultMaxPoints = 20000

// Decimate returns ps when it holds at most max points, otherwise an evenly
// strided subset of it. The stride is chosen so the result has at most max
// points; order is preserved. max <= 0 disables decimation.
func Decimate(ps *lidar.PointSet, max int) *lidar.PointSet {
	n := ps.Len()
	if max <= 0 || n <= max {
		return ps
	}
	stride := (n + max - 1) / max
	out := lidar.NewPointSet(n/stride + 1)
	for i := 0; i < n; i += stride {
		out.Append(ps.Positions[i], ps.Colors[i])
	}
	return out
}

// hexColor formats a normalised colour as #rrggbb.
func hexColor(c r3.Vec) string {
	r, g, b := lidar.RGB8(c)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

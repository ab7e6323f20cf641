// Package lidar holds the point-set model shared by the sensor decoders,
// the renderers and the snapshot recorder.
package lidar

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// PointSet is an ordered sequence of positions paired 1:1 with RGB colours.
// Colours are normalised to [0,1] per channel (X=R, Y=G, Z=B).
// A PointSet is replaced wholesale every frame and never mutated after it
// has been published to a FrameStore.
type PointSet struct {
	Positions []r3.Vec
	Colors    []r3.Vec
}

// NewPointSet allocates a PointSet with room for n points.
func NewPointSet(n int) *PointSet {
	return &PointSet{
		Positions: make([]r3.Vec, 0, n),
		Colors:    make([]r3.Vec, 0, n),
	}
}

// Append adds a single point.
func (ps *PointSet) Append(pos, color r3.Vec) {
	ps.Positions = append(ps.Positions, pos)
	ps.Colors = append(ps.Colors, color)
}

// Len returns the number of points. A nil PointSet has zero points.
func (ps *PointSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.Positions)
}

// Validate checks the equal-length and colour-range invariants.
func (ps *PointSet) Validate() error {
	if ps == nil {
		return nil
	}
	if len(ps.Positions) != len(ps.Colors) {
		return fmt.Errorf("point set has %d positions but %d colors", len(ps.Positions), len(ps.Colors))
	}
	for i, c := range ps.Colors {
		if !inUnit(c.X) || !inUnit(c.Y) || !inUnit(c.Z) {
			return fmt.Errorf("point %d has color %v outside [0,1]", i, c)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (ps *PointSet) Clone() *PointSet {
	if ps == nil {
		return nil
	}
	out := &PointSet{
		Positions: make([]r3.Vec, len(ps.Positions)),
		Colors:    make([]r3.Vec, len(ps.Colors)),
	}
	copy(out.Positions, ps.Positions)
	copy(out.Colors, ps.Colors)
	return out
}

// RGB8 converts a normalised colour to 8-bit channels, rounding to nearest.
func RGB8(c r3.Vec) (r, g, b uint8) {
	return to8(c.X), to8(c.Y), to8(c.Z)
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

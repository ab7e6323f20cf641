// Package palette maps LiDAR samples to RGB colours: a continuous plasma
// ramp for intensity, a fixed semantic class palette, and a per-actor
// colour table that overrides the class colour for known instances.
package palette

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrClassOutOfRange is returned when a class tag has no palette entry.
var ErrClassOutOfRange = errors.New("class tag out of palette range")

// Suppressed is the sentinel colour for points excluded from output.
var Suppressed = r3.Vec{}

// ClassEntry is one semantic class.
type ClassEntry struct {
	Tag    uint32
	Name   string
	Color  r3.Vec // normalised RGB
	Hidden bool   // true when Color is the suppressed sentinel
}

// ClassPalette is an immutable, tag-indexed class table.
type ClassPalette struct {
	entries []ClassEntry
}

// rgb8 is the CityScapes-derived palette used by the semantic sensor.
// Entries listed in hiddenClasses are replaced by the suppressed colour.
var rgb8 = [...]struct {
	name    string
	r, g, b uint8
}{
	{"None", 255, 255, 255},
	{"Roads", 128, 64, 128},
	{"Sidewalks", 244, 35, 232},
	{"Buildings", 70, 70, 70},
	{"Walls", 102, 102, 156},
	{"Fences", 100, 40, 40},
	{"Poles", 153, 153, 153},
	{"TrafficLight", 250, 170, 30},
	{"TrafficSigns", 220, 220, 0},
	{"Vegetation", 107, 142, 35},
	{"Terrain", 145, 170, 100},
	{"Sky", 70, 130, 180},
	{"Pedestrians", 220, 20, 60},
	{"Rider", 255, 0, 0},
	{"Car", 0, 0, 142},
	{"Truck", 0, 60, 100},
	{"Bus", 0, 80, 100},
	{"Train", 0, 0, 230},
	{"Motorcycle", 119, 11, 32},
	{"Bicycle", 81, 0, 81},
	{"Static", 110, 190, 160},
	{"Dynamic", 170, 120, 50},
	{"Other", 55, 90, 80},
	{"Water", 45, 60, 150},
	{"RoadLines", 157, 234, 50},
	{"Ground", 81, 0, 81},
	{"Bridge", 150, 100, 100},
	{"RailTrack", 230, 150, 140},
	{"GuardRail", 180, 165, 180},
}

// hiddenClasses are drivable surface, sky and terrain classes that are not
// interesting in the rendered cloud.
var hiddenClasses = map[uint32]bool{
	0:  true, // None
	1:  true, // Roads
	2:  true, // Sidewalks
	10: true, // Terrain
	11: true, // Sky
	24: true, // RoadLines
	26: true, // Bridge
	27: true, // RailTrack
}

// NumClasses is the number of semantic classes known to the palette.
const NumClasses = len(rgb8)

var defaultPalette = buildDefault()

func buildDefault() *ClassPalette {
	entries := make([]ClassEntry, NumClasses)
	for i, e := range rgb8 {
		tag := uint32(i)
		c := r3.Vec{X: float64(e.r) / 255.0, Y: float64(e.g) / 255.0, Z: float64(e.b) / 255.0}
		if hiddenClasses[tag] {
			c = Suppressed
		}
		entries[i] = ClassEntry{Tag: tag, Name: e.name, Color: c, Hidden: c == Suppressed}
	}
	return &ClassPalette{entries: entries}
}

// Default returns the shared semantic class palette.
func Default() *ClassPalette {
	return defaultPalette
}

// Len returns the number of entries.
func (p *ClassPalette) Len() int {
	return len(p.entries)
}

// Color returns the colour for a class tag.
func (p *ClassPalette) Color(tag uint32) (r3.Vec, error) {
	if int(tag) >= len(p.entries) {
		return r3.Vec{}, fmt.Errorf("%w: tag %d, palette has %d entries", ErrClassOutOfRange, tag, len(p.entries))
	}
	return p.entries[tag].Color, nil
}

// Entries returns a copy of all entries in tag order.
func (p *ClassPalette) Entries() []ClassEntry {
	out := make([]ClassEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// IsSuppressed reports whether c is exactly the suppressed sentinel.
// Equality is exact: a near-black colour is still visible.
func IsSuppressed(c r3.Vec) bool {
	return c == Suppressed
}

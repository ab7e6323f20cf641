package lidar

import "gonum.org/v1/gonum/spatial/r3"

// The simulator world is left-handed; renderers and point-cloud tooling are
// right-handed. Each sensor path flips one axis. The intensity path flips X
// and the semantic path flips Y; both are kept as-is for compatibility with
// recordings made by earlier tools.

// FlipX negates the x component (intensity sensor convention).
func FlipX(v r3.Vec) r3.Vec {
	return r3.Vec{X: -v.X, Y: v.Y, Z: v.Z}
}

// FlipY negates the y component (semantic sensor convention).
func FlipY(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: -v.Y, Z: v.Z}
}

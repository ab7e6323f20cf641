package recorder

import (
	"fmt"
	"io"

	"github.com/banshee-data/simlidar/internal/lidar"
)

// Writer serialises a point set in one snapshot file format.
type Writer interface {
	// Extension returns the file extension including the dot.
	Extension() string
	WriteSnapshot(w io.Writer, ps *lidar.PointSet) error
}

// NewWriter returns the writer for a format name ("ply" or "pcd").
func NewWriter(format string) (Writer, error) {
	switch format {
	case "", "ply":
		return PLYWriter{}, nil
	case "pcd":
		return PCDWriter{}, nil
	}
	return nil, fmt.Errorf("unknown snapshot format %q", format)
}

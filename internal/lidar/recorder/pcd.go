package recorder

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/simlidar/internal/lidar"
)

// PCDWriter writes PCD v0.7 ASCII files with x, y, z and a packed 0x00RRGGBB
// rgb field.
type PCDWriter struct{}

// Extension implements Writer.
func (PCDWriter) Extension() string { return ".pcd" }

// WriteSnapshot implements Writer.
func (PCDWriter) WriteSnapshot(w io.Writer, ps *lidar.PointSet) error {
	return WritePCD(w, ps)
}

// WritePCD writes ps as an unorganised ASCII PCD cloud.
func WritePCD(w io.Writer, ps *lidar.PointSet) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	n := ps.Len()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# .PCD v0.7 - Point Cloud Data file format\n")
	fmt.Fprintf(bw, "VERSION 0.7\n")
	fmt.Fprintf(bw, "FIELDS x y z rgb\n")
	fmt.Fprintf(bw, "SIZE 4 4 4 4\n")
	fmt.Fprintf(bw, "TYPE F F F U\n")
	fmt.Fprintf(bw, "COUNT 1 1 1 1\n")
	fmt.Fprintf(bw, "WIDTH %d\n", n)
	fmt.Fprintf(bw, "HEIGHT 1\n")
	fmt.Fprintf(bw, "VIEWPOINT 0 0 0 1 0 0 0\n")
	fmt.Fprintf(bw, "POINTS %d\n", n)
	fmt.Fprintf(bw, "DATA ascii\n")

	buf := make([]byte, 0, 64)
	for i := 0; i < n; i++ {
		p := ps.Positions[i]
		r, g, b := lidar.RGB8(ps.Colors[i])
		packed := uint32(r)<<16 | uint32(g)<<8 | uint32(b)

		buf = buf[:0]
		buf = strconv.AppendFloat(buf, float64(float32(p.X)), 'g', -1, 32)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(float32(p.Y)), 'g', -1, 32)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, float64(float32(p.Z)), 'g', -1, 32)
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(packed), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

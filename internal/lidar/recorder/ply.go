package recorder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/simlidar/internal/lidar"
)

// PLY record layout written by PLYWriter: three little-endian float64
// coordinates followed by three uint8 colour channels.
const (
	PLY_VERTEX_SIZE = 3*8 + 3
)

// ErrBadPLY is returned by ReadPLY for files it cannot parse.
var ErrBadPLY = errors.New("unsupported or malformed PLY")

// PLYWriter writes binary_little_endian 1.0 PLY files with double x, y, z
// and uchar red, green, blue per vertex.
type PLYWriter struct{}

// Extension implements Writer.
func (PLYWriter) Extension() string { return ".ply" }

// WriteSnapshot implements Writer.
func (PLYWriter) WriteSnapshot(w io.Writer, ps *lidar.PointSet) error {
	return WritePLY(w, ps)
}

// WritePLY writes ps as a binary PLY point cloud.
func WritePLY(w io.Writer, ps *lidar.PointSet) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ply\n")
	fmt.Fprintf(bw, "format binary_little_endian 1.0\n")
	fmt.Fprintf(bw, "comment simlidar snapshot\n")
	fmt.Fprintf(bw, "element vertex %d\n", ps.Len())
	fmt.Fprintf(bw, "property double x\n")
	fmt.Fprintf(bw, "property double y\n")
	fmt.Fprintf(bw, "property double z\n")
	fmt.Fprintf(bw, "property uchar red\n")
	fmt.Fprintf(bw, "property uchar green\n")
	fmt.Fprintf(bw, "property uchar blue\n")
	fmt.Fprintf(bw, "end_header\n")

	var rec [PLY_VERTEX_SIZE]byte
	for i := 0; i < ps.Len(); i++ {
		p := ps.Positions[i]
		binary.LittleEndian.PutUint64(rec[0:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(rec[8:16], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(rec[16:24], math.Float64bits(p.Z))
		rec[24], rec[25], rec[26] = lidar.RGB8(ps.Colors[i])
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type plyProperty struct {
	name string
	typ  string
}

// ReadPLY reads a binary little-endian PLY point cloud with x, y, z and
// optional red, green, blue vertex properties. Coordinates may be float or
// double; colours must be uchar.
func ReadPLY(r io.Reader) (*lidar.PointSet, error) {
	br := bufio.NewReader(r)

	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("%w: missing magic", ErrBadPLY)
	}

	var (
		count    = -1
		props    []plyProperty
		inVertex bool
	)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: truncated header", ErrBadPLY)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "binary_little_endian" {
				return nil, fmt.Errorf("%w: format %q", ErrBadPLY, strings.Join(fields[1:], " "))
			}
		case "comment", "obj_info":
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: bad element line", ErrBadPLY)
			}
			inVertex = fields[1] == "vertex"
			if inVertex {
				n, err := strconv.Atoi(fields[2])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("%w: vertex count %q", ErrBadPLY, fields[2])
				}
				count = n
			}
		case "property":
			if !inVertex {
				continue
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: unsupported property %q", ErrBadPLY, strings.TrimSpace(line))
			}
			props = append(props, plyProperty{typ: fields[1], name: fields[2]})
		case "end_header":
			return readPLYBody(br, count, props)
		default:
			return nil, fmt.Errorf("%w: unexpected header line %q", ErrBadPLY, strings.TrimSpace(line))
		}
	}
}

func plyTypeSize(typ string) int {
	switch typ {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "float", "int32", "uint32", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

func readPLYBody(br *bufio.Reader, count int, props []plyProperty) (*lidar.PointSet, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: no vertex element", ErrBadPLY)
	}
	offsets := make(map[string]int)
	types := make(map[string]string)
	stride := 0
	for _, p := range props {
		size := plyTypeSize(p.typ)
		if size == 0 {
			return nil, fmt.Errorf("%w: property type %q", ErrBadPLY, p.typ)
		}
		offsets[p.name] = stride
		types[p.name] = p.typ
		stride += size
	}
	for _, axis := range []string{"x", "y", "z"} {
		if _, ok := offsets[axis]; !ok {
			return nil, fmt.Errorf("%w: missing %s property", ErrBadPLY, axis)
		}
	}
	_, hasColor := offsets["red"]
	if hasColor {
		for _, c := range []string{"red", "green", "blue"} {
			if plyTypeSize(types[c]) != 1 {
				return nil, fmt.Errorf("%w: colour %s must be uchar", ErrBadPLY, c)
			}
		}
	}

	coord := func(rec []byte, name string) float64 {
		off := offsets[name]
		switch types[name] {
		case "double", "float64":
			return math.Float64frombits(binary.LittleEndian.Uint64(rec[off:]))
		default:
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off:])))
		}
	}

	ps := lidar.NewPointSet(count)
	rec := make([]byte, stride)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, rec); err != nil {
			return nil, fmt.Errorf("%w: vertex %d of %d: %v", ErrBadPLY, i, count, err)
		}
		pos := r3.Vec{X: coord(rec, "x"), Y: coord(rec, "y"), Z: coord(rec, "z")}
		var col r3.Vec
		if hasColor {
			col = r3.Vec{
				X: float64(rec[offsets["red"]]) / 255,
				Y: float64(rec[offsets["green"]]) / 255,
				Z: float64(rec[offsets["blue"]]) / 255,
			}
		}
		ps.Append(pos, col)
	}
	return ps, nil
}

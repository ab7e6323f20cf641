package visualiser

import (
	"bytes"
	"io"

	"github.com/banshee-data/simlidar/internal/fsutil"
)

// writeAtomic replaces path with data so a browser polling the file never
// sees a half-written page.
func writeAtomic(fs fsutil.FileSystem, path string, data *bytes.Buffer) error {
	_, err := fsutil.WriteAtomic(fs, path, func(w io.Writer) error {
		_, err := data.WriteTo(w)
		return err
	})
	return err
}

package fsutil

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_RoundTrip(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, fsys.MkdirAll(dir, 0755))
	assert.True(t, fsys.Exists(dir))

	tmp := filepath.Join(dir, "f.tmp")
	w, err := fsys.Create(tmp)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	final := filepath.Join(dir, "f.txt")
	require.NoError(t, fsys.Rename(tmp, final))
	assert.False(t, fsys.Exists(tmp))

	data, err := fsys.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := fsys.Stat(final)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	f, err := fsys.Open(final)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(got))

	require.NoError(t, fsys.Remove(final))
	assert.False(t, fsys.Exists(final))
}

func TestMemoryFileSystem_CreateRequiresDir(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_, err := mfs.Create("/missing/file.txt")
	require.Error(t, err)

	require.NoError(t, mfs.MkdirAll("/missing", 0755))
	w, err := mfs.Create("/missing/file.txt")
	require.NoError(t, err)
	_, _ = w.Write([]byte("content"))
	require.NoError(t, w.Close())

	data, err := mfs.ReadFile("/missing/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestMemoryFileSystem_DirsAndFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/rec/s1", 0755))
	assert.True(t, mfs.Exists("/rec"))

	info, err := mfs.Stat("/rec/s1")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	for _, name := range []string{"/rec/s1/b", "/rec/s1/a"} {
		w, err := mfs.Create(name)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	assert.Equal(t, []string{"/rec/s1/a", "/rec/s1/b"}, mfs.Files("/rec"))

	require.NoError(t, mfs.Rename("/rec/s1/a", "/rec/s1/c"))
	assert.Equal(t, []string{"/rec/s1/b", "/rec/s1/c"}, mfs.Files("/rec/s1"))

	assert.Error(t, mfs.Rename("/nope", "/x"))
	assert.Error(t, mfs.Remove("/nope"))
	_, err = mfs.Open("/nope")
	assert.Error(t, err)
}

func TestFaultyFileSystem(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/d", 0755))
	ffs := NewFaultyFileSystem(mfs)

	w, err := ffs.Create("/d/ok")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	diskFull := errors.New("no space left on device")
	ffs.FailWrites(true, diskFull)
	_, err = ffs.Create("/d/fail")
	require.Error(t, err)
	assert.True(t, errors.Is(err, diskFull))

	ffs.FailWrites(true, nil)
	_, err = ffs.Create("/d/fail")
	assert.True(t, errors.Is(err, ErrInjected))

	ffs.FailWrites(false, nil)
	_, err = ffs.Create("/d/fine")
	assert.NoError(t, err)
	assert.True(t, ffs.Exists("/d/ok"))
}

func TestWriteAtomic(t *testing.T) {
	mem := NewMemoryFileSystem()

	n, err := WriteAtomic(mem, "recordings/s1/frame_000000.ply", func(w io.Writer) error {
		_, err := io.WriteString(w, "ply\nend_header\n")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)
	assert.Equal(t, []string{"recordings/s1/frame_000000.ply"}, mem.Files("recordings"))

	boom := errors.New("encode failed")
	_, err = WriteAtomic(mem, "recordings/s1/frame_000001.ply", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"recordings/s1/frame_000000.ply"}, mem.Files("recordings"), "temp file removed")

	faulty := NewFaultyFileSystem(mem)
	faulty.FailWrites(true, nil)
	_, err = WriteAtomic(faulty, "recordings/s1/frame_000000.ply", func(io.Writer) error { return nil })
	require.ErrorIs(t, err, ErrInjected)
	data, err := mem.ReadFile("recordings/s1/frame_000000.ply")
	require.NoError(t, err)
	assert.Equal(t, "ply\nend_header\n", string(data), "previous file untouched")
}

package archive

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = b
	}
	return out
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "image-1.jpg", EntryName(0, "jpg"))
	assert.Equal(t, "image-3.jpg", EntryName(2, ".JPEG"))
	assert.Equal(t, "image-10.webp", EntryName(9, "webp"))
	assert.Equal(t, "image-2.jpg", EntryName(1, ""))
}

func TestWriteZip(t *testing.T) {
	entries := []Entry{
		{Name: EntryName(0, "jpg"), Data: []byte("first")},
		{Name: EntryName(1, "jpg"), Data: []byte("second")},
		{Name: "notes.txt", Data: bytes.Repeat([]byte("a"), 1024)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, entries))

	got := readEntries(t, buf.Bytes())
	require.Len(t, got, 3)
	assert.Equal(t, []byte("first"), got["image-1.jpg"])
	assert.Equal(t, []byte("second"), got["image-2.jpg"])
	assert.Len(t, got["notes.txt"], 1024)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "image-1.jpg", zr.File[0].Name)
	assert.Equal(t, zip.Store, zr.File[0].Method)
	assert.Equal(t, zip.Deflate, zr.File[2].Method)
}

func TestWriteZipRejectsBadNames(t *testing.T) {
	var buf bytes.Buffer
	err := WriteZip(&buf, []Entry{{Name: "a.jpg"}, {Name: "a.jpg"}})
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.Zero(t, buf.Len())

	err = WriteZip(&buf, []Entry{{Name: "  "}})
	assert.Error(t, err)
}

func TestWriteZipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", DefaultName)
	require.NoError(t, WriteZipFile(path, []Entry{{Name: "image-1.jpg", Data: []byte("x")}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), readEntries(t, data)["image-1.jpg"])

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".archive-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

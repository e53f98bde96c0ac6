// Package archive packages captioned images into a single zip download.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// DefaultName is the archive file name offered for download
const DefaultName = "watermarked-images.zip"

// ErrDuplicateEntry is returned when two entries share a name
var ErrDuplicateEntry = errors.New("archive: duplicate entry name")

// Entry is a single file inside the archive
type Entry struct {
	Name string
	Data []byte
}

// EntryName returns the 1-based entry name for the i-th (0-based) image
func EntryName(i int, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" || ext == "jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("image-%d.%s", i+1, ext)
}

// WriteZip writes entries to w in order. Already-compressed image data is
// stored rather than deflated.
func WriteZip(w io.Writer, entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("archive: entry with empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	zw := zip.NewWriter(w)
	modified := time.Now()
	for _, e := range entries {
		method := zip.Deflate
		if isCompressedImage(e.Name) {
			method = zip.Store
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   method,
			Modified: modified,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("archive: create %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			zw.Close()
			return fmt.Errorf("archive: write %s: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: finalize: %w", err)
	}
	return nil
}

// WriteZipFile writes the archive to path, replacing any existing file
func WriteZipFile(path string, entries []Entry) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("archive: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".archive-*.zip")
	if err != nil {
		return fmt.Errorf("archive: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err = WriteZip(tmp, entries); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("archive: rename: %w", err)
	}
	return nil
}

func isCompressedImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var imageExts = []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp"}

// Ext returns the lower-cased file extension without the dot
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsImageFile reports whether filename has an image extension
func IsImageFile(filename string) bool {
	return slices.Contains(imageExts, Ext(filename))
}

// IsHidden reports dotfiles, which editors and sync clients use for temp files
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// OutputPath builds <dir>/<base><suffix>.<format> for an input file
func OutputPath(input, dir, suffix, format string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if format == "" {
		format = Ext(input)
		if format == "" {
			format = "jpg"
		}
	}
	return filepath.Join(dir, SanitizeFilename(base+suffix)+"."+format)
}

// IsURL reports http(s) sources
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ExpandInputs turns a mix of files, directories and URLs into a list of
// sources. Directories are walked recursively and hidden entries skipped;
// explicitly named files and URLs are kept in argument order.
func ExpandInputs(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		if IsURL(arg) {
			add(arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read input %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		found, err := ListImageFiles(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

// ListImageFiles recursively lists image files under dir in lexical order
func ListImageFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// SanitizeFilename replaces characters that are invalid in file names
func SanitizeFilename(filename string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	result := strings.Trim(r.Replace(filename), " .")
	if result == "" {
		return "image"
	}
	return result
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

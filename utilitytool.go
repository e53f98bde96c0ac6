// Package utilitytool normalizes event photos to 16:9 and stamps a caption band
// across the bottom, ready for social media posts.
//
// Basic usage:
//
//	tk := utilitytool.New()
//	results := tk.CaptionSources(ctx, []string{"a.jpg", "https://example.com/b.png"},
//		watermark.DefaultCaption("bauma 2025"), 0)
//	if err := tk.WriteArchive("watermarked-images.zip", results, false); err != nil {
//		log.Fatal(err)
//	}
//
// The work is split across packages: pkg/cropper computes the centered crop,
// pkg/watermark draws the band, pkg/processing decodes and encodes, and
// pkg/archive packages the results.
package utilitytool

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/inecosys/utilitytool/internal/utils"
	"github.com/inecosys/utilitytool/pkg/archive"
	"github.com/inecosys/utilitytool/pkg/processing"
	"github.com/inecosys/utilitytool/pkg/watermark"
)

// Version of the utility tool
const Version = "1.0.0"

// ErrNothingToWrite is returned when every source failed
var ErrNothingToWrite = errors.New("no captioned images to write")

// Toolkit ties source loading, captioning and output together
type Toolkit struct {
	captioner *watermark.Captioner
	processor *processing.Processor
	logger    *zap.Logger
}

// New creates a Toolkit with default options
func New() *Toolkit {
	return NewWithOptions(watermark.DefaultOptions(), nil)
}

// NewWithOptions creates a Toolkit with custom captioner options
func NewWithOptions(opts watermark.Options, logger *zap.Logger) *Toolkit {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := watermark.NewWithOptions(opts)
	c.SetLogger(logger)
	return &Toolkit{
		captioner: c,
		processor: processing.NewProcessor(),
		logger:    logger,
	}
}

// Captioner exposes the underlying captioner
func (t *Toolkit) Captioner() *watermark.Captioner {
	return t.captioner
}

// CaptionSource captions a single file path or http(s) URL
func (t *Toolkit) CaptionSource(ctx context.Context, source string, caption watermark.Caption) ([]byte, error) {
	data, err := t.processor.ReadSource(ctx, source)
	if err != nil {
		return nil, err
	}
	return t.captioner.NormalizeAndCaption(data, caption)
}

// CaptionSources reads and captions every source. Results keep input order and
// carry their own errors, read failures included.
func (t *Toolkit) CaptionSources(ctx context.Context, sources []string, caption watermark.Caption, workers int) []watermark.Result {
	results := make([]watermark.Result, len(sources))
	var batch []watermark.Source
	var positions []int

	for i, src := range sources {
		results[i] = watermark.Result{Index: i, Name: src}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		data, err := t.processor.ReadSource(ctx, src)
		if err != nil {
			t.logger.Warn("read failed", zap.String("source", src), zap.Error(err))
			results[i].Err = err
			continue
		}
		batch = append(batch, watermark.Source{Name: src, Data: data})
		positions = append(positions, i)
	}

	for j, r := range t.captioner.Batch(ctx, batch, caption, workers) {
		i := positions[j]
		r.Index = i
		results[i] = r
	}
	return results
}

// Entries turns results into archive entries named image-1, image-2, ...
// Without skipFailed the first failure aborts; with it failed items are left out.
func (t *Toolkit) Entries(results []watermark.Result, skipFailed bool) ([]archive.Entry, error) {
	ext := t.captioner.Options().Format
	entries := make([]archive.Entry, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			if !skipFailed {
				return nil, fmt.Errorf("%s: %w", r.Name, r.Err)
			}
			continue
		}
		entries = append(entries, archive.Entry{
			Name: archive.EntryName(len(entries), ext),
			Data: r.Image.Data,
		})
	}
	if len(entries) == 0 {
		return nil, ErrNothingToWrite
	}
	return entries, nil
}

// WriteArchive writes the captioned results into a zip file at path
func (t *Toolkit) WriteArchive(path string, results []watermark.Result, skipFailed bool) error {
	entries, err := t.Entries(results, skipFailed)
	if err != nil {
		return err
	}
	if err := archive.WriteZipFile(path, entries); err != nil {
		return err
	}
	t.logger.Info("archive written", zap.String("path", path), zap.Int("images", len(entries)))
	return nil
}

// WriteDir writes each captioned result next to its source name inside dir
// and returns the written paths.
func (t *Toolkit) WriteDir(dir, suffix string, results []watermark.Result, skipFailed bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ext := t.captioner.Options().Format
	var written []string
	used := make(map[string]bool)
	for _, r := range results {
		if r.Err != nil {
			if !skipFailed {
				return written, fmt.Errorf("%s: %w", r.Name, r.Err)
			}
			continue
		}
		out := utils.OutputPath(r.Name, dir, suffix, ext)
		for n := r.Index + 1; used[out]; n++ {
			out = utils.OutputPath(r.Name, dir, fmt.Sprintf("%s-%d", suffix, n), ext)
		}
		used[out] = true
		if err := t.processor.SaveBytes(r.Image.Data, out); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	if len(written) == 0 {
		return nil, ErrNothingToWrite
	}
	return written, nil
}

package watermark

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inecosys/utilitytool/pkg/types"
)

// Source is one named input of a batch
type Source struct {
	Name string
	Data []byte
}

// Result is the outcome of one batch item. Err is set instead of Image when the
// item failed; other items are unaffected.
type Result struct {
	Index int
	Name  string
	Image types.CaptionedImage
	Err   error
}

// Batch captions every source with up to workers goroutines. Results keep the
// order of sources. Once ctx is done no further items start and the remaining
// ones report ctx.Err().
func (c *Captioner) Batch(ctx context.Context, sources []Source, caption Caption, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(sources))
	for i, src := range sources {
		results[i] = Result{Index: i, Name: src.Name}
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range sources {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			img, err := c.Process(sources[i].Data, caption)
			if err != nil {
				c.logger.Warn("caption failed", zap.String("name", sources[i].Name), zap.Error(err))
				results[i].Err = err
				return nil
			}
			results[i].Image = img
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Failed returns the results that carry an error
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

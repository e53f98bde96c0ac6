package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inecosys/utilitytool"
	"github.com/inecosys/utilitytool/internal/utils"
	"github.com/inecosys/utilitytool/pkg/processing"
	"github.com/inecosys/utilitytool/pkg/watermark"
)

var (
	wmCenter     string
	wmRight      string
	wmOut        string
	wmDir        string
	wmFormat     string
	wmQuality    int
	wmWorkers    int
	wmSkipFailed bool
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark [files, dirs or URLs...]",
	Short: "Crop images to 16:9 and add the caption band",
	Long: `Crops every input to a centered 16:9 frame, draws the white caption band
with the event name on the left and the company label on the right, and writes
the results into a zip (image-1.jpg, image-2.jpg, ...) or a directory.

Example:
  utilitytool watermark --center "bauma 2025" photos/ extra.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatermark,
}

func init() {
	f := watermarkCmd.Flags()
	f.StringVar(&wmCenter, "center", "", "caption text on the left (default from config)")
	f.StringVar(&wmRight, "right", "", "caption text on the right (default from config)")
	f.StringVarP(&wmOut, "out", "o", "", "zip file to write (default <output.dir>/<output.zip_name>)")
	f.StringVar(&wmDir, "dir", "", "write individual files into this directory instead of a zip")
	f.StringVar(&wmFormat, "format", "", "output format: jpg|png|webp (default from config)")
	f.IntVar(&wmQuality, "quality", 0, "JPEG/WebP quality 1-100 (default from config)")
	f.IntVar(&wmWorkers, "workers", 0, "parallel workers (default from config, 0 = CPU count)")
	f.BoolVar(&wmSkipFailed, "skip-failed", false, "leave out images that fail instead of aborting")
}

func runWatermark(cmd *cobra.Command, args []string) error {
	sources, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no images found in %v", args)
	}

	opts, err := cfg.WatermarkOptions()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		if opts.Format, err = processing.NormalizeFormat(wmFormat); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("quality") {
		opts.Quality = wmQuality
	}

	caption := cfg.Caption()
	if cmd.Flags().Changed("center") {
		caption.Center = wmCenter
	}
	if cmd.Flags().Changed("right") {
		caption.Right = wmRight
	}

	workers := cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers = wmWorkers
	}
	skipFailed := cfg.Batch.SkipFailed || wmSkipFailed

	tk := utilitytool.NewWithOptions(opts, logger)
	logger.Info("captioning", zap.Int("images", len(sources)), zap.Int("workers", workers))

	results := tk.CaptionSources(cmd.Context(), sources, caption, workers)
	for _, r := range watermark.Failed(results) {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", r.Name, r.Err)
	}

	out := cmd.OutOrStdout()
	if wmDir != "" {
		written, err := tk.WriteDir(wmDir, cfg.Output.Suffix, results, skipFailed)
		if err != nil {
			return err
		}
		for _, p := range written {
			fmt.Fprintln(out, p)
		}
		return nil
	}

	zipPath := wmOut
	if zipPath == "" {
		zipPath = filepath.Join(cfg.Output.Dir, cfg.Output.ZipName)
	}
	if err := tk.WriteArchive(zipPath, results, skipFailed); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d of %d images)\n", zipPath, len(results)-len(watermark.Failed(results)), len(results))
	return nil
}

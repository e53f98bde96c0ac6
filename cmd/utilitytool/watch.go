package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inecosys/utilitytool/pkg/watcher"
	"github.com/inecosys/utilitytool/pkg/watermark"
)

var (
	watchInbox    string
	watchOutbox   string
	watchDebounce time.Duration
	watchCenter   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Caption every image dropped into the inbox folder",
	Long: `Watches the inbox folder and writes a captioned copy of every new or
changed image into the outbox. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchInbox, "inbox", "", "folder to watch (default from config)")
	f.StringVar(&watchOutbox, "outbox", "", "folder for captioned copies (default from config)")
	f.DurationVar(&watchDebounce, "debounce", 0, "quiet period before a file is processed (default from config)")
	f.StringVar(&watchCenter, "center", "", "caption text on the left (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := cfg.WatermarkOptions()
	if err != nil {
		return err
	}
	captioner := watermark.NewWithOptions(opts)
	captioner.SetLogger(logger)

	wcfg := watcher.Config{
		Inbox:    cfg.Watch.Inbox,
		Outbox:   cfg.Watch.Outbox,
		Suffix:   cfg.Output.Suffix,
		Format:   opts.Format,
		Debounce: cfg.Watch.Debounce,
		Caption:  cfg.Caption(),
	}
	if watchInbox != "" {
		wcfg.Inbox = watchInbox
	}
	if watchOutbox != "" {
		wcfg.Outbox = watchOutbox
	}
	if watchDebounce > 0 {
		wcfg.Debounce = watchDebounce
	}
	if cmd.Flags().Changed("center") {
		wcfg.Caption.Center = watchCenter
	}

	w, err := watcher.New(wcfg, captioner, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s -> %s (Ctrl+C to stop)\n", wcfg.Inbox, wcfg.Outbox)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping watcher")
			return w.Stop()
		case res, ok := <-w.Results():
			if !ok {
				return nil
			}
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", res.Input, res.Err)
				continue
			}
			logger.Debug("result", zap.String("input", res.Input), zap.String("output", res.Output))
			fmt.Fprintln(cmd.OutOrStdout(), res.Output)
		}
	}
}

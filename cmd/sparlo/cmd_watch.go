package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sparlo/internal/store"
	"sparlo/internal/watch"
)

var watchInbox string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch an inbox directory and validate dropped report files",
	Long: `Watches the inbox directory for .json files, validates each through
the pipeline, and archives the results. Files already in the inbox are
processed on startup. Processed files are renamed with a .done suffix,
rejected ones with .failed. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInbox, "inbox", "", "Inbox directory (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	inbox := watchInbox
	if inbox == "" {
		inbox = cfg.Watch.InboxDir
	}

	archive, err := store.NewStore(cfg.Store.DatabasePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	w, err := watch.NewWatcher(inbox, newPipeline(), archive, cfg.GetDebounce())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", inbox)

	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	fmt.Fprintf(os.Stderr, "processed=%d failed=%d\n", stats.Processed, stats.Failed)
	return nil
}

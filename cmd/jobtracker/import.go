package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fedtech/jobtracker/internal/async"
	"github.com/fedtech/jobtracker/internal/ingest"
)

var (
	importWatch      bool
	importSkipHidden bool
	importDebounce   time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import <dir>...",
	Short: "Create applications from every screenshot under the given directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importWatch, "watch", false, "keep running and import new screenshots as they appear")
	importCmd.Flags().BoolVar(&importSkipHidden, "skip-hidden", true, "ignore dot files and directories")
	importCmd.Flags().DurationVar(&importDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is imported (--watch)")
	rootCmd.AddCommand(importCmd)
}

type importTally struct {
	mu       sync.Mutex
	ok, fail int
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	importer := ingest.NewImporter(a.ocrAdapter(), nil, a.store, a.logger)
	var tally importTally
	queue := async.NewProcessorQueue(importer, a.logger,
		async.WithWorkers(a.cfg.Import.Workers),
		async.WithQueueSize(a.cfg.Import.QueueSize),
		async.WithProcessTimeout(a.cfg.Import.ProcessTimeout),
		async.WithResultHook(func(job async.Job, err error) {
			tally.mu.Lock()
			defer tally.mu.Unlock()
			if err != nil {
				tally.fail++
				fmt.Fprintf(out, "FAIL %s: %v\n", job.Path, err)
				return
			}
			tally.ok++
			fmt.Fprintf(out, "ok   %s\n", job.Path)
		}),
	)

	enqueue := func(path string) error {
		return queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now(), TraceID: uuid.NewString()})
	}

	if importWatch {
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: true,
			Debounce:    importDebounce,
			Logger:      a.logger,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "watching", args, "(Ctrl+C to stop)")
	loop:
		for {
			select {
			case p, ok := <-paths:
				if !ok {
					break loop
				}
				if err := enqueue(p); err != nil {
					a.logger.Warn("import.enqueue.failed", "path", p, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				a.logger.Warn("import.watch.error", "error", err)
			case <-ctx.Done():
				break loop
			}
		}
	} else {
		for _, root := range args {
			files, stats, err := ingest.Discover(root, importSkipHidden)
			if err != nil {
				return err
			}
			a.logger.Info("import.discovered", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
			for _, f := range files {
				if err := enqueue(f); err != nil {
					return err
				}
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Import.ProcessTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)

	tally.mu.Lock()
	defer tally.mu.Unlock()
	fmt.Fprintf(out, "imported %d, failed %d\n", tally.ok, tally.fail)
	return nil
}

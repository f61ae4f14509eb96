package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/internal/async"
	"github.com/joseph-ayodele/receipt-analytics/internal/ingest"
)

func ingestCmd() *cobra.Command {
	var skipHidden bool
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Ingest every accepted document under a directory",
		Long: `Walk a directory tree, skip unsupported and duplicate files, and extract the
rest concurrently into the local store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start := time.Now()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); closeErr != nil {
					slog.Error("failed to close store", "error", closeErr)
				}
			}()

			out := cmd.ErrOrStderr()
			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(out),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting receipts...[reset]"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
			)

			queue := async.NewProcessorQueue(a.IngestHandler(), slog.Default(),
				async.WithWorkers(a.Config.Ingest.Workers),
				async.WithQueueSize(a.Config.Ingest.QueueSize),
				async.WithProcessTimeout(a.Config.Ingest.JobTimeout),
				async.WithOnDone(func(job async.Job, err error) {
					if err != nil {
						slog.Warn("ingest failed", "path", job.Path, "error", err)
					}
					_ = bar.Add(1)
				}),
			)

			results, st, err := ingest.Directory(ctx, args[0], ingest.DirOptions{
				Exts:       ingest.ExtSet(a.Config.Ingest.AllowedExts),
				SkipHidden: skipHidden,
				Logger:     slog.Default(),
			}, a.Enqueuer(queue))
			queue.Shutdown(ctx)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			processed, failed := queue.Stats()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, TitleStyle.Render("Ingest complete"))
			fmt.Fprintf(w, "%s%d\n", LabelStyle.Render("scanned"), st.Scanned)
			fmt.Fprintf(w, "%s%d\n", LabelStyle.Render("matched"), st.Matched)
			fmt.Fprintf(w, "%s%d\n", LabelStyle.Render("duplicates"), st.Deduplicated)
			fmt.Fprintf(w, "%s%d\n", LabelStyle.Render("extracted"), processed)
			fmt.Fprintf(w, "%s%d\n", LabelStyle.Render("failed"), failed+int64(st.Failed))
			for _, r := range results {
				if r.Err != "" {
					fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render(r.Path), r.Err)
				}
			}
			slog.Debug("ingest finished", "root", args[0], "elapsed", time.Since(start))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip hidden files and directories")
	return cmd
}

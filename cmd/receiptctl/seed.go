package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/internal/sample"
	"github.com/joseph-ayodele/receipt-analytics/internal/server"
)

func seedCmd() *cobra.Command {
	var (
		count int
		seed  int64
		start string
		days  int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store generated demo receipts",
		Long: `Generate synthetic receipt text and run it through extraction like any other
document. The same --seed always produces the same receipts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			from, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}

			ctx := cmd.Context()
			b, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := b.Close(); closeErr != nil {
					slog.Error("failed to close backend", "error", closeErr)
				}
			}()

			bar := progressbar.NewOptions(count,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Seeding receipts"),
			)
			gen := sample.New(seed, sample.WithPeriod(from, days))
			stored := 0
			for _, r := range gen.Batch(count) {
				doc := r.Document
				if _, err := b.Extract(ctx, server.ExtractRequest{FileName: doc.FileName, Size: doc.Size, Text: doc.Text}); err != nil {
					return fmt.Errorf("%s: %w", doc.FileName, err)
				}
				stored++
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s %d receipt(s), seed %d\n", SuccessStyle.Render("stored"), stored, seed)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 50, "number of receipts")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&start, "start", "2024-01-01", "first possible receipt date")
	cmd.Flags().IntVar(&days, "days", 182, "length of the date range in days")
	return cmd
}

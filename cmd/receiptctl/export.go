package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/internal/export"
)

func exportCmd() *cobra.Command {
	var (
		filters filterFlags
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the matching receipts as csv, json, xlsx or a text report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			spec, sortBy, err := filters.build()
			if err != nil {
				return err
			}
			if f == export.FormatXLSX && outPath == "" {
				return fmt.Errorf("xlsx export needs --out")
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

			recs, err := b.Query(ctx, spec, sortBy)
			if err != nil {
				return err
			}
			report, err := b.Stats(ctx, spec)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer file.Close()
				w = file
			}
			if err := export.NewExporter(slog.Default()).Write(w, f, recs, report); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d receipt(s) to %s\n", SuccessStyle.Render("exported"), len(recs), outPath)
			}
			return nil
		},
	}
	filters.register(cmd, true)
	cmd.Flags().StringVar(&format, "format", "csv", "csv, json, xlsx or text")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	return cmd
}

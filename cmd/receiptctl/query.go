package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

func queryCmd() *cobra.Command {
	var (
		filters filterFlags
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter and sort stored receipts",
		Long: `List the receipts matching every given filter, in the requested order.
Without --sort the newest receipt comes first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, sortBy, err := filters.build()
			if err != nil {
				return err
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
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}
			return renderReceipts(cmd.OutOrStdout(), recs)
		},
	}
	filters.register(cmd, true)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderReceipts(w io.Writer, recs []*entity.Receipt) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, WarningStyle.Render("No receipts match."))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("ID"),
		HeaderStyle.Render("Date"),
		HeaderStyle.Render("Vendor"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Amount"),
		HeaderStyle.Render("Status"))
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 8), strings.Repeat("─", 10), strings.Repeat("─", 16),
		strings.Repeat("─", 14), strings.Repeat("─", 10), strings.Repeat("─", 10))
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID.String()[:8], r.Date, r.Vendor, r.Category, "$"+r.Amount.StringFixed(2), r.Status)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	_, err := fmt.Fprintf(w, "\n%d receipt(s)\n", len(recs))
	return err
}

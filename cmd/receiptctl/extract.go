package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/server"
)

func extractCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "extract <file>...",
		Short: "Extract and store one or more receipt documents",
		Long: `Read each document (pdf, jpg, jpeg, png or txt), extract vendor, date, amount
and category, and store the result. Fields that cannot be found are defaulted
and reported; a document with no readable text is stored with status error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				reply, err := b.Extract(ctx, server.ExtractRequest{Path: path, Description: description})
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				printExtraction(cmd.OutOrStdout(), arg, reply)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "free-form note stored with the receipt")
	return cmd
}

func printExtraction(w io.Writer, name string, reply *server.ExtractReply) {
	rec := reply.Receipt
	state := SuccessStyle.Render(string(rec.Status))
	if rec.Status != constants.StatusProcessed {
		state = ErrorStyle.Render(string(rec.Status))
	}
	fmt.Fprintf(w, "%s  %s\n", HeaderStyle.Render(name), state)
	fmt.Fprintf(w, "  %s%s\n", LabelStyle.Render("id"), rec.ID)
	fmt.Fprintf(w, "  %s%s\n", LabelStyle.Render("vendor"), rec.Vendor)
	fmt.Fprintf(w, "  %s%s\n", LabelStyle.Render("category"), rec.Category)
	fmt.Fprintf(w, "  %s%s\n", LabelStyle.Render("date"), rec.Date)
	fmt.Fprintf(w, "  %s$%s\n", LabelStyle.Render("amount"), rec.Amount.StringFixed(2))
	fmt.Fprintf(w, "  %s%.2f\n", LabelStyle.Render("confidence"), reply.Confidence)
	for _, f := range reply.Failures {
		fmt.Fprintf(w, "  %s\n", WarningStyle.Render(fmt.Sprintf("%s: %s", f.Field, f.Reason)))
	}
	if reply.Warning != "" {
		fmt.Fprintf(w, "  %s\n", WarningStyle.Render(reply.Warning))
	}
}

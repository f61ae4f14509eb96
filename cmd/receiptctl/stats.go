package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

func statsCmd() *cobra.Command {
	var (
		filters filterFlags
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize spending for the receipts matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, _, err := filters.build()
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

			report, err := b.Stats(ctx, spec)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderStats(report))
			return err
		},
	}
	filters.register(cmd, false)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a styled summary")
	return cmd
}

func renderStats(r stats.Report) string {
	if r.TotalReceipts == 0 {
		return WarningStyle.Render("No receipts match.")
	}
	row := func(label, value string) string {
		return LabelStyle.Render(label) + ValueStyle.Render(value)
	}

	overview := strings.Join([]string{
		row("Total spend", money(r.TotalSpend)),
		row("Receipts", fmt.Sprint(r.TotalReceipts)),
		row("Average", money(r.AverageAmount)),
		row("Median", money(r.MedianAmount)),
		row("Most common", money(r.ModeAmount)),
		row("Trend", fmt.Sprintf("%s (%s%%)", r.Trend.Direction, r.Trend.Growth.StringFixed(2))),
	}, "\n")

	var vendors []string
	for i, v := range r.TopVendors {
		vendors = append(vendors, row(fmt.Sprintf("%d. %s", i+1, v.Vendor), fmt.Sprintf("%s  (%d)", money(v.Total), v.Count)))
	}
	var categories []string
	for _, c := range r.CategorySpending {
		categories = append(categories, row(string(c.Category), fmt.Sprintf("%s  %s%%", money(c.Total), c.Percentage.StringFixed(2))))
	}
	var months []string
	for _, m := range r.MonthlySpending {
		months = append(months, row(m.Label, fmt.Sprintf("%s  (%d)", money(m.Total), m.Count)))
	}

	sections := []string{
		TitleStyle.Render("Receipt Summary"),
		BoxStyle.Render(overview),
		HeaderStyle.Render("Top vendors"),
		strings.Join(vendors, "\n"),
		HeaderStyle.Render("Spending by category"),
		strings.Join(categories, "\n"),
	}
	if len(months) > 0 {
		sections = append(sections, HeaderStyle.Render("Monthly spending"), strings.Join(months, "\n"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

// SummaryReport writes the plain-text report.
func (e *Exporter) SummaryReport(w io.Writer, report stats.Report) error {
	bw := bufio.NewWriter(w)
	title := "Receipt Summary Report"
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, strings.Repeat("=", len(title)))
	fmt.Fprintf(bw, "Generated: %s\n\n", e.now().UTC().Format("2006-01-02 15:04 MST"))

	fmt.Fprintf(bw, "%-16s %d\n", "Receipts:", report.TotalReceipts)
	fmt.Fprintf(bw, "%-16s %s\n", "Total spend:", report.TotalSpend.StringFixed(2))
	fmt.Fprintf(bw, "%-16s %s\n", "Average:", report.AverageAmount.StringFixed(2))
	fmt.Fprintf(bw, "%-16s %s\n", "Median:", report.MedianAmount.String())
	fmt.Fprintf(bw, "%-16s %s\n", "Mode:", report.ModeAmount.StringFixed(2))
	fmt.Fprintf(bw, "%-16s %s (%s%%)\n", "Trend:", report.Trend.Direction, report.Trend.Growth.StringFixed(2))

	section(bw, "Top vendors")
	for i, v := range report.TopVendors {
		fmt.Fprintf(bw, "%2d. %-24s %12s  %3d receipt(s)\n", i+1, truncate(v.Vendor, 24), v.Total.StringFixed(2), v.Count)
	}

	section(bw, "Spending by category")
	for _, c := range report.CategorySpending {
		fmt.Fprintf(bw, "    %-24s %12s  %6s%%\n", c.Category, c.Total.StringFixed(2), c.Percentage.StringFixed(2))
	}

	section(bw, "Monthly spending")
	for _, m := range report.MonthlySpending {
		fmt.Fprintf(bw, "    %-24s %12s  %3d receipt(s)\n", m.Label, m.Total.StringFixed(2), m.Count)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("report write: %w", err)
	}
	e.logger.Info("export.text.ok", "receipts", report.TotalReceipts)
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

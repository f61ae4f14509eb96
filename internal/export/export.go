// Package export writes receipt collections and their statistics as CSV, JSON,
// XLSX workbooks and plain-text summary reports.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatText Format = "text"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX, FormatText:
		return f, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown export format %q (csv, json, xlsx, text)", s)
}

// Exporter renders records; it never reads the store itself.
type Exporter struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger, now: time.Now}
}

// WithClock fixes the generation timestamp used by JSON and text output.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Write dispatches to the writer for format.
func (e *Exporter) Write(w io.Writer, format Format, records []*entity.Receipt, report stats.Report) error {
	switch format {
	case FormatCSV:
		return e.CSV(w, records)
	case FormatJSON:
		return e.JSON(w, records, report)
	case FormatXLSX:
		return e.XLSX(w, records, report)
	case FormatText:
		return e.SummaryReport(w, report)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

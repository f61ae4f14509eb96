package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

var csvHeader = []string{
	"ID", "File Name", "File Type", "Vendor", "Date", "Amount", "Category",
	"Description", "Upload Date", "Status", "Confidence Score",
}

// CSV writes one row per record, amounts to two decimals.
func (e *Exporter) CSV(w io.Writer, records []*entity.Receipt) error {
	start := time.Now()
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID.String(),
			r.FileName,
			r.FileType,
			r.Vendor,
			r.Date.String(),
			r.Amount.StringFixed(2),
			string(r.Category),
			r.Description,
			r.UploadDate.UTC().Format(time.RFC3339),
			string(r.Status),
			strconv.FormatFloat(r.ConfidenceScore, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	e.logger.Info("export.csv.ok", "rows", len(records), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

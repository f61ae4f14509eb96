package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

type jsonDocument struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Count       int               `json:"count"`
	Receipts    []*entity.Receipt `json:"receipts"`
	Stats       stats.Report      `json:"stats"`
}

// JSON writes the records together with their report as one indented document.
func (e *Exporter) JSON(w io.Writer, records []*entity.Receipt, report stats.Report) error {
	start := time.Now()
	if records == nil {
		records = []*entity.Receipt{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	doc := jsonDocument{
		GeneratedAt: e.now().UTC(),
		Count:       len(records),
		Receipts:    records,
		Stats:       report,
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	e.logger.Info("export.json.ok", "rows", len(records), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

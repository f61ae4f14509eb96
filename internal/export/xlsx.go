package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/stats"
)

const (
	receiptsSheet = "Receipts"
	summarySheet  = "Summary"
)

var xlsxHeaders = []string{
	"Date", "Vendor", "Category", "Amount", "Description", "Status", "Confidence", "File Name", "Upload Date", "ID",
}

// XLSX writes a workbook with a Receipts sheet and a Summary sheet.
func (e *Exporter) XLSX(w io.Writer, records []*entity.Receipt, report stats.Report) error {
	start := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(receiptsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	activeIndex, _ := f.GetSheetIndex(receiptsSheet)
	f.SetActiveSheet(activeIndex)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	if err := writeReceiptsSheet(f, records, bold, money); err != nil {
		return err
	}
	if err := writeSummarySheet(f, report, bold, money); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	e.logger.Info("export.xlsx.ok", "rows", len(records), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func writeReceiptsSheet(f *excelize.File, records []*entity.Receipt, bold, money int) error {
	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(receiptsSheet, cell, h); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), 1)
	if err := f.SetCellStyle(receiptsSheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i, r := range records {
		row := i + 2
		values := []any{
			r.Date.String(),
			r.Vendor,
			string(r.Category),
			r.Amount.InexactFloat64(),
			truncate(r.Description, 140),
			string(r.Status),
			r.ConfidenceScore,
			r.FileName,
			r.UploadDate.UTC().Format("2006-01-02 15:04"),
			r.ID.String(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(receiptsSheet, cell, v); err != nil {
				return err
			}
		}
	}
	if len(records) > 0 {
		last, _ := excelize.CoordinatesToCellName(4, len(records)+1)
		if err := f.SetCellStyle(receiptsSheet, "D2", last, money); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(receiptsSheet, "A", "A", 12) // date
	_ = f.SetColWidth(receiptsSheet, "B", "C", 22) // vendor, category
	_ = f.SetColWidth(receiptsSheet, "D", "D", 12) // amount
	_ = f.SetColWidth(receiptsSheet, "E", "E", 48) // description
	_ = f.SetColWidth(receiptsSheet, "H", "J", 36)
	return nil
}

func writeSummarySheet(f *excelize.File, report stats.Report, bold, money int) error {
	row := 1
	set := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(summarySheet, cell, v)
	}
	heading := func(title string) {
		set(1, title)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellStyle(summarySheet, cell, cell, bold)
		row++
	}
	moneyCell := func(col int, v float64) {
		set(col, v)
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellStyle(summarySheet, cell, cell, money)
	}

	heading("Overview")
	for _, kv := range []struct {
		label string
		value float64
	}{
		{"Total Spend", report.TotalSpend.InexactFloat64()},
		{"Average Amount", report.AverageAmount.InexactFloat64()},
		{"Median Amount", report.MedianAmount.InexactFloat64()},
		{"Mode Amount", report.ModeAmount.InexactFloat64()},
	} {
		set(1, kv.label)
		moneyCell(2, kv.value)
		row++
	}
	set(1, "Total Receipts")
	set(2, report.TotalReceipts)
	row++
	set(1, "Trend")
	set(2, fmt.Sprintf("%s (%s%%)", report.Trend.Direction, report.Trend.Growth.StringFixed(2)))
	row += 2

	heading("Top Vendors")
	for _, v := range report.TopVendors {
		set(1, v.Vendor)
		moneyCell(2, v.Total.InexactFloat64())
		set(3, v.Count)
		row++
	}
	row++

	heading("Spending by Category")
	for _, c := range report.CategorySpending {
		set(1, string(c.Category))
		moneyCell(2, c.Total.InexactFloat64())
		set(3, c.Count)
		set(4, c.Percentage.StringFixed(2)+"%")
		row++
	}
	row++

	heading("Monthly Spending")
	for _, m := range report.MonthlySpending {
		set(1, m.Label)
		moneyCell(2, m.Total.InexactFloat64())
		set(3, m.Count)
		row++
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "D", 14)
	return nil
}

package extract

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/ocr"
)

// Field names one extractable receipt attribute.
type Field string

const (
	FieldVendor   Field = "vendor"
	FieldCategory Field = "category"
	FieldDate     Field = "date"
	FieldAmount   Field = "amount"
)

// Fields is the structured part of an extraction.
type Fields struct {
	Vendor   string
	Category constants.Category
	Date     entity.Date
	Amount   decimal.Decimal
}

// Result is everything one extraction produced. Failed fields hold their defaults
// and are listed in Failures.
type Result struct {
	Fields

	Text          ocr.Text
	RuleIndex     int  // index of the matching vendor rule, -1 when none matched
	DateDefaulted bool // Date is the extraction day, not read from the text
	AmountFound   bool // false means Amount is a stored zero, not a real value

	Confidence float64
	Status     constants.Status
	Failures   []common.ExtractionFailure
	Warning    error // common.EmptyInputWarning or nil
}

// Found reports whether f was read from the document rather than defaulted.
func (r Result) Found(f Field) bool {
	switch f {
	case FieldVendor, FieldCategory:
		return r.RuleIndex >= 0
	case FieldDate:
		return !r.DateDefaulted
	case FieldAmount:
		return r.AmountFound
	}
	return false
}

// Apply copies the extracted fields onto rec and moves it out of processing.
func (r Result) Apply(rec *entity.Receipt) error {
	rec.Vendor = r.Vendor
	rec.Category = r.Category
	rec.Date = r.Date
	rec.Amount = r.Amount
	rec.ExtractedText = r.Text.Original
	rec.ConfidenceScore = r.Confidence
	return rec.Transition(r.Status)
}

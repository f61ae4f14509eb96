package query

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

// FilterSpec holds the optional predicates of a query. Every present predicate must hold.
type FilterSpec struct {
	Keyword   string              `json:"keyword,omitempty"`
	Vendor    string              `json:"vendor,omitempty"`
	Category  *constants.Category `json:"category,omitempty"`
	DateFrom  *entity.Date        `json:"dateFrom,omitempty"`
	DateTo    *entity.Date        `json:"dateTo,omitempty"`
	AmountMin *decimal.Decimal    `json:"amountMin,omitempty"`
	AmountMax *decimal.Decimal    `json:"amountMax,omitempty"`
}

// IsEmpty reports whether the spec matches every record.
func (f FilterSpec) IsEmpty() bool {
	return f.Keyword == "" && f.Vendor == "" && f.Category == nil &&
		f.DateFrom == nil && f.DateTo == nil && f.AmountMin == nil && f.AmountMax == nil
}

// Key renders the spec canonically for use as a cache key.
func (f FilterSpec) Key() string {
	b, _ := json.Marshal(f)
	return string(b)
}

// Validate rejects malformed predicates instead of letting Matches ignore them.
func (f FilterSpec) Validate() error {
	v := common.NewValidator()
	v.Field("amountMin", f.AmountMin, common.NonNegative)
	v.Field("amountMax", f.AmountMax, common.NonNegative)
	if f.AmountMin != nil && f.AmountMax != nil {
		v.Check(f.AmountMin.LessThanOrEqual(*f.AmountMax), "amountMax", f.AmountMax.String(), "must not be below amountMin")
	}
	if f.DateFrom != nil {
		v.Check(!f.DateFrom.IsZero(), "dateFrom", f.DateFrom.String(), "must be a calendar date")
	}
	if f.DateTo != nil {
		v.Check(!f.DateTo.IsZero(), "dateTo", f.DateTo.String(), "must be a calendar date")
	}
	if f.DateFrom != nil && f.DateTo != nil {
		v.Check(!f.DateTo.Before(*f.DateFrom), "dateTo", f.DateTo.String(), "must not be before dateFrom")
	}
	if f.Category != nil {
		v.Check(f.Category.IsValid(), "category", string(*f.Category), "is not a known category")
	}
	return v.Error()
}

// Matches evaluates every present predicate against r. O(1) in the collection size.
func (f FilterSpec) Matches(r *entity.Receipt) bool {
	if f.Keyword != "" {
		if !containsKeyword(strings.ToLower(f.Keyword), r.Vendor, string(r.Category), r.Description, r.ExtractedText) {
			return false
		}
	}
	if f.Vendor != "" && !strings.Contains(strings.ToLower(r.Vendor), strings.ToLower(f.Vendor)) {
		return false
	}
	if f.Category != nil && r.Category != *f.Category {
		return false
	}
	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}
	if f.AmountMin != nil && r.Amount.LessThan(*f.AmountMin) {
		return false
	}
	if f.AmountMax != nil && r.Amount.GreaterThan(*f.AmountMax) {
		return false
	}
	return true
}

// Filter returns the matching records in input order. The input is not modified.
func Filter(records []*entity.Receipt, f FilterSpec) []*entity.Receipt {
	return Select(records, f.Matches)
}

// Predicate is any record test; FilterSpec.Matches is one.
type Predicate func(*entity.Receipt) bool

// Select keeps the records p accepts, in input order.
func Select(records []*entity.Receipt, p Predicate) []*entity.Receipt {
	out := make([]*entity.Receipt, 0, len(records))
	for _, r := range records {
		if p(r) {
			out = append(out, r)
		}
	}
	return out
}

// And is the conjunction of predicates; no predicates accepts everything.
func And(ps ...Predicate) Predicate {
	return func(r *entity.Receipt) bool {
		for _, p := range ps {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Not is the complement of p.
func Not(p Predicate) Predicate {
	return func(r *entity.Receipt) bool { return !p(r) }
}

// containsKeyword reports whether any single field contains kw; a phrase never spans fields.
func containsKeyword(kw string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), kw) {
			return true
		}
	}
	return false
}

package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
)

// DefaultVendor is stored when no vendor rule matched.
const DefaultVendor = "Unknown Vendor"

// Receipt represents a receipt for data transfer between layers.
type Receipt struct {
	ID              uuid.UUID          `json:"id"`
	FileName        string             `json:"fileName"`
	FileType        string             `json:"fileType"`
	FileSize        int64              `json:"fileSize"`
	Vendor          string             `json:"vendor"`
	Date            Date               `json:"date"`
	Amount          decimal.Decimal    `json:"amount"`
	Category        constants.Category `json:"category"`
	Description     string             `json:"description,omitempty"`
	UploadDate      time.Time          `json:"uploadDate"`
	Status          constants.Status   `json:"status"`
	ExtractedText   string             `json:"extractedText,omitempty"`
	ConfidenceScore float64            `json:"confidenceScore"`
}

// Transition moves the receipt to status to, rejecting anything but processing -> processed|error.
func (r *Receipt) Transition(to constants.Status) error {
	if !constants.CanTransition(r.Status, to) {
		return common.NewAppError(common.CodeTransition,
			fmt.Sprintf("receipt %s: %s -> %s", r.ID, r.Status, to), common.ErrInvalidTransition)
	}
	r.Status = to
	return nil
}

// Validate checks the record invariants every store relies on.
func (r *Receipt) Validate() error {
	v := common.NewValidator()
	v.Check(r.ID != uuid.Nil, "id", r.ID, "is required")
	v.Field("amount", r.Amount, common.NonNegative)
	v.Check(r.Category.IsValid(), "category", r.Category, "is not a known category")
	v.Check(r.Status.IsValid(), "status", r.Status, "is not a known status")
	v.Check(r.ConfidenceScore >= 0 && r.ConfidenceScore <= 1, "confidenceScore", r.ConfidenceScore, "must be within [0,1]")
	v.Check(r.Status != constants.StatusProcessed || !r.Date.IsZero(), "date", r.Date.String(), "is required once processed")
	return v.Error()
}

// ReceiptUpdate is a partial overwrite; nil fields are left untouched.
type ReceiptUpdate struct {
	Vendor      *string             `json:"vendor,omitempty"`
	Date        *Date               `json:"date,omitempty"`
	Amount      *decimal.Decimal    `json:"amount,omitempty"`
	Category    *constants.Category `json:"category,omitempty"`
	Description *string             `json:"description,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u ReceiptUpdate) IsEmpty() bool {
	return u.Vendor == nil && u.Date == nil && u.Amount == nil && u.Category == nil && u.Description == nil
}

// Validate rejects updates that would break record invariants.
func (u ReceiptUpdate) Validate() error {
	v := common.NewValidator()
	v.Check(!u.IsEmpty(), "update", nil, "must set at least one field")
	if u.Vendor != nil {
		v.Field("vendor", *u.Vendor, common.Required, common.MaxLength(200))
	}
	if u.Date != nil {
		v.Check(!u.Date.IsZero(), "date", u.Date.String(), "must be a calendar date")
	}
	v.Field("amount", u.Amount, common.NonNegative)
	if u.Category != nil {
		v.Check(u.Category.IsValid(), "category", *u.Category, "is not a known category")
	}
	if u.Description != nil {
		v.Field("description", *u.Description, common.MaxLength(2000))
	}
	return v.Error()
}

// Apply returns a copy of r with the update applied. Extraction output is not recomputed.
func (u ReceiptUpdate) Apply(r Receipt) Receipt {
	if u.Vendor != nil {
		r.Vendor = *u.Vendor
	}
	if u.Date != nil {
		r.Date = *u.Date
	}
	if u.Amount != nil {
		r.Amount = *u.Amount
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	return r
}

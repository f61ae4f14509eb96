package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

// SortField names a sortable receipt attribute.
type SortField string

const (
	SortByDate       SortField = "date"
	SortByAmount     SortField = "amount"
	SortByVendor     SortField = "vendor"
	SortByCategory   SortField = "category"
	SortByUploadDate SortField = "uploadDate"
)

// Direction is asc or desc.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var sortFields = []string{string(SortByDate), string(SortByAmount), string(SortByVendor), string(SortByCategory), string(SortByUploadDate)}

// SortSpec orders records by one field.
type SortSpec struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort is newest receipt first.
var DefaultSort = SortSpec{Field: SortByDate, Direction: Desc}

func (s SortSpec) Validate() error {
	v := common.NewValidator()
	v.Field("field", string(s.Field), common.OneOf(sortFields...))
	v.Field("direction", string(s.Direction), common.OneOf(string(Asc), string(Desc)))
	return v.Error()
}

// ParseSortSpec builds a validated spec; an empty direction means asc.
func ParseSortSpec(field, direction string) (SortSpec, error) {
	if direction == "" {
		direction = string(Asc)
	}
	s := SortSpec{Field: SortField(field), Direction: Direction(strings.ToLower(direction))}
	if err := s.Validate(); err != nil {
		return SortSpec{}, err
	}
	return s, nil
}

func (s SortSpec) String() string { return fmt.Sprintf("%s:%s", s.Field, s.Direction) }

// compare returns <0, 0, >0 for the primary key only; ties are left to stability.
func (s SortSpec) compare(a, b *entity.Receipt, col *collate.Collator) int {
	switch s.Field {
	case SortByDate:
		return a.Date.Compare(b.Date)
	case SortByAmount:
		return a.Amount.Cmp(b.Amount)
	case SortByVendor:
		return compareText(col, a.Vendor, b.Vendor)
	case SortByCategory:
		return compareText(col, string(a.Category), string(b.Category))
	case SortByUploadDate:
		return a.UploadDate.Compare(b.UploadDate)
	}
	return 0
}

// collation order first, then byte order so "apple" and "Apple" still have a fixed order
func compareText(col *collate.Collator, a, b string) int {
	if c := col.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Collators keep internal buffers, so every Sort call gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// Sort returns a new slice ordered by s. Records equal on the key keep their input
// order in both directions. The input slice is not modified.
func Sort(records []*entity.Receipt, s SortSpec) []*entity.Receipt {
	out := make([]*entity.Receipt, len(records))
	copy(out, records)
	sign := 1
	if s.Direction == Desc {
		sign = -1
	}
	col := newCollator()
	sort.SliceStable(out, func(i, j int) bool {
		return sign*s.compare(out[i], out[j], col) < 0
	})
	return out
}

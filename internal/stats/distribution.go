package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

// Frequency is one row of a frequency table.
type Frequency struct {
	Value      string          `json:"value"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Key picks the attribute a frequency table counts.
type Key func(*entity.Receipt) string

var (
	ByVendor   Key = func(r *entity.Receipt) string { return r.Vendor }
	ByCategory Key = func(r *entity.Receipt) string { return string(r.Category) }
	ByStatus   Key = func(r *entity.Receipt) string { return string(r.Status) }
	ByFileType Key = func(r *entity.Receipt) string { return r.FileType }
)

// Distribution counts records per key, most common first, with each row's share of
// the collection. Equal counts keep first-seen order.
func Distribution(records []*entity.Receipt, key Key) []Frequency {
	if len(records) == 0 {
		return []Frequency{}
	}
	g := newGroups()
	for _, r := range records {
		g.add(key(r), decimal.Zero)
	}
	total := decimal.NewFromInt(int64(len(records)))
	out := make([]Frequency, 0, len(g.buckets()))
	for _, b := range g.buckets() {
		out = append(out, Frequency{
			Value:      b.key,
			Count:      b.count,
			Percentage: decimal.NewFromInt(int64(b.count)).Mul(hundred).DivRound(total, 2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// DefaultAmountEdges are the bucket boundaries used by the dashboard histogram.
var DefaultAmountEdges = []decimal.Decimal{
	decimal.NewFromInt(10),
	decimal.NewFromInt(25),
	decimal.NewFromInt(50),
	decimal.NewFromInt(100),
	decimal.NewFromInt(250),
}

// Bucket counts amounts in [Low, High). High is nil for the open-ended last bucket.
type Bucket struct {
	Low   decimal.Decimal  `json:"low"`
	High  *decimal.Decimal `json:"high,omitempty"`
	Count int              `json:"count"`
	Total decimal.Decimal  `json:"total"`
}

// AmountDistribution buckets amounts by ascending edges. Every record lands in exactly
// one bucket, so counts always sum to len(records).
func AmountDistribution(records []*entity.Receipt, edges []decimal.Decimal) []Bucket {
	sorted := make([]decimal.Decimal, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	out := make([]Bucket, 0, len(sorted)+1)
	low := decimal.Zero
	for i := range sorted {
		high := sorted[i]
		out = append(out, Bucket{Low: low, High: &high, Total: decimal.Zero})
		low = high
	}
	out = append(out, Bucket{Low: low, Total: decimal.Zero})

	for _, r := range records {
		i := sort.Search(len(sorted), func(i int) bool { return r.Amount.LessThan(sorted[i]) })
		out[i].Count++
		out[i].Total = out[i].Total.Add(r.Amount)
	}
	return out
}

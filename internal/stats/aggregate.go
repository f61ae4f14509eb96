package stats

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

// TopVendorLimit caps Snapshot.TopVendors.
const TopVendorLimit = 5

var hundred = decimal.NewFromInt(100)

// Snapshot is a point-in-time summary of a receipt collection. It is derived, never stored.
type Snapshot struct {
	TotalSpend       decimal.Decimal `json:"totalSpend"`
	TotalReceipts    int             `json:"totalReceipts"`
	AverageAmount    decimal.Decimal `json:"averageAmount"`
	MedianAmount     decimal.Decimal `json:"medianAmount"`
	ModeAmount       decimal.Decimal `json:"modeAmount"`
	TopVendors       []VendorTotal   `json:"topVendors"`
	CategorySpending []CategoryTotal `json:"categorySpending"`
	MonthlySpending  []MonthTotal    `json:"monthlySpending"`
}

type VendorTotal struct {
	Vendor  string          `json:"vendor"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

type CategoryTotal struct {
	Category   constants.Category `json:"category"`
	Total      decimal.Decimal    `json:"total"`
	Count      int                `json:"count"`
	Percentage decimal.Decimal    `json:"percentage"` // share of TotalSpend, 2 dp
}

type MonthTotal struct {
	Key   string          `json:"key"`   // 2006-01
	Label string          `json:"label"` // Jan 2006
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Aggregate computes every statistic in one pass plus the sorts median and the
// rankings need. records is not modified; an empty collection yields zeros and empty lists.
func Aggregate(records []*entity.Receipt) Snapshot {
	snap := Snapshot{
		TotalSpend:       decimal.Zero,
		AverageAmount:    decimal.Zero,
		MedianAmount:     decimal.Zero,
		ModeAmount:       decimal.Zero,
		TopVendors:       []VendorTotal{},
		CategorySpending: []CategoryTotal{},
		MonthlySpending:  []MonthTotal{},
	}
	if len(records) == 0 {
		return snap
	}

	amounts := make([]decimal.Decimal, 0, len(records))
	vendors := newGroups()
	categories := newGroups()
	months := newGroups()
	monthDates := make(map[string]entity.Date)

	for _, r := range records {
		snap.TotalSpend = snap.TotalSpend.Add(r.Amount)
		amounts = append(amounts, r.Amount)
		vendors.add(r.Vendor, r.Amount)
		categories.add(string(r.Category), r.Amount)
		if !r.Date.IsZero() {
			key := r.Date.MonthKey()
			months.add(key, r.Amount)
			if _, ok := monthDates[key]; !ok {
				monthDates[key] = entity.NewDate(r.Date.Year(), r.Date.Month(), 1)
			}
		}
	}

	snap.TotalReceipts = len(records)
	snap.AverageAmount = snap.TotalSpend.DivRound(decimal.NewFromInt(int64(len(records))), 2)
	snap.MedianAmount = Median(amounts)
	snap.ModeAmount = Mode(amounts)
	snap.TopVendors = topVendors(vendors, TopVendorLimit)
	snap.CategorySpending = categorySpending(categories, snap.TotalSpend)
	snap.MonthlySpending = monthlySpending(months, monthDates)
	return snap
}

// Median sorts a copy; the mean of the two middle values for an even count, 0 when empty.
func Median(amounts []decimal.Decimal) decimal.Decimal {
	n := len(amounts)
	if n == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, n)
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}

// Mode counts amounts rounded to cents; the most frequent wins, the smallest on a tie.
func Mode(amounts []decimal.Decimal) decimal.Decimal {
	if len(amounts) == 0 {
		return decimal.Zero
	}
	counts := make(map[string]int, len(amounts))
	values := make(map[string]decimal.Decimal, len(amounts))
	for _, a := range amounts {
		r := a.Round(2)
		k := r.StringFixed(2)
		counts[k]++
		values[k] = r
	}

	var (
		best      decimal.Decimal
		bestCount int
	)
	for k, c := range counts {
		v := values[k]
		if c > bestCount || (c == bestCount && v.LessThan(best)) {
			best, bestCount = v, c
		}
	}
	return best
}

func topVendors(g *groups, limit int) []VendorTotal {
	out := make([]VendorTotal, 0, len(g.buckets()))
	for _, b := range g.buckets() {
		out = append(out, VendorTotal{
			Vendor:  b.key,
			Total:   b.sum,
			Count:   b.count,
			Average: b.sum.DivRound(decimal.NewFromInt(int64(b.count)), 2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return strings.Compare(out[i].Vendor, out[j].Vendor) < 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ordered by spend, largest first, then name
func categorySpending(g *groups, total decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(g.buckets()))
	for _, b := range g.buckets() {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = b.sum.Mul(hundred).DivRound(total, 2)
		}
		out = append(out, CategoryTotal{
			Category:   constants.Category(b.key),
			Total:      b.sum,
			Count:      b.count,
			Percentage: pct,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// chronological by (year, month), independent of label text
func monthlySpending(g *groups, firstDays map[string]entity.Date) []MonthTotal {
	out := make([]MonthTotal, 0, len(g.buckets()))
	for _, b := range g.buckets() {
		out = append(out, MonthTotal{
			Key:   b.key,
			Label: firstDays[b.key].Time().Format("Jan 2006"),
			Total: b.sum,
			Count: b.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return firstDays[out[i].Key].Before(firstDays[out[j].Key])
	})
	return out
}

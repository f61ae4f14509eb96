package stats

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	TrendIncreasing   Direction = "increasing"
	TrendDecreasing   Direction = "decreasing"
	TrendStable       Direction = "stable"
	TrendInsufficient Direction = "insufficient_data"
)

// DefaultWindow is the moving average window used by reports.
const DefaultWindow = 3

var trendThreshold = decimal.NewFromInt(5)

// Trend summarises how spend moved across the monthly series.
type Trend struct {
	Direction Direction       `json:"direction"`
	Growth    decimal.Decimal `json:"growthRate"` // percent, 2 dp
}

// MovingAverage returns the mean of each full window of values, rounded to cents.
// A series shorter than window is returned unchanged.
func MovingAverage(values []decimal.Decimal, window int) []decimal.Decimal {
	if window <= 0 || len(values) < window {
		out := make([]decimal.Decimal, len(values))
		copy(out, values)
		return out
	}
	n := decimal.NewFromInt(int64(window))
	out := make([]decimal.Decimal, 0, len(values)-window+1)
	sum := decimal.Zero
	for i, v := range values {
		sum = sum.Add(v)
		if i >= window {
			sum = sum.Sub(values[i-window])
		}
		if i >= window-1 {
			out = append(out, sum.DivRound(n, 2))
		}
	}
	return out
}

// TrendOf compares the mean monthly spend of the earlier half of the series against
// the later half. Fewer than two months is insufficient data.
func TrendOf(months []MonthTotal) Trend {
	if len(months) < 2 {
		return Trend{Direction: TrendInsufficient, Growth: decimal.Zero}
	}
	ordered := make([]MonthTotal, len(months))
	copy(ordered, months)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Key < ordered[j].Key })

	mid := len(ordered) / 2
	first := meanTotal(ordered[:mid])
	second := meanTotal(ordered[mid:])

	growth := decimal.Zero
	if first.IsPositive() {
		growth = second.Sub(first).Mul(hundred).DivRound(first, 2)
	}

	dir := TrendStable
	switch {
	case growth.GreaterThan(trendThreshold):
		dir = TrendIncreasing
	case growth.LessThan(trendThreshold.Neg()):
		dir = TrendDecreasing
	}
	return Trend{Direction: dir, Growth: growth}
}

func meanTotal(months []MonthTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range months {
		sum = sum.Add(m.Total)
	}
	return sum.Div(decimal.NewFromInt(int64(len(months))))
}

// MonthlyTotals projects a monthly series onto its totals, for MovingAverage.
func MonthlyTotals(months []MonthTotal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(months))
	for i, m := range months {
		out[i] = m.Total
	}
	return out
}

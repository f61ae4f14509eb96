package stats

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

// Report bundles the snapshot with the derived series the dashboard and exports show.
type Report struct {
	Snapshot
	Trend         Trend             `json:"trend"`
	MovingAverage []decimal.Decimal `json:"movingAverage"`
	Amounts       []Bucket          `json:"amountDistribution"`
	Statuses      []Frequency       `json:"statusDistribution"`
}

func BuildReport(records []*entity.Receipt) Report {
	snap := Aggregate(records)
	return Report{
		Snapshot:      snap,
		Trend:         TrendOf(snap.MonthlySpending),
		MovingAverage: MovingAverage(MonthlyTotals(snap.MonthlySpending), DefaultWindow),
		Amounts:       AmountDistribution(records, DefaultAmountEdges),
		Statuses:      Distribution(records, ByStatus),
	}
}

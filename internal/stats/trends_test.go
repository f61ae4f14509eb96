package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

func TestMovingAverage(t *testing.T) {
	values := []decimal.Decimal{dec("10"), dec("20"), dec("30"), dec("40"), dec("1")}

	got := MovingAverage(values, 3)
	require.Len(t, got, 3)
	assertDec(t, "20", got[0])
	assertDec(t, "30", got[1])
	assertDec(t, "23.67", got[2])

	short := MovingAverage(values[:2], 3)
	require.Len(t, short, 2)
	assertDec(t, "10", short[0])
	assertDec(t, "20", short[1])
}

func TestTrendOf(t *testing.T) {
	snap := Aggregate(fixture())

	trend := TrendOf(snap.MonthlySpending)
	assert.Equal(t, TrendDecreasing, trend.Direction)
	assertDec(t, "-53.11", trend.Growth)

	ma := MovingAverage(MonthlyTotals(snap.MonthlySpending), DefaultWindow)
	require.Len(t, ma, 1)
	assertDec(t, "140.46", ma[0])
}

func TestTrendOf_Directions(t *testing.T) {
	month := func(key, total string) MonthTotal {
		return MonthTotal{Key: key, Total: dec(total), Count: 1}
	}
	tests := []struct {
		name   string
		months []MonthTotal
		want   Direction
		growth string
	}{
		{"none", nil, TrendInsufficient, "0"},
		{"one month", []MonthTotal{month("2024-01", "50")}, TrendInsufficient, "0"},
		{"up", []MonthTotal{month("2024-01", "100"), month("2024-02", "150")}, TrendIncreasing, "50"},
		{"flat within threshold", []MonthTotal{month("2024-01", "100"), month("2024-02", "104")}, TrendStable, "4"},
		{"unsorted input", []MonthTotal{month("2024-02", "80"), month("2024-01", "100")}, TrendDecreasing, "-20"},
		{"zero baseline", []MonthTotal{month("2024-01", "0"), month("2024-02", "90")}, TrendStable, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendOf(tt.months)
			assert.Equal(t, tt.want, got.Direction)
			assertDec(t, tt.growth, got.Growth)
		})
	}
}

func TestDistribution(t *testing.T) {
	records := fixture()
	records = append(records, rec("Walmart", constants.Groceries, "2024-04-01", "3.00"))

	got := Distribution(records, ByVendor)
	require.Len(t, got, 6)
	assert.Equal(t, "Walmart", got[0].Value)
	assert.Equal(t, 2, got[0].Count)
	assertDec(t, "28.57", got[0].Percentage)
	// the rest keep first-seen order
	assert.Equal(t, "Shell", got[1].Value)

	byCat := Distribution(records, ByCategory)
	assert.Equal(t, string(constants.Groceries), byCat[0].Value)

	assert.Empty(t, Distribution([]*entity.Receipt{}, ByStatus))
}

func TestAmountDistribution(t *testing.T) {
	records := fixture()
	got := AmountDistribution(records, DefaultAmountEdges)

	require.Len(t, got, len(DefaultAmountEdges)+1)
	counts := make([]int, len(got))
	total := 0
	for i, b := range got {
		counts[i] = b.Count
		total += b.Count
	}
	// 12.75 | 45.99 | 65.20 79.99 89.99 | 127.45
	assert.Equal(t, []int{0, 1, 1, 3, 1, 0}, counts)
	assert.Equal(t, len(records), total)
	assert.Nil(t, got[len(got)-1].High)
	assertDec(t, "235.18", got[3].Total)

	edge := AmountDistribution([]*entity.Receipt{rec("X", constants.Groceries, "2024-01-01", "10.00")}, DefaultAmountEdges)
	assert.Equal(t, 0, edge[0].Count)
	assert.Equal(t, 1, edge[1].Count)
}

package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
)

func TestDecode(t *testing.T) {
	f, s, err := Decode([]byte(`{
		"filter": {"keyword": "coffee", "category": "Food & Beverage", "dateFrom": "2024-01-01",
		           "dateTo": "2024-12-31", "amountMin": 1.5, "amountMax": "100.00"},
		"sort": {"field": "amount", "direction": "desc"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "coffee", f.Keyword)
	require.NotNil(t, f.Category)
	assert.Equal(t, constants.FoodBeverage, *f.Category)
	assert.Equal(t, "2024-01-01", f.DateFrom.String())
	assert.Equal(t, "2024-12-31", f.DateTo.String())
	assert.Equal(t, "1.5", f.AmountMin.String())
	assert.Equal(t, "100", f.AmountMax.String())
	assert.Equal(t, SortSpec{Field: SortByAmount, Direction: Desc}, s)
}

func TestDecode_Defaults(t *testing.T) {
	f, s, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
	assert.Equal(t, DefaultSort, s)

	_, s, err = Decode([]byte(`{"sort": {"field": "vendor"}}`))
	require.NoError(t, err)
	assert.Equal(t, SortSpec{Field: SortByVendor, Direction: Asc}, s)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"filter":`},
		{"unknown top-level key", `{"limit": 5}`},
		{"unknown filter key", `{"filter": {"merchant": "x"}}`},
		{"unknown category", `{"filter": {"category": "Toys"}}`},
		{"bad date", `{"filter": {"dateFrom": "01/02/2024"}}`},
		{"impossible date", `{"filter": {"dateTo": "2024-02-30"}}`},
		{"negative amount", `{"filter": {"amountMin": -3}}`},
		{"inverted range", `{"filter": {"amountMin": 10, "amountMax": 5}}`},
		{"bad sort field", `{"sort": {"field": "price"}}`},
		{"bad direction", `{"sort": {"field": "date", "direction": "up"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation), err.Error())
		})
	}
}

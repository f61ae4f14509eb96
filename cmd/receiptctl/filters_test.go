package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/query"
)

func TestFilterFlags_Build(t *testing.T) {
	f := filterFlags{vendor: "wal", category: "Groceries", from: "2024-01-01", min: "10.50", sortField: "amount"}
	spec, sortBy, err := f.build()
	require.NoError(t, err)

	assert.Equal(t, "wal", spec.Vendor)
	require.NotNil(t, spec.Category)
	assert.Equal(t, constants.Groceries, *spec.Category)
	require.NotNil(t, spec.DateFrom)
	assert.Equal(t, "2024-01-01", spec.DateFrom.String())
	require.NotNil(t, spec.AmountMin)
	assert.Equal(t, "10.5", spec.AmountMin.String())
	assert.Nil(t, spec.AmountMax)
	assert.Equal(t, query.SortSpec{Field: query.SortByAmount, Direction: query.Asc}, sortBy)
}

func TestFilterFlags_Defaults(t *testing.T) {
	spec, sortBy, err := (&filterFlags{}).build()
	require.NoError(t, err)
	assert.True(t, spec.IsEmpty())
	assert.Equal(t, query.DefaultSort, sortBy)
}

func TestFilterFlags_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		flags filterFlags
	}{
		{"bad date", filterFlags{from: "01/02/2024"}},
		{"negative amount", filterFlags{min: "-3"}},
		{"inverted range", filterFlags{min: "20", max: "10"}},
		{"unknown category", filterFlags{category: "Toys"}},
		{"unknown sort", filterFlags{sortField: "colour"}},
		{"bad order", filterFlags{sortField: "date", order: "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.flags.build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation), err.Error())
		})
	}
}

func TestFilterFlags_QueryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"filter":{"keyword":"coffee"},"sort":{"field":"vendor","direction":"desc"}}`), 0o644))

	f := filterFlags{vendor: "ignored", queryFile: path}
	spec, sortBy, err := f.build()
	require.NoError(t, err)
	assert.Equal(t, "coffee", spec.Keyword)
	assert.Empty(t, spec.Vendor)
	assert.Equal(t, query.SortSpec{Field: query.SortByVendor, Direction: query.Desc}, sortBy)
}

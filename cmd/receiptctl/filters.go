package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/internal/query"
)

// filterFlags are shared by query, stats and export.
type filterFlags struct {
	keyword   string
	vendor    string
	category  string
	from      string
	to        string
	min       string
	max       string
	sortField string
	order     string
	queryFile string
}

func (f *filterFlags) register(cmd *cobra.Command, withSort bool) {
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "case-insensitive text that must appear in vendor, description or extracted text")
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "case-insensitive vendor substring")
	cmd.Flags().StringVar(&f.category, "category", "", "exact category")
	cmd.Flags().StringVar(&f.from, "from", "", "earliest receipt date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "latest receipt date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.min, "min", "", "minimum amount")
	cmd.Flags().StringVar(&f.max, "max", "", "maximum amount")
	cmd.Flags().StringVar(&f.queryFile, "query-file", "", "JSON query document; overrides the individual filter flags")
	if withSort {
		cmd.Flags().StringVar(&f.sortField, "sort", "", "date, amount, vendor, category or uploadDate")
		cmd.Flags().StringVar(&f.order, "order", "", "asc or desc")
	}
}

// document renders the flags as a query document.
func (f *filterFlags) document() map[string]any {
	filter := map[string]any{}
	put := func(key, v string) {
		if v != "" {
			filter[key] = v
		}
	}
	put("keyword", f.keyword)
	put("vendor", f.vendor)
	put("category", f.category)
	put("dateFrom", f.from)
	put("dateTo", f.to)
	put("amountMin", f.min)
	put("amountMax", f.max)

	doc := map[string]any{"filter": filter}
	if f.sortField != "" {
		s := map[string]any{"field": f.sortField}
		if f.order != "" {
			s["direction"] = f.order
		}
		doc["sort"] = s
	}
	return doc
}

// build validates the flags, or the query file, into specs.
func (f *filterFlags) build() (query.FilterSpec, query.SortSpec, error) {
	var (
		data []byte
		err  error
	)
	if f.queryFile != "" {
		data, err = os.ReadFile(f.queryFile)
		if err != nil {
			return query.FilterSpec{}, query.SortSpec{}, fmt.Errorf("failed to read query file: %w", err)
		}
	} else {
		data, err = json.Marshal(f.document())
		if err != nil {
			return query.FilterSpec{}, query.SortSpec{}, err
		}
	}
	return query.Decode(data)
}

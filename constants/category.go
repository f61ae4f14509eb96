package constants

import (
	"strings"
)

type Category string

const (
	Groceries      Category = "Groceries"
	FoodBeverage   Category = "Food & Beverage"
	Transportation Category = "Transportation"
	Healthcare     Category = "Healthcare"
	Utilities      Category = "Utilities"
	Internet       Category = "Internet"
	Miscellaneous  Category = "Miscellaneous"
)

var allCategories = []Category{
	Groceries,
	FoodBeverage,
	Transportation,
	Healthcare,
	Utilities,
	Internet,
	Miscellaneous,
}

// AllCategories returns the fixed category set, catch-all last.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// IsValid reports whether c is one of the known categories (exact match).
func (c Category) IsValid() bool {
	for _, cat := range allCategories {
		if c == cat {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// Canonicalize maps free-form user input onto a known category.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Miscellaneous, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"grocery":     Groceries,
		"supermarket": Groceries,
		"food":        FoodBeverage,
		"restaurant":  FoodBeverage,
		"coffee":      FoodBeverage,
		"meals":       FoodBeverage,
		"fuel":        Transportation,
		"gas":         Transportation,
		"travel":      Transportation,
		"pharmacy":    Healthcare,
		"medical":     Healthcare,
		"electricity": Utilities,
		"power":       Utilities,
		"broadband":   Internet,
		"isp":         Internet,
		"other":       Miscellaneous,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Miscellaneous, false
}

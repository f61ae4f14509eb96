package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/receipt-analytics/constants"
)

// Rule maps any of its keywords to a vendor and category.
type Rule struct {
	Keywords []string
	Vendor   string
	Category constants.Category
}

// DefaultRules is evaluated top to bottom; the first matching rule wins.
var DefaultRules = []Rule{
	{Keywords: []string{"walmart", "wal-mart"}, Vendor: "Walmart", Category: constants.Groceries},
	{Keywords: []string{"target"}, Vendor: "Target", Category: constants.Groceries},
	{Keywords: []string{"costco"}, Vendor: "Costco", Category: constants.Groceries},
	{Keywords: []string{"safeway"}, Vendor: "Safeway", Category: constants.Groceries},
	{Keywords: []string{"kroger"}, Vendor: "Kroger", Category: constants.Groceries},
	{Keywords: []string{"starbucks"}, Vendor: "Starbucks", Category: constants.FoodBeverage},
	{Keywords: []string{"mcdonalds", "mcdonald's"}, Vendor: "McDonald's", Category: constants.FoodBeverage},
	{Keywords: []string{"subway"}, Vendor: "Subway", Category: constants.FoodBeverage},
	{Keywords: []string{"shell"}, Vendor: "Shell", Category: constants.Transportation},
	{Keywords: []string{"chevron"}, Vendor: "Chevron", Category: constants.Transportation},
	{Keywords: []string{"exxon", "exxonmobil"}, Vendor: "Exxon", Category: constants.Transportation},
	{Keywords: []string{"bp"}, Vendor: "BP", Category: constants.Transportation},
	{Keywords: []string{"cvs"}, Vendor: "CVS", Category: constants.Healthcare},
	{Keywords: []string{"walgreens"}, Vendor: "Walgreens", Category: constants.Healthcare},
	{Keywords: []string{"rite aid"}, Vendor: "Rite Aid", Category: constants.Healthcare},
	{Keywords: []string{"powercorp"}, Vendor: "PowerCorp", Category: constants.Utilities},
	{Keywords: []string{"pg&e"}, Vendor: "PG&E", Category: constants.Utilities},
	{Keywords: []string{"edison"}, Vendor: "Edison", Category: constants.Utilities},
	{Keywords: []string{"technet"}, Vendor: "TechNet", Category: constants.Internet},
	{Keywords: []string{"comcast", "xfinity"}, Vendor: "Comcast", Category: constants.Internet},
	{Keywords: []string{"verizon"}, Vendor: "Verizon", Category: constants.Internet},
	{Keywords: []string{"at&t", "att"}, Vendor: "AT&T", Category: constants.Internet},
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Keywords match as whole words so "bp" does not fire inside "bpm".
func compileRules(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.Vendor == "" || !r.Category.IsValid() || len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: vendor, valid category and keywords are required", i)
		}
		alts := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				return nil, fmt.Errorf("rule %d: empty keyword", i)
			}
			alts = append(alts, regexp.QuoteMeta(k))
		}
		re, err := regexp.Compile(`(?:^|[^\p{L}\p{N}])(?:` + strings.Join(alts, "|") + `)(?:$|[^\p{L}\p{N}])`)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, compiledRule{Rule: r, re: re})
	}
	return out, nil
}

// matchRule returns the index of the first rule matching s (already lower-cased), or -1.
func matchRule(rules []compiledRule, s string) int {
	if s == "" {
		return -1
	}
	for i, r := range rules {
		if r.re.MatchString(s) {
			return i
		}
	}
	return -1
}

// Package sample generates synthetic receipt documents for demos and load tests.
// Output depends only on the seed.
package sample

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/extract"
	"github.com/joseph-ayodele/receipt-analytics/internal/receipts"
)

// Receipt is one generated document together with the fields it was written from.
type Receipt struct {
	Document receipts.Document
	Vendor   string
	Category constants.Category
	Date     entity.Date
	Amount   decimal.Decimal
}

// amount ranges in cents per category
var priceRange = map[constants.Category][2]int64{
	constants.Groceries:      {1500, 25000},
	constants.FoodBeverage:   {350, 4500},
	constants.Transportation: {2500, 9500},
	constants.Healthcare:     {800, 12000},
	constants.Utilities:      {4000, 22000},
	constants.Internet:       {3999, 12999},
}

var layouts = []string{"01/02/2006", "2006-01-02", "Jan 2, 2006", "2 January 2006"}

type Generator struct {
	rng   *rand.Rand
	rules []extract.Rule
	start time.Time
	days  int
}

type Option func(*Generator)

// WithRules replaces the vendor table the generator draws from.
func WithRules(rules []extract.Rule) Option {
	return func(g *Generator) {
		if len(rules) > 0 {
			g.rules = rules
		}
	}
}

// WithPeriod spreads receipt dates over [start, start+days).
func WithPeriod(start time.Time, days int) Option {
	return func(g *Generator) {
		if days > 0 {
			g.start, g.days = start.UTC(), days
		}
	}
}

func New(seed int64, opts ...Option) *Generator {
	g := &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		rules: extract.DefaultRules,
		start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		days:  182,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next draws one receipt.
func (g *Generator) Next() Receipt {
	rule := g.rules[g.rng.Intn(len(g.rules))]
	date := entity.DateOf(g.start.AddDate(0, 0, g.rng.Intn(g.days)))

	lo, hi := int64(100), int64(10000)
	if r, ok := priceRange[rule.Category]; ok {
		lo, hi = r[0], r[1]
	}
	cents := lo + g.rng.Int63n(hi-lo+1)
	amount := decimal.New(cents, -2)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", strings.ToUpper(rule.Keywords[0]))
	fmt.Fprintf(&b, "STORE #%04d\n", g.rng.Intn(10000))
	fmt.Fprintf(&b, "%s\n", date.Time().Format(layouts[g.rng.Intn(len(layouts))]))
	fmt.Fprintf(&b, "ITEMS %d\n", 1+g.rng.Intn(12))
	fmt.Fprintf(&b, "TOTAL $%s\n", amount.StringFixed(2))
	text := b.String()

	name := fmt.Sprintf("%s-%s-%04d.txt", slug(rule.Vendor), date.String(), g.rng.Intn(10000))
	return Receipt{
		Document: receipts.Document{FileName: name, Size: int64(len(text)), Text: text},
		Vendor:   rule.Vendor,
		Category: rule.Category,
		Date:     date,
		Amount:   amount,
	}
}

// Batch draws n receipts.
func (g *Generator) Batch(n int) []Receipt {
	out := make([]Receipt, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, g.Next())
	}
	return out
}

func slug(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
}

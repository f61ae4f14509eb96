package stats

import "github.com/shopspring/decimal"

// bucket is the running {count, sum} for one grouping key.
type bucket struct {
	key   string
	count int
	sum   decimal.Decimal
}

// groups is an insertion-ordered map from key to bucket, so iteration never
// depends on Go map order.
type groups struct {
	order []*bucket
	index map[string]*bucket
}

func newGroups() *groups {
	return &groups{index: make(map[string]*bucket)}
}

func (g *groups) add(key string, amount decimal.Decimal) {
	b, ok := g.index[key]
	if !ok {
		b = &bucket{key: key, sum: decimal.Zero}
		g.index[key] = b
		g.order = append(g.order, b)
	}
	b.count++
	b.sum = b.sum.Add(amount)
}

func (g *groups) buckets() []*bucket { return g.order }

package extract

import (
	"fmt"
	"math"
)

// Weight is the score contribution of one successfully extracted field.
type Weight struct {
	Field  Field
	Weight float64
}

// DefaultBase is the score of a document where every field fell back to its default.
const DefaultBase = 0.20

// DefaultWeights: field -> weight. Base plus all weights is exactly 1.0.
var DefaultWeights = []Weight{
	{Field: FieldVendor, Weight: 0.20},
	{Field: FieldCategory, Weight: 0.15},
	{Field: FieldDate, Weight: 0.20},
	{Field: FieldAmount, Weight: 0.25},
}

// Scorer turns per-field outcomes into a confidence in [0,1].
type Scorer struct {
	base    float64
	weights []Weight
}

// NewScorer validates the table; negative weights would break monotonicity.
func NewScorer(base float64, weights []Weight) (*Scorer, error) {
	if base < 0 || base > 1 {
		return nil, fmt.Errorf("confidence base %v outside [0,1]", base)
	}
	seen := make(map[Field]bool, len(weights))
	for _, w := range weights {
		if w.Weight < 0 {
			return nil, fmt.Errorf("confidence weight for %s is negative", w.Field)
		}
		if seen[w.Field] {
			return nil, fmt.Errorf("confidence weight for %s listed twice", w.Field)
		}
		seen[w.Field] = true
	}
	ws := make([]Weight, len(weights))
	copy(ws, weights)
	return &Scorer{base: base, weights: ws}, nil
}

// DefaultScorer uses DefaultBase and DefaultWeights.
func DefaultScorer() *Scorer {
	s, _ := NewScorer(DefaultBase, DefaultWeights)
	return s
}

func (s *Scorer) Base() float64 { return s.base }

// Score adds the weight of every field found(f) reports true for, capped at 1.
func (s *Scorer) Score(found func(Field) bool) float64 {
	score := s.base
	for _, w := range s.weights {
		if found(w.Field) {
			score += w.Weight
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	// keep 0.2+0.2+0.15+... from drifting to 0.9999999
	return math.Round(score*1e4) / 1e4
}

package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
	"github.com/joseph-ayodele/receipt-analytics/internal/ocr"
)

// DefaultMinConfidence: below it a non-empty document is marked error.
const DefaultMinConfidence = 0.30

// Engine is the field extractor. It is deterministic for a fixed clock and safe for concurrent use.
type Engine struct {
	rules         []compiledRule
	scorer        *Scorer
	now           func() time.Time
	minConfidence float64
	logger        *slog.Logger
}

type Option func(*Engine) error

// WithRules replaces the vendor/category rule table.
func WithRules(rules []Rule) Option {
	return func(e *Engine) error {
		compiled, err := compileRules(rules)
		if err != nil {
			return err
		}
		e.rules = compiled
		return nil
	}
}

func WithScorer(s *Scorer) Option {
	return func(e *Engine) error {
		if s == nil {
			return fmt.Errorf("scorer is nil")
		}
		e.scorer = s
		return nil
	}
}

// WithClock sets the source of "today" for defaulted dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now != nil {
			e.now = now
		}
		return nil
	}
}

func WithMinConfidence(v float64) Option {
	return func(e *Engine) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("min confidence %v outside [0,1]", v)
		}
		e.minConfidence = v
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

func NewEngine(opts ...Option) (*Engine, error) {
	rules, err := compileRules(DefaultRules)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		rules:         rules,
		scorer:        DefaultScorer(),
		now:           time.Now,
		minConfidence: DefaultMinConfidence,
		logger:        slog.Default(),
	}
	for _, o := range opts {
		if err := o(e); err != nil {
			return nil, fmt.Errorf("extract engine: %w", err)
		}
	}
	return e, nil
}

// Extract normalizes rawText and derives vendor, category, date and amount.
// Each field succeeds or fails on its own; failures are defaulted and recorded.
func (e *Engine) Extract(rawText, fileName string) Result {
	text := ocr.Normalize(rawText)
	res := Result{Text: text, RuleIndex: -1}

	res.RuleIndex = matchRule(e.rules, text.Lower)
	if res.RuleIndex < 0 {
		res.RuleIndex = matchRule(e.rules, strings.ToLower(fileName))
	}
	if res.RuleIndex >= 0 {
		r := e.rules[res.RuleIndex]
		res.Vendor, res.Category = r.Vendor, r.Category
	} else {
		res.Vendor, res.Category = entity.DefaultVendor, constants.Miscellaneous
		res.Failures = append(res.Failures,
			common.ExtractionFailure{Field: string(FieldVendor), Reason: "no vendor rule matched"},
			common.ExtractionFailure{Field: string(FieldCategory), Reason: "no vendor rule matched"},
		)
	}

	if d, ok := findDate(text.Lower); ok {
		res.Date = d
	} else {
		res.Date = entity.DateOf(e.now())
		res.DateDefaulted = true
		res.Failures = append(res.Failures, common.ExtractionFailure{Field: string(FieldDate), Reason: "no date found, using today"})
	}

	if amt, ok := findAmount(text.Lower); ok {
		res.Amount = amt
		res.AmountFound = true
	} else {
		res.Amount = decimal.Zero
		res.Failures = append(res.Failures, common.ExtractionFailure{Field: string(FieldAmount), Reason: "no amount found"})
	}

	res.Confidence = e.scorer.Score(res.Found)

	switch {
	case text.Empty():
		res.Warning = common.EmptyInputWarning{FileName: fileName}
		res.Status = constants.StatusError
	case res.Confidence < e.minConfidence:
		res.Status = constants.StatusError
	default:
		res.Status = constants.StatusProcessed
	}

	e.logger.Debug("fields extracted",
		"file_name", fileName,
		"vendor", res.Vendor,
		"category", res.Category,
		"date", res.Date.String(),
		"date_defaulted", res.DateDefaulted,
		"amount", res.Amount.StringFixed(2),
		"amount_found", res.AmountFound,
		"confidence", res.Confidence,
		"status", res.Status,
	)
	return res
}

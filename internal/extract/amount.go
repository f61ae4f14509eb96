package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// a money value: 1,234.56 | 12.34 | 12,34
const moneyNum = `(\d{1,3}(?:,\d{3})+\.\d{2}|\d+\.\d{2}|\d+,\d{2})`

// Labelled totals, in priority order. "subtotal" never matches because of the word boundary.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:grand\s+)?total(?:\s+due)?\s*[:=]?\s*(?:usd|eur|gbp)?\s*[$€£]?\s*` + moneyNum),
	regexp.MustCompile(`\bamount(?:\s+due|\s+paid)?\s*[:=]?\s*(?:usd|eur|gbp)?\s*[$€£]?\s*` + moneyNum),
	regexp.MustCompile(`\bbalance(?:\s+due)?\s*[:=]?\s*(?:usd|eur|gbp)?\s*[$€£]?\s*` + moneyNum),
	regexp.MustCompile(`[$€£]\s*` + moneyNum + `\s*(?:total|due|amount)\b`),
}

// Any currency-shaped token, used when no labelled total exists.
var reMoneyToken = regexp.MustCompile(`(?:[$€£]|\b(?:usd|eur|gbp))?\s*` + moneyNum)

// findAmount returns the first labelled total, else the first currency-shaped token.
func findAmount(lower string) (decimal.Decimal, bool) {
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(lower, -1) {
			if isPartOfLargerNumber(lower, m[2], m[3]) {
				continue
			}
			if d, ok := parseMoney(lower[m[2]:m[3]]); ok {
				return d, true
			}
		}
	}
	for _, m := range reMoneyToken.FindAllStringSubmatchIndex(lower, -1) {
		if isPartOfLargerNumber(lower, m[2], m[3]) {
			continue
		}
		if d, ok := parseMoney(lower[m[2]:m[3]]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// isPartOfLargerNumber rejects fragments of dates, times and ids: "12.05" in "12.05.2024".
func isPartOfLargerNumber(s string, start, end int) bool {
	if start > 0 {
		p := s[start-1]
		if isDigit(p) || ((p == '.' || p == ',' || p == '/' || p == ':') && start > 1 && isDigit(s[start-2])) {
			return true
		}
	}
	if end < len(s) {
		n := s[end]
		if isDigit(n) || ((n == '.' || n == ',' || n == '/' || n == ':') && end+1 < len(s) && isDigit(s[end+1])) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func parseMoney(s string) (decimal.Decimal, bool) {
	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ","):
		// decimal comma: 12,34
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

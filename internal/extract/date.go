package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

const monthAlt = `jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`

// Accepted date shapes, in tie-break priority when two start at the same offset.
var (
	reDateMDY     = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)
	reDateYMD     = regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)
	reDateMonDY   = regexp.MustCompile(`\b(` + monthAlt + `)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	reDateDMonthY = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlt + `)[a-z]*\.?,?\s+(\d{4})\b`)
)

type dateCandidate struct {
	pos      int
	priority int
	date     entity.Date
}

// findDate returns the earliest date-shaped token in lower that is a real calendar date.
func findDate(lower string) (entity.Date, bool) {
	var cands []dateCandidate

	for _, m := range reDateMDY.FindAllStringSubmatchIndex(lower, -1) {
		a, b, y := atoi(lower[m[2]:m[3]]), atoi(lower[m[4]:m[5]]), expandYear(lower[m[6]:m[7]])
		// month/day first, day/month when the first part cannot be a month
		if d, ok := calendarDate(y, a, b); ok {
			cands = append(cands, dateCandidate{pos: m[0], priority: 0, date: d})
		} else if d, ok := calendarDate(y, b, a); ok {
			cands = append(cands, dateCandidate{pos: m[0], priority: 0, date: d})
		}
	}
	for _, m := range reDateYMD.FindAllStringSubmatchIndex(lower, -1) {
		if d, ok := calendarDate(atoi(lower[m[2]:m[3]]), atoi(lower[m[4]:m[5]]), atoi(lower[m[6]:m[7]])); ok {
			cands = append(cands, dateCandidate{pos: m[0], priority: 1, date: d})
		}
	}
	for _, m := range reDateMonDY.FindAllStringSubmatchIndex(lower, -1) {
		if d, ok := calendarDate(atoi(lower[m[6]:m[7]]), monthIndex(lower[m[2]:m[3]]), atoi(lower[m[4]:m[5]])); ok {
			cands = append(cands, dateCandidate{pos: m[0], priority: 2, date: d})
		}
	}
	for _, m := range reDateDMonthY.FindAllStringSubmatchIndex(lower, -1) {
		if d, ok := calendarDate(atoi(lower[m[6]:m[7]]), monthIndex(lower[m[4]:m[5]]), atoi(lower[m[2]:m[3]])); ok {
			cands = append(cands, dateCandidate{pos: m[0], priority: 3, date: d})
		}
	}

	if len(cands) == 0 {
		return entity.Date{}, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].pos != cands[j].pos {
			return cands[i].pos < cands[j].pos
		}
		return cands[i].priority < cands[j].priority
	})
	return cands[0].date, true
}

// calendarDate rejects dates time.Date would silently normalize (Feb 30 -> Mar 2).
func calendarDate(year, month, day int) (entity.Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return entity.Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return entity.Date{}, false
	}
	return entity.DateOf(t), true
}

// two-digit years pivot the way time.Parse does for "06": 69-99 -> 19xx
func expandYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		if y >= 69 {
			return 1900 + y
		}
		return 2000 + y
	}
	return y
}

func monthIndex(s string) int {
	return strings.Index(monthAlt, s[:3])/4 + 1
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

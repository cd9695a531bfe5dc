// Package repair detects and heuristically fixes value-level defects in
// column-aligned calendar batches: dates whose year the collector dropped,
// and rows missing their WeekRange label. Repairs are local heuristics over
// neighboring rows, so they assume malformed rows are rare and clustered
// within otherwise well-formed neighborhoods.
package repair

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// yearRe matches a standalone 4-digit year token.
var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// brokenDateRes are the known shapes of year-less dates the collector emits:
// day+month with a trailing weekday, weekday-first, and bare day/month pairs.
var brokenDateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d{1,2}\s+\w+,?\s*\w*day\s*$`),
	regexp.MustCompile(`(?i)^\w*day,?\s*\d{1,2}\s+\w+\s*$`),
	regexp.MustCompile(`(?i)^\d{1,2}\s+\w+\s*$`),
	regexp.MustCompile(`(?i)^\w+\s+\d{1,2}\s*$`),
}

var weekdayRe = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b,?\s*`)

var monthDayRes = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]+)`),
	regexp.MustCompile(`([A-Za-z]+)\s+(\d{1,2})`),
}

// IsBrokenDate reports whether a Date value is structurally unusable: empty,
// one of the known year-less patterns, or lacking any 4-digit year token.
func IsBrokenDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, re := range brokenDateRes {
		if re.MatchString(s) {
			return true
		}
	}
	return !yearRe.MatchString(s)
}

// ExtractMonthDay pulls "day Month" out of a broken date value, stripping
// weekday names and stray commas. The month is title-cased. The boolean is
// false when no day/month pair can be located.
func ExtractMonthDay(s string) (string, bool) {
	cleaned := weekdayRe.ReplaceAllString(s, "")
	cleaned = strings.Trim(cleaned, " ,")
	for _, re := range monthDayRes {
		m := re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		var day, month string
		if isDigits(m[1]) {
			day, month = m[1], m[2]
		} else {
			month, day = m[1], m[2]
		}
		month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
		return fmt.Sprintf("%s %s", day, month), true
	}
	return "", false
}

// NearestYear infers a year for the row at pos from the Date values of its
// neighbors. It scans a symmetric window of radius rows on each side (by
// position, not by date), collects every 4-digit year found, and returns the
// most frequent one; ties break in favor of the year encountered first. The
// boolean is false when no neighbor carries a year.
//
// This is a local-majority inference, kept pure so its one real risk, a
// window straddling a genuine year boundary, can be tested in isolation.
func NearestYear(dates []string, pos, radius int) (int, bool) {
	lo := pos - radius
	if lo < 0 {
		lo = 0
	}
	hi := pos + radius
	if hi > len(dates)-1 {
		hi = len(dates) - 1
	}

	counts := map[int]int{}
	var order []int
	for i := lo; i <= hi; i++ {
		if i == pos {
			continue
		}
		m := yearRe.FindStringSubmatch(strings.TrimSpace(dates[i]))
		if m == nil {
			continue
		}
		y := atoi4(m[1])
		if counts[y] == 0 {
			order = append(order, y)
		}
		counts[y]++
	}
	best, bestN := 0, 0
	for _, y := range order {
		if counts[y] > bestN {
			best, bestN = y, counts[y]
		}
	}
	return best, bestN > 0
}

// dateLayouts are the candidate formats tried, in order, when a repaired
// Date needs to be parsed. Day-first forms come first because the collector
// writes "5 October 2020".
var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// ParseDate parses s with the first matching candidate layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WeekRangeOf renders the Monday-start, Sunday-end calendar week containing
// dateStr: "5 - 11 Oct, 2020" when both boundaries share a month, otherwise
// "28 Sep - 04 Oct, 2020". It returns "" when no candidate layout parses.
func WeekRangeOf(dateStr string) string {
	t, ok := ParseDate(dateStr)
	if !ok {
		return ""
	}
	start, end := WeekBounds(t)
	if start.Month() == end.Month() {
		return fmt.Sprintf("%d - %d %s", start.Day(), end.Day(), end.Format("Jan, 2006"))
	}
	return fmt.Sprintf("%s - %s", start.Format("02 Jan"), end.Format("02 Jan, 2006"))
}

// WeekBounds returns the Monday and Sunday of the calendar week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	sinceMonday := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -sinceMonday)
	return start, start.AddDate(0, 0, 6)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// atoi4 converts an already-validated 4-digit string.
func atoi4(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

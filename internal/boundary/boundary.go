// Package boundary fixes the recurring December mislabeling defect: when a
// calendar week crosses from December into January, the collector stamps the
// December days with the post-boundary year. The row's own WeekRange is the
// ground truth: a range whose end year exceeds its start year identifies a
// cross-year week, and any December date inside it carrying the end year is
// rewritten to the start year.
package boundary

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/repair"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"
)

// rangeYearRe captures the trailing ", YYYY" of one side of a WeekRange.
var rangeYearRe = regexp.MustCompile(`,\s*(\d{4})$`)

// Correction records one rewritten Date for auditing.
type Correction struct {
	Index     int
	Currency  string
	Event     string
	WeekRange string
	Before    string
	After     string
	Year      int // the corrected (start) year
}

// Corrector rewrites mislabeled December dates in place. It keeps a sample
// of corrections per corrected year for the audit log.
type Corrector struct {
	// SampleLimit caps the logged examples per corrected year. Zero means
	// the default of 5.
	SampleLimit int

	// Report, when set, receives every correction (not just the samples).
	Report func(Correction)

	total   int
	byYear  map[int]int
	samples map[int][]Correction
}

// Apply scans in and corrects every qualifying row, returning in and the
// number of corrections. Rows without a parseable cross-year WeekRange, or
// whose Date is not a December date stamped with the range's end year, are
// left untouched.
func (c *Corrector) Apply(in []records.Record) ([]records.Record, int) {
	limit := c.SampleLimit
	if limit <= 0 {
		limit = 5
	}
	if c.byYear == nil {
		c.byYear = map[int]int{}
		c.samples = map[int][]Correction{}
	}

	n := 0
	for i, r := range in {
		startYear, endYear, ok := rangeYears(r.Get("WeekRange"))
		if !ok || endYear <= startYear {
			continue
		}
		date, ok := repair.ParseDate(r.Get("Date"))
		if !ok {
			continue
		}
		// Only the specific defect: a December day stamped with the
		// post-boundary year.
		if date.Month() != 12 || date.Year() != endYear {
			continue
		}

		before := r.Get("Date")
		corrected := date.AddDate(startYear-date.Year(), 0, 0)
		after := corrected.Format("02 January 2006")
		r.Set("Date", after)
		n++

		cor := Correction{
			Index:     i,
			Currency:  r.Get("Currency"),
			Event:     truncate(r.Get("Event"), 50),
			WeekRange: r.Get("WeekRange"),
			Before:    before,
			After:     after,
			Year:      startYear,
		}
		c.total++
		c.byYear[startYear]++
		if len(c.samples[startYear]) < limit {
			c.samples[startYear] = append(c.samples[startYear], cor)
		}
		if c.Report != nil {
			c.Report(cor)
		}
	}
	return in, n
}

// LogSummary prints the corrections grouped by corrected year, capped at
// the configured sample count per year. It logs nothing when no row was
// corrected.
func (c *Corrector) LogSummary() {
	if c.total == 0 {
		return
	}
	years := make([]int, 0, len(c.byYear))
	for y := range c.byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	log.Printf("boundary: %d December date(s) corrected across %d year(s)", c.total, len(years))
	for _, y := range years {
		log.Printf("boundary: year %d: %d correction(s), showing %d", y, c.byYear[y], len(c.samples[y]))
		for _, s := range c.samples[y] {
			log.Printf("boundary:   row=%d %s - %s | week=%q before=%q after=%q",
				s.Index, s.Currency, s.Event, s.WeekRange, s.Before, s.After)
		}
	}
}

// rangeYears extracts the explicit 4-digit years from both sides of a
// "start - end" WeekRange. ok is false when either side lacks one.
func rangeYears(weekRange string) (start, end int, ok bool) {
	weekRange = strings.TrimSpace(weekRange)
	if weekRange == "" || !strings.Contains(weekRange, " - ") {
		return 0, 0, false
	}
	parts := strings.SplitN(weekRange, " - ", 2)
	sm := rangeYearRe.FindStringSubmatch(strings.TrimSpace(parts[0]))
	em := rangeYearRe.FindStringSubmatch(strings.TrimSpace(parts[1]))
	if sm == nil || em == nil {
		return 0, 0, false
	}
	start, _ = strconv.Atoi(sm[1])
	end, _ = strconv.Atoi(em[1])
	return start, end, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}

package repair

import (
	"fmt"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/schema"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"
)

// Issue kinds reported by the engine.
const (
	KindBrokenDate       = "broken_date"
	KindMissingWeekRange = "missing_weekrange"
	KindSparseRow        = "sparse_row"
)

// Issue describes one defect found in a batch. Before/After are empty for
// the diagnostic-only sparse_row kind.
type Issue struct {
	Index  int    // row position within the batch
	Kind   string // one of the Kind constants
	Field  string
	Before string
	After  string
}

// Stats aggregates one Apply pass.
type Stats struct {
	DatesRepaired      int
	WeekRangesRepaired int
	SparseRows         int
}

// Engine repairs broken dates and missing WeekRanges in place. Applying it
// to an already-repaired batch finds nothing, so repeated passes are
// idempotent.
type Engine struct {
	// Window is the neighbor-search radius for year imputation (rows on
	// each side). Zero means the default of 20.
	Window int

	// FallbackYear is used when no neighboring row carries a year. Zero
	// means the default of 2024.
	FallbackYear int

	// SparseThreshold flags rows with more than this many empty fields for
	// diagnostic reporting only; no repair is triggered. Zero means the
	// default of 3.
	SparseThreshold int

	// Report, when set, receives every issue found, including the repairs
	// applied. The engine never drops a row.
	Report func(Issue)
}

// Apply repairs in and returns it together with the pass statistics. Only
// the Date and WeekRange fields are ever mutated.
func (e *Engine) Apply(in []records.Record) ([]records.Record, Stats) {
	window := e.Window
	if window <= 0 {
		window = 20
	}
	fallback := e.FallbackYear
	if fallback <= 0 {
		fallback = 2024
	}
	threshold := e.SparseThreshold
	if threshold <= 0 {
		threshold = 3
	}
	cols := schema.Calendar().Columns()

	var st Stats

	// Snapshot of the Date column for windowed year lookup. Neighbor years
	// are read from the original values, so a repair cannot feed the next
	// row's imputation within the same pass.
	dates := make([]string, len(in))
	for i, r := range in {
		dates[i] = r.Get("Date")
	}

	for i, r := range in {
		if before := r.Get("Date"); IsBrokenDate(before) {
			if after, ok := e.fixDate(dates, i, window, fallback); ok {
				r.Set("Date", after)
				st.DatesRepaired++
				e.report(Issue{Index: i, Kind: KindBrokenDate, Field: "Date", Before: before, After: after})
			}
		}

		if r.Get("WeekRange") == "" {
			if wr := WeekRangeOf(r.Get("Date")); wr != "" {
				r.Set("WeekRange", wr)
				st.WeekRangesRepaired++
				e.report(Issue{Index: i, Kind: KindMissingWeekRange, Field: "WeekRange", After: wr})
			}
		}

		if n := r.MissingCount(cols); n > threshold {
			st.SparseRows++
			e.report(Issue{Index: i, Kind: KindSparseRow})
		}
	}
	return in, st
}

// fixDate reconstructs "day Month year" for the broken date at pos. It fails
// only when no day/month pair can be extracted; a missing neighbor year
// falls back to the configured default.
func (e *Engine) fixDate(dates []string, pos, window, fallback int) (string, bool) {
	monthDay, ok := ExtractMonthDay(dates[pos])
	if !ok {
		return "", false
	}
	year, ok := NearestYear(dates, pos, window)
	if !ok {
		year = fallback
	}
	return fmt.Sprintf("%s %d", monthDay, year), true
}

func (e *Engine) report(is Issue) {
	if e.Report != nil {
		e.Report(is)
	}
}

package repair

import (
	"testing"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"
)

func TestIsBrokenDate(t *testing.T) {
	tests := []struct {
		in     string
		broken bool
	}{
		{"", true},
		{"   ", true},
		{"5 January", true},
		{"January 5", true},
		{"5 January, Monday", true},
		{"Monday, 5 January", true},
		{"5 January 2021", false},
		{"05 January 2021", false},
		{"2021-01-05", false},
		{"31 December 2020", false},
		{"All Day", true}, // no year token
	}
	for _, tt := range tests {
		if got := IsBrokenDate(tt.in); got != tt.broken {
			t.Errorf("IsBrokenDate(%q) = %v, want %v", tt.in, got, tt.broken)
		}
	}
}

func TestExtractMonthDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5 January", "5 January", true},
		{"Monday, 5 January", "5 January", true},
		{"5 january, Monday", "5 January", true},
		{"January 5", "5 January", true},
		{"JANUARY 5", "5 January", true},
		{"??", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractMonthDay(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractMonthDay(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNearestYear(t *testing.T) {
	tests := []struct {
		name   string
		dates  []string
		pos    int
		radius int
		want   int
		ok     bool
	}{
		{
			name:   "majority wins",
			dates:  []string{"5 January", "5 January 2021", "6 January 2021", "7 January 2020"},
			pos:    0,
			radius: 20,
			want:   2021,
			ok:     true,
		},
		{
			name:   "tie breaks to first encountered",
			dates:  []string{"1 June 2020", "5 January", "1 June 2021"},
			pos:    1,
			radius: 20,
			want:   2020,
			ok:     true,
		},
		{
			name:   "window bounds respected",
			dates:  []string{"1 June 2019", "x", "5 January", "x", "1 June 2022"},
			pos:    2,
			radius: 1,
			want:   0,
			ok:     false,
		},
		{
			name:   "no neighbor years",
			dates:  []string{"5 January", "6 January"},
			pos:    0,
			radius: 20,
			want:   0,
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NearestYear(tt.dates, tt.pos, tt.radius)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("NearestYear = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWeekRangeOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// 5 Oct 2020 is a Monday; the 7th sits mid-week, same month.
		{"7 October 2020", "5 - 11 Oct, 2020"},
		// 1 Oct 2020 belongs to the week of Mon 28 Sep - Sun 4 Oct.
		{"1 October 2020", "28 Sep - 04 Oct, 2020"},
		// Year boundary week: 31 Dec 2020 is a Thursday.
		{"31 December 2020", "28 Dec - 03 Jan, 2021"},
		{"2020-10-07", "5 - 11 Oct, 2020"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := WeekRangeOf(tt.in); got != tt.want {
			t.Errorf("WeekRangeOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func row(date, weekRange string) records.Record {
	return records.Record{
		"Date": date, "Time": "08:30", "Currency": "USD", "Event": "CPI m/m",
		"Impact": "high", "Actual": "0.2%", "Forecast": "0.3%", "Previous": "0.1%",
		"IsHoliday": "False", "WeekRange": weekRange,
	}
}

func TestEngineRepairsBrokenDateFromNeighbors(t *testing.T) {
	in := []records.Record{
		row("5 January", "4 - 10 Jan, 2021"),
		row("5 January 2021", "4 - 10 Jan, 2021"),
		row("6 January 2021", "4 - 10 Jan, 2021"),
	}
	e := &Engine{}
	out, st := e.Apply(in)
	if got := out[0].Get("Date"); got != "5 January 2021" {
		t.Fatalf("Date = %q, want %q", got, "5 January 2021")
	}
	if st.DatesRepaired != 1 {
		t.Fatalf("DatesRepaired = %d, want 1", st.DatesRepaired)
	}
}

func TestEngineFallbackYear(t *testing.T) {
	in := []records.Record{row("5 January", "")}
	e := &Engine{FallbackYear: 2019}
	out, _ := e.Apply(in)
	if got := out[0].Get("Date"); got != "5 January 2019" {
		t.Fatalf("Date = %q, want fallback year applied", got)
	}
	if got := out[0].Get("WeekRange"); got == "" {
		t.Fatal("WeekRange not synthesized from repaired date")
	}
}

func TestEngineFillsMissingWeekRange(t *testing.T) {
	in := []records.Record{row("7 October 2020", "")}
	e := &Engine{}
	out, st := e.Apply(in)
	if got := out[0].Get("WeekRange"); got != "5 - 11 Oct, 2020" {
		t.Fatalf("WeekRange = %q", got)
	}
	if st.WeekRangesRepaired != 1 {
		t.Fatalf("WeekRangesRepaired = %d, want 1", st.WeekRangesRepaired)
	}
}

func TestEngineUnparseableDateLeavesWeekRangeEmpty(t *testing.T) {
	in := []records.Record{row("??", "")}
	e := &Engine{}
	out, st := e.Apply(in)
	if got := out[0].Get("WeekRange"); got != "" {
		t.Fatalf("WeekRange = %q, want empty", got)
	}
	if st.DatesRepaired != 0 {
		t.Fatalf("DatesRepaired = %d, want 0", st.DatesRepaired)
	}
}

func TestEngineSparseRowDiagnosticOnly(t *testing.T) {
	sparse := records.Record{"Date": "5 January 2021", "Event": "Bank Holiday"}
	var issues []Issue
	e := &Engine{Report: func(is Issue) { issues = append(issues, is) }}
	out, st := e.Apply([]records.Record{sparse})
	if st.SparseRows != 1 {
		t.Fatalf("SparseRows = %d, want 1", st.SparseRows)
	}
	// Diagnostic only: the row is reported, never mutated beyond repairs.
	if len(out) != 1 {
		t.Fatal("sparse row must not be dropped")
	}
	found := false
	for _, is := range issues {
		if is.Kind == KindSparseRow {
			found = true
		}
	}
	if !found {
		t.Fatal("sparse_row issue not reported")
	}
}

func TestEngineIdempotent(t *testing.T) {
	in := []records.Record{
		row("5 January", ""),
		row("5 January 2021", "4 - 10 Jan, 2021"),
		row("6 January 2021", ""),
	}
	e := &Engine{}
	out, _ := e.Apply(in)

	snapshot := make([]records.Record, len(out))
	for i, r := range out {
		snapshot[i] = r.Clone()
	}

	out2, st2 := e.Apply(out)
	if st2.DatesRepaired != 0 || st2.WeekRangesRepaired != 0 {
		t.Fatalf("second pass repaired something: %+v", st2)
	}
	for i := range out2 {
		if !records.Equal(out2[i], snapshot[i], []string{"Date", "WeekRange"}) {
			t.Fatalf("row %d changed on second pass", i)
		}
	}
}

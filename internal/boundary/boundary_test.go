package boundary

import (
	"testing"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"
)

func row(date, weekRange string) records.Record {
	return records.Record{
		"Date": date, "Time": "09:00", "Currency": "EUR", "Event": "German Prelim CPI m/m",
		"Impact": "high", "Actual": "N/A", "Forecast": "0.5%", "Previous": "0.4%",
		"IsHoliday": "False", "WeekRange": weekRange,
	}
}

func TestCorrectsDecemberStampedWithEndYear(t *testing.T) {
	in := []records.Record{row("31 December 2021", "27 Dec, 2020 - 2 Jan, 2021")}
	c := &Corrector{}
	out, n := c.Apply(in)
	if n != 1 {
		t.Fatalf("corrections = %d, want 1", n)
	}
	if got := out[0].Get("Date"); got != "31 December 2020" {
		t.Fatalf("Date = %q, want %q", got, "31 December 2020")
	}
}

func TestLeavesDecemberWithStartYearAlone(t *testing.T) {
	// Month matches (December) but the year already equals the range's
	// start year, so the row must not change.
	in := []records.Record{row("15 December 2020", "27 Dec, 2020 - 2 Jan, 2021")}
	c := &Corrector{}
	out, n := c.Apply(in)
	if n != 0 {
		t.Fatalf("corrections = %d, want 0", n)
	}
	if got := out[0].Get("Date"); got != "15 December 2020" {
		t.Fatalf("Date changed to %q", got)
	}
}

func TestLeavesNonDecemberAlone(t *testing.T) {
	in := []records.Record{row("2 January 2021", "27 Dec, 2020 - 2 Jan, 2021")}
	c := &Corrector{}
	_, n := c.Apply(in)
	if n != 0 {
		t.Fatalf("corrections = %d, want 0", n)
	}
}

func TestSkipsRangesWithoutExplicitYears(t *testing.T) {
	tests := []string{
		"",
		"5 - 11 Oct, 2020",           // start side has no year
		"28 Dec - 03 Jan, 2021",      // synthesized form, start side has no year
		"27 Dec, 2020 - 2 Jan, 2020", // end year does not exceed start year
		"no separator here",
	}
	for _, wr := range tests {
		in := []records.Record{row("31 December 2021", wr)}
		c := &Corrector{}
		out, n := c.Apply(in)
		if n != 0 {
			t.Errorf("weekRange %q: corrections = %d, want 0", wr, n)
		}
		if got := out[0].Get("Date"); got != "31 December 2021" {
			t.Errorf("weekRange %q: Date changed to %q", wr, got)
		}
	}
}

func TestSkipsUnparseableDates(t *testing.T) {
	in := []records.Record{row("garbage", "27 Dec, 2020 - 2 Jan, 2021")}
	c := &Corrector{}
	_, n := c.Apply(in)
	if n != 0 {
		t.Fatalf("corrections = %d, want 0", n)
	}
}

func TestSampleCapAndReport(t *testing.T) {
	var in []records.Record
	for i := 0; i < 8; i++ {
		in = append(in, row("31 December 2021", "27 Dec, 2020 - 2 Jan, 2021"))
	}
	var reported int
	c := &Corrector{SampleLimit: 3, Report: func(Correction) { reported++ }}
	_, n := c.Apply(in)
	if n != 8 {
		t.Fatalf("corrections = %d, want 8", n)
	}
	if reported != 8 {
		t.Fatalf("reported = %d, want all corrections reported", reported)
	}
	if got := len(c.samples[2020]); got != 3 {
		t.Fatalf("samples kept = %d, want cap of 3", got)
	}
	if c.byYear[2020] != 8 {
		t.Fatalf("byYear[2020] = %d, want 8", c.byYear[2020])
	}
}

package schema

import (
	"reflect"
	"testing"
)

func TestCalendarColumns(t *testing.T) {
	want := []string{
		"Date", "Time", "Currency", "Event", "Impact",
		"Actual", "Forecast", "Previous", "IsHoliday", "WeekRange",
	}
	got := Calendar().Columns()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}
}

func TestAlign(t *testing.T) {
	c := Calendar()
	canonical := c.Columns()

	tests := []struct {
		name    string
		header  []string
		matched bool
	}{
		{"exact", canonical, true},
		{"short", canonical[:7], false},
		{"long", append(append([]string{}, canonical...), "Extra"), false},
		{"renamed", []string{"date", "time", "ccy", "event", "impact", "act", "fcst", "prev", "holiday", "week"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := c.Align(tt.header)
			if !reflect.DeepEqual(got, canonical) {
				t.Fatalf("Align(%v) = %v, want canonical columns", tt.header, got)
			}
			if matched != tt.matched {
				t.Fatalf("Align(%v) matched = %v, want %v", tt.header, matched, tt.matched)
			}
		})
	}
}

package builtin

import "github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"

// Sentinel fills empty values of the configured fields with a fixed marker.
// The collector writes "N/A" for absent Actual/Forecast/Previous values, but
// structurally repaired rows can arrive with bare empty cells; filling them
// keeps one spelling of "absent" so full-row dedup is not defeated by the
// two forms.
type Sentinel struct {
	Fields []string
	Value  string
}

// NAFigures is the standard sentinel for the three numeric figure columns.
func NAFigures() Sentinel {
	return Sentinel{Fields: []string{"Actual", "Forecast", "Previous"}, Value: "N/A"}
}

func (s Sentinel) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, f := range s.Fields {
			if r.Get(f) == "" {
				r.Set(f, s.Value)
			}
		}
	}
	return in
}

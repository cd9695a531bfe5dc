// Package schema defines the canonical economic-calendar row contract that
// every other stage validates against. The column set and order are fixed;
// upstream collectors are known to drop or split columns, so the contract
// also provides the header-alignment rules applied right after structural
// repair.
package schema

// Field describes one column of the calendar contract.
type Field struct {
	Name     string   `json:"name" yaml:"name"`
	Type     string   `json:"type" yaml:"type"` // "date" | "time" | "text" | "bool" | "enum" | "range"
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Enum     []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Layout   string   `json:"layout,omitempty" yaml:"layout,omitempty"` // date layout hint
}

// Contract is an ordered set of fields forming a row schema.
type Contract struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Calendar returns the canonical 10-column calendar contract. Date and
// WeekRange are textual on purpose: both arrive with known defects and are
// repaired as text before any consumer parses them.
func Calendar() Contract {
	return Contract{
		Name: "calendar",
		Fields: []Field{
			{Name: "Date", Type: "date", Required: true, Layout: "2 January 2006"},
			{Name: "Time", Type: "time"}, // "HH:MM" or "All Day"
			{Name: "Currency", Type: "text"},
			{Name: "Event", Type: "text", Required: true},
			{Name: "Impact", Type: "enum", Enum: []string{"high", "medium", "low", "none", "holiday", "special"}},
			{Name: "Actual", Type: "text"},   // "N/A" when absent
			{Name: "Forecast", Type: "text"}, // "N/A" when absent
			{Name: "Previous", Type: "text"}, // "N/A" when absent
			{Name: "IsHoliday", Type: "bool"},
			{Name: "WeekRange", Type: "range"},
		},
	}
}

// Columns returns the contract's column names in canonical order.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Align reconciles a parsed header against the contract and returns the
// column names to use, always exactly len(c.Fields) long:
//
//   - a short header is padded with the canonical names of the missing
//     trailing columns;
//   - a long header has its surplus *names* dropped (the data in surplus
//     cells was already folded into the last column by structural repair);
//   - every kept position is renamed to its canonical name, since collector
//     headers drift in spelling and casing.
//
// The boolean reports whether the header already matched canonically.
func (c Contract) Align(header []string) ([]string, bool) {
	cols := c.Columns()
	matched := len(header) == len(cols)
	if matched {
		for i, h := range header {
			if h != cols[i] {
				matched = false
				break
			}
		}
	}
	return cols, matched
}

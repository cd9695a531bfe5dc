// Package records defines the row representation shared by every pipeline
// stage. A Record is a flat map of column name to string value; the calendar
// schema fixes which columns exist and their order. Values are kept as raw
// strings end-to-end because the output contract is a delimited text file and
// repair stages operate on textual fields.
package records

import (
	"strings"

	"github.com/zeebo/xxh3"
)

// Record maps a column name to its textual value. Absent columns are treated
// as empty strings by Get, so a fully-aligned record and a sparse one compare
// identically field by field.
type Record map[string]string

// Get returns the value for col, or "" when the column is absent.
func (r Record) Get(col string) string { return r[col] }

// Set stores v under col.
func (r Record) Set(col, v string) { r[col] = v }

// Clone returns an independent shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Key joins the values of cols, in order, with an unlikely separator byte.
// Two records with equal values across cols produce equal keys.
func (r Record) Key(cols []string) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(r[c])
	}
	return b.String()
}

// Hash returns a 128-bit xxh3 digest of the record's Key over cols. It is the
// set-membership key used for duplicate detection: hashing keeps the seen-set
// at a fixed 16 bytes per row instead of retaining every joined key string.
func (r Record) Hash(cols []string) xxh3.Uint128 {
	return xxh3.HashString128(r.Key(cols))
}

// Equal reports whether a and b agree on every column in cols. Columns outside
// cols are ignored.
func Equal(a, b Record, cols []string) bool {
	for _, c := range cols {
		if a[c] != b[c] {
			return false
		}
	}
	return true
}

// MissingCount returns how many of cols are empty or absent in r.
func (r Record) MissingCount(cols []string) int {
	n := 0
	for _, c := range cols {
		if strings.TrimSpace(r[c]) == "" {
			n++
		}
	}
	return n
}

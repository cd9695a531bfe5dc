package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/schema"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"
)

// IdentityKey is the business uniqueness key of a calendar row.
var IdentityKey = []string{"Date", "Time", "Currency", "Event"}

// DeDup collapses duplicate records by a configured key and keeps a winner
// per key:
//
//   - "keep-first": keep the earliest occurrence in the batch (default)
//   - "keep-last":  keep the latest occurrence in the batch
//
// Keys defaults to the full column set, i.e. full-row equality: rows that
// differ only in a repaired field are NOT recognized as duplicates. Passing
// the identity key (Date, Time, Currency, Event) gives the stricter
// business-key semantics.
//
// Membership is tracked by 128-bit xxh3 digests of the joined key fields,
// so the seen-set stays at 16 bytes per distinct row.
type DeDup struct {
	// Keys are the column names forming the dedup key. Empty means all
	// calendar columns (full-row equality).
	Keys []string

	// Policy selects the winner among duplicates: "keep-first" (default)
	// or "keep-last".
	Policy string
}

// Apply returns a new slice containing only the winning record per key, in
// input order of the winning occurrences.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 {
		return in
	}
	keys := d.Keys
	if len(keys) == 0 {
		keys = schema.Calendar().Columns()
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-first"
	}

	type slot struct {
		rec   records.Record
		index int
	}
	winners := make(map[xxh3.Uint128]slot, len(in))
	order := make([]xxh3.Uint128, 0, len(in))

	for i, r := range in {
		key := r.Hash(keys)
		prev, exists := winners[key]
		switch {
		case !exists:
			winners[key] = slot{rec: r, index: i}
			order = append(order, key)
		case policy == "keep-last":
			// Winner keeps the first occurrence's position; only the
			// record payload is replaced.
			winners[key] = slot{rec: r, index: prev.index}
		}
	}

	out := make([]records.Record, 0, len(winners))
	for _, key := range order {
		out = append(out, winners[key].rec)
	}
	return out
}

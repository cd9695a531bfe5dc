// Package builtin contains the reusable transformers of the merge pipeline.
package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"
)

// scrubber folds every value to NFC and removes Unicode format runes (zero
// width spaces and friends) that scraped free text tends to carry.
var scrubber = transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cf)))

// Normalize cleans every field value in place: NFC normalization, format
// rune removal, non-breaking spaces to plain spaces, and whitespace trim.
// It runs before any repair stage so that the date/weekrange regexes see
// plain ASCII spacing.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			r[k] = Clean(v)
		}
	}
	return in
}

// Clean normalizes a single value. Transform errors are impossible for the
// configured chain, but the raw value is kept on any failure regardless.
func Clean(s string) string {
	if out, _, err := transform.String(scrubber, s); err == nil {
		s = out
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}

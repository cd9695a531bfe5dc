// Package transformer defines the batch transformation contract used by the
// merge pipeline. Stages are composed into an ordered Chain so each one can
// be configured and tested in isolation.
package transformer

import "github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate
// records in place and may shrink the slice, but never grow it.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers applied left to right.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Package csvfix repairs delimited files whose rows carry the wrong field
// count before any typed parsing happens. Upstream collectors are known to
// drop trailing columns (usually WeekRange) and to emit rows with an
// unescaped delimiter inside the last free-text field; both defects are
// fixed line by line using raw delimiter counts.
//
// This is a best-effort heuristic, not a guaranteed repair: a quoted field
// containing the delimiter inflates the raw count and can produce a wrong
// field boundary. Later stages must tolerate such rows.
package csvfix

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Stats counts the structural repairs applied to one input.
type Stats struct {
	HeaderPadded bool // header had fewer fields than expected
	ShortFixed   int  // data lines padded with empty trailing fields
	LongFixed    int  // data lines whose surplus fields were re-merged
	FellBack     bool // repaired text failed to re-parse; original was used
}

// Result holds the re-parsed rows of a structurally repaired input. Rows
// includes the header as the first element; every row has exactly the
// expected field count unless FellBack is set.
type Result struct {
	Rows  [][]string
	Stats Stats
}

// RepairLines rewrites lines so that each one splits into exactly k fields
// on delim, using raw delimiter counts (quoting is deliberately ignored, as
// the producer never quotes):
//
//   - the header (first line) is padded when short, never truncated;
//   - short data lines are padded with empty trailing fields;
//   - long data lines keep their first k-1 fields and re-join the rest,
//     with the delimiter, into the final field;
//   - exact lines pass through unchanged.
//
// Empty lines are dropped. The returned stats count the per-class fixes.
func RepairLines(lines []string, k int, delim rune) ([]string, Stats) {
	var st Stats
	sep := string(delim)
	out := make([]string, 0, len(lines))

	first := true
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := strings.Count(line, sep) + 1

		if first {
			first = false
			if n < k {
				line += strings.Repeat(sep, k-n)
				st.HeaderPadded = true
			}
			out = append(out, line)
			continue
		}

		switch {
		case n < k:
			line += strings.Repeat(sep, k-n)
			st.ShortFixed++
		case n > k:
			parts := strings.Split(line, sep)
			head := parts[:k-1]
			merged := strings.Join(parts[k-1:], sep)
			// Quote the merged field so the re-parse sees one field, not the
			// same surplus split again.
			merged = `"` + strings.ReplaceAll(merged, `"`, `""`) + `"`
			line = strings.Join(append(head, merged), sep)
			st.LongFixed++
		}
		out = append(out, line)
	}
	return out, st
}

// ReadRepaired reads all lines from r, applies RepairLines, and re-parses
// the result with encoding/csv. If the repaired text still fails to parse,
// it falls back to parsing the original unmodified input and surfaces
// whatever parser error results, so no data is silently lost.
func ReadRepaired(r io.Reader, k int, delim rune) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	lines, err := splitLines(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	fixed, st := RepairLines(lines, k, delim)

	rows, err := parseAll(strings.NewReader(strings.Join(fixed, "\n")), delim)
	if err != nil {
		// Repair made things worse; surface the original input's outcome.
		st.FellBack = true
		rows, err = parseAll(bytes.NewReader(raw), delim)
		if err != nil {
			return nil, fmt.Errorf("parse original input: %w", err)
		}
	}
	return &Result{Rows: rows, Stats: st}, nil
}

// splitLines reads physical lines. Scanner's default 64K token limit is
// raised because Event descriptions can be long.
func splitLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// parseAll runs the standard CSV reader in the project's lenient mode:
// lazy quotes and variable field counts, mirroring how the rest of the
// pipeline consumes collector output.
func parseAll(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

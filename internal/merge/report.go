package merge

import (
	"log"
	"sync"
)

// BatchReport describes the outcome of one batch file.
type BatchReport struct {
	Path    string
	Loaded  int    // rows after structural repair and alignment
	New     int    // rows the batch contributed to the dataset
	Skipped bool   // true when the batch failed to load and was passed over
	Err     string // load error for skipped batches
}

// Summary is the end-of-run report. BrokenDates and MissingWeekRanges count
// rows still defective after all passes and are expected to be at or near
// zero for a correct run.
type Summary struct {
	RunID      string
	OutputFile string
	TotalRows  int

	BrokenDates       int
	MissingWeekRanges int

	DatesRepaired       int
	WeekRangesRepaired  int
	SparseRows          int
	BoundaryCorrections int
	BaseDuplicates      int
	ShortFixed          int
	LongFixed           int

	Batches []BatchReport
}

// Log writes the summary as prefixed log lines.
func (s *Summary) Log() {
	log.Printf("run %s: merged %d row(s) into %s", s.RunID, s.TotalRows, s.OutputFile)
	log.Printf("run %s: repaired dates=%d weekranges=%d, boundary corrections=%d, base duplicates removed=%d",
		s.RunID, s.DatesRepaired, s.WeekRangesRepaired, s.BoundaryCorrections, s.BaseDuplicates)
	log.Printf("run %s: structural fixes short=%d long=%d, sparse rows flagged=%d",
		s.RunID, s.ShortFixed, s.LongFixed, s.SparseRows)
	log.Printf("run %s: remaining broken dates=%d, remaining empty weekranges=%d",
		s.RunID, s.BrokenDates, s.MissingWeekRanges)
	for _, b := range s.Batches {
		switch {
		case b.Skipped:
			log.Printf("run %s: batch %s: skipped: %s", s.RunID, b.Path, b.Err)
		case b.New == 0:
			log.Printf("run %s: batch %s: no new rows (%d loaded)", s.RunID, b.Path, b.Loaded)
		default:
			log.Printf("run %s: batch %s: %d new row(s) merged (%d loaded)", s.RunID, b.Path, b.New, b.Loaded)
		}
	}
}

// issueAgg aggregates repair issue messages, keeping only the first N for
// logging while counting everything per message bucket.
type issueAgg struct {
	mu      sync.Mutex
	limit   int
	count   int
	first   []string
	buckets map[string]int
}

func newIssueAgg(limit int) *issueAgg {
	return &issueAgg{limit: limit, buckets: make(map[string]int)}
}

func (a *issueAgg) add(msg string) {
	a.mu.Lock()
	a.buckets[msg]++
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}

// logSummary prints the first sampled messages and the total count under the
// given label. Nothing is printed when no issue was recorded.
func (a *issueAgg) logSummary(label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return
	}
	log.Printf("%s: %d issue(s) across %d kind(s), showing first %d", label, a.count, len(a.buckets), len(a.first))
	for _, msg := range a.first {
		log.Printf("%s:   %s", label, msg)
	}
}

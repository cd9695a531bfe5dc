// Package merge orchestrates the full repair-and-merge run: one base batch
// and any number of incremental batches are loaded, structurally repaired,
// aligned, value-repaired, and unioned into a single deduplicated dataset,
// which then receives the boundary-year correction and a final repair pass
// before being written out.
package merge

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/boundary"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/config"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/csvfix"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/datasource/file"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/metrics"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/repair"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/schema"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/transformer"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/transformer/builtin"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/pkg/records"
)

// illegalNameChars are stripped from computed output file names.
var illegalNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Engine runs one merge. Construct with New; an Engine is single-use.
type Engine struct {
	cfg    *config.Config
	runID  string
	issues *issueAgg
}

// New returns an Engine for one run. Every run gets a fresh UUID used to
// correlate its log lines and metrics.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:    cfg,
		runID:  uuid.NewString(),
		issues: newIssueAgg(10),
	}
}

// RunID returns the run's correlation ID.
func (e *Engine) RunID() string { return e.runID }

// Run executes the merge synchronously, one batch at a time. The base batch
// failing to load is fatal; a failing incremental batch is reported in the
// summary and skipped. The context is checked between batches.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: e.runID}

	basePath, err := e.findBase()
	if err != nil {
		return nil, err
	}
	log.Printf("run %s: base batch %s", e.runID, basePath)

	start := time.Now()
	base, err := e.loadBatch(ctx, basePath, sum)
	metrics.RecordStep(e.runID, "load_base", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("base batch %s: %w", basePath, err)
	}

	// Intra-batch dedup of the base, full-row equality, first occurrence wins.
	start = time.Now()
	dataset := builtin.DeDup{}.Apply(base)
	metrics.RecordStep(e.runID, "dedup", nil, time.Since(start))
	sum.BaseDuplicates = len(base) - len(dataset)
	metrics.RecordRow(e.runID, "duplicates_dropped", int64(sum.BaseDuplicates))
	sum.Batches = append(sum.Batches, BatchReport{Path: basePath, Loaded: len(base), New: len(dataset)})

	cols := schema.Calendar().Columns()
	seen := make(map[xxh3.Uint128]struct{}, len(dataset))
	for _, r := range dataset {
		seen[r.Hash(cols)] = struct{}{}
	}

	incPaths, err := file.BatchFiles(e.cfg.IncrementalDir)
	if err != nil {
		return nil, fmt.Errorf("discover incremental batches: %w", err)
	}
	var firstInc string
	merged := 0
	for _, path := range incPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start = time.Now()
		batch, err := e.loadBatch(ctx, path, sum)
		metrics.RecordStep(e.runID, "load_incremental", err, time.Since(start))
		if err != nil {
			// One bad incremental must not sink the run.
			log.Printf("run %s: batch %s: load failed, skipping: %v", e.runID, path, err)
			sum.Batches = append(sum.Batches, BatchReport{Path: path, Skipped: true, Err: err.Error()})
			continue
		}
		if firstInc == "" {
			firstInc = path
		}

		newRows := 0
		for _, r := range batch {
			h := r.Hash(cols)
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			dataset = append(dataset, r)
			newRows++
		}
		sum.Batches = append(sum.Batches, BatchReport{Path: path, Loaded: len(batch), New: newRows})
		merged++
	}
	metrics.RecordBatches(e.runID, int64(merged))

	start = time.Now()
	corrector := &boundary.Corrector{SampleLimit: e.cfg.SampleLimit}
	dataset, sum.BoundaryCorrections = corrector.Apply(dataset)
	metrics.RecordStep(e.runID, "boundary", nil, time.Since(start))
	metrics.RecordRow(e.runID, "boundary_corrected", int64(sum.BoundaryCorrections))
	corrector.LogSummary()

	// A corrected row may newly qualify for value repair.
	start = time.Now()
	dataset, st := e.repairEngine().Apply(dataset)
	metrics.RecordStep(e.runID, "repair", nil, time.Since(start))
	e.addRepairStats(sum, st)

	for _, r := range dataset {
		if repair.IsBrokenDate(r.Get("Date")) {
			sum.BrokenDates++
		}
		if r.Get("WeekRange") == "" {
			sum.MissingWeekRanges++
		}
	}
	sum.TotalRows = len(dataset)

	start = time.Now()
	out, err := e.writeOutput(basePath, firstInc, dataset)
	metrics.RecordStep(e.runID, "write_output", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	sum.OutputFile = out
	metrics.RecordRow(e.runID, "written", int64(len(dataset)))

	e.issues.logSummary("run " + e.runID + ": repair")
	return sum, nil
}

// findBase locates the base batch: the first *.csv in the base folder. No
// file is a fatal discovery error.
func (e *Engine) findBase() (string, error) {
	files, err := file.ListCSVs(e.cfg.BaseDir)
	if err != nil {
		return "", fmt.Errorf("discover base batch: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no base batch found in %s", e.cfg.BaseDir)
	}
	return files[0], nil
}

// loadBatch runs the per-batch pipeline: structural repair, header
// alignment, record conversion in memory-bounded chunks, field
// normalization, then value repair. Structural and repair counters are
// accumulated into sum.
func (e *Engine) loadBatch(ctx context.Context, path string, sum *Summary) ([]records.Record, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	contract := schema.Calendar()
	res, err := csvfix.ReadRepaired(rc, len(contract.Fields), e.delim())
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	sum.ShortFixed += res.Stats.ShortFixed
	sum.LongFixed += res.Stats.LongFixed

	cols, matched := contract.Align(res.Rows[0])
	if !matched && e.cfg.Verbose {
		log.Printf("run %s: %s: header realigned to canonical columns", e.runID, path)
	}

	batch := e.toRecords(res.Rows[1:], cols)
	batch = transformer.Chain{builtin.Normalize{}, builtin.NAFigures()}.Apply(batch)

	batch, st := e.repairEngine().Apply(batch)
	e.addRepairStats(sum, st)
	metrics.RecordRow(e.runID, "loaded", int64(len(batch)))
	return batch, nil
}

// toRecords converts raw rows to records in fixed-size chunks. Chunking only
// bounds the transient per-chunk allocations; the result is identical to a
// single-pass conversion. Cells beyond the canonical width were already
// folded back by structural repair, so surplus cells here only occur on
// fallback parses and are dropped; missing cells become empty strings.
func (e *Engine) toRecords(rows [][]string, cols []string) []records.Record {
	chunk := e.cfg.ChunkSize
	if chunk <= 0 {
		chunk = 10000
	}
	out := make([]records.Record, 0, len(rows))
	for lo := 0; lo < len(rows); lo += chunk {
		hi := lo + chunk
		if hi > len(rows) {
			hi = len(rows)
		}
		for _, row := range rows[lo:hi] {
			r := make(records.Record, len(cols))
			for i, name := range cols {
				if i < len(row) {
					r[name] = row[i]
				} else {
					r[name] = ""
				}
			}
			out = append(out, r)
		}
	}
	return out
}

// repairEngine builds the configured value-repair engine with issue
// reporting wired into the run's sampled audit log.
func (e *Engine) repairEngine() *repair.Engine {
	return &repair.Engine{
		Window:       e.cfg.YearWindow,
		FallbackYear: e.cfg.FallbackYear,
		Report: func(is repair.Issue) {
			msg := fmt.Sprintf("row %d: %s %s %q -> %q", is.Index, is.Kind, is.Field, is.Before, is.After)
			e.issues.add(msg)
			if e.cfg.Verbose {
				log.Printf("run %s: %s", e.runID, msg)
			}
		},
	}
}

func (e *Engine) addRepairStats(sum *Summary, st repair.Stats) {
	sum.DatesRepaired += st.DatesRepaired
	sum.WeekRangesRepaired += st.WeekRangesRepaired
	sum.SparseRows += st.SparseRows
	metrics.RecordRow(e.runID, "dates_repaired", int64(st.DatesRepaired))
	metrics.RecordRow(e.runID, "weekranges_repaired", int64(st.WeekRangesRepaired))
}

// writeOutput clears the output folder and writes the dataset as one CSV
// with the canonical header, returning the written path.
func (e *Engine) writeOutput(basePath, firstInc string, dataset []records.Record) (string, error) {
	if err := clearFolder(e.cfg.OutputDir); err != nil {
		return "", err
	}

	name := outputName(basePath, firstInc)
	path := filepath.Join(e.cfg.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = e.delim()
	cols := schema.Calendar().Columns()
	if err := w.Write(cols); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(cols))
	for _, r := range dataset {
		for i, name := range cols {
			row[i] = r.Get(name)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush output: %w", err)
	}
	return path, nil
}

// outputName derives the merged file's name: the earliest incremental stem's
// part before "_to_" joined with the base stem's part after it, or the base
// stem alone when no incremental merged. Characters illegal in file names
// are stripped.
func outputName(basePath, firstInc string) string {
	baseStem := stem(basePath)
	name := baseStem
	if firstInc != "" {
		incFirst := strings.Split(stem(firstInc), "_to_")[0]
		baseRest := strings.Join(strings.Split(baseStem, "_to_")[1:], "_to_")
		name = incFirst + "_to_" + baseRest
	}
	return illegalNameChars.ReplaceAllString(name, "") + ".csv"
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// clearFolder creates dir if needed and removes the plain files inside so
// exactly one result remains afterwards. Per-file remove failures are logged
// and skipped; only an unusable directory fails the run.
func clearFolder(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read output folder: %w", err)
	}
	for _, en := range entries {
		if en.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, en.Name())); err != nil {
			log.Printf("clear output: %v", err)
		}
	}
	return nil
}

func (e *Engine) delim() rune {
	if r := []rune(e.cfg.Delimiter); len(r) > 0 {
		return r[0]
	}
	return ','
}

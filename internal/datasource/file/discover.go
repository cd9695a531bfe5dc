package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// batchDirSuffix marks the per-period subfolders holding incremental
// batches, e.g. "January 2021 Batch".
const batchDirSuffix = " Batch"

// ListCSVs returns the *.csv files directly inside dir, sorted by name.
func ListCSVs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// BatchFiles discovers incremental batch files: every *.csv inside the
// "<Month> <Year> Batch" subfolders of root. Folders are ordered
// chronologically by the period parsed from their name ("January 2021"
// before "February 2021" would be wrong lexicographically), with
// unparseable names falling back to name order after the dated ones; files
// keep name order within a folder. A missing root yields no files, since
// zero incremental batches is a valid run.
func BatchFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}

	type folder struct {
		name   string
		period time.Time
		dated  bool
	}
	var folders []folder
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), batchDirSuffix) {
			continue
		}
		f := folder{name: e.Name()}
		label := strings.TrimSuffix(e.Name(), batchDirSuffix)
		if t, err := time.Parse("January 2006", label); err == nil {
			f.period, f.dated = t, true
		}
		folders = append(folders, f)
	}
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if a.dated != b.dated {
			return a.dated
		}
		if a.dated {
			return a.period.Before(b.period)
		}
		return a.name < b.name
	})

	var out []string
	for _, f := range folders {
		files, err := ListCSVs(filepath.Join(root, f.name))
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

// Package config centralizes merge-run configuration. All tunables live
// outside the code and are sourced from command-line flags with
// environment-variable fallbacks (12-factor friendly), optionally seeded
// from a YAML file named by -config. Flags are defined first so that
// `-help` shows all available knobs and their defaults.
//
// Typical usage:
//
//	cfg := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-chunk_size=500"})
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all process configuration derived from flags, environment
// variables, and an optional YAML file. All fields are plain values so the
// struct can be safely copied after construction.
type Config struct {
	// IO controls where batches are read from and where the merged file goes.
	BaseDir        string `yaml:"base_dir"`        // folder holding the base (main) batch CSV
	IncrementalDir string `yaml:"incremental_dir"` // folder holding "<Month> <Year> Batch" subfolders
	OutputDir      string `yaml:"output_dir"`      // folder receiving the merged CSV
	Delimiter      string `yaml:"delimiter"`       // CSV field delimiter, first rune is used

	// Merge tunables.
	ChunkSize    int `yaml:"chunk_size"`    // rows per load chunk
	YearWindow   int `yaml:"year_window"`   // neighbor radius for year imputation
	FallbackYear int `yaml:"fallback_year"` // year used when no neighbor has one
	SampleLimit  int `yaml:"sample_limit"`  // boundary corrections logged per year

	// Observability.
	MetricsBackend string `yaml:"metrics_backend"` // "none" or "pushgateway"
	PushgatewayURL string `yaml:"pushgateway_url"`
	Verbose        bool   `yaml:"verbose"`
}

// fileValues mirrors Config but with pointer fields so a YAML file can set
// some keys and leave the rest on their built-in defaults.
type fileValues struct {
	BaseDir        *string `yaml:"base_dir"`
	IncrementalDir *string `yaml:"incremental_dir"`
	OutputDir      *string `yaml:"output_dir"`
	Delimiter      *string `yaml:"delimiter"`
	ChunkSize      *int    `yaml:"chunk_size"`
	YearWindow     *int    `yaml:"year_window"`
	FallbackYear   *int    `yaml:"fallback_year"`
	SampleLimit    *int    `yaml:"sample_limit"`
	MetricsBackend *string `yaml:"metrics_backend"`
	PushgatewayURL *string `yaml:"pushgateway_url"`
	Verbose        *bool   `yaml:"verbose"`
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to
// an environment-variable fallback via getenv, and then parsing args. If
// args contain -config=FILE (or -config FILE), that YAML file seeds the
// defaults below the environment.
//
// Precedence, lowest to highest:
//  1. Built-in defaults.
//  2. YAML file values.
//  3. Environment values.
//  4. Explicit CLI flags (in args).
//
// The returned Config is fully populated; no further mutation occurs.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{}

	fv, err := fileValuesFromArgs(args, getenv)
	if err != nil {
		return nil, err
	}

	// Inline helpers layer env over file over the built-in default.
	strDefault := func(envKey string, fileVal *string, d string) string {
		if fileVal != nil {
			d = *fileVal
		}
		if v := getenv(envKey); v != "" {
			return v
		}
		return d
	}
	intDefault := func(envKey string, fileVal *int, d int) int {
		if fileVal != nil {
			d = *fileVal
		}
		if v := getenv(envKey); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolDefault := func(envKey string, fileVal *bool, d bool) bool {
		if fileVal != nil {
			d = *fileVal
		}
		if v := strings.ToLower(getenv(envKey)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	var configPath string
	fs.StringVar(&configPath, "config", "", "Optional YAML config file seeding flag defaults")

	// IO paths
	fs.StringVar(&cfg.BaseDir, "base_dir", strDefault("MAIN_BATCH_FOLDER", fv.BaseDir, "data/main_batch"), "Folder holding the base batch CSV")
	fs.StringVar(&cfg.IncrementalDir, "incremental_dir", strDefault("MONTHLY_BATCH_FOLDER", fv.IncrementalDir, "data/monthly_batch"), "Folder holding the monthly batch subfolders")
	fs.StringVar(&cfg.OutputDir, "output_dir", strDefault("OUTPUT_FOLDER", fv.OutputDir, "data/merged_batch"), "Folder receiving the merged CSV")
	fs.StringVar(&cfg.Delimiter, "delimiter", strDefault("CSV_DELIMITER", fv.Delimiter, ","), "CSV field delimiter")

	// Merge tunables
	fs.IntVar(&cfg.ChunkSize, "chunk_size", intDefault("MERGE_CHUNK_SIZE", fv.ChunkSize, 10000), "Rows per load chunk")
	fs.IntVar(&cfg.YearWindow, "year_window", intDefault("YEAR_WINDOW", fv.YearWindow, 20), "Neighbor radius for year imputation")
	fs.IntVar(&cfg.FallbackYear, "fallback_year", intDefault("FALLBACK_YEAR", fv.FallbackYear, 2024), "Year used when no neighbor has one")
	fs.IntVar(&cfg.SampleLimit, "sample_limit", intDefault("SAMPLE_LIMIT", fv.SampleLimit, 5), "Boundary corrections logged per year")

	// Observability
	fs.StringVar(&cfg.MetricsBackend, "metrics_backend", strDefault("METRICS_BACKEND", fv.MetricsBackend, "none"), "Metrics backend: 'none' or 'pushgateway'")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway_url", strDefault("PUSHGATEWAY_URL", fv.PushgatewayURL, "http://localhost:9091"), "Prometheus Pushgateway base URL")
	fs.BoolVar(&cfg.Verbose, "verbose", boolDefault("VERBOSE", fv.Verbose, false), "Log per-row repair detail")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is the production entry point. It wires the loader to the process
// flag set (flag.CommandLine), reads environment variables via os.Getenv,
// and parses os.Args[1:] as the CLI arguments.
func Load() (*Config, error) {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// fileValuesFromArgs pre-scans args for -config (flags are parsed later, but
// the file has to seed flag defaults, so it must be read first), falling
// back to the CONFIG_FILE environment variable. A missing -config yields
// empty fileValues; a named file that cannot be read or parsed is an error.
func fileValuesFromArgs(args []string, getenv func(string) string) (fileValues, error) {
	path := getenv("CONFIG_FILE")
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			continue
		}
		name := strings.TrimLeft(a, "-")
		if name == "config" {
			if i+1 < len(args) {
				path = args[i+1]
			}
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			path = v
		}
	}
	if path == "" {
		return fileValues{}, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fileValues{}, fmt.Errorf("read config file: %w", err)
	}
	var fv fileValues
	if err := yaml.Unmarshal(b, &fv); err != nil {
		return fileValues{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fv, nil
}

package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path is the flag-style name of the offending field (e.g. "chunk_size").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in issues is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of a Config. It does not mutate the
// config; it returns a slice of Issue values and callers decide whether to
// treat warnings as fatal.
func Validate(c *Config) []Issue {
	var issues []Issue

	for _, p := range []struct{ path, val string }{
		{"base_dir", c.BaseDir},
		{"incremental_dir", c.IncrementalDir},
		{"output_dir", c.OutputDir},
	} {
		if strings.TrimSpace(p.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     p.path,
				Message:  "must not be empty",
			})
		}
	}

	if len([]rune(c.Delimiter)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "delimiter",
			Message:  fmt.Sprintf("must be exactly one character, got %q", c.Delimiter),
		})
	}

	if c.ChunkSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chunk_size",
			Message:  fmt.Sprintf("must be positive, got %d", c.ChunkSize),
		})
	}
	if c.YearWindow <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "year_window",
			Message:  fmt.Sprintf("must be positive, got %d", c.YearWindow),
		})
	}
	if c.FallbackYear < 1970 || c.FallbackYear > 2999 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "fallback_year",
			Message:  fmt.Sprintf("%d is outside the plausible calendar range", c.FallbackYear),
		})
	}
	if c.SampleLimit < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sample_limit",
			Message:  "must not be negative",
		})
	}

	switch c.MetricsBackend {
	case "none", "pushgateway":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics_backend",
			Message:  fmt.Sprintf("unknown backend %q; ensure a matching implementation exists", c.MetricsBackend),
		})
	}
	if c.MetricsBackend == "pushgateway" && strings.TrimSpace(c.PushgatewayURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "pushgateway_url",
			Message:  "pushgateway backend requires a non-empty URL",
		})
	}

	return issues
}

// Command calmerge merges one base calendar batch with any number of
// monthly incremental batches into a single repaired, deduplicated CSV.
// It loads configuration from flags, environment variables, and an
// optional YAML file, optionally initializes a metrics backend, and runs
// the merge once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/config"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/merge"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/metrics"
	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/metrics/prompush"
)

func main() {
	validate := flag.Bool("validate", false, "validate the configuration and exit")

	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if *validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	eng := merge.New(cfg)

	switch cfg.MetricsBackend {
	case "pushgateway":
		b, err := prompush.NewBackend("calmerge", cfg.PushgatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=pushgateway url=%s", cfg.PushgatewayURL)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}
	case "", "none":
		if cfg.Verbose {
			log.Printf("metrics: disabled")
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.MetricsBackend)
	}

	start := time.Now()
	sum, err := eng.Run(context.Background())
	if err != nil {
		log.Fatalf("run %s: %v", eng.RunID(), err)
	}
	sum.Log()
	if cfg.Verbose {
		log.Printf("run %s: completed in %s", eng.RunID(), time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

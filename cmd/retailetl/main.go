// Command retailetl extracts the retail analytics aggregates from the source
// database, cleans and scores them, writes dated CSV snapshots, optionally
// publishes them to a warehouse, and prints a run summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"retailetl/internal/config"
	"retailetl/internal/metrics"
	"retailetl/internal/metrics/datadog"
	"retailetl/internal/metrics/prompush"

	// register all warehouse backends with the storage factory.
	_ "retailetl/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		outDir            string
		envFile           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "optional pipeline config JSON path (defaults apply when empty)")
	flag.StringVar(&outDir, "out", "", "output directory for CSV snapshots (overrides config and OUTPUT_DIR)")
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (default env METRICS_BACKEND, else none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if err := config.LoadDotEnv(envFile); err != nil {
		fatalf("env: %v", err)
	}

	p := config.Default()
	if cfgPath != "" {
		var err error
		if p, err = config.Load(cfgPath); err != nil {
			fatalf("config: %v", err)
		}
	}
	if err := config.ApplyEnv(&p, os.Getenv); err != nil {
		fatalf("config: %v", err)
	}
	if outDir != "" {
		p.Output.Dir = outDir
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid")
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → none.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if b, ok := newMetricsBackend(backendName, p.Job, pushGatewayURLFlg, datadogAddrFlg, *verbose); ok {
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		}()
	}

	if *verbose {
		log.Printf("pipeline: job=%s source=%s database=%s out=%s warehouse=%q ref=%s",
			p.Job, p.Source.Kind, p.Source.Database, p.Output.Dir, p.Warehouse.Kind, p.RFM.ReferenceDate)
	}

	start := time.Now()
	if _, err := run(context.Background(), p, os.Stdout); err != nil {
		// Flush what was recorded before exiting; log.Fatalf skips defers.
		if ferr := metrics.Flush(); ferr != nil {
			log.Printf("metrics: flush error: %v", ferr)
		}
		log.Fatalf("%v", err)
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// newMetricsBackend builds the named backend. It reports false when metrics
// are disabled or the backend could not be created.
func newMetricsBackend(name, job, gwURL, ddAddr string, verbose bool) (metrics.Backend, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pushgateway":
		// Decide Pushgateway URL: flag → env → default.
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return nil, false
		}
		log.Printf("metrics: url=%v, backend=pushgateway, job_name=%v", gwURL, job)
		return b, true

	case "datadog":
		if ddAddr == "" {
			ddAddr = os.Getenv("DD_DOGSTATSD_ADDR")
		}
		if ddAddr == "" {
			ddAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       ddAddr,
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return nil, false
		}
		log.Printf("metrics: addr=%v, backend=datadog, job_name=%v", ddAddr, job)
		return b, true

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", name)
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
	}
	return nil, false
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"loanetl/internal/config"
	"loanetl/internal/logger"
	"loanetl/internal/storage"

	// register all backends with the storage factory.
	_ "loanetl/internal/storage/all"
)

// main loads the pipeline config, validates it and runs one chunked load.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute is main without the process exit, so tests can drive the CLI.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loanetl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "pipeline config (yaml/json); default searches ./configs and .")
	validate := fs.Bool("validate", false, "validate the configuration and exit")
	verbose := fs.Bool("v", false, "enable debug logs")
	probeRows := fs.Int("probe", 0, "sample this many source records, print suggested column types and exit")
	probeConfig := fs.Bool("probe-config", false, "with -probe, print the suggestion as a loadable types config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	p, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL ERROR: %v\n", err)
		return 1
	}
	if *verbose {
		p.Log.Level = "debug"
	}

	config.KnownStorageKinds = storage.ListKinds()
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid\n")
		return 1
	}
	if *validate {
		fmt.Fprintf(stderr, "configuration is valid\n")
		return 0
	}
	if *probeRows > 0 {
		if err := runProbe(ctx, p, *probeRows, *probeConfig, stdout); err != nil {
			fmt.Fprintf(stderr, "FATAL ERROR: %v\n", err)
			return 1
		}
		return 0
	}

	log, err := logger.New(p.Log.Level, p.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL ERROR: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	flush := setupMetrics(p, log)
	defer flush()

	log.Info("pipeline configured",
		zap.String("source", p.Source.Kind),
		zap.String("storage", p.Storage.Kind),
		zap.Int("chunk_size", p.Runtime.ChunkSize),
		zap.Int("max_records", p.Runtime.MaxRecords),
	)

	if _, err := run(ctx, p, log); err != nil {
		log.Error("pipeline failed", zap.Error(err))
		fmt.Fprintf(stderr, "FATAL ERROR: %v\n", err)
		return 1
	}
	return 0
}

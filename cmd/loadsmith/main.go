package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"loadsmith/internal/config"
	"loadsmith/internal/driver"
	"loadsmith/internal/progress"
)

const (
	ExitSuccess   = 0
	ExitRunFailed = 1
	ExitError     = 2
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	sourceOptions := flag.String("source-options", "", `inline JSON source options, e.g. '{"numRecords":1000,"keySize":8,"valueSize":8}'`)
	stepOptions := flag.String("step-options", "", `inline JSON step options, e.g. '{"outputRecordsPerInputRecord":2}'`)
	operations := flag.Int("operations", 0, "number of consecutive step operations (default 1)")
	workers := flag.Int("workers", 0, "number of parallel workers (0 = GOMAXPROCS)")
	namespace := flag.String("namespace", "", "namespace for published metrics")
	output := flag.String("output", "", "output format: text, json")
	quiet := flag.Bool("quiet", false, "suppress progress output during the run")
	flag.Parse()

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
		cfg = loaded
	}

	// Inline JSON blobs and flags override the config file.
	if *sourceOptions != "" {
		src, err := config.ParseSourceOptions(*sourceOptions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: source options: %v\n", err)
			os.Exit(ExitError)
		}
		cfg.Source = src
	}
	if *stepOptions != "" {
		step, err := config.ParseStepOptions(*stepOptions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: step options: %v\n", err)
			os.Exit(ExitError)
		}
		cfg.Step = &step
		cfg.Steps = nil
	}
	if *operations > 0 {
		cfg.Operations = *operations
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *namespace != "" {
		cfg.Namespace = *namespace
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *quiet {
		cfg.Quiet = true
	}

	if cfg.Source.NumRecords == 0 && *configPath == "" && *sourceOptions == "" {
		fmt.Fprintln(os.Stderr, "error: --config or --source-options is required")
		flag.Usage()
		os.Exit(ExitError)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if !cfg.Quiet {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		}
		cancel()
	}()

	d := driver.New(cfg, os.Stdout, os.Stderr)

	prog := progress.NewProgress(d.Aggregator(), cfg.Quiet)
	prog.Printf("loadsmith starting: %d records, %d operations",
		cfg.Source.NumRecords, len(cfg.StepList()))

	prog.Start()
	err := d.Run(ctx)
	prog.Stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitRunFailed)
	}
	os.Exit(ExitSuccess)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/export"
	"github.com/joseph-ayodele/debt-tracker/internal/ingest"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/llm/resolve"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
	"github.com/joseph-ayodele/debt-tracker/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type fileResult struct {
	File   string           `json:"file"`
	Result *pipeline.Result `json:"result"`
}

func main() {
	var (
		out         = flag.String("out", "", "write all accepted records to this .xlsx or .csv file (optional)")
		concurrency = flag.Int("concurrency", 0, "chunk calls in flight per file (overrides CHUNK_CONCURRENCY)")
		provider    = flag.String("provider", "", "openai or anthropic (overrides LLM_PROVIDER)")
		dir         = flag.String("dir", "", "also process every PDF under this directory")
		hidden      = flag.Bool("include-hidden", false, "with --dir, descend into hidden files and directories")
	)
	flag.Usage = func() {
		printError("usage: debtx [flags] [report.pdf ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 && *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *concurrency > 0 {
		cfg.Pipeline.Concurrency = *concurrency
	}
	if *provider != "" {
		cfg.LLM.Provider = *provider
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	var format export.Format
	if *out != "" {
		format, err = export.ParseFormat(strings.TrimPrefix(filepath.Ext(*out), "."))
		if err != nil {
			printError("Error: --out must end in .xlsx or .csv\n")
			os.Exit(1)
		}
	}

	// logs go to stderr so stdout stays valid JSON
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})

	completer, err := resolve.Completer(cfg.LLM, log)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	extractor := llm.NewChunkExtractor(llm.ExtractorConfig{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		CallTimeout: cfg.LLM.Timeout,
	}, completer, log)
	proc, err := pipeline.Build(cfg, extractor, log)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	paths := flag.Args()
	if *dir != "" {
		found, stats, err := ingest.Discover(*dir, !*hidden, log)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		printError("%s: %s\n", *dir, stats)
		paths = append(paths, ingest.Pending(found)...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := make([]fileResult, 0, len(paths))
	var all []entity.ClientRecord
	failed := 0
	for _, path := range paths {
		res := proc.Process(ctx, path)
		if !res.OK() {
			failed++
		}
		all = append(all, res.Records...)
		results = append(results, fileResult{File: path, Result: res})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		printError("Error: writing output: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		data, err := export.NewService(log).Export(all, format)
		if err != nil {
			printError("Error: export: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			printError("Error: writing %s: %v\n", *out, err)
			os.Exit(1)
		}
		log.Info("export.written", slog.String("path", *out), slog.Int("records", len(all)))
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// ankibridge extracts flashcards embedded in Notion pages and imports them
// into Anki through the AnkiConnect local API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/avasilyev/ankibridge/internal/anki"
	"github.com/avasilyev/ankibridge/internal/config"
	"github.com/avasilyev/ankibridge/internal/entities"
	"github.com/avasilyev/ankibridge/internal/extractor"
	"github.com/avasilyev/ankibridge/internal/importers"
	"github.com/avasilyev/ankibridge/internal/logging"
	"github.com/avasilyev/ankibridge/internal/notion"
	"github.com/avasilyev/ankibridge/internal/scheduler"
)

// Version information - set at build time via ldflags
var Version = "dev"

const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	dryRun := flag.Bool("dry-run", false, "Fetch and extract only; print cards that would be imported")
	verbose := flag.Bool("verbose", false, "Enable debug logging on the console")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ankibridge %s\n", Version)
		return exitOK
	}

	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ankibridge: %v\n", err)
		return exitConfig
	}

	logOpts := logging.Options{Verbose: *verbose || cfg.Debug.Enabled}
	if cfg.Debug.Enabled {
		logOpts.DebugFile = cfg.Debug.LogPath
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ankibridge: %v\n", err)
		return exitError
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	notionClient := notion.NewClient(cfg.Notion.APIKey, cfg.HTTP.Timeout)
	fetcher := notion.NewFetcher(notionClient, cfg.Notion.DatabaseID, logger)

	if *dryRun {
		return dryRunReport(ctx, fetcher, logger)
	}

	ankiClient := anki.NewClient(cfg.Anki.ConnectURL, cfg.HTTP.Timeout)
	if version, err := ankiClient.Version(ctx); err != nil {
		logger.Error("AnkiConnect is not reachable, is Anki running?", "url", cfg.Anki.ConnectURL, "error", err)
		return exitError
	} else {
		logger.Debug("connected to AnkiConnect", "version", version)
	}

	importer := importers.NewImporter(ankiClient, logger)
	pipeline := importers.NewPipeline(fetcher, importer, logger)

	if cfg.Sync.Schedule != "" {
		sched := scheduler.New(pipeline.Run, cfg.Sync.Schedule, logger)
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler failed", "error", err)
			return exitError
		}
		return exitOK
	}

	result, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("sync failed", "error", err)
		return exitError
	}

	printSummary(result)
	if !result.Ok() {
		return exitError
	}
	return exitOK
}

// dryRunReport fetches and extracts without touching Anki.
func dryRunReport(ctx context.Context, fetcher *notion.Fetcher, logger *slog.Logger) int {
	docs, fetchErrs, err := fetcher.Fetch(ctx)
	if err != nil {
		logger.Error("fetch failed", "error", err)
		return exitError
	}
	for _, fetchErr := range fetchErrs {
		logger.Error("skipping document", "error", fetchErr)
	}

	total := 0
	for _, doc := range docs {
		candidates := extractor.ExtractDocument(doc)
		if len(candidates) == 0 {
			continue
		}
		fmt.Printf("%s (%s): %d cards\n", doc.Title, doc.ID, len(candidates))
		for _, c := range candidates {
			fmt.Printf("  Q: %s\n", c.Question)
		}
		total += len(candidates)
	}

	fmt.Printf("\nDry run: %d cards would be imported from %d documents\n", total, len(docs))

	result := entities.ImportResult{
		DocumentsFetched: len(docs),
		DocumentsFailed:  len(fetchErrs),
	}
	if !result.Ok() {
		return exitError
	}
	return exitOK
}

func printSummary(result entities.ImportResult) {
	fmt.Println("\nSync summary")
	fmt.Println("============")
	fmt.Printf("Documents fetched: %d\n", result.DocumentsFetched)
	if result.DocumentsFailed > 0 {
		color.Yellow("Documents failed:  %d", result.DocumentsFailed)
	}
	color.Green("Cards created:     %d", result.Created)
	fmt.Printf("Cards skipped:     %d\n", result.Skipped)

	if len(result.Failed) > 0 {
		color.Red("Cards failed:      %d", len(result.Failed))
		for _, failure := range result.Failed {
			color.Red("  [ERROR] %q: %s", failure.Candidate.Question, failure.Reason)
		}
	}
}

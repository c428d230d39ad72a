package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/devdocai/piiguard/internal/accuracy"
	"github.com/devdocai/piiguard/internal/logger"
	"github.com/devdocai/piiguard/internal/privacy"
)

func main() {
	var (
		corpusFile    = flag.String("corpus", "", "Labeled corpus file (CSV, Parquet, or JSONL)")
		patternFile   = flag.String("patterns", "", "Recognizer override file layered on the built-in set")
		minConfidence = flag.Float64("min-confidence", 0, "Detection threshold (0 selects the default)")
		iouThreshold  = flag.Float64("iou", 0, "Span match IoU threshold (0 selects the default)")
		jsonOutput    = flag.Bool("json", false, "Emit the full report as JSON")
		logLevel      = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	if *corpusFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s --corpus <file> [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --corpus labeled.jsonl\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --corpus labeled.parquet --min-confidence 0.6 --json\n", os.Args[0])
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling evaluation...")
		cancel()
	}()

	library, err := privacy.NewDefaultLibrary(*patternFile)
	if err != nil {
		log.Fatal("Failed to build pattern library", zap.Error(err))
	}
	detector := privacy.NewDetector(library, privacy.DetectorConfig{})

	corpus, err := accuracy.LoadCorpus(*corpusFile)
	if err != nil {
		log.Fatal("Failed to load corpus", zap.Error(err))
	}
	log.Info("Corpus loaded",
		zap.String("file", *corpusFile),
		zap.Int("documents", len(corpus.Documents)))

	harness := accuracy.NewHarness(detector, accuracy.HarnessConfig{
		IoUThreshold:  *iouThreshold,
		MinConfidence: *minConfidence,
	}, log.WithComponent("accuracy").Logger)

	report, err := harness.Evaluate(ctx, corpus)
	if err != nil {
		log.Fatal("Evaluation failed", zap.Error(err))
	}

	if *jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			log.Fatal("Failed to encode report", zap.Error(err))
		}
		return
	}

	printReport(report)
}

func printReport(report *accuracy.Report) {
	fmt.Printf("Documents:      %d\n", report.Documents)
	fmt.Printf("Precision:      %.4f\n", report.Overall.Precision)
	fmt.Printf("Recall:         %.4f\n", report.Overall.Recall)
	fmt.Printf("F1:             %.4f\n", report.Overall.F1)
	fmt.Printf("FP rate:        %.4f\n", report.FalsePositiveRate)
	fmt.Printf("FN rate:        %.4f\n", report.FalseNegativeRate)
	fmt.Println()

	categories := make([]string, 0, len(report.ByCategory))
	for category := range report.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	fmt.Printf("%-16s %6s %6s %6s %10s %8s %8s\n", "category", "tp", "fp", "fn", "precision", "recall", "f1")
	for _, category := range categories {
		m := report.ByCategory[category]
		fmt.Printf("%-16s %6d %6d %6d %10.4f %8.4f %8.4f\n",
			category, m.TruePositives, m.FalsePositives, m.FalseNegatives,
			m.Precision, m.Recall, m.F1)
	}
}

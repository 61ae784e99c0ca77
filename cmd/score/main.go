package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"govigil/adapters/excel"
	"govigil/adapters/report"
	"govigil/app"
	"govigil/domain/signal"
	"govigil/internal"
)

// score runs one batch from a JSON file and writes the ranked results.
//
// Usage:
//
//	score -input batch.json [-config scoring.json] [-out results.json]
//	      [-report report.md] [-xlsx results.xlsx]
func main() {
	_ = godotenv.Load()
	log := internal.DefaultLogger

	var (
		inputPath  = flag.String("input", "", "path to batch request JSON (required)")
		configPath = flag.String("config", "", "path to scoring config JSON (defaults used when empty)")
		outPath    = flag.String("out", "", "write full results JSON to this path (default stdout)")
		reportPath = flag.String("report", "", "write a markdown report to this path")
		xlsxPath   = flag.String("xlsx", "", "write an Excel export to this path")
	)
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	req, err := loadRequest(*inputPath)
	if err != nil {
		log.Error("failed to load batch: %v", err)
		os.Exit(1)
	}

	cfg := signal.DefaultScoringConfig()
	if *configPath != "" {
		if err := loadJSON(*configPath, &cfg); err != nil {
			log.Error("failed to load scoring config: %v", err)
			os.Exit(1)
		}
	}

	service, err := app.NewFusionService(cfg)
	if err != nil {
		log.Error("invalid scoring config: %v", err)
		os.Exit(1)
	}

	batch, err := service.ScoreBatch(context.Background(), *req)
	if err != nil {
		log.Error("scoring failed: %v", err)
		os.Exit(1)
	}
	log.Info("batch %s: %d pairs scored in %dms, fingerprint %s",
		batch.BatchID, len(batch.Results), batch.RuntimeMs, batch.Fingerprint)

	if err := writeResults(batch, *outPath); err != nil {
		log.Error("failed to write results: %v", err)
		os.Exit(1)
	}

	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, report.NewRenderer().Markdown(batch), 0o644); err != nil {
			log.Error("failed to write report: %v", err)
			os.Exit(1)
		}
	}

	if *xlsxPath != "" {
		if err := excel.NewExporter().Export(batch, *xlsxPath); err != nil {
			log.Error("failed to write Excel export: %v", err)
			os.Exit(1)
		}
	}
}

func loadRequest(path string) (*app.BatchRequest, error) {
	var req app.BatchRequest
	if err := loadJSON(path, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func writeResults(batch *app.BatchResult, path string) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

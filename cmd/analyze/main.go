// Package main runs one offline analysis: read a light curve CSV, run the
// full detection pipeline against in-memory storage, print the JSON result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"exoplanet-lab/internal/analysis"
	"exoplanet-lab/internal/classify"
	"exoplanet-lab/internal/storage/memory"
	"exoplanet-lab/internal/tabular"
)

func main() {
	_ = godotenv.Load()

	externalID := flag.String("external-id", "", "Host identifier for the uploaded curve (e.g. \"TIC 307210830\")")
	classifierURL := flag.String("classifier-url", os.Getenv("CLASSIFIER_URL"), "Classification model service base URL (optional)")
	flag.Parse()

	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags)

	if flag.NArg() != 1 {
		logger.Fatal("usage: analyze [flags] <lightcurve.csv>")
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		logger.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	table, err := tabular.ReadTable(f)
	if err != nil {
		logger.Fatalf("read %s: %v", path, err)
	}

	var predictor classify.Predictor
	if *classifierURL != "" {
		predictor = classify.NewClient(*classifierURL)
	}
	classifier := classify.NewClassifier(predictor, logger)

	pipeline, err := analysis.NewPipeline(analysis.Options{
		Store:      memory.NewDiscoveryStore(),
		Classifier: classifier,
		Progress: func(ev analysis.ProgressEvent) {
			logger.Printf("%s: %s", ev.Stage, ev.Message)
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("create pipeline: %v", err)
	}

	result, err := pipeline.Analyze(context.Background(), table, *externalID)
	if err != nil {
		logger.Fatalf("analyze: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}

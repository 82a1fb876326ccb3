// Command tally aggregates survey answers into per-question statistics.
//
//	tally -questions questions.json -records records.json [-config engine.yaml] [-pretty]
//
// The result is written to stdout as JSON.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	"github.com/ahrav/go-tally/infrastructure/middleware"
	"github.com/ahrav/go-tally/internal/application"
)

func main() {
	var (
		questionsPath = flag.String("questions", "", "Path to a JSON array of question definitions")
		recordsPath   = flag.String("records", "", "Path to a JSON array of answer records")
		configPath    = flag.String("config", "", "Optional path to a YAML engine configuration")
		pretty        = flag.Bool("pretty", false, "Indent the JSON output")
	)
	flag.Parse()

	if *questionsPath == "" || *recordsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := application.DefaultEngineConfig()
	if *configPath != "" {
		loaded, err := application.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	questions, err := application.LoadQuestionsFile(*questionsPath)
	if err != nil {
		log.Fatalf("Failed to load questions: %v", err)
	}
	records, err := application.LoadRecordsFile(*recordsPath)
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}

	opts := []application.Option{application.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		opts = append(opts, application.WithMetrics(
			middleware.NewPrometheusMetrics(nil, middleware.WithErrorLogger(logger))))
	}

	engine, err := application.NewEngine(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	result := engine.Aggregate(context.Background(), questions, records)
	if failed := result.Failed(); len(failed) > 0 {
		logger.Warn("some questions could not be aggregated", "questions", failed)
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	out = append(out, '\n')
	if _, err := os.Stdout.Write(out); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ahrav/go-tally/internal/testutils"
)

func main() {
	var (
		sessions  = flag.Int("sessions", 200, "Number of respondent sessions to generate")
		seed      = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
		outputDir = flag.String("output", "testdata/sample_survey", "Output directory")
	)
	flag.Parse()

	questions := testutils.SampleSurvey()
	records := testutils.NewGenerator(*seed).Records(questions, *sessions)

	if err := os.MkdirAll(*outputDir, 0o750); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	questionsPath := filepath.Join(*outputDir, "questions.json")
	if err := writeJSON(questionsPath, questions); err != nil {
		log.Fatalf("Failed to save questions: %v", err)
	}
	recordsPath := filepath.Join(*outputDir, "records.json")
	if err := writeJSON(recordsPath, records); err != nil {
		log.Fatalf("Failed to save records: %v", err)
	}

	fmt.Printf("Generated sample survey:\n")
	fmt.Printf("- Questions: %s (%d)\n", questionsPath, len(questions))
	fmt.Printf("- Records: %s (%d)\n", recordsPath, len(records))
	fmt.Printf("- Seed: %d\n", *seed)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o600)
}

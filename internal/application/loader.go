package application

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// LoadQuestions decodes a JSON array of question definitions from r. The
// definitions are not validated here; the engine reports invalid ones per
// question.
func LoadQuestions(r io.Reader) ([]domain.QuestionDefinition, error) {
	var questions []domain.QuestionDefinition
	if err := decodeArray(r, &questions); err != nil {
		return nil, ports.NewConfigError("questions", err)
	}
	return questions, nil
}

// LoadRecords decodes a JSON array of raw answer records from r. Values keep
// whatever JSON shape they were stored with.
func LoadRecords(r io.Reader) ([]domain.RawAnswerRecord, error) {
	var records []domain.RawAnswerRecord
	if err := decodeArray(r, &records); err != nil {
		return nil, ports.NewConfigError("records", err)
	}
	return records, nil
}

// LoadQuestionsFile reads question definitions from the JSON file at path.
func LoadQuestionsFile(path string) ([]domain.QuestionDefinition, error) {
	return loadFile(path, LoadQuestions)
}

// LoadRecordsFile reads raw answer records from the JSON file at path.
func LoadRecordsFile(path string) ([]domain.RawAnswerRecord, error) {
	return loadFile(path, LoadRecords)
}

func loadFile[T any](path string, load func(io.Reader) ([]T, error)) ([]T, error) {
	cleanPath := filepath.Clean(path)

	f, err := os.Open(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.NewConfigError(cleanPath, fmt.Errorf("%w: %w", ports.ErrConfigNotFound, err))
		}
		return nil, ports.NewConfigError(cleanPath, fmt.Errorf("failed to open file: %w", err))
	}
	defer f.Close()

	items, err := load(f)
	if err != nil {
		return nil, ports.NewConfigError(cleanPath, err)
	}
	return items, nil
}

// decodeArray decodes a single JSON array into dst. A missing document, a
// non-array document or trailing data is rejected.
func decodeArray(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", ports.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", ports.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after the top-level array", ports.ErrInvalidInput)
	}
	return nil
}

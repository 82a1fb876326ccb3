package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/infrastructure/aggregators"
	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

// EngineConfig holds every tunable of the statistics engine. The zero value
// is not usable; start from DefaultEngineConfig and override fields, or
// load a YAML document with LoadConfig.
type EngineConfig struct {
	// Concurrency caps how many questions are aggregated in parallel.
	// Zero aggregates questions one at a time.
	Concurrency int `yaml:"concurrency" validate:"min=0,max=256"`
	// Sentinels are the reserved Other, NotApplicable and Unassigned tokens.
	Sentinels domain.Sentinels `yaml:"sentinels"`
	// MultiSelectDelimiter separates selections in a delimited multiChoice
	// value.
	MultiSelectDelimiter string `yaml:"multi_select_delimiter" validate:"required"`
	// SliderBins is the number of equal-width slider histogram bins.
	SliderBins int `yaml:"slider_bins" validate:"min=1,max=100"`
	// NPS configures Net-Promoter segmentation.
	NPS NPSConfig `yaml:"nps"`
	// WriteIns configures clustering of near-duplicate write-in texts.
	WriteIns aggregators.WriteInGrouping `yaml:"write_ins"`
	// LogLevel is the minimum level logged by the CLI.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	// Metrics toggles Prometheus instrumentation.
	Metrics MetricsConfig `yaml:"metrics"`
	// Tracing toggles OpenTelemetry spans.
	Tracing TracingConfig `yaml:"tracing"`
}

// NPSConfig holds the Net-Promoter cut-offs.
type NPSConfig struct {
	PromoterMin  float64 `yaml:"promoter_min" validate:"gtfield=DetractorMax"`
	DetractorMax float64 `yaml:"detractor_max"`
}

// MetricsConfig toggles metrics collection. When enabled and no collector
// is injected, the engine reports to the default Prometheus registry.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig toggles tracing. When enabled and no tracer is injected, the
// engine uses the globally registered OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultEngineConfig returns the configuration used when none is supplied.
func DefaultEngineConfig() EngineConfig {
	numeric := aggregators.DefaultNumericConfig()
	return EngineConfig{
		Concurrency:          0,
		Sentinels:            domain.DefaultSentinels(),
		MultiSelectDelimiter: aggregators.DefaultChoiceConfig().Delimiter,
		SliderBins:           numeric.SliderBins,
		NPS: NPSConfig{
			PromoterMin:  numeric.PromoterMin,
			DetractorMax: numeric.DetractorMax,
		},
		WriteIns: aggregators.DefaultWriteInGrouping(),
		LogLevel: "info",
	}
}

// Validate checks the configuration against its struct tags.
func (c EngineConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c EngineConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseConfig decodes a YAML document on top of DefaultEngineConfig and
// validates the result. Unknown fields are rejected so that typos are not
// silently ignored. An empty document yields the defaults.
func ParseConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return EngineConfig{}, fmt.Errorf("YAML decode failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML engine configuration at path.
func LoadConfig(path string) (EngineConfig, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EngineConfig{}, ports.NewConfigError(cleanPath, fmt.Errorf("%w: %w", ports.ErrConfigNotFound, err))
		}
		return EngineConfig{}, ports.NewConfigError(cleanPath, fmt.Errorf("failed to read file: %w", err))
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return EngineConfig{}, ports.NewConfigError(cleanPath, err)
	}
	return cfg, nil
}

// choiceConfig derives the choice aggregator configuration.
func (c EngineConfig) choiceConfig() aggregators.ChoiceConfig {
	return aggregators.ChoiceConfig{
		Sentinels: c.Sentinels,
		Delimiter: c.MultiSelectDelimiter,
		WriteIns:  c.WriteIns,
	}
}

// numericConfig derives the numeric aggregator configuration.
func (c EngineConfig) numericConfig() aggregators.NumericConfig {
	return aggregators.NumericConfig{
		PromoterMin:  c.NPS.PromoterMin,
		DetractorMax: c.NPS.DetractorMax,
		SliderBins:   c.SliderBins,
	}
}

// cardSortConfig derives the card sort aggregator configuration.
func (c EngineConfig) cardSortConfig() aggregators.CardSortConfig {
	return aggregators.CardSortConfig{Unassigned: c.Sentinels.Unassigned}
}

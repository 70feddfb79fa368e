package config

import (
	"math"
	"os"
	"strconv"

	"caselens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Valuation ValuationConfig
	Paths     PathConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// ValuationConfig holds tunables for the settlement valuation pipeline.
// Attribute weights and the clamp multiple are configuration, not fixed
// truths; defaults are documented in the packages that consume them.
type ValuationConfig struct {
	DefaultTopK          int     // neighbors retrieved per analysis
	ClampMultiple        float64 // point estimate sanity bound vs economic damages
	TargetPrecedentCount int     // neighbor count below which precedent strength is penalized
	TimeDecayHalfLife    float64 // years; 0 disables precedent time decay
	BatchParallelism     int     // concurrent analyses in batch requests

	// ConfidenceWeights overrides the per-dimension confidence weights.
	// Keys are dimension names; values must sum to 1.
	ConfidenceWeights map[string]float64
}

// PathConfig holds file system paths
type PathConfig struct {
	CorpusFile string // xlsx corpus for cmd/import
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}

	valuation, err := loadValuationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load valuation configuration")
	}
	config.Valuation = *valuation

	config.Paths = PathConfig{
		CorpusFile: getEnvOrDefault("CORPUS_FILE", "data/corpus.xlsx"),
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadValuationConfig() (*ValuationConfig, error) {
	cfg := &ValuationConfig{
		DefaultTopK:          getEnvIntOrDefault("VALUATION_TOP_K", 5),
		ClampMultiple:        getEnvFloatOrDefault("VALUATION_CLAMP_MULTIPLE", 5.0),
		TargetPrecedentCount: getEnvIntOrDefault("VALUATION_TARGET_PRECEDENTS", 5),
		TimeDecayHalfLife:    getEnvFloatOrDefault("VALUATION_TIME_DECAY_HALF_LIFE", 0),
		BatchParallelism:     getEnvIntOrDefault("VALUATION_BATCH_PARALLELISM", 4),
	}

	if cfg.DefaultTopK <= 0 {
		return nil, errors.ConfigInvalid("VALUATION_TOP_K must be positive")
	}
	if cfg.ClampMultiple <= 1 {
		return nil, errors.ConfigInvalid("VALUATION_CLAMP_MULTIPLE must exceed 1")
	}
	if cfg.TimeDecayHalfLife < 0 {
		return nil, errors.ConfigInvalid("VALUATION_TIME_DECAY_HALF_LIFE must not be negative")
	}
	if cfg.BatchParallelism <= 0 {
		return nil, errors.ConfigInvalid("VALUATION_BATCH_PARALLELISM must be positive")
	}

	weights, err := loadConfidenceWeights()
	if err != nil {
		return nil, err
	}
	cfg.ConfidenceWeights = weights

	return cfg, nil
}

// Per-dimension weight override vars. All five must be set together;
// setting none keeps the scorer defaults.
var confidenceWeightVars = map[string]string{
	"data_completeness":      "CONFIDENCE_WEIGHT_COMPLETENESS",
	"precedent_strength":     "CONFIDENCE_WEIGHT_PRECEDENT",
	"neighbor_agreement":     "CONFIDENCE_WEIGHT_AGREEMENT",
	"case_type_specificity":  "CONFIDENCE_WEIGHT_SPECIFICITY",
	"statistical_confidence": "CONFIDENCE_WEIGHT_STATISTICAL",
}

func loadConfidenceWeights() (map[string]float64, error) {
	weights := make(map[string]float64, len(confidenceWeightVars))
	set := 0
	sum := 0.0
	for dimension, envVar := range confidenceWeightVars {
		raw := os.Getenv(envVar)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 || value > 1 {
			return nil, errors.ConfigInvalid(envVar + " must be a number in [0,1]")
		}
		weights[dimension] = value
		set++
		sum += value
	}

	if set == 0 {
		return nil, nil
	}
	if set != len(confidenceWeightVars) {
		return nil, errors.ConfigInvalid("confidence weight overrides must set all five dimensions")
	}
	if math.Abs(sum-1) > 1e-6 {
		return nil, errors.ConfigInvalid("confidence weight overrides must sum to 1")
	}
	return weights, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

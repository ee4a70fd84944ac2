// Package config loads pipeline configuration from the environment with an
// optional YAML overlay (PLANTWATCH_CONFIG).
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// BlobConfig selects and configures the archival object store backend.
type BlobConfig struct {
	Driver    string `yaml:"driver"` // fs | s3 | memory
	Root      string `yaml:"root"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Config defines pipeline configuration.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	DBDriver    string `yaml:"db_driver"` // pgx | sqlite

	SourceBaseURL   string `yaml:"source_base_url"`
	SourceStartID   int64  `yaml:"source_start_id"`
	SourceMaxMisses int    `yaml:"source_max_misses"`

	Blob BlobConfig `yaml:"blob"`

	// OutlierSigma is the per-plant filter width in standard deviations.
	// The moisture thresholds are policy constants carried for downstream
	// consumers; the pipelines attach them to archive objects as metadata
	// and assign them no further meaning.
	OutlierSigma    float64 `yaml:"outlier_sigma"`
	MoistureLowPct  float64 `yaml:"moisture_low_pct"`
	MoistureHighPct float64 `yaml:"moisture_high_pct"`

	StoreTimeout     time.Duration `yaml:"store_timeout"`
	BlobTimeout      time.Duration `yaml:"blob_timeout"`
	RetryMaxAttempts int           `yaml:"retry_max_attempts"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// Load builds config from env, then applies the YAML overlay when
// PLANTWATCH_CONFIG points at a file.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		DBDriver:         getenvDefault("DB_DRIVER", "pgx"),
		SourceBaseURL:    getenvDefault("SOURCE_BASE_URL", ""),
		SourceStartID:    int64(getenvIntDefault("SOURCE_START_ID", 1)),
		SourceMaxMisses:  getenvIntDefault("SOURCE_MAX_MISSES", 5),
		OutlierSigma:     getenvFloatDefault("OUTLIER_SIGMA", 3.0),
		MoistureLowPct:   getenvFloatDefault("MOISTURE_LOW_PCT", 20),
		MoistureHighPct:  getenvFloatDefault("MOISTURE_HIGH_PCT", 40),
		StoreTimeout:     getenvDuration("STORE_TIMEOUT", 10*time.Second),
		BlobTimeout:      getenvDuration("BLOB_TIMEOUT", 30*time.Second),
		RetryMaxAttempts: getenvIntDefault("RETRY_MAX_ATTEMPTS", 4),
		MetricsAddr:      getenvDefault("METRICS_ADDR", ""),
		Blob: BlobConfig{
			Driver:    getenvDefault("ARCHIVE_BLOB_DRIVER", "fs"),
			Root:      getenvDefault("ARCHIVE_FS_ROOT", "var/archive"),
			Bucket:    getenvDefault("S3_BUCKET_NAME", ""),
			Region:    getenvDefault("S3_REGION", getenvDefault("REGION_NAME", "")),
			Endpoint:  getenvDefault("S3_ENDPOINT", ""),
			PathStyle: getenvDefault("S3_PATH_STYLE", "") == "true",
		},
	}

	if path := os.Getenv("PLANTWATCH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if c.DBDriver != "pgx" && c.DBDriver != "sqlite" {
		return errors.New("config: DB_DRIVER must be pgx or sqlite")
	}
	if c.OutlierSigma <= 0 {
		return errors.New("config: OUTLIER_SIGMA must be positive")
	}
	if c.Blob.Driver == "s3" && c.Blob.Bucket == "" {
		return errors.New("config: S3_BUCKET_NAME is required for the s3 blob driver")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-sqa-metrics/pkg/utils"
)

// DefaultConfigPath is where the service looks for its configuration file.
const DefaultConfigPath = "config/sqa.json"

// Config holds the service settings. Durations are strings like "2m".
type Config struct {
	ListenAddr   string  `json:"listen_addr"`
	DBPath       string  `json:"db_path"`
	DataDir      string  `json:"data_dir"`
	OutputDir    string  `json:"output_dir"`
	JobTimeout   string  `json:"job_timeout"`
	FetchTimeout string  `json:"fetch_timeout"`
	FetchRetries int     `json:"fetch_retries"` // retries of transient HTTP report failures
	SampleRows   int     `json:"sample_rows"`
	Threshold    float64 `json:"threshold"`
	ChartKind    string  `json:"chart_kind"` // bar, line
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:   ":8080",
		DBPath:       "sqa.db",
		DataDir:      "data",
		OutputDir:    "outputs",
		JobTimeout:   "5m",
		FetchTimeout: "30s",
		FetchRetries: 2,
		SampleRows:   10,
		Threshold:    0,
		ChartKind:    "bar",
	}
}

// Load reads a JSON config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must be set")
	}
	if c.DataDir == "" || c.OutputDir == "" {
		return fmt.Errorf("data_dir and output_dir must be set")
	}
	for _, d := range []struct{ name, value string }{
		{"job_timeout", c.JobTimeout},
		{"fetch_timeout", c.FetchTimeout},
	} {
		if d.value == "" {
			continue
		}
		if v, err := time.ParseDuration(d.value); err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive duration, got %q", d.name, d.value)
		}
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("fetch_retries must be non-negative, got %d", c.FetchRetries)
	}
	if c.SampleRows < 1 {
		return fmt.Errorf("sample_rows must be at least 1, got %d", c.SampleRows)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %v", c.Threshold)
	}
	switch c.ChartKind {
	case "", "bar", "line":
	default:
		return fmt.Errorf("chart_kind must be bar or line, got %q", c.ChartKind)
	}
	return nil
}

// GetJobTimeout returns the comparison job timeout, 5m when unset.
func (c *Config) GetJobTimeout() time.Duration {
	return utils.ParseDuration(c.JobTimeout)
}

// GetFetchTimeout returns the per-request timeout for HTTP report sources, 30s when unset.
func (c *Config) GetFetchTimeout() time.Duration {
	return utils.ParseDurationOr(c.FetchTimeout, 30*time.Second)
}

// GetChartKind returns the default chart kind, bar when unset.
func (c *Config) GetChartKind() string {
	if c.ChartKind == "" {
		return "bar"
	}
	return c.ChartKind
}

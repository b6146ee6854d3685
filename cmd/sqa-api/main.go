package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"go-sqa-metrics/internal/api"
	"go-sqa-metrics/internal/api/handler"
	"go-sqa-metrics/internal/config"
	"go-sqa-metrics/internal/store"
	"go-sqa-metrics/pkg/router"
)

// @title SQA Metrics API
// @version 1.0
// @description Audio quality metric results: schema detection, aggregation and multi-result comparison.
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to the JSON configuration file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	dataDir := flag.String("data", "", "directory holding uploaded reports (overrides config)")
	outputDir := flag.String("outputs", "", "directory for exported artefacts (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	override(&cfg.ListenAddr, *listen)
	override(&cfg.DBPath, *dbPath)
	override(&cfg.DataDir, *dataDir)
	override(&cfg.OutputDir, *outputDir)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ invalid configuration: %v", err)
	}

	// Init DB
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("❌ failed to open database %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	h := handler.New(db, cfg)
	if err := h.Outputs.EnsureOutputDirExists(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	r := router.New()
	api.RegisterRoutes(r, h)

	if err := r.Start(cfg.ListenAddr); err != nil {
		log.Fatalf("❌ server stopped: %v", err)
	}
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && path == config.DefaultConfigPath {
		log.Printf("⚠️ %s not found, using defaults", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

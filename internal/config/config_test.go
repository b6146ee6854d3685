package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Minute, cfg.GetJobTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetFetchTimeout())
	assert.Equal(t, 10, cfg.SampleRows)
	assert.Equal(t, "bar", cfg.GetChartKind())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, "sqa.json", `{"listen_addr": ":9090", "job_timeout": "90s", "threshold": 0.05, "chart_kind": "line"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 90*time.Second, cfg.GetJobTimeout())
	assert.Equal(t, 0.05, cfg.Threshold)
	assert.Equal(t, "line", cfg.GetChartKind())
	assert.Equal(t, "sqa.db", cfg.DBPath, "unset fields keep defaults")
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"extension", "sqa.yaml", `{}`, ".json extension"},
		{"syntax", "sqa.json", `{"listen_addr":`, "failed to parse"},
		{"timeout", "sqa.json", `{"job_timeout": "-1s"}`, "job_timeout"},
		{"retries", "sqa.json", `{"fetch_retries": -1}`, "fetch_retries"},
		{"sample rows", "sqa.json", `{"sample_rows": 0}`, "sample_rows"},
		{"threshold", "sqa.json", `{"threshold": -0.5}`, "threshold"},
		{"chart kind", "sqa.json", `{"chart_kind": "pie"}`, "chart_kind"},
		{"db path", "sqa.json", `{"db_path": ""}`, "db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingAndOversized(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "failed to stat")

	big := `{"listen_addr": ":1", "pad": "` + strings.Repeat("x", 1<<20) + `"}`
	_, err = Load(writeConfig(t, "big.json", big))
	assert.ErrorContains(t, err, "too large")
}

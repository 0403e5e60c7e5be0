package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(&cfg))
	assert.Equal(t, 300*time.Second, cfg.LLM.Timeout())
	assert.Equal(t, 2*time.Second, cfg.LLM.ProbeTimeout())
	assert.Equal(t, 1, cfg.LLM.MaxInFlight)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadMergesJSONOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm":{"default_model":"mistral","timeout_seconds":60}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.LLM.DefaultModel)
	assert.Equal(t, 60, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "brd.db", cfg.Storage.DBPath)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  base_url: http://gpu-box:11434\n  stream: false\nlogging:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.BaseURL)
	assert.False(t, cfg.LLM.Stream)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 300, cfg.LLM.TimeoutSeconds)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "nested/config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Export.Dir = "/tmp/brd-exports"
			cfg.LLM.Temperature = 1.2
			require.NoError(t, Save(&cfg, path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, *got)
		})
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm":`), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.BaseURL = "localhost:11434"
	cfg.LLM.DefaultModel = "gpt-4"
	cfg.LLM.Temperature = 3
	cfg.LLM.MaxInFlight = 0
	cfg.Logging.Level = "verbose"

	err := Validate(&cfg)
	require.Error(t, err)
	for _, want := range []string{"llm.base_url", "llm.default_model", "llm.temperature", "llm.max_in_flight", "logging.level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvOllamaURL, "http://10.0.0.5:11434")
	t.Setenv(EnvModel, "phi4-mini")
	t.Setenv(EnvDBPath, "/data/brd.db")
	t.Setenv(EnvExportDir, "  ")
	t.Setenv(EnvLogLevel, "warn")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "phi4-mini", cfg.LLM.DefaultModel)
	assert.Equal(t, "/data/brd.db", cfg.Storage.DBPath)
	assert.Equal(t, "exports", cfg.Export.Dir, "blank values are ignored")
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, Validate(&cfg))
}

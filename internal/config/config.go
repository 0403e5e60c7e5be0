package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"brd-tui/internal/brd"
)

// StorageConfig holds database settings.
type StorageConfig struct {
	// DBPath is relative to the workspace unless absolute.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// LLMConfig holds suggestion gateway settings.
type LLMConfig struct {
	BaseURL             string  `json:"base_url" yaml:"base_url"`
	DefaultModel        string  `json:"default_model" yaml:"default_model"`
	Temperature         float64 `json:"temperature" yaml:"temperature"`
	TimeoutSeconds      int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	ProbeTimeoutSeconds int     `json:"probe_timeout_seconds" yaml:"probe_timeout_seconds"`
	Stream              bool    `json:"stream" yaml:"stream"`
	MaxInFlight         int     `json:"max_in_flight" yaml:"max_in_flight"`
}

// Timeout returns the generation timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProbeTimeout returns the connectivity probe timeout as a duration.
func (c LLMConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level"`
	MaxSizeMB int    `json:"max_size_mb" yaml:"max_size_mb"`
}

// ServerConfig holds settings for the local JSON API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Config is the top-level configuration for brd-tui.
// Stored as config.json (or config.yaml) inside the workspace.
type Config struct {
	Storage StorageConfig `json:"storage" yaml:"storage"`
	LLM     LLMConfig     `json:"llm" yaml:"llm"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			DBPath: "brd.db",
		},
		LLM: LLMConfig{
			BaseURL:             "http://localhost:11434",
			DefaultModel:        string(brd.ModelLlama32),
			Temperature:         brd.DefaultTemperature,
			TimeoutSeconds:      300,
			ProbeTimeoutSeconds: 2,
			Stream:              true,
			MaxInFlight:         1,
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8765",
		},
	}
}

// Load reads a config from path and merges it with defaults so that any
// missing fields receive their default values. Files ending in .yaml or
// .yml are read as YAML, anything else as JSON. If the file does not
// exist, a fully-default Config is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	EnsureDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to path in the format its extension selects.
// Parent directories are created if they do not already exist.
func Save(cfg *Config, path string) error {
	if err := saveFile(path, cfg, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Environment variables that override file settings.
const (
	EnvOllamaURL = "BRD_OLLAMA_URL"
	EnvModel     = "BRD_MODEL"
	EnvDBPath    = "BRD_DB_PATH"
	EnvExportDir = "BRD_EXPORT_DIR"
	EnvLogLevel  = "BRD_LOG_LEVEL"
)

// ApplyEnv overrides cfg with any non-empty BRD_* environment variables.
// Callers should Validate afterwards.
func ApplyEnv(cfg *Config) {
	for env, dst := range map[string]*string{
		EnvOllamaURL: &cfg.LLM.BaseURL,
		EnvModel:     &cfg.LLM.DefaultModel,
		EnvDBPath:    &cfg.Storage.DBPath,
		EnvExportDir: &cfg.Export.Dir,
		EnvLogLevel:  &cfg.Logging.Level,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
}

// isValidLogLevel reports whether s is an acceptable logging.level value.
func isValidLogLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// Validate checks cfg for constraint violations and returns a combined error
// describing every problem found, or nil if the config is valid.
func Validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, "storage.db_path must not be empty")
	}

	if !strings.HasPrefix(cfg.LLM.BaseURL, "http://") && !strings.HasPrefix(cfg.LLM.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("llm.base_url must be an http(s) URL; got %q", cfg.LLM.BaseURL))
	}

	if !brd.ModelName(cfg.LLM.DefaultModel).Valid() {
		errs = append(errs, fmt.Sprintf("llm.default_model must be one of %s; got %q",
			strings.Join(modelNames(), ", "), cfg.LLM.DefaultModel))
	}

	if cfg.LLM.Temperature < brd.MinTemperature || cfg.LLM.Temperature > brd.MaxTemperature {
		errs = append(errs, fmt.Sprintf("llm.temperature must be between %g and %g; got %g",
			brd.MinTemperature, brd.MaxTemperature, cfg.LLM.Temperature))
	}

	if cfg.LLM.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("llm.timeout_seconds must be >= 1; got %d", cfg.LLM.TimeoutSeconds))
	}

	if cfg.LLM.ProbeTimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("llm.probe_timeout_seconds must be >= 1; got %d", cfg.LLM.ProbeTimeoutSeconds))
	}

	if cfg.LLM.MaxInFlight < 1 {
		errs = append(errs, fmt.Sprintf("llm.max_in_flight must be >= 1; got %d", cfg.LLM.MaxInFlight))
	}

	if strings.TrimSpace(cfg.Export.Dir) == "" {
		errs = append(errs, "export.dir must not be empty")
	}

	if !isValidLogLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Sprintf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level))
	}

	if cfg.Logging.MaxSizeMB < 1 {
		errs = append(errs, fmt.Sprintf("logging.max_size_mb must be >= 1; got %d", cfg.Logging.MaxSizeMB))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	return nil
}

func modelNames() []string {
	out := make([]string, len(brd.AllModelNames))
	for i, m := range brd.AllModelNames {
		out[i] = string(m)
	}
	return out
}

// EnsureDefaults fills in zero-value string fields in cfg with their default
// values. Numeric fields are left alone: Load already decodes on top of
// DefaultConfig, so a zero there was written on purpose and Validate
// reports it.
func EnsureDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = d.Storage.DBPath
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = d.LLM.BaseURL
	}
	if cfg.LLM.DefaultModel == "" {
		cfg.LLM.DefaultModel = d.LLM.DefaultModel
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = d.Export.Dir
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
}

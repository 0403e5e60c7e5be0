package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"brd-tui/internal/config"
	"brd-tui/internal/db"
	"brd-tui/internal/logging"
	"brd-tui/internal/suggest"
)

// Options controls how Open sets up the application.
type Options struct {
	// Workspace is the directory holding config, database, logs and
	// exports. Empty means DefaultWorkspace().
	Workspace string
	// ConfigPath overrides <workspace>/config.json.
	ConfigPath string
	// LogToConsole mirrors every log line to stderr.
	LogToConsole bool
}

// App holds all application-wide state for brd-tui.
// It is created once and shared with the TUI, web and CLI layers.
type App struct {
	mu sync.RWMutex

	workspace  string
	configPath string
	statePath  string

	db       *db.DB
	config   *config.Config
	state    *config.State
	logs     *logging.Manager
	gateway  *suggest.Client
	metrics  *suggest.Metrics
	registry *prometheus.Registry

	listeners []func(Change)
}

// Open creates the workspace if needed and loads config, state, logging,
// the database, and the suggestion gateway.
func Open(ctx context.Context, opts Options) (*App, error) {
	ws := opts.Workspace
	if ws == "" {
		var err error
		if ws, err = DefaultWorkspace(); err != nil {
			return nil, err
		}
	}
	ws, err := filepath.Abs(ws)
	if err != nil {
		return nil, fmt.Errorf("app: resolve workspace: %w", err)
	}
	if err := os.MkdirAll(ws, 0o755); err != nil {
		return nil, fmt.Errorf("app: create workspace %s: %w", ws, err)
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = filepath.Join(ws, "config.json")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	config.ApplyEnv(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("app: environment: %w", err)
	}

	statePath := filepath.Join(ws, "state.json")
	state, err := config.LoadState(statePath)
	if err != nil {
		return nil, fmt.Errorf("app: load state: %w", err)
	}

	logs, err := logging.NewManager(ws, cfg.Logging.Level, cfg.Logging.MaxSizeMB, opts.LogToConsole)
	if err != nil {
		return nil, fmt.Errorf("app: init logging: %w", err)
	}

	database, err := db.Open(resolve(ws, cfg.Storage.DBPath), db.WithLogger(logs.Store))
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("app: open db: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{
		workspace:  ws,
		configPath: cfgPath,
		statePath:  statePath,
		db:         database,
		config:     cfg,
		state:      state,
		logs:       logs,
		metrics:    suggest.NewMetrics(reg),
		registry:   reg,
	}
	a.gateway = a.newGateway(cfg)

	logs.System.Info("app: workspace opened", "workspace", ws, "db", resolve(ws, cfg.Storage.DBPath))
	return a, nil
}

// resolve joins relative paths onto the workspace.
func resolve(ws, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ws, p)
}

func (a *App) newGateway(cfg *config.Config) *suggest.Client {
	return suggest.New(suggest.Options{
		BaseURL:      cfg.LLM.BaseURL,
		Timeout:      cfg.LLM.Timeout(),
		ProbeTimeout: cfg.LLM.ProbeTimeout(),
		Stream:       cfg.LLM.Stream,
		MaxInFlight:  cfg.LLM.MaxInFlight,
		Logger:       a.logs.Gateway,
		Metrics:      a.metrics,
	})
}

// DB returns the project store.
func (a *App) DB() *db.DB { return a.db }

// Config returns a copy of the active configuration.
func (a *App) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.config
}

// State returns a copy of the lightweight UI state.
func (a *App) State() config.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st := *a.state
	st.RecentProjects = append([]string(nil), a.state.RecentProjects...)
	return st
}

// Logs returns the logging manager.
func (a *App) Logs() *logging.Manager { return a.logs }

// Gateway returns the current suggestion client.
func (a *App) Gateway() *suggest.Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gateway
}

// Registry returns the Prometheus registry holding the app's metrics.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Workspace returns the workspace directory.
func (a *App) Workspace() string { return a.workspace }

// ExportDir returns the resolved default export directory.
func (a *App) ExportDir() string {
	return resolve(a.workspace, a.Config().Export.Dir)
}

// UpdateConfig validates cfg, writes it to the config file, and applies
// it. Gateway settings take effect for the next request; storage and
// logging paths take effect on the next start.
func (a *App) UpdateConfig(cfg config.Config) error {
	config.EnsureDefaults(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return err
	}
	if err := config.Save(&cfg, a.configPath); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	a.mu.Lock()
	a.config = &cfg
	a.gateway = a.newGateway(&cfg)
	a.mu.Unlock()

	a.logs.SetLevel(cfg.Logging.Level)
	a.logs.System.Info("app: config updated", "base_url", cfg.LLM.BaseURL, "model", cfg.LLM.DefaultModel)
	return nil
}

// Close cleanly shuts down all resources.
func (a *App) Close() error {
	var errs []error

	a.mu.Lock()
	if a.state != nil && a.statePath != "" {
		if err := config.SaveState(a.state, a.statePath); err != nil {
			errs = append(errs, fmt.Errorf("app: save state: %w", err))
		}
	}
	a.mu.Unlock()

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close db: %w", err))
		}
	}

	if a.logs != nil {
		a.logs.System.Info("app: closed")
		if err := a.logs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close logs: %w", err))
		}
	}

	return errors.Join(errs...)
}

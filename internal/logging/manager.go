package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Manager owns every log category used by brd-tui. The layout under the
// workspace is:
//
//	<workspace>/logs/system.log   startup, config and shutdown
//	<workspace>/logs/store.log    database warnings (dropped blocks, migrations)
//	<workspace>/logs/gateway.log  suggestion requests and failures
//	<workspace>/logs/audit.log    project create, save, delete and export
type Manager struct {
	System  *Logger
	Store   *Logger
	Gateway *Logger
	Audit   *Logger

	logDir string
}

// NewManager creates <workspace>/logs and opens the four loggers.
func NewManager(workspace string, level string, maxSizeMB int, toConsole bool) (*Manager, error) {
	logDir := filepath.Join(workspace, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: mkdir %s: %w", logDir, err)
	}

	m := &Manager{logDir: logDir}
	for _, c := range []struct {
		name string
		dst  **Logger
	}{
		{"system", &m.System},
		{"store", &m.Store},
		{"gateway", &m.Gateway},
		{"audit", &m.Audit},
	} {
		l, err := NewLogger(filepath.Join(logDir, c.name+".log"), level, maxSizeMB, toConsole)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("logging: %s logger: %w", c.name, err)
		}
		*c.dst = l
	}
	return m, nil
}

// NopManager returns a Manager whose loggers discard everything.
func NopManager() *Manager {
	return &Manager{System: Nop(), Store: Nop(), Gateway: Nop(), Audit: Nop()}
}

// Dir returns the log directory, or "" for a NopManager.
func (m *Manager) Dir() string { return m.logDir }

// SetLevel changes the level of every logger.
func (m *Manager) SetLevel(level string) {
	for _, l := range m.all() {
		l.SetLevel(level)
	}
}

func (m *Manager) all() []*Logger {
	var out []*Logger
	for _, l := range []*Logger{m.System, m.Store, m.Gateway, m.Audit} {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Close closes every logger.
func (m *Manager) Close() error {
	var errs []error
	for _, l := range m.all() {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

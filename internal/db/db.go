package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateMu serializes schema migration across every store opened by
// this process.
var migrateMu sync.Mutex

// Logger is the subset of the logging package the store writes to.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Option configures a DB.
type Option func(*DB)

// WithLogger routes store warnings (for example a dropped corrupt
// collection) to l.
func WithLogger(l Logger) Option {
	return func(d *DB) { d.log = l }
}

// DB wraps a *sql.DB connection to the brd-tui SQLite database.
type DB struct {
	conn *sql.DB
	log  Logger
}

// Open creates or opens the SQLite database at dbPath, enables foreign keys,
// and runs all pending migrations.
func Open(dbPath string, opts ...Option) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "open", Err: fmt.Errorf("create db directory: %w", err)}
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}

	// SQLite does not support concurrent writers, and pragmas below are
	// per connection.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, &PersistenceError{Op: "open", Err: fmt.Errorf("%s: %w", pragma, err)}
		}
	}

	d := newDB(sqlDB, opts...)
	if err := d.RunMigrations(context.Background()); err != nil {
		sqlDB.Close()
		return nil, &PersistenceError{Op: "migrate", Err: err}
	}
	return d, nil
}

func newDB(conn *sql.DB, opts ...Option) *DB {
	d := &DB{conn: conn, log: nopLogger{}}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// RunMigrations executes the embedded SQL files, which only use IF NOT
// EXISTS and so are safe to re-run, then adds any project columns an
// older database lacks.
func (d *DB) RunMigrations(ctx context.Context) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := d.conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", entry.Name(), err)
		}
	}
	return d.ensureColumns(ctx)
}

// evolvedColumns were added after the first release of the projects
// table. Their defaults keep old rows loadable.
var evolvedColumns = []struct {
	name string
	ddl  string
}{
	{"template_type", "TEXT NOT NULL DEFAULT 'Normal'"},
	{"ui_specs_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"api_specs_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"llm_prompts_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"db_schema_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"tech_stack_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"traceability_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"agent_architectures_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"agent_configurations_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"agent_tasks_json", "TEXT NOT NULL DEFAULT '[]'"},
	{"multi_agent_json", "TEXT NOT NULL DEFAULT ''"},
}

func (d *DB) ensureColumns(ctx context.Context) error {
	present, err := d.columns(ctx, "projects")
	if err != nil {
		return err
	}
	for _, col := range evolvedColumns {
		if present[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE projects ADD COLUMN %s %s", col.name, col.ddl)
		if _, err := d.conn.ExecContext(ctx, stmt); err != nil {
			// Another process may have added it since we looked.
			if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
				continue
			}
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
		d.log.Info("added missing column", "table", "projects", "column", col.name)
	}
	return nil
}

func (d *DB) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := d.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// logLevel represents the severity of a log message.
type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
	levelOff
)

// String returns the human-readable tag for the level (e.g. "DEBUG").
func (l logLevel) String() string {
	switch l {
	case levelDebug:
		return "DEBUG"
	case levelWarn:
		return "WARN"
	case levelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// parseLevel converts a string level name to the internal logLevel value.
// Unrecognised strings default to levelInfo.
func parseLevel(s string) logLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Logger is a thread-safe, level-filtered logger that writes one line per
// entry:
//
//	2024-03-09T14:05:07Z [WARN] dropping malformed block project=proj-1 block=ui_specs
//
// Arguments after the message are key/value pairs. When writing to a file
// the logger rotates it once it passes its size threshold.
type Logger struct {
	mu        sync.Mutex
	filePath  string
	file      *os.File
	logger    *log.Logger
	level     atomic.Int32
	maxBytes  int64
	toConsole bool
}

// NewLogger opens (or creates) the log file at path and returns a ready
// Logger. level is one of "debug", "info", "warn", "error". maxSizeMB is
// the file size in megabytes that triggers rotation. When toConsole is
// true every line is also printed to stderr.
func NewLogger(path string, level string, maxSizeMB int, toConsole bool) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}

	l := &Logger{
		filePath:  path,
		file:      f,
		logger:    log.New(f, "", 0),
		maxBytes:  int64(maxSizeMB) * 1024 * 1024,
		toConsole: toConsole,
	}
	l.level.Store(int32(parseLevel(level)))
	return l, nil
}

// NewWriterLogger returns a Logger writing to w without rotation.
func NewWriterLogger(w io.Writer, level string) *Logger {
	l := &Logger{logger: log.New(w, "", 0)}
	l.level.Store(int32(parseLevel(level)))
	return l
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	l := &Logger{logger: log.New(io.Discard, "", 0)}
	l.level.Store(int32(levelOff))
	return l
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(level string) {
	l.level.Store(int32(parseLevel(level)))
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.logMsg(levelDebug, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.logMsg(levelInfo, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.logMsg(levelWarn, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.logMsg(levelError, msg, args...)
}

func (l *Logger) logMsg(lvl logLevel, msg string, args ...any) {
	if lvl < logLevel(l.level.Load()) {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(lvl.String())
	b.WriteString("] ")
	b.WriteString(msg)
	writeAttrs(&b, args)
	line := b.String()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.checkRotate()
	}
	l.logger.Output(0, line)

	if l.toConsole {
		fmt.Fprintln(os.Stderr, line)
	}
}

// writeAttrs appends " key=value" for each pair. A trailing key without a
// value is written under "!BADKEY".
func writeAttrs(b *strings.Builder, args []any) {
	for i := 0; i < len(args); i += 2 {
		key, val := "!BADKEY", args[i]
		if i+1 < len(args) {
			key, val = fmt.Sprint(args[i]), args[i+1]
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(quote(fmt.Sprint(val)))
	}
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// checkRotate stats the current log file and, if it exceeds the configured
// threshold, rotates it. Must be called with l.mu held.
func (l *Logger) checkRotate() {
	if l.maxBytes <= 0 {
		return
	}
	info, err := l.file.Stat()
	if err != nil || info.Size() < l.maxBytes {
		return
	}

	// The open handle stays valid on Unix after the rename.
	if err := rotate(l.filePath, maxBackups); err != nil {
		fmt.Fprintf(os.Stderr, "logging: rotation failed: %v\n", err)
		return
	}

	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: reopen after rotation failed: %v\n", err)
		return
	}

	old := l.file
	l.file = f
	l.logger.SetOutput(f)
	old.Close()
}

// Close closes the underlying log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.logger.SetOutput(io.Discard)
	return err
}

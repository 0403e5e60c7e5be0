package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, "info")

	l.Warn("dropping malformed block", "project", "proj-1", "err", errors.New("unexpected end of JSON"))
	line := strings.TrimSpace(buf.String())

	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z \[WARN\] dropping malformed block `, line)
	assert.True(t, strings.HasSuffix(line, `project=proj-1 err="unexpected end of JSON"`), line)
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, "warn")
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
	out := buf.String()
	assert.NotContains(t, out, "[DEBUG]")
	assert.NotContains(t, out, "[INFO]")
	assert.Contains(t, out, "[WARN] w")
	assert.Contains(t, out, "[ERROR] e")

	buf.Reset()
	l.SetLevel("debug")
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestOddArgs(t *testing.T) {
	var buf bytes.Buffer
	NewWriterLogger(&buf, "info").Info("x", "dangling")
	assert.Contains(t, buf.String(), "!BADKEY=dangling")
}

func TestNopWritesNothing(t *testing.T) {
	l := Nop()
	l.Error("ignored", "k", "v")
	assert.NoError(t, l.Close())
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.log")
	l, err := NewLogger(path, "info", 1, false)
	require.NoError(t, err)
	defer l.Close()

	big := strings.Repeat("x", 64*1024)
	for range 20 {
		l.Info(big)
	}

	_, err = os.Stat(path + ".1")
	require.NoError(t, err, "expected a rotated backup")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(1024*1024))
}

func TestRotateKeepsBoundedBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	for i := range maxBackups + 3 {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		require.NoError(t, rotate(path, maxBackups))
	}
	for i := 1; i <= maxBackups; i++ {
		_, err := os.Stat(path + "." + string(rune('0'+i)))
		assert.NoError(t, err)
	}
	_, err := os.Stat(path + ".6")
	assert.True(t, os.IsNotExist(err))

	newest, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, []byte{byte('a' + maxBackups + 2)}, newest)
}

func TestManager(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, "info", 10, false)
	require.NoError(t, err)

	m.Audit.Info("project saved", "project", "proj-1")
	m.Store.Warn("dropping malformed block")
	require.NoError(t, m.Close())

	for _, name := range []string{"system", "store", "gateway", "audit"} {
		_, err := os.Stat(filepath.Join(dir, "logs", name+".log"))
		assert.NoError(t, err, name)
	}
	audit, err := os.ReadFile(filepath.Join(dir, "logs", "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(audit), "project saved project=proj-1")

	// Closed loggers are silent rather than failing.
	m.Audit.Info("after close")
	assert.NoError(t, NopManager().Close())
}

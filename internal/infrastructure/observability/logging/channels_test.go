package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level slog.Level) (*ChanneledLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{
		OutputToConsole: true,
		Writer:          &buf,
		JSONFormat:      true,
		DefaultLevel:    level,
	})
	require.NoError(t, err)
	return logger, &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestChannelAttribute(t *testing.T) {
	logger, buf := newBufferLogger(t, slog.LevelInfo)

	logger.Content().Info("row added", "pageKey", "home")
	entry := lastEntry(t, buf)
	assert.Equal(t, "content", entry["channel"])
	assert.Equal(t, "row added", entry["msg"])
	assert.Equal(t, "home", entry["pageKey"])
}

func TestChannelLevels(t *testing.T) {
	logger, buf := newBufferLogger(t, slog.LevelInfo)

	logger.Database().Debug("hidden")
	assert.Empty(t, buf.String())

	require.NoError(t, logger.SetChannelLevel(ChannelDatabase, slog.LevelDebug))
	logger.Database().Debug("shown")
	assert.Equal(t, "shown", lastEntry(t, buf)["msg"])
	assert.Equal(t, "DEBUG", logger.GetChannelLevels()["database"])
	assert.Equal(t, "INFO", logger.GetChannelLevels()["content"])

	assert.Error(t, logger.SetChannelLevel(Channel("nope"), slog.LevelDebug))
}

func TestWithContext(t *testing.T) {
	logger, buf := newBufferLogger(t, slog.LevelInfo)

	ctx := ContextWithPageKey(context.Background(), "home")
	ctx = ContextWithOperation(ctx, "addRow")
	ctx = ContextWithRequestID(ctx, "req-1")
	logger.WithContext(ChannelContent, ctx).Info("done")

	entry := lastEntry(t, buf)
	assert.Equal(t, "home", entry["pageKey"])
	assert.Equal(t, "addRow", entry["operation"])
	assert.Equal(t, "req-1", entry["requestId"])
}

func TestHelpers(t *testing.T) {
	logger, buf := newBufferLogger(t, slog.LevelInfo)

	logger.LogSlowQuery("SELECT *\n\tFROM pages", 2*time.Second)
	entry := lastEntry(t, buf)
	assert.Equal(t, "slow-query", entry["channel"])
	assert.Equal(t, "SELECT * FROM pages", entry["query"])

	logger.LogAuthOperation("login", "editor-admin", false)
	entry = lastEntry(t, buf)
	assert.Equal(t, "ed****in", entry["subject"])
	assert.Equal(t, "WARN", entry["level"])

	logger.LogError(ChannelContent, "save", errors.New("boom"), map[string]any{"pageKey": "home"})
	entry = lastEntry(t, buf)
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "ERROR", entry["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

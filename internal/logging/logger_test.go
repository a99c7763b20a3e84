package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func TestWithSessionKey_AttachesField(t *testing.T) {
	buf := captureDefault(t)

	WithSessionKey("abc-123").Info("device connected")

	assert.Contains(t, buf.String(), "session_key=abc-123")
	assert.Contains(t, buf.String(), "device connected")
}

func TestWithGroup_AttachesField(t *testing.T) {
	buf := captureDefault(t)

	WithGroup("content-updates").Warn("subscriber dropped")

	assert.Contains(t, buf.String(), "group=content-updates")
	assert.Contains(t, buf.String(), "subscriber dropped")
}

func TestInitLogger_LevelFiltering(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	InitLogger("warn", "text")

	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "debug", nil)

	m.Logger().Debug("debug msg")
	m.Logger().Info("info msg")

	output := buf.String()
	assert.Contains(t, output, "debug msg")
	assert.Contains(t, output, "info msg")
}

func TestSetup_InfoLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	m.Logger().Debug("should be filtered")
	m.Logger().Info("should appear")

	output := buf.String()
	assert.NotContains(t, output, "should be filtered")
	assert.Contains(t, output, "should appear")
}

func TestSetup_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "chatty", nil)

	m.Logger().Debug("filtered")
	m.Logger().Info("kept")

	output := buf.String()
	assert.NotContains(t, output, "filtered")
	assert.Contains(t, output, "kept")
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager()

	m.Setup(&buf1, "info", nil)
	m.Logger().Info("first")

	m.Setup(&buf2, "info", nil)
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second", "old file should not receive new logs")
	assert.Contains(t, buf2.String(), "second")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	logger := m.Logger()
	assert.Equal(t, slog.Default(), logger)
}

func TestFlush_NilProvider(t *testing.T) {
	m := NewSlogManager()
	err := m.Flush(context.Background())
	assert.NoError(t, err)
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	handler := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		nil,
		slog.NewTextHandler(&b, nil),
	)
	logger := slog.New(handler)
	logger.Info("broadcast")

	assert.Contains(t, a.String(), "broadcast")
	assert.Contains(t, b.String(), "broadcast")
}

func TestMultiHandler_RespectsPerHandlerLevel(t *testing.T) {
	var quiet, loud bytes.Buffer
	handler := NewMultiHandler(
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&loud, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(handler)
	logger.Info("routine")

	assert.NotContains(t, quiet.String(), "routine")
	assert.Contains(t, loud.String(), "routine")
}

func TestContextHandler_InjectsSessionAttrs(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	handler := NewContextHandler(inner, AttrSourceFunc(func() []slog.Attr {
		return []slog.Attr{
			slog.String("session", "oresund"),
			slog.String("virtual_time", "2024-01-01T10:05:00Z"),
		}
	}))
	logger := slog.New(handler)
	logger.Info("tick")

	output := buf.String()
	assert.Contains(t, output, "session=oresund")
	assert.Contains(t, output, "virtual_time=2024-01-01T10:05:00Z")
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ronitphilip/zoom-backend/internal/middleware"
)

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	ctx := middleware.WithRequestID(context.Background(), "req-123")
	l.WithContext(ctx).Error("request failed")

	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestWithContextWithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	l.WithContext(context.Background()).Error("request failed")

	assert.NotContains(t, buf.String(), "request_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

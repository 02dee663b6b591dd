package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSONOutputCarriesServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "food-delivery", "info", "json")

	ctx := WithRequestID(context.Background(), "req-1")
	FromContext(ctx, l).Info("order placed", slog.Int64("order_id", 7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "food-delivery", rec["service"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "order placed", rec["msg"])
	assert.EqualValues(t, 7, rec["order_id"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "svc", "info", "text")
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

package util

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "comment.log")
	logger, err := InitLog("comment.rpc", slog.LevelDebug, path)
	require.NoError(t, err)

	SetTrace(context.Background(), logger).Info("hello", "postId", 1)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	line := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &line))
	assert.Equal(t, "comment.rpc", line["ServiceName"])
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "00000000000000000000000000000000", line["TraceId"])
	detail, ok := line["detail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), detail["postId"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

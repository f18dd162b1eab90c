package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogger(Options{Level: "info", Format: "json", Stderr: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("visible", Tool("send_email"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "visible", rec["msg"])
	assert.Equal(t, "send_email", rec[KeyTool])
}

func TestNewLoggerWritesFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "outlook-mcp.log")
	logger, closer, err := NewLogger(Options{Format: "text", File: path, MaxSizeMB: 1, Stderr: &buf})
	require.NoError(t, err)

	logger.Info("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, buf.String(), "hello file")
}

func TestNewLoggerRejectsBadOptions(t *testing.T) {
	_, _, err := NewLogger(Options{Format: "xml"})
	assert.Error(t, err)
	_, _, err = NewLogger(Options{Level: "chatty"})
	assert.Error(t, err)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
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
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNew_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("stream finalized", "message_id", "assistant-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stream finalized", entry["msg"])
	assert.Equal(t, "assistant-1", entry["message_id"])
}

func TestNew_VerboseAndQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "error", Format: "text", Output: &buf, Verbose: true})
	require.NoError(t, err)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	logger, _, err = New(Options{Level: "debug", Format: "text", Output: &buf, Quiet: true})
	require.NoError(t, err)
	logger.Warn("suppressed")
	assert.Empty(t, buf.String())
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "opsdesk.log")
	logger, closer, err := New(Options{Format: "text", Path: path})
	require.NoError(t, err)

	logger.Info("hello from the tui")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the tui")
}

func TestNew_BadFormat(t *testing.T) {
	_, _, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

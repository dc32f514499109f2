package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"warning level", "warning", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"invalid level", "invalid", slog.LevelInfo},
		{"empty string", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLoggerConsoleJSON(t *testing.T) {
	var buf bytes.Buffer

	logger, closer, err := NewLogger(Config{Level: slog.LevelInfo, Console: true}, &buf)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("job finished", "job", "collect-gbp", "duration_ms", 12)

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("Expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "job finished" {
		t.Errorf("Expected msg 'job finished', got %v", record["msg"])
	}
	if record["job"] != "collect-gbp" {
		t.Errorf("Expected job attribute, got %v", record["job"])
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "seodash.log")

	logger, closer, err := NewLogger(Config{
		Level:      slog.LevelDebug,
		FilePath:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
	}, nil)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("test message")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Log file was not created: %v", err)
	}
	if !bytes.Contains(content, []byte("test message")) {
		t.Errorf("Log file does not contain message: %q", content)
	}
}

func TestNewLoggerNoOutputsFallsBackToConsole(t *testing.T) {
	var buf bytes.Buffer

	logger, _, err := NewLogger(Config{Level: slog.LevelInfo}, &buf)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.Info("hello")

	if buf.Len() == 0 {
		t.Error("Expected console output when no writers are configured")
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, _, _ := NewLogger(Config{Level: slog.LevelInfo, Console: true}, &buf)

	ctx := WithContext(context.Background(), logger.With("request_id", "abc"))
	ForJob(ctx, "collect-videos").Info("start")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if record["request_id"] != "abc" || record["job"] != "collect-videos" {
		t.Errorf("Expected request_id and job attributes, got %v", record)
	}

	if FromContext(context.Background()) != slog.Default() {
		t.Error("Expected default logger for empty context")
	}
}

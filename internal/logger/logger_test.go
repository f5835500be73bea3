package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")

	err := Init(Config{
		Debug:     false,
		ConfigDir: configDir,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Error("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitCustomLogDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "elsewhere")

	if err := Init(Config{ConfigDir: "unused", LogDir: logDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	Warn("written to custom dir")

	if _, err := os.Stat(filepath.Join(logDir, "medweek.log")); err != nil {
		t.Errorf("expected log file in %s: %v", logDir, err)
	}
	if got := File(); got != filepath.Join(logDir, "medweek.log") {
		t.Errorf("File() = %q, want the custom log path", got)
	}
}

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false)

	Info("schedule created", "schedule_id", "abc")
	Debug("hidden at info level")

	out := buf.String()
	if !strings.Contains(out, "schedule created") || !strings.Contains(out, "schedule_id=abc") {
		t.Errorf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("debug message should be filtered at info level: %q", out)
	}
	if File() != "" {
		t.Errorf("File() = %q, want empty for a plain writer", File())
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

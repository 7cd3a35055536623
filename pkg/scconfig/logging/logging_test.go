package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"INFO", logging.LevelInfo, false},
		{"warning", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"", logging.LevelInfo, false},
		{"loud", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, logging.ErrInvalidLevel) {
				t.Errorf("error = %v, want ErrInvalidLevel", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// These tests share global logging state and must not run in parallel.

func TestInit_InvalidLevel(t *testing.T) {
	err := logging.Init(logging.Config{
		Level: "verbose",
		Path:  filepath.Join(t.TempDir(), "test.log"),
	})
	if err == nil {
		_ = logging.Close()
		t.Fatal("Init() error = nil, want error for invalid level")
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "scconfig.log")

	if err := logging.Init(logging.Config{Level: "info", Path: logPath}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger := logging.Get("engine")
	logger.Info("entry reconciled", "status", "OK")
	logger.Debug("hidden at info level")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "entry reconciled") {
		t.Errorf("log file missing info record: %q", content)
	}
	if !strings.Contains(content, "engine") {
		t.Errorf("log file missing component prefix: %q", content)
	}
	if strings.Contains(content, "hidden at info level") {
		t.Errorf("log file contains debug record at info level: %q", content)
	}
}

func TestComponentLevelOverride(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "components.log")

	err := logging.Init(logging.Config{
		Level:      "warn",
		Path:       logPath,
		Components: map[string]string{"resolver": "debug"},
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logging.Get("resolver").Debug("resolver detail")
	logging.Get("engine").Info("engine chatter")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "resolver detail") {
		t.Error("expected debug record from component with debug override")
	}
	if strings.Contains(content, "engine chatter") {
		t.Error("unexpected info record from component at warn level")
	}
}

func TestConsoleMirror(t *testing.T) {
	var console bytes.Buffer

	err := logging.Init(logging.Config{
		Level:        "info",
		Path:         filepath.Join(t.TempDir(), "console.log"),
		ConsoleLevel: "warn",
		Console:      &console,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logger := logging.Get("cli")
	logger.Info("file only")
	logger.Warn("also on console")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := console.String()
	if strings.Contains(out, "file only") {
		t.Errorf("console contains info record below console level: %q", out)
	}
	if !strings.Contains(out, "also on console") {
		t.Errorf("console missing warn record: %q", out)
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	logger := logging.Get("early")
	if logger == nil {
		t.Fatal("Get() returned nil")
	}
	// Must not panic or write anywhere.
	logger.Error("dropped")

	child := logger.With("key", "value")
	if child.Component() != "early" {
		t.Errorf("Component() = %q, want %q", child.Component(), "early")
	}
}

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"venuepipe/internal/config"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "site", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"site":3`) {
		t.Fatalf("expected structured attribute: %s", out)
	}
}

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_errors.log")
	logger, closer, err := Open(config.LoggingConfig{Level: "info", File: path}, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	logger.Error("missing val", "field", "val")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "missing val") {
		t.Fatalf("log file content: %s", data)
	}
}

func TestOpenStdoutCloserIsNoop(t *testing.T) {
	logger, closer, err := Open(config.LoggingConfig{Level: "info"}, false)
	if err != nil || logger == nil {
		t.Fatalf("open: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// TestStructuredLogger_JSON tests that entries are JSON lines with context fields.
func TestStructuredLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, "json", "debug", nil)

	logger.Info("upstream call", map[string]interface{}{"method": "GET", "attempt": 1})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "upstream call" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["method"] != "GET" {
		t.Errorf("method = %v", entry["method"])
	}
}

// TestStructuredLogger_Level tests that entries below the level are dropped.
func TestStructuredLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, "text", "warn", nil)

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("shown", nil)

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("entries below warn were written: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn entry missing: %s", buf.String())
	}
}

// TestStructuredLogger_Redacts tests that secrets never reach the output.
func TestStructuredLogger_Redacts(t *testing.T) {
	var buf bytes.Buffer
	token := "log-secret-token-value"
	logger := NewStructuredLogger(&buf, "json", "debug", NewRedactor(token))

	logger.Error("failed with "+token, errors.New("auth "+BasicAuthValue(token)), map[string]interface{}{
		"url": "https://dev.azure.com/org?token=" + token,
	})

	if strings.Contains(buf.String(), token) {
		t.Errorf("log output leaks the token: %s", buf.String())
	}
	if !strings.Contains(buf.String(), MaskedSecretValue) {
		t.Errorf("log output should contain the mask: %s", buf.String())
	}
}

// TestParseLogLevel tests level name parsing.
func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for name, want := range tests {
		if got := ParseLogLevel(name); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

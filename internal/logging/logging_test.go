package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("with default output", func(t *testing.T) {
		logger := NewLogger(Config{Level: InfoLevel})
		if logger == nil {
			t.Fatal("NewLogger returned nil")
		}
	})

	t.Run("with custom output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(Config{Level: InfoLevel, Output: buf})
		if logger.writer != buf {
			t.Error("Logger should use provided output writer")
		}
	})
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		configLvl Level
		logLvl    Level
		shouldLog bool
	}{
		{"debug logs debug", DebugLevel, DebugLevel, true},
		{"debug logs error", DebugLevel, ErrorLevel, true},
		{"info skips debug", InfoLevel, DebugLevel, false},
		{"info logs info", InfoLevel, InfoLevel, true},
		{"warn skips info", WarnLevel, InfoLevel, false},
		{"warn logs warn", WarnLevel, WarnLevel, true},
		{"error skips warn", ErrorLevel, WarnLevel, false},
		{"error logs error", ErrorLevel, ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewLogger(Config{Level: tt.configLvl, Output: buf})

			logger.log(tt.logLvl, "test message", nil)

			got := buf.Len() > 0
			if got != tt.shouldLog {
				t.Errorf("logged=%v, expected %v", got, tt.shouldLog)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Format: JSONFormat, Level: DebugLevel, Output: buf})

	logger.Info("resolved changes", Fields{"base": "main", "count": 3})

	var e map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if e["level"] != "info" {
		t.Errorf("level = %v, expected info", e["level"])
	}
	if e["message"] != "resolved changes" {
		t.Errorf("message = %v", e["message"])
	}
	fields, ok := e["fields"].(map[string]interface{})
	if !ok {
		t.Fatal("fields missing from JSON entry")
	}
	if fields["base"] != "main" {
		t.Errorf("fields.base = %v", fields["base"])
	}
}

func TestHumanFormatSortsFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Config{Format: HumanFormat, Level: DebugLevel, Output: buf})

	logger.Debug("hello", Fields{"zeta": 1, "alpha": 2})

	out := buf.String()
	if !strings.Contains(out, "[debug] hello") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Index(out, "alpha") > strings.Index(out, "zeta") {
		t.Errorf("fields not sorted: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != JSONFormat {
		t.Error("ParseFormat(json) should be JSONFormat")
	}
	if ParseFormat("human") != HumanFormat {
		t.Error("ParseFormat(human) should be HumanFormat")
	}
	if ParseFormat("") != HumanFormat {
		t.Error("ParseFormat empty should default to HumanFormat")
	}
}

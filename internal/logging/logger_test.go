package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_ShouldLog(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		logLevel Level
		want     bool
	}{
		{"debug logs when min is debug", LevelDebug, LevelDebug, true},
		{"error logs when min is debug", LevelDebug, LevelError, true},
		{"debug does not log when min is info", LevelInfo, LevelDebug, false},
		{"info logs when min is info", LevelInfo, LevelInfo, true},
		{"info does not log when min is error", LevelError, LevelInfo, false},
		{"error logs when min is error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.minLevel)
			if got := logger.shouldLog(tt.logLevel); got != tt.want {
				t.Errorf("shouldLog() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelInfo, &buf)

	logger.Log(LevelInfo, "gpu.device.count", "Found GPU devices", map[string]interface{}{
		"count": 2,
	})

	var event Event
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if event.Level != LevelInfo {
		t.Errorf("Expected level %s, got %s", LevelInfo, event.Level)
	}
	if event.Type != "gpu.device.count" {
		t.Errorf("Expected type 'gpu.device.count', got %s", event.Type)
	}
	if event.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
	if count, ok := event.Payload["count"].(float64); !ok || count != 2 {
		t.Errorf("Expected payload count 2, got %v", event.Payload["count"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(LevelWarn, &buf)

	logger.Debug("test.debug", "Debug message", nil)
	logger.Info("test.info", "Info message", nil)
	logger.Warn("test.warn", "Warn message", nil)
	logger.Error("test.error", "Error message", map[string]interface{}{"code": 500})

	output := buf.String()
	if strings.Contains(output, "test.debug") || strings.Contains(output, "test.info") {
		t.Errorf("Expected debug and info to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "test.warn") || !strings.Contains(output, "test.error") {
		t.Errorf("Expected warn and error events, got: %s", output)
	}
	if !strings.Contains(output, "500") {
		t.Errorf("Expected payload in output, got: %s", output)
	}
}

func TestNilLogger(t *testing.T) {
	var logger *Logger

	// Must not panic.
	logger.Info("test.nil", "dropped", nil)
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nil logger returned %v", err)
	}
}

func TestDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	logger.Error("test.discard", "dropped", nil)
	if err := logger.Close(); err != nil {
		t.Errorf("Close on discard logger returned %v", err)
	}
}

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "gpuprobe", "probe.log")

	logger, err := NewFileLogger(LevelInfo, logPath)
	if err != nil {
		t.Fatalf("Failed to create file logger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}

func TestFileLogger_WritesJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "probe.log")

	logger, err := NewFileLogger(LevelInfo, logPath)
	if err != nil {
		t.Fatalf("Failed to create file logger: %v", err)
	}

	logger.Info("report.done", "Report written", map[string]interface{}{"available": false})

	if closeErr := logger.Close(); closeErr != nil {
		t.Fatalf("Failed to close logger: %v", closeErr)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var event Event
	if err := json.Unmarshal(content, &event); err != nil {
		t.Fatalf("Log content is not valid JSON: %v", err)
	}
	if event.Type != "report.done" {
		t.Errorf("Expected type 'report.done', got %s", event.Type)
	}
	if event.Message != "Report written" {
		t.Errorf("Expected message 'Report written', got %s", event.Message)
	}
}

func TestFileLogger_Append(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "probe.log")

	for _, eventType := range []string{"test.first", "test.second"} {
		logger, err := NewFileLogger(LevelInfo, logPath)
		if err != nil {
			t.Fatalf("Failed to create file logger: %v", err)
		}
		logger.Info(eventType, "message", nil)
		if closeErr := logger.Close(); closeErr != nil {
			t.Fatalf("Failed to close logger: %v", closeErr)
		}
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "test.first") {
		t.Error("First event was not found")
	}
	if !strings.Contains(contentStr, "test.second") {
		t.Error("Second event was not appended")
	}
}

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"performersync/internal/config"
	"performersync/internal/logging"
	"performersync/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "run.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("written to file", logging.String("k", "v"))

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", content, err)
	}
	if entry["msg"] != "written to file" || entry["k"] != "v" {
		t.Fatalf("unexpected file entry: %v", entry)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "dedup").Info("message without caller", logging.Int("groups", 2))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if !strings.Contains(line, "INFO dedup: message without caller groups=2") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestPluginLoggerUsesLineProtocol(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "plugin.log")

	logger, err := logging.New(logging.Options{Format: "plugin", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("renamed", logging.String("to", "Hanako T."))
	logger.Warn("registry missing")
	logger.Error("update failed\nsecond line")
	logger.Debug("dropped")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), content)
	}
	if lines[0] != "\x03renamed to=\"Hanako T.\"" {
		t.Fatalf("unexpected info line %q", lines[0])
	}
	if lines[1] != "\x04registry missing" {
		t.Fatalf("unexpected warn line %q", lines[1])
	}
	if lines[2] != "\x05update failed second line" {
		t.Fatalf("unexpected error line %q", lines[2])
	}
}

func TestPluginProgressClampsFraction(t *testing.T) {
	var buf bytes.Buffer
	progress := logging.PluginProgress(&buf)
	progress(-1)
	progress(0.5)
	progress(2)
	if got := buf.String(); got != "\x060.00\n\x060.50\n\x061.00\n" {
		t.Fatalf("unexpected progress output %q", got)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "sync")
	ctx = services.WithPerformerID(ctx, "77")

	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WithContext(ctx, logger).Info("contextual log")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	for key, want := range map[string]string{
		logging.FieldRunID:       "run-1",
		logging.FieldStage:       "sync",
		logging.FieldPerformerID: "77",
	} {
		if entry[key] != want {
			t.Fatalf("field %s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestProgressSamplerSteps(t *testing.T) {
	sampler := logging.NewProgressSampler(0.10)
	steps := []struct {
		stage    string
		fraction float64
		want     bool
	}{
		{"sync", 0, true},
		{"sync", 0.05, false},
		{"sync", 0.12, true},
		{"post-merge", 0.12, true},
		{"post-merge", 0.99, true},
		{"post-merge", 1, true},
		{"post-merge", 1, false},
	}
	for i, step := range steps {
		if _, got := sampler.Sample(step.stage, step.fraction); got != step.want {
			t.Fatalf("step %d (%s %.2f): got %v, want %v", i, step.stage, step.fraction, got, step.want)
		}
	}
}

func TestPluginProgressSuppressesSubPercentSteps(t *testing.T) {
	var buf bytes.Buffer
	progress := logging.PluginProgress(&buf)
	for i := 0; i <= 1000; i++ {
		progress(float64(i) / 1000)
	}
	lines := strings.Count(buf.String(), "\x06")
	if lines < 90 || lines > 101 {
		t.Fatalf("expected roughly one line per percent, got %d", lines)
	}
	if !strings.HasSuffix(buf.String(), "\x061.00\n") {
		t.Fatalf("expected final progress line, got tail %q", buf.String()[max(0, buf.Len()-12):])
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "no canonical registry", "registry_missing")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("expected %s in %v", key, entry)
		}
	}
}

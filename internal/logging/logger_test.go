package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"anicat/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "anicat.log")

	logger, err := New(Options{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("ingest started", String("sort", "all"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"msg":"ingest started"`) {
		t.Fatalf("log output missing message: %s", content)
	}
	if !strings.Contains(content, `"sort":"all"`) {
		t.Fatalf("log output missing attribute: %s", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithPage(context.Background(), 4)
	ctx = services.WithItemID(ctx, "one-piece-100")
	ctx = services.WithStage(ctx, "reconciling")

	fields := ContextFields(ctx)
	keys := make(map[string]bool, len(fields))
	for _, attr := range fields {
		keys[attr.Key] = true
	}
	for _, key := range []string{FieldPage, FieldItemID, FieldStage} {
		if !keys[key] {
			t.Errorf("missing context field %s", key)
		}
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must not panic.
	logger.Info("noop")
}

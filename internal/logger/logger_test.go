package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "item", "foo-bar")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info record to be filtered, got %q", out)
	}

	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "item=foo-bar") {
		t.Errorf("Expected warn record with attribute, got %q", out)
	}

	child := log.With("source", "prostoprosport")
	log.SetLevel("debug")
	child.Debug("now visible")

	if !strings.Contains(buf.String(), "source=prostoprosport") {
		t.Errorf("Expected child logger to follow parent level, got %q", buf.String())
	}
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer

	NewLoggerWithWriter(&buf, "info").WithRun("fetch-news").Info("start")

	out := buf.String()
	if !strings.Contains(out, "run=") || !strings.Contains(out, "command=fetch-news") {
		t.Errorf("Expected run and command attributes, got %q", out)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer

	progress := NewLoggerWithWriter(&buf, "info").NewProgress("Fetch progress", 5, 2)
	for i := 0; i < 5; i++ {
		progress.Step()
	}

	out := buf.String()
	for _, want := range []string{"done=2", "done=4", "done=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in progress output, got %q", want, out)
		}
	}

	if strings.Contains(out, "done=3") {
		t.Errorf("Expected no record for item 3, got %q", out)
	}

	if progress.Done() != 5 {
		t.Errorf("Expected 5 done, got %d", progress.Done())
	}
}

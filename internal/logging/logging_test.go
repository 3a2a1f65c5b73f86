package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"mspro-labs/flat-scout/internal/config"
)

type recordingPoster struct {
	tags     []string
	messages []map[string]interface{}
}

func (p *recordingPoster) Post(tag string, message interface{}) error {
	p.tags = append(p.tags, tag)
	p.messages = append(p.messages, message.(map[string]interface{}))
	return nil
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range testCases {
		if got := ParseLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestNewJSONTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(config.LogConfig{Level: "trace", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closeFn()

	logger.Log(context.Background(), LevelTrace, "offer rejected", "reason", "missing link")
	out := buf.String()
	if !strings.Contains(out, `"level":"TRACE"`) {
		t.Errorf("expected TRACE level name, got %s", out)
	}
	if !strings.Contains(out, `"reason":"missing link"`) {
		t.Errorf("expected reason attribute, got %s", out)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(config.LogConfig{Level: "info"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Log(context.Background(), LevelTrace, "hidden")
	logger.Debug("hidden too")
	if buf.Len() != 0 {
		t.Errorf("expected no output below info, got %q", buf.String())
	}
}

func TestFluentHandler(t *testing.T) {
	p := &recordingPoster{}
	logger := slog.New(NewFluentHandler(p, "app", slog.LevelInfo)).
		With("component", "Enricher").
		WithGroup("lookup")

	logger.Debug("dropped")
	logger.Error("lookup failed", "place", "Wrocław", "error", errors.New("boom"))

	if len(p.messages) != 1 {
		t.Fatalf("expected 1 posted message, got %d", len(p.messages))
	}
	if p.tags[0] != "app.error" {
		t.Errorf("unexpected tag %s", p.tags[0])
	}
	msg := p.messages[0]
	if msg["message"] != "lookup failed" {
		t.Errorf("unexpected message %v", msg["message"])
	}
	if msg["component"] != "Enricher" {
		t.Errorf("component attr missing: %v", msg)
	}
	if msg["lookup.place"] != "Wrocław" {
		t.Errorf("grouped attr missing: %v", msg)
	}
	if msg["lookup.error"] != "boom" {
		t.Errorf("error attr should be flattened to its text: %v", msg)
	}
}

func TestFanoutRespectsEachLevel(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	h := Fanout(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h)

	logger.Debug("only debug sink")
	logger.Error("both sinks")

	if !strings.Contains(debugBuf.String(), "only debug sink") || !strings.Contains(debugBuf.String(), "both sinks") {
		t.Errorf("debug sink missing records: %s", debugBuf.String())
	}
	if strings.Contains(errorBuf.String(), "only debug sink") {
		t.Errorf("error sink received a debug record: %s", errorBuf.String())
	}
	if !strings.Contains(errorBuf.String(), "both sinks") {
		t.Errorf("error sink missing error record: %s", errorBuf.String())
	}
}

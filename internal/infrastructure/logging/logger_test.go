package logging

import (
	"log/slog"
	"testing"

	"github.com/hearth-home/hearth/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew_DoesNotPanic(t *testing.T) {
	cfgs := []config.LoggingConfig{
		{Level: "debug", Format: "text", Output: "stderr"},
		{Level: "info", Format: "json", Output: "stdout"},
		{},
	}

	for _, cfg := range cfgs {
		log := New(cfg, "test")
		if log == nil {
			t.Fatal("New() returned nil")
		}
		log.Debug("debug message", "key", "value")
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	log := Default()
	child := log.With("component", "test")
	if child == nil {
		t.Fatal("With() returned nil")
	}
	if child == log {
		t.Error("With() should return a new logger")
	}
}

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"hissab/internal/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("REMOTE_BACKEND", "none")
	t.Setenv("STATE_BACKEND", "file")
	t.Setenv("STATE_FILE_PATH", filepath.Join(t.TempDir(), "state.json"))
	t.Setenv("AMQP_URL", "")

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.RemoteBackend != "none" {
		t.Errorf("RemoteBackend = %q, want none", cfg.RemoteBackend)
	}

	t.Setenv("REMOTE_BACKEND", "carrier-pigeon")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("LoadAndValidateConfig() error = nil, want validation error")
	}
}

func TestGracefulShutdownOnParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	cleaned := make(chan struct{})

	ctx, done := GracefulShutdown(parent, log.Discard(), time.Second, func(context.Context) {
		close(cleaned)
	})
	cancelParent()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	select {
	case <-cleaned:
	default:
		t.Error("cleanup was not run")
	}
	if ctx.Err() == nil {
		t.Error("shutdown context not cancelled")
	}
}

func TestSetupLoggerSetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("debug", true)
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger does not emit debug records after SetupLogger(debug)")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("returned logger does not emit debug records")
	}

	SetupLogger("warn", false)
	if slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("default logger emits info records after SetupLogger(warn)")
	}
}

package diag

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Warn("unknown method", "reg", 0x1234)
	if !strings.Contains(buf.String(), "unknown method") {
		t.Fatalf("log output missing message: %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("SetLogger(nil) should restore the silent logger")
	}
}

func TestOr(t *testing.T) {
	own := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if Or(own) != own {
		t.Fatal("Or should keep an injected logger")
	}
	if Or(nil) != Logger() {
		t.Fatal("Or(nil) should return the shared logger")
	}
}

package videograph

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/videograph/backend/recording"
	"github.com/gogpu/videograph/binding"
	"github.com/gogpu/videograph/graph"
)

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
	if _, ok := h.WithAttrs(nil).(nopHandler); !ok {
		t.Error("nopHandler.WithAttrs() did not return nopHandler")
	}
	if _, ok := h.WithGroup("g").(nopHandler); !ok {
		t.Error("nopHandler.WithGroup() did not return nopHandler")
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

type loggingBackend struct {
	*recording.Backend
	logger *slog.Logger
}

func (b *loggingBackend) SetLogger(l *slog.Logger) { b.logger = l }

func TestSetLoggerPropagates(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	b := &loggingBackend{Backend: recording.New(4, 4)}
	e, err := New(b)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.logger != orig {
		t.Error("backend did not receive the current logger on New")
	}

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)
	if Logger() != custom {
		t.Error("Logger() did not return the custom logger")
	}
	if b.logger != custom {
		t.Error("SetLogger did not propagate to the backend")
	}

	g, _ := graph.NewBuilder().AddNode(graph.Node{Key: "n", Program: recording.NewProgram("n", nil)}).Build()
	if err := e.RenderFrame(g, binding.Runtime{}, "n"); err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "engine="+e.ID().String()) {
		t.Errorf("log output lacks engine id: %s", out)
	}
	if !strings.Contains(out, "resource: texture created") {
		t.Errorf("resource logs not routed to the custom logger: %s", out)
	}

	_ = e.Close()
	SetLogger(nil)
	if b.logger != custom {
		t.Error("closed engine's backend still receives loggers")
	}
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}

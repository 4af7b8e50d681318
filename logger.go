package videograph

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/videograph/resource"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for videograph and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by videograph:
//   - [slog.LevelDebug]: per-frame diagnostics (execution order, bindings,
//     resource allocation)
//   - [slog.LevelInfo]: lifecycle events (engine created, resize)
//   - [slog.LevelWarn]: non-fatal issues (ignored resize requests)
//
// Example:
//
//	videograph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	resource.SetLogger(l)

	sinksMu.Lock()
	defer sinksMu.Unlock()
	for s := range sinks {
		s.SetLogger(l)
	}
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

var (
	sinksMu sync.Mutex
	sinks   = make(map[loggerSetter]struct{})
)

// attachLogger hands the current logger to v if it accepts one, and keeps
// it updated until detachLogger.
func attachLogger(v any) {
	ls, ok := v.(loggerSetter)
	if !ok {
		return
	}
	sinksMu.Lock()
	sinks[ls] = struct{}{}
	sinksMu.Unlock()
	ls.SetLogger(Logger())
}

func detachLogger(v any) {
	if ls, ok := v.(loggerSetter); ok {
		sinksMu.Lock()
		delete(sinks, ls)
		sinksMu.Unlock()
	}
}

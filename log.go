package lvdisplay

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// nopHandler discards all records; Enabled reports false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	if debug {
		loggerPtr.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	} else {
		loggerPtr.Store(slog.New(nopHandler{}))
	}
}

// SetLogger configures the logger used by the drivers and transports.
//
// By default nothing is logged, unless DISPLAY_DEBUG is set in the environment, in which case debug
// records go to stderr. Pass nil to restore silence.
//
// Levels:
//   - [slog.LevelDebug]: buffer allocation, registration, every flush
//   - [slog.LevelInfo]: refresh monitoring (see [Config.MonitorFlush])
//   - [slog.LevelWarn]: transport errors that are returned to the caller
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

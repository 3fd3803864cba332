// Package cli implements the cellroute command-line interface.
//
// The commands wrap the routing pipeline:
//   - route: rip up and reroute every net of a design
//   - net: reroute a single net
//   - nets: list nets with their route cost and region
//   - render: draw the routes stored in a design
//   - serve: run the HTTP routing service
//   - cache: manage the local result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so the pipeline and router log through the
// same handler as the commands.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// timeFormat renders timestamps as "14:32:01.45".
const timeFormat = "15:04:05.00"

// newLogger returns a timestamped logger writing to w at level. Debug
// loggers also report the calling file and line.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      timeFormat,
		Level:           level,
	})
}

// progress times one command stage.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time, rounded to the
// millisecond, followed by keyvals.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append([]any{"elapsed", elapsed}, keyvals...)...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

package reactor

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Reactor at construction.
type Option func(*Reactor)

// WithLogger routes reactor diagnostics and default error-sink output
// through logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reactor) {
		r.logger = logger
	}
}

// WithErrorSink installs the sink that receives non-fatal failure reports.
// The default logs them at error level through the configured logger.
func WithErrorSink(sink ErrorSink) Option {
	return func(r *Reactor) {
		r.sink = sink
	}
}

// WithDefaultWait overrides the bounded kernel wait used when no timer
// deadline is pending.
func WithDefaultWait(d time.Duration) Option {
	return func(r *Reactor) {
		if d > 0 {
			r.defaultWait = d
		}
	}
}

// WithEventFloor overrides the minimum per-tick readiness event cap.
func WithEventFloor(n int) Option {
	return func(r *Reactor) {
		if n > 0 {
			r.eventFloor = n
		}
	}
}

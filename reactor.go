// Package reactor implements a single-threaded event reactor: it
// multiplexes readiness notifications across many file descriptors and
// schedules one-shot, recurring and zero-delay callbacks, all on one
// controlling goroutine. Exactly one callback executes at a time; the only
// suspension point is the kernel wait inside a tick. The reactor is not
// safe to share across goroutines without external synchronization.
package reactor

import (
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"
)

const (
	// DefaultWait bounds the kernel wait when no timer deadline is
	// pending, keeping the loop responsive to external state changes.
	DefaultWait = 250 * time.Millisecond

	// minPollEvents floors the per-tick readiness event cap so small
	// watch sets still receive a fair batch.
	minPollEvents = 64
)

// ErrorSink receives non-fatal reactor failures: kernel call errors
// (*SyscallError) and recovered callback panics (*CallbackError). It runs
// on the reactor goroutine and must not block.
type ErrorSink func(error)

// Reactor owns a kernel multiplexer handle, a watch set, a timer set and a
// deferred queue. Construct with New; the zero value is not usable.
type Reactor struct {
	poll     *poll
	watchers map[int]*watcher

	timers     map[TimerID]*timer
	timerSeq   TimerID
	dueScratch []*timer

	deferred   *queue.Queue
	drainTimer TimerID // pending drain trigger, 0 if none

	running bool

	logger      *zap.Logger
	sink        ErrorSink
	defaultWait time.Duration
	eventFloor  int
}

// New opens the kernel readiness context and returns a reactor. It fails
// with an *InitError when the OS facility is unavailable; the caller must
// not run with this backend then.
func New(opts ...Option) (*Reactor, error) {
	r := &Reactor{
		watchers:    make(map[int]*watcher),
		timers:      make(map[TimerID]*timer),
		deferred:    queue.New(),
		logger:      zap.NewNop(),
		defaultWait: DefaultWait,
		eventFloor:  minPollEvents,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		r.sink = func(err error) {
			r.logger.Error("reactor error", zap.Error(err))
		}
	}

	p, err := openPoll()
	if err != nil {
		return nil, err
	}
	r.poll = p
	return r, nil
}

// Start runs the tick loop until Stop is called or the reactor runs out of
// watchers and timers.
func (r *Reactor) Start() {
	r.running = true
	for r.running {
		r.Tick()
	}
}

// Stop requests the loop to end. It is observed at the top of the next
// tick iteration; a blocked kernel wait or an in-flight callback is not
// interrupted.
func (r *Reactor) Stop() {
	r.running = false
}

// IsRunning reports whether a Start loop or a tick is active.
func (r *Reactor) IsRunning() bool {
	return r.running
}

// Reset closes and reopens the kernel multiplexer handle and discards all
// watcher, timer and deferred state. It does not stop an in-progress Start
// loop.
func (r *Reactor) Reset() error {
	var errs MultiError
	if err := r.poll.close(); err != nil {
		errs = append(errs, err)
	}
	p, err := openPoll()
	if err != nil {
		errs = append(errs, err)
	} else {
		r.poll = p
	}

	r.watchers = make(map[int]*watcher)
	r.timers = make(map[TimerID]*timer)
	r.deferred = queue.New()
	r.drainTimer = 0

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Close releases the kernel multiplexer handle for good. The reactor must
// not be used afterwards. Idempotent.
func (r *Reactor) Close() error {
	return r.poll.close()
}

package reactor

import "time"

const (
	kindIOWatcher = "I/O watcher failed"
	kindTimer     = "Timer failed"
	kindDeferred  = "Deferred callback failed"
)

// Tick runs one bounded wait-then-dispatch iteration, looping internally
// until at least one event has been handled or the reactor is stopped.
//
// Tick is re-entrant: a callback may call Tick (or Start) again, nesting
// further iterations on the active call path. An outer Start loop keeps the
// running indicator set across calls; a bare nested call only guarantees
// one iteration and restores the prior indicator on every exit path.
// Bounding the nesting depth is the caller's responsibility.
func (r *Reactor) Tick() {
	wasRunning := r.running
	r.running = true
	defer func() {
		// Scoped guard: restore the prior indicator on every exit path,
		// including a panic escaping a nested dispatch.
		if !wasRunning {
			r.running = false
		}
	}()

	for r.running {
		// An empty reactor auto-stops.
		if len(r.watchers) == 0 && len(r.timers) == 0 {
			r.running = false
			return
		}

		timeoutMs, timerPending := r.waitBound()

		handled := 0
		if len(r.watchers) > 0 {
			handled += r.pollAndDispatch(timeoutMs)
		} else if timerPending {
			// Multiplexing is meaningless with an empty watch set.
			time.Sleep(time.Duration(timeoutMs) * time.Millisecond)
		}

		// One clock sample covers the whole due scan.
		handled += r.fireDueTimers(time.Now())

		if handled > 0 {
			return
		}
	}
}

// waitBound computes the kernel wait in whole milliseconds: the time until
// the earliest timer deadline rounded up, floored at zero, or the bounded
// default wait when no timer is pending.
func (r *Reactor) waitBound() (timeoutMs int, timerPending bool) {
	deadline, ok := r.earliestDeadline()
	if !ok {
		return int(r.defaultWait / time.Millisecond), false
	}
	wait := time.Until(deadline)
	if wait < 0 {
		wait = 0
	}
	return int((wait + time.Millisecond - 1) / time.Millisecond), true
}

// pollAndDispatch waits on the kernel multiplexer and dispatches ready
// descriptors, returning the number of dispatches. The event cap scales
// with the watch set, floored so small sets still get a fair batch. A wait
// failure is reported through the sink and yields no events this tick.
func (r *Reactor) pollAndDispatch(timeoutMs int) int {
	maxEvents := 2 * len(r.watchers)
	if maxEvents < r.eventFloor {
		maxEvents = r.eventFloor
	}

	ready, err := r.poll.wait(maxEvents, timeoutMs)
	if err != nil {
		r.sink(&SyscallError{Op: "wait", Fd: -1, Cause: err})
		return 0
	}

	handled := 0
	for _, ev := range ready {
		w, ok := r.watchers[ev.fd]
		if !ok {
			continue // detached by an earlier dispatch this pass
		}
		// Hangup and error conditions fan into both directions.
		if ev.mask&(EventReadable|EventHangup|EventError) != 0 {
			r.invoke(w.handler.OnReadable, kindIOWatcher)
			handled++
		}
		if ev.mask&(EventWritable|EventHangup|EventError) != 0 {
			r.invoke(w.handler.OnWritable, kindIOWatcher)
			handled++
		}
	}
	return handled
}

// invoke isolates one callback dispatch: a panic is recovered and reported
// through the sink tagged with its origin kind, never aborting the tick
// loop or corrupting reactor state.
func (r *Reactor) invoke(fn func(), kind string) {
	defer func() {
		if v := recover(); v != nil {
			r.sink(&CallbackError{Kind: kind, Value: v})
		}
	}()
	fn()
}

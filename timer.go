package reactor

import "time"

// TimerID identifies a scheduled timer. An id is unique among currently
// active timers; 0 is never issued.
type TimerID uint64

// Callback is a timer or deferred callback.
type Callback func()

type timer struct {
	id       TimerID
	fn       Callback
	deadline time.Time     // monotonic, via time.Time's monotonic reading
	delay    time.Duration // initial delay, restored by Again
	interval time.Duration // 0 for one-shot
}

// After schedules fn to run once after delay and returns its id.
func (r *Reactor) After(delay time.Duration, fn Callback) TimerID {
	return r.schedule(delay, 0, fn)
}

// Recurring schedules fn to run every interval, first firing one interval
// from now, and returns its id.
func (r *Reactor) Recurring(interval time.Duration, fn Callback) TimerID {
	return r.schedule(interval, interval, fn)
}

func (r *Reactor) schedule(delay, interval time.Duration, fn Callback) TimerID {
	id := r.nextTimerID()
	r.timers[id] = &timer{
		id:       id,
		fn:       fn,
		deadline: time.Now().Add(delay),
		delay:    delay,
		interval: interval,
	}
	return id
}

func (r *Reactor) nextTimerID() TimerID {
	for {
		r.timerSeq++
		if r.timerSeq == 0 {
			continue
		}
		if _, taken := r.timers[r.timerSeq]; !taken {
			return r.timerSeq
		}
	}
}

// Again resets a timer's deadline to its original delay from now,
// postponing (or reviving the cadence of) its next fire. It fails with
// ErrNotActive if id is unknown.
func (r *Reactor) Again(id TimerID) error {
	t, ok := r.timers[id]
	if !ok {
		return ErrNotActive
	}
	t.deadline = time.Now().Add(t.delay)
	return nil
}

// RemoveTimer cancels a timer, reporting whether it was active.
func (r *Reactor) RemoveTimer(id TimerID) bool {
	if _, ok := r.timers[id]; !ok {
		return false
	}
	delete(r.timers, id)
	return true
}

// earliestDeadline returns the soonest active deadline; ok is false when no
// timers are scheduled.
func (r *Reactor) earliestDeadline() (deadline time.Time, ok bool) {
	for _, t := range r.timers {
		if !ok || t.deadline.Before(deadline) {
			deadline = t.deadline
			ok = true
		}
	}
	return deadline, ok
}

// fireDueTimers runs every timer due at now and returns how many fired.
// The scan order is the map's: deliberately unordered, all due timers fire
// once regardless of relative deadline order. A one-shot timer is removed
// before its callback runs, so a slow or panicking callback cannot fire
// twice. A recurring deadline restarts from now, not the missed deadline,
// so sustained overload drifts the period and coalesces missed fires.
func (r *Reactor) fireDueTimers(now time.Time) int {
	// Collect first: callbacks may mutate the timer set mid-scan. The
	// scratch is detached while the scan runs so a nested tick collects
	// into its own buffer instead of overwriting the list being ranged.
	due := r.dueScratch[:0]
	r.dueScratch = nil
	for _, t := range r.timers {
		if !t.deadline.After(now) {
			due = append(due, t)
		}
	}

	fired := 0
	for _, t := range due {
		if cur, ok := r.timers[t.id]; !ok || cur != t {
			continue // removed by an earlier callback this scan
		}
		if t.deadline.After(now) {
			// Rescheduled since collection: a nested tick already fired
			// this recurring timer, or a callback called Again.
			continue
		}
		if t.interval > 0 {
			t.deadline = now.Add(t.interval)
		} else {
			delete(r.timers, t.id)
		}
		r.invoke(t.fn, kindTimer)
		fired++
	}
	r.dueScratch = due[:0]
	return fired
}

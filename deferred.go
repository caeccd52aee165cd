package reactor

// NextTick enqueues fn to run ahead of new I/O and timer work. Entries run
// in FIFO order. The queue is drained by a single pending zero-delay
// one-shot timer; scheduling while a drain trigger is pending adds no
// second trigger.
func (r *Reactor) NextTick(fn Callback) {
	r.deferred.Add(fn)
	if r.drainTimer == 0 {
		r.drainTimer = r.After(0, r.drainDeferred)
	}
}

// drainDeferred pops and invokes deferred callbacks until the queue is
// empty. Callbacks enqueued by other callbacks during the drain are
// consumed before it returns, giving deferred work microtask-like ordering
// relative to its trigger.
func (r *Reactor) drainDeferred() {
	defer func() { r.drainTimer = 0 }()
	for r.deferred.Length() > 0 {
		fn := r.deferred.Remove().(Callback)
		r.invoke(fn, kindDeferred)
	}
}

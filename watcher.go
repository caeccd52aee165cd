package reactor

// IOHandler receives readiness dispatches for an attached descriptor. The
// read direction fires on readable, priority, hangup and error conditions;
// the write direction fires on writable, hangup and error conditions. Both
// directions may fire for the same descriptor in the same tick.
type IOHandler interface {
	OnReadable()
	OnWritable()
}

// IOFunc adapts a pair of functions to IOHandler. Either may be nil.
type IOFunc struct {
	Read  func()
	Write func()
}

func (f IOFunc) OnReadable() {
	if f.Read != nil {
		f.Read()
	}
}

func (f IOFunc) OnWritable() {
	if f.Write != nil {
		f.Write()
	}
}

// watcher is a descriptor's registered interest and handler. The watch set
// holds at most one watcher per descriptor.
type watcher struct {
	fd         int
	handler    IOHandler
	interest   EventMask
	registered bool // interest currently installed in the kernel multiplexer
}

// Attach inserts (or replaces) the handler for fd and installs default
// read+write interest. Callers narrow the interest with Watch.
func (r *Reactor) Attach(fd int, h IOHandler) *Reactor {
	w, ok := r.watchers[fd]
	if !ok {
		w = &watcher{fd: fd}
		r.watchers[fd] = w
	}
	w.handler = h
	// Errors surface through the sink; the watcher stays attached either way.
	_ = r.Watch(fd, true, true)
	return r
}

// Watch sets the interest bits for an attached descriptor and installs them
// in the kernel multiplexer, adding on first registration and modifying
// afterwards. It fails with ErrNotActive if fd has no watcher. A kernel
// failure is reported through the error sink and leaves the registered
// state unchanged.
func (r *Reactor) Watch(fd int, readable, writable bool) error {
	w, ok := r.watchers[fd]
	if !ok {
		return ErrNotActive
	}

	var interest EventMask
	if readable {
		interest |= EventReadable
	}
	if writable {
		interest |= EventWritable
	}
	w.interest = interest

	if err := r.poll.register(fd, interest, !w.registered); err != nil {
		r.sink(&SyscallError{Op: "register", Fd: fd, Cause: err})
		return nil
	}
	w.registered = true
	return nil
}

// RemoveFd detaches fd, unregistering kernel interest if it was installed.
// It reports whether a watcher existed; a second call is a no-op returning
// false and issues no further kernel unregister.
func (r *Reactor) RemoveFd(fd int) bool {
	w, ok := r.watchers[fd]
	if !ok {
		return false
	}
	if w.registered {
		if err := r.poll.unregister(fd); err != nil {
			r.sink(&SyscallError{Op: "unregister", Fd: fd, Cause: err})
		}
	}
	delete(r.watchers, fd)
	return true
}

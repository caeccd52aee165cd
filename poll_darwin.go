//go:build darwin
// +build darwin

package reactor

import (
	"os"

	"golang.org/x/sys/unix"
)

// poll owns the kqueue instance. All methods run on the reactor's single
// controlling goroutine. Interest is level-triggered to match the epoll
// backend.
type poll struct {
	kq     int
	events []unix.Kevent_t
}

func openPoll() (*poll, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, &InitError{Cause: os.NewSyscallError("kqueue", err)}
	}
	unix.CloseOnExec(kq)
	return &poll{kq: kq}, nil
}

// close releases the kqueue fd. Idempotent.
func (p *poll) close() error {
	if p.kq < 0 {
		return nil
	}
	err := unix.Close(p.kq)
	p.kq = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

// register installs or updates interest for fd. kqueue has no modify op:
// an update deletes both filters and re-adds the wanted ones.
func (p *poll) register(fd int, interest EventMask, first bool) error {
	if !first {
		// Dropping a filter that was never installed reports ENOENT,
		// which is not a failure here.
		if err := p.deleteFilters(fd); err != nil {
			return err
		}
	}
	changes := make([]unix.Kevent_t, 0, 2)
	if interest&EventReadable != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD,
		})
	}
	if interest&EventWritable != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD,
		})
	}
	if len(changes) == 0 {
		return nil
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return os.NewSyscallError("kevent add", err)
	}
	return nil
}

// unregister removes both filters for fd.
func (p *poll) unregister(fd int) error {
	return p.deleteFilters(fd)
}

func (p *poll) deleteFilters(fd int) error {
	for _, filter := range []int16{unix.EVFILT_READ, unix.EVFILT_WRITE} {
		change := unix.Kevent_t{Ident: uint64(fd), Filter: filter, Flags: unix.EV_DELETE}
		if _, err := unix.Kevent(p.kq, []unix.Kevent_t{change}, nil, nil); err != nil && err != unix.ENOENT {
			return os.NewSyscallError("kevent delete", err)
		}
	}
	return nil
}

// wait blocks up to timeoutMs for readiness events, returning at most
// maxEvents of them. An interrupted wait reports no events, not an error.
// The caller owns the returned slice; a later wait does not invalidate it,
// so a dispatch loop may drive nested waits mid-iteration. The raw kernel
// buffer is reused, it is fully consumed before wait returns.
func (p *poll) wait(maxEvents, timeoutMs int) ([]readyEvent, error) {
	if cap(p.events) < maxEvents {
		p.events = make([]unix.Kevent_t, maxEvents)
	}
	events := p.events[:maxEvents]

	ts := unix.NsecToTimespec(int64(timeoutMs) * int64(1e6))
	n, err := unix.Kevent(p.kq, nil, events, &ts)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, os.NewSyscallError("kevent wait", err)
	}

	ready := make([]readyEvent, 0, n)
	for i := 0; i < n; i++ {
		ev := &events[i]
		var mask EventMask
		switch ev.Filter {
		case unix.EVFILT_READ:
			mask |= EventReadable
		case unix.EVFILT_WRITE:
			mask |= EventWritable
		}
		if ev.Flags&unix.EV_EOF != 0 {
			mask |= EventHangup
		}
		if ev.Flags&unix.EV_ERROR != 0 {
			mask |= EventError
		}
		ready = append(ready, readyEvent{fd: int(ev.Ident), mask: mask})
	}
	return ready, nil
}

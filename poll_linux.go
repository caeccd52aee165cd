//go:build linux
// +build linux

package reactor

import (
	"os"

	"golang.org/x/sys/unix"
)

// https://copyconstruct.medium.com/the-method-to-epolls-madness-d9d2d6378642

const (
	readEvents  = unix.EPOLLPRI | unix.EPOLLIN
	writeEvents = unix.EPOLLOUT
)

// poll owns the epoll instance. All methods run on the reactor's single
// controlling goroutine.
type poll struct {
	epollFd int
	events  []unix.EpollEvent
}

func openPoll() (*poll, error) {
	// Create a new epoll instance
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, &InitError{Cause: os.NewSyscallError("epoll_create1", err)}
	}
	return &poll{epollFd: epfd}, nil
}

// close releases the epoll fd. Idempotent.
func (p *poll) close() error {
	if p.epollFd < 0 {
		return nil
	}
	err := unix.Close(p.epollFd)
	p.epollFd = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

// register installs or updates interest for fd. first selects between an
// epoll add and an epoll modify.
func (p *poll) register(fd int, interest EventMask, first bool) error {
	ev := &unix.EpollEvent{Fd: int32(fd), Events: epollEvents(interest)}
	if first {
		return os.NewSyscallError("epoll_ctl add",
			unix.EpollCtl(p.epollFd, unix.EPOLL_CTL_ADD, fd, ev))
	}
	return os.NewSyscallError("epoll_ctl mod",
		unix.EpollCtl(p.epollFd, unix.EPOLL_CTL_MOD, fd, ev))
}

// unregister removes fd from the epoll set.
func (p *poll) unregister(fd int) error {
	return os.NewSyscallError("epoll_ctl del",
		unix.EpollCtl(p.epollFd, unix.EPOLL_CTL_DEL, fd, nil))
}

func epollEvents(interest EventMask) uint32 {
	var events uint32
	if interest&EventReadable != 0 {
		events |= readEvents
	}
	if interest&EventWritable != 0 {
		events |= writeEvents
	}
	return events
}

// wait blocks up to timeoutMs for readiness events, returning at most
// maxEvents of them. An interrupted wait reports no events, not an error.
// The caller owns the returned slice; a later wait does not invalidate it,
// so a dispatch loop may drive nested waits mid-iteration. The raw kernel
// buffer is reused, it is fully consumed before wait returns.
func (p *poll) wait(maxEvents, timeoutMs int) ([]readyEvent, error) {
	if cap(p.events) < maxEvents {
		p.events = make([]unix.EpollEvent, maxEvents)
	}
	events := p.events[:maxEvents]

	n, err := unix.EpollWait(p.epollFd, events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, os.NewSyscallError("epoll_wait", err)
	}

	ready := make([]readyEvent, 0, n)
	for i := 0; i < n; i++ {
		ev := &events[i]
		var mask EventMask
		if ev.Events&readEvents != 0 {
			mask |= EventReadable
		}
		if ev.Events&writeEvents != 0 {
			mask |= EventWritable
		}
		if ev.Events&unix.EPOLLHUP != 0 {
			mask |= EventHangup
		}
		if ev.Events&unix.EPOLLERR != 0 {
			mask |= EventError
		}
		ready = append(ready, readyEvent{fd: int(ev.Fd), mask: mask})
	}
	return ready, nil
}

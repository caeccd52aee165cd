//go:build !linux && !darwin
// +build !linux,!darwin

package reactor

import "errors"

// poll is the unsupported-platform stand-in. Construction always fails, so
// the other methods are unreachable.
type poll struct{}

func openPoll() (*poll, error) {
	return nil, &InitError{Cause: errors.New("no kernel multiplexer available on this platform")}
}

func (p *poll) close() error { return nil }

func (p *poll) register(fd int, interest EventMask, first bool) error { return nil }

func (p *poll) unregister(fd int) error { return nil }

func (p *poll) wait(maxEvents, timeoutMs int) ([]readyEvent, error) { return nil, nil }

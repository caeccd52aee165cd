package reactor

// EventMask describes readiness conditions reported by the kernel
// multiplexer in a backend-independent form.
type EventMask uint32

const (
	EventReadable EventMask = 1 << iota
	EventWritable
	EventHangup
	EventError
)

// readyEvent is a single (fd, mask) pair returned by a kernel wait.
type readyEvent struct {
	fd   int
	mask EventMask
}

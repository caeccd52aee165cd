//go:build linux || darwin

package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestWatchReadOnlyDispatchesReadDirection(t *testing.T) {
	r := newTestReactor(t)
	p := pipeFds(t)

	var reads, writes int
	r.Attach(p[0], IOFunc{
		Read:  func() { reads++; drainPipe(p[0]) },
		Write: func() { writes++ },
	})
	require.NoError(t, r.Watch(p[0], true, false))

	_, err := unix.Write(p[1], []byte("x"))
	require.NoError(t, err)

	r.Tick()
	assert.Equal(t, 1, reads)
	assert.Zero(t, writes)
}

func TestWatchWriteOnlyDispatchesWriteDirection(t *testing.T) {
	r := newTestReactor(t)
	p := pipeFds(t)

	var reads, writes int
	r.Attach(p[1], IOFunc{
		Read:  func() { reads++ },
		Write: func() { writes++ },
	})
	require.NoError(t, r.Watch(p[1], false, true))

	r.Tick() // the write end of an empty pipe is immediately writable
	assert.Zero(t, reads)
	assert.Equal(t, 1, writes)
}

func TestAttachDefaultsToReadWriteInterest(t *testing.T) {
	r := newTestReactor(t)
	p := pipeFds(t)

	var reads, writes int
	r.Attach(p[1], IOFunc{Read: func() { reads++ }, Write: func() { writes++ }})

	r.Tick()
	assert.Equal(t, 1, writes, "default interest covers the write direction")
	assert.Zero(t, reads, "no data pending, read direction stays quiet")
}

func TestWatchUnknownFdFailsFast(t *testing.T) {
	r := newTestReactor(t)
	assert.ErrorIs(t, r.Watch(12345, true, false), ErrNotActive)
}

func TestRemoveFdSecondCallIsNoOp(t *testing.T) {
	var reports []error
	r := newTestReactor(t, WithErrorSink(func(err error) { reports = append(reports, err) }))
	p := pipeFds(t)

	r.Attach(p[0], IOFunc{})
	require.NoError(t, r.Watch(p[0], true, false))

	assert.True(t, r.RemoveFd(p[0]))
	assert.False(t, r.RemoveFd(p[0]))
	assert.Empty(t, reports, "the kernel unregister happens at most once")
}

func TestWatchNarrowsInterestInPlace(t *testing.T) {
	r := newTestReactor(t)
	p := pipeFds(t)

	var reads, writes int
	r.Attach(p[1], IOFunc{Read: func() { reads++ }, Write: func() { writes++ }})
	require.NoError(t, r.Watch(p[1], false, true))
	r.Tick()
	require.Equal(t, 1, writes)

	// Narrow to read-only: the writable pipe end must go quiet, so a
	// pending timer is what ends the next tick.
	require.NoError(t, r.Watch(p[1], true, false))
	fired := false
	r.After(30*time.Millisecond, func() { fired = true })
	r.Tick()
	assert.Equal(t, 1, writes, "modified registration stops write dispatch")
	assert.True(t, fired)
}

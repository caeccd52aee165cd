//go:build linux || darwin

package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterFiresOnceAndExpires(t *testing.T) {
	r := newTestReactor(t)
	fired := 0
	start := time.Now()
	id := r.After(30*time.Millisecond, func() { fired++ })

	r.Tick()
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.False(t, r.RemoveTimer(id), "one-shot is gone after firing")

	r.Tick()
	assert.Equal(t, 1, fired, "expired one-shot never re-fires")
}

func TestAgainPostponesToOriginalDelay(t *testing.T) {
	r := newTestReactor(t)
	var firedAt time.Time
	start := time.Now()
	id := r.After(40*time.Millisecond, func() { firedAt = time.Now() })

	time.Sleep(25 * time.Millisecond)
	require.NoError(t, r.Again(id))

	r.Tick()
	require.False(t, firedAt.IsZero())
	assert.GreaterOrEqual(t, firedAt.Sub(start), 60*time.Millisecond,
		"again resets to the full original delay, not the remainder")
}

func TestAgainUnknownTimerFailsFast(t *testing.T) {
	r := newTestReactor(t)
	assert.ErrorIs(t, r.Again(TimerID(999)), ErrNotActive)
}

func TestRemoveTimerReportsExistence(t *testing.T) {
	r := newTestReactor(t)
	id := r.After(time.Hour, func() {})
	assert.True(t, r.RemoveTimer(id))
	assert.False(t, r.RemoveTimer(id))
}

func TestRecurringFiresRepeatedlyUntilRemoved(t *testing.T) {
	r := newTestReactor(t)
	fired := 0
	var id TimerID
	id = r.Recurring(20*time.Millisecond, func() {
		fired++
		if fired == 3 {
			assert.True(t, r.RemoveTimer(id))
			r.Stop()
		}
	})

	start := time.Now()
	r.Start()
	assert.Equal(t, 3, fired)
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestRecurringOverloadCoalesces(t *testing.T) {
	r := newTestReactor(t)
	const interval = 10 * time.Millisecond
	fired := 0
	r.Recurring(interval, func() {
		fired++
		time.Sleep(25 * time.Millisecond) // slower than the period
	})
	r.After(100*time.Millisecond, func() { r.Stop() })

	start := time.Now()
	r.Start()
	elapsed := time.Since(start)

	assert.Greater(t, fired, 0, "overload drifts the period, it never stalls")
	assert.Less(t, fired, int(elapsed/interval), "missed periods coalesce into one fire")
}

func TestNestedTickDoesNotDoubleFireRecurring(t *testing.T) {
	r := newTestReactor(t)
	fires := 0
	r.Recurring(25*time.Millisecond, func() { fires++ })
	r.After(time.Millisecond, func() {
		// Drive a nested iteration while the outer due scan is mid-flight;
		// the zero-delay timer guarantees it handles an event and returns.
		r.After(0, func() {})
		r.Tick()
	})

	time.Sleep(30 * time.Millisecond)
	r.Tick()
	assert.Equal(t, 1, fires, "one elapsed period fires the recurring timer once, wherever it fires")
}

func TestNestedTickKeepsOuterDueListIntact(t *testing.T) {
	r := newTestReactor(t)
	fires := make(map[string]int)
	r.After(time.Millisecond, func() {
		fires["nester"]++
		r.After(0, func() { fires["zero"]++ })
		r.Tick()
	})
	r.After(2*time.Millisecond, func() { fires["second"]++ })
	r.After(3*time.Millisecond, func() { fires["third"]++ })

	time.Sleep(10 * time.Millisecond)
	r.Tick()
	for _, name := range []string{"nester", "second", "third", "zero"} {
		assert.Equal(t, 1, fires[name], "timer %q fires exactly once across nested scans", name)
	}
}

func TestAllDueTimersFireInOneTick(t *testing.T) {
	r := newTestReactor(t)
	fired := 0
	r.After(5*time.Millisecond, func() { fired++ })
	r.After(10*time.Millisecond, func() { fired++ })
	r.After(15*time.Millisecond, func() { fired++ })

	time.Sleep(25 * time.Millisecond)
	r.Tick()
	assert.Equal(t, 3, fired, "every due timer fires once, regardless of deadline order")
}

func TestTimerIDsUniqueAmongActive(t *testing.T) {
	r := newTestReactor(t)
	seen := make(map[TimerID]bool)
	for i := 0; i < 100; i++ {
		id := r.After(time.Hour, func() {})
		assert.False(t, seen[id])
		seen[id] = true
	}
}

// Package mono provides a monotonic millisecond time source with explicit
// wraparound semantics. Instants are uint32 milliseconds since an arbitrary
// epoch and wrap roughly every 49.7 days; all comparisons and differences
// use modular arithmetic so behavior is unchanged across the wrap.
package mono

import (
	"sync"
	"time"
)

// Millis is a monotonic instant in milliseconds. It wraps at 2^32.
type Millis uint32

// Add returns the instant ms milliseconds after t.
func (t Millis) Add(ms uint32) Millis {
	return t + Millis(ms)
}

// Sub returns the instant ms milliseconds before t.
func (t Millis) Sub(ms uint32) Millis {
	return t - Millis(ms)
}

// Since returns the elapsed milliseconds from since to now. The result is
// correct across wraparound as long as the true elapsed time is under 2^32 ms.
func Since(now, since Millis) uint32 {
	return uint32(now - since)
}

// Reached reports whether now is at or past deadline. Deadlines are compared
// as signed modular distance, so a deadline is "reached" until it is more
// than 2^31 ms (~24.9 days) in the future.
func Reached(now, deadline Millis) bool {
	return int32(now-deadline) >= 0
}

// FromDuration converts a span to milliseconds for use with Millis math.
func FromDuration(d time.Duration) uint32 {
	return uint32(d.Milliseconds())
}

// Clock supplies the current monotonic instant.
type Clock interface {
	Now() Millis
}

// SystemClock derives instants from the runtime's monotonic clock. It is
// safe for concurrent use.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a SystemClock with its epoch at the time of the call.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns milliseconds since the clock was created, truncated to uint32.
func (c *SystemClock) Now() Millis {
	return Millis(time.Since(c.start).Milliseconds())
}

// FakeClock is a manually advanced Clock for tests. It is safe for
// concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now Millis
}

// NewFakeClock returns a FakeClock reading the given instant.
func NewFakeClock(now Millis) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the current fake instant.
func (c *FakeClock) Now() Millis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms milliseconds.
func (c *FakeClock) Advance(ms uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(ms)
}

// Set moves the clock to an absolute instant.
func (c *FakeClock) Set(now Millis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

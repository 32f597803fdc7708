package game

import (
	"sync"
	"time"
)

// DefaultTurnTimeout is how long a mover has to submit an action.
const DefaultTurnTimeout = 5 * time.Minute

// Clock is a per-session move timer. At most one arming is live at a time:
// every Reset or Cancel bumps a generation counter, and a timer callback only
// runs if its generation is still current when it fires.
type Clock struct {
	timeout time.Duration
	now     func() time.Time

	mu        sync.Mutex
	timer     *time.Timer
	gen       uint64
	lastReset time.Time
}

func NewClock(timeout time.Duration) *Clock {
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}
	c := &Clock{timeout: timeout, now: time.Now}
	c.lastReset = c.now()
	return c
}

// Timeout returns the fixed arming duration.
func (c *Clock) Timeout() time.Duration { return c.timeout }

// Reset cancels any pending arming and arms a new one that calls callback
// once after the timeout.
func (c *Clock) Reset(callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.lastReset = c.now()
	c.timer = time.AfterFunc(c.timeout, func() {
		c.fire(gen, callback)
	})
}

func (c *Clock) fire(gen uint64, callback func()) {
	c.mu.Lock()
	if gen != c.gen || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	// Runs outside the lock so the callback may Reset the clock.
	callback()
}

// Cancel disarms the clock. A callback that already claimed its arming is
// allowed to finish; one that has not started never will.
func (c *Clock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

// Armed reports whether a callback is pending.
func (c *Clock) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Deadline is the time of the last reset plus the timeout.
func (c *Clock) Deadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReset.Add(c.timeout)
}

package game

import "time"

// TurnClock measures how long a game has been running. It stops exactly
// once; later Stop calls are ignored so a win followed by a reset does not
// move the recorded time.
type TurnClock struct {
	started time.Time
	stopped time.Time
	running bool
}

// StartClock returns a running clock started at now.
func StartClock(now time.Time) *TurnClock {
	return &TurnClock{started: now, running: true}
}

// Stop freezes the clock at now. It returns false if it was already stopped.
func (c *TurnClock) Stop(now time.Time) bool {
	if c == nil || !c.running {
		return false
	}
	c.stopped = now
	c.running = false
	return true
}

// Running reports whether the clock is still ticking.
func (c *TurnClock) Running() bool { return c != nil && c.running }

// StartedAt returns the start instant.
func (c *TurnClock) StartedAt() time.Time { return c.started }

// Elapsed returns whole seconds since start, or until Stop if stopped.
func (c *TurnClock) Elapsed(now time.Time) int {
	if c == nil {
		return 0
	}
	end := now
	if !c.running {
		end = c.stopped
	}
	d := end.Sub(c.started)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// Copyright 2024-2026 Aiku AI

package bot

import (
	"sync"
	"time"
)

// Backoff throttles reconnect attempts. Each attempt made less than MaxWait
// after the previous one counts as a failure; the wait grows linearly with
// the failure count and is clamped to [MinWait, MaxWait].
type Backoff struct {
	MinWait time.Duration
	MaxWait time.Duration
	Steps   int

	mu       sync.Mutex
	failures int
	lastTry  time.Time
}

// Next returns how long to wait before the attempt starting at now and
// updates the failure counter.
func (b *Backoff) Next(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lastTry.IsZero() && now.Sub(b.lastTry) < b.MaxWait {
		b.failures++
	} else {
		b.failures = 0
	}
	return b.waitLocked()
}

func (b *Backoff) waitLocked() time.Duration {
	steps := b.Steps
	if steps <= 0 {
		steps = 1
	}
	wait := time.Duration(b.failures)*b.MaxWait/time.Duration(steps) + b.MinWait
	return min(wait, b.MaxWait)
}

// Attempted records the time the connect attempt actually started.
func (b *Backoff) Attempted(now time.Time) {
	b.mu.Lock()
	b.lastTry = now
	b.mu.Unlock()
}

// Tried reports whether any attempt has been recorded.
func (b *Backoff) Tried() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.lastTry.IsZero()
}

// Failures returns the current consecutive failure count.
func (b *Backoff) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

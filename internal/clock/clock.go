// ABOUTME: Monotonic output clock
// ABOUTME: Single time source injected into player and live session
package clock

import (
	"sync"
	"time"
)

// Clock reports seconds elapsed on a monotonic output timeline. All
// scheduling arithmetic in the player and live session runs against one
// Clock instance so pause offsets and chunk cursors share a reference.
type Clock interface {
	Now() float64
}

// System returns a clock anchored at the moment of creation.
func System() Clock {
	return &systemClock{start: time.Now()}
}

type systemClock struct {
	start time.Time
}

func (c *systemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// Manual is a hand-advanced clock for tests.
type Manual struct {
	mu  sync.Mutex
	now float64
}

func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d seconds.
func (m *Manual) Advance(d float64) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set jumps the clock to an absolute value.
func (m *Manual) Set(t float64) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

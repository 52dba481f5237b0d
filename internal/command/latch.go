// ABOUTME: One-shot playback command latch
// ABOUTME: A command fires at most once and clears on take
package command

import "sync"

// Latch holds at most one pending playback command. Take returns and
// clears it so a command never re-triggers on later reads.
type Latch struct {
	mu      sync.Mutex
	pending Action
	set     bool
}

// Set stores a pending command, replacing any unread one.
func (l *Latch) Set(a Action) {
	l.mu.Lock()
	l.pending = a
	l.set = true
	l.mu.Unlock()
}

// Take returns the pending command and clears it. The second return is
// false when nothing is pending.
func (l *Latch) Take() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.set {
		return "", false
	}
	a := l.pending
	l.pending = ""
	l.set = false
	return a, true
}

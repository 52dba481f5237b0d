// ABOUTME: Fake output sink for tests
// ABOUTME: Records scheduled starts without touching audio hardware
package output

import (
	"sync"

	"github.com/Stillwave-Audio/stillwave-go/internal/clock"
	"github.com/Stillwave-Audio/stillwave-go/internal/codec"
)

// FakeStart records one scheduling call on a FakeSink.
type FakeStart struct {
	Buf    *codec.Buffer
	Offset float64 // Start offset, seconds into buffer
	At     float64 // StartAt clock time; -1 for immediate Start
	Handle *FakeHandle
}

// FakeSink is a Sink that records calls instead of playing audio.
type FakeSink struct {
	mu     sync.Mutex
	clk    clock.Clock
	starts []FakeStart
	closed bool
}

// NewFakeSink creates a fake sink driven by the given clock.
func NewFakeSink(clk clock.Clock) *FakeSink {
	return &FakeSink{clk: clk}
}

func (s *FakeSink) Start(buf *codec.Buffer, offset float64) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := &FakeHandle{done: make(chan struct{})}
	s.starts = append(s.starts, FakeStart{Buf: buf, Offset: offset, At: -1, Handle: h})
	return h, nil
}

func (s *FakeSink) StartAt(buf *codec.Buffer, at float64) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := &FakeHandle{done: make(chan struct{})}
	s.starts = append(s.starts, FakeStart{Buf: buf, At: at, Handle: h})
	return h, nil
}

func (s *FakeSink) Clock() clock.Clock {
	return s.clk
}

func (s *FakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Starts returns a snapshot of all recorded scheduling calls.
func (s *FakeSink) Starts() []FakeStart {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FakeStart, len(s.starts))
	copy(out, s.starts)
	return out
}

// ActiveCount returns the number of handles neither stopped nor finished.
func (s *FakeSink) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.starts {
		if !st.Handle.Finished() {
			n++
		}
	}
	return n
}

// Closed reports whether Close was called.
func (s *FakeSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FakeHandle is a Handle whose completion is driven by the test.
type FakeHandle struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

func (h *FakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	close(h.done)
}

// Finish marks natural end-of-buffer, as the hardware callback would.
func (h *FakeHandle) Finish() {
	h.Stop()
}

func (h *FakeHandle) Done() <-chan struct{} {
	return h.done
}

// Finished reports whether the handle has been stopped or completed.
func (h *FakeHandle) Finished() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

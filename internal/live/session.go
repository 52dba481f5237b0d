// ABOUTME: Duplex streaming session for live voice mode
// ABOUTME: Forwards capture frames and schedules inbound chunks gaplessly
package live

import (
	"fmt"
	"log"
	"sync"

	"github.com/Stillwave-Audio/stillwave-go/internal/capture"
	"github.com/Stillwave-Audio/stillwave-go/internal/clock"
	"github.com/Stillwave-Audio/stillwave-go/internal/codec"
	"github.com/Stillwave-Audio/stillwave-go/internal/output"
)

// outboundMime tags forwarded capture frames with their sample rate.
const outboundMime = "audio/pcm;rate=16000"

// Stats counts session traffic. Dropped counts capture frames discarded
// because the channel was not ready; dropping is deliberate, latency
// matters more than completeness on this path.
type Stats struct {
	FramesSent    int64
	FramesDropped int64
	ChunksPlayed  int64
}

// Session runs one live duplex conversation: microphone frames out,
// gaplessly scheduled audio chunks in, interruption flushing everything
// queued but unplayed.
type Session struct {
	ch   Channel
	sink output.Sink
	clk  clock.Clock
	src  capture.Source

	mu      sync.Mutex
	cursor  float64 // next scheduled start, output-clock seconds
	active  map[int]output.Handle
	nextID  int
	opus    *codec.OpusStream
	stats   Stats
	started bool
	closed  bool

	closeOnce sync.Once
	done      chan struct{}
	errCh     chan error
}

// NewSession creates a session over an already-connected channel and an
// acquired output sink.
func NewSession(ch Channel, sink output.Sink, src capture.Source) *Session {
	return &Session{
		ch:     ch,
		sink:   sink,
		clk:    sink.Clock(),
		src:    src,
		active: make(map[int]output.Handle),
		done:   make(chan struct{}),
		errCh:  make(chan error, 1),
	}
}

// Open acquires the capture stream and starts the receive loop. The frame
// callback is registered before Open returns, so no leading audio is lost.
// A capture failure is fatal to setup and releases everything acquired.
func (s *Session) Open() error {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.started = true
	s.mu.Unlock()

	if err := s.src.Start(s.onFrame); err != nil {
		s.Close()
		return fmt.Errorf("open live session: %w", err)
	}

	go s.run()
	log.Printf("Live session active")
	return nil
}

// Err delivers the terminal error of a session that died mid-stream.
func (s *Session) Err() <-chan error {
	return s.errCh
}

// Done is closed when the session has fully torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stats returns a snapshot of session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// onFrame forwards one captured frame immediately. No buffering across
// frames: if the channel is not ready the frame is dropped and counted.
func (s *Session) onFrame(frame []float32) {
	pcm := codec.FloatsToPCM16(frame)
	payload := codec.EncodePayload(pcm)

	if !s.ch.Ready() {
		s.mu.Lock()
		s.stats.FramesDropped++
		n := s.stats.FramesDropped
		s.mu.Unlock()
		if n == 1 || n%100 == 0 {
			log.Printf("Live session: dropped %d capture frames (channel not ready)", n)
		}
		return
	}

	if err := s.ch.Send(OutboundFrame{Data: payload, MimeType: outboundMime}); err != nil {
		s.mu.Lock()
		s.stats.FramesDropped++
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.stats.FramesSent++
	s.mu.Unlock()
}

// run consumes inbound traffic until the channel dies or Close is called.
func (s *Session) run() {
	for {
		select {
		case chunk, ok := <-s.ch.Chunks():
			if !ok {
				s.Close()
				return
			}
			s.handleChunk(chunk)

		case <-s.ch.Interrupts():
			s.Interrupt()

		case err := <-s.ch.Errors():
			log.Printf("Live session: %v", err)
			select {
			case s.errCh <- err:
			default:
			}
			s.Close()
			return

		case <-s.done:
			return
		}
	}
}

// handleChunk decodes one inbound chunk and schedules it back-to-back
// against the running cursor: startAt = max(cursor, now), then the cursor
// advances by the chunk's duration. Chunks never overlap and never gap as
// long as they arrive before their computed start.
func (s *Session) handleChunk(chunk InboundChunk) {
	buf, err := s.decodeChunk(chunk)
	if err != nil {
		log.Printf("Live session: chunk decode: %v", err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	startAt := s.cursor
	if now := s.clk.Now(); now > startAt {
		startAt = now
	}

	handle, err := s.sink.StartAt(buf, startAt)
	if err != nil {
		s.mu.Unlock()
		log.Printf("Live session: schedule: %v", err)
		return
	}

	s.cursor = startAt + buf.Duration()
	s.nextID++
	id := s.nextID
	s.active[id] = handle
	s.stats.ChunksPlayed++
	s.mu.Unlock()

	go func() {
		<-handle.Done()
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()
	}()
}

// decodeChunk dispatches on the chunk's mimetype tag.
func (s *Session) decodeChunk(chunk InboundChunk) (*codec.Buffer, error) {
	rate := codec.RateFromMime(chunk.MimeType, codec.NarrationRate)

	switch codec.CodecFromMime(chunk.MimeType) {
	case "opus":
		s.mu.Lock()
		if s.opus == nil {
			stream, err := codec.NewOpusStream(rate, 1)
			if err != nil {
				s.mu.Unlock()
				return nil, err
			}
			s.opus = stream
		}
		stream := s.opus
		s.mu.Unlock()
		return stream.Decode(chunk.Data)
	default:
		return codec.DecodePCM16(chunk.Data, rate, 1)
	}
}

// Interrupt flushes every scheduled-but-unplayed chunk and resets the
// cursor. Models barge-in from the remote party.
func (s *Session) Interrupt() {
	s.mu.Lock()
	flushed := len(s.active)
	for id, handle := range s.active {
		handle.Stop()
		delete(s.active, id)
	}
	s.cursor = 0
	s.mu.Unlock()

	log.Printf("Live session: interrupted, flushed %d queued chunks", flushed)
}

// Close tears down capture, stops all active handles, and closes the
// channel. Idempotent and safe from any state; the capture stream is
// released on every exit path.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		for id, handle := range s.active {
			handle.Stop()
			delete(s.active, id)
		}
		s.cursor = 0
		s.mu.Unlock()

		if err := s.src.Stop(); err != nil {
			log.Printf("Live session: capture stop: %v", err)
		}
		s.ch.Close()
		close(s.done)
		log.Printf("Live session closed")
	})
}

// ABOUTME: Narration playback state machine
// ABOUTME: Owns wall-clock seek/pause/resume arithmetic and caption ticks
package player

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Stillwave-Audio/stillwave-go/internal/clock"
	"github.com/Stillwave-Audio/stillwave-go/internal/codec"
	"github.com/Stillwave-Audio/stillwave-go/internal/output"
	"github.com/Stillwave-Audio/stillwave-go/internal/script"
	"github.com/Stillwave-Audio/stillwave-go/internal/session"
)

// State is the playback lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Progress is a snapshot delivered on every tick and state transition.
type Progress struct {
	State    State
	Elapsed  float64
	Duration float64
	Caption  string
}

// tickInterval drives caption and progress updates while playing.
const tickInterval = 100 * time.Millisecond

// Player plays one session's narration with time-synced captions. All
// elapsed-time arithmetic is relative to the sink's output clock:
// origin = now - fromOffset at play, elapsed = now - origin afterwards.
type Player struct {
	mu   sync.Mutex
	sink output.Sink
	clk  clock.Clock

	buf      *codec.Buffer
	segments []script.Segment
	duration float64

	state    State
	origin   float64 // clock time corresponding to narration position 0
	offset   float64 // paused-at position, seconds
	caption  string
	handle   output.Handle
	gen      int // invalidates end watchers from torn-down handles
	tickStop chan struct{}

	onProgress func(Progress)
}

// New creates a player bound to an acquired output sink.
func New(sink output.Sink) *Player {
	return &Player{
		sink:  sink,
		clk:   sink.Clock(),
		state: StateIdle,
	}
}

// OnProgress registers the progress callback. Called outside the lock is
// not guaranteed; keep the callback non-blocking.
func (p *Player) OnProgress(fn func(Progress)) {
	p.mu.Lock()
	p.onProgress = fn
	p.mu.Unlock()
}

// Load decodes the session's narration once and caches the buffer and its
// duration. Does not start playback.
func (p *Player) Load(sess *session.Session) error {
	var buf *codec.Buffer
	var err error

	switch codec.CodecFromMime(sess.AudioMime) {
	case "mpeg", "mp3":
		buf, err = codec.DecodeMP3(sess.Audio)
	default:
		rate := codec.RateFromMime(sess.AudioMime, codec.NarrationRate)
		buf, err = codec.DecodePCM16(sess.Audio, rate, 1)
	}
	if err != nil {
		return fmt.Errorf("load session %s: %w", sess.ID, err)
	}

	p.mu.Lock()
	p.teardownLocked()
	p.buf = buf
	p.segments = sess.Script.Segments
	p.duration = buf.Duration()
	p.state = StateIdle
	p.offset = 0
	p.caption = ""
	p.mu.Unlock()

	log.Printf("Loaded session %s: %.1fs narration, %d segments",
		sess.ID, buf.Duration(), len(sess.Script.Segments))
	return nil
}

// Play starts playback from the given offset in seconds. Valid from idle,
// paused, or stopped; not while already playing.
func (p *Player) Play(from float64) error {
	p.mu.Lock()

	if p.buf == nil {
		p.mu.Unlock()
		return fmt.Errorf("no session loaded")
	}
	if p.state == StatePlaying {
		p.mu.Unlock()
		return fmt.Errorf("already playing")
	}

	// At most one active handle per player: tear down any prior one first.
	p.teardownLocked()

	handle, err := p.sink.Start(p.buf, from)
	if err != nil {
		p.state = StateStopped
		p.mu.Unlock()
		return fmt.Errorf("start output: %w", err)
	}

	p.handle = handle
	p.gen++
	gen := p.gen
	p.origin = p.clk.Now() - from
	p.offset = from
	p.state = StatePlaying
	p.caption = script.ActiveCaption(from, p.segments)

	p.tickStop = make(chan struct{})
	go p.tickLoop(p.tickStop)
	go p.watchEnd(handle, gen)

	prog := p.progressLocked()
	p.mu.Unlock()
	p.notify(prog)
	return nil
}

// Resume continues playback from the offset captured at pause.
func (p *Player) Resume() error {
	p.mu.Lock()
	from := p.offset
	p.mu.Unlock()
	return p.Play(from)
}

// Pause captures the elapsed offset and tears down the output handle.
func (p *Player) Pause() error {
	p.mu.Lock()

	if p.state != StatePlaying {
		p.mu.Unlock()
		return fmt.Errorf("not playing")
	}

	p.offset = p.clampElapsed(p.clk.Now() - p.origin)
	p.teardownLocked()
	p.state = StatePaused

	prog := p.progressLocked()
	p.mu.Unlock()
	p.notify(prog)
	return nil
}

// Stop tears down any active handle and resets elapsed to zero. Valid
// from any state.
func (p *Player) Stop() {
	p.mu.Lock()
	p.teardownLocked()
	p.state = StateStopped
	p.offset = 0
	p.caption = ""
	prog := p.progressLocked()
	p.mu.Unlock()
	p.notify(prog)
}

// Tick recomputes elapsed time, re-resolves the caption, and forces the
// end-of-buffer transition once elapsed reaches duration. The hardware end
// callback alone is not trusted for UI state.
func (p *Player) Tick() {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}

	elapsed := p.clk.Now() - p.origin
	if elapsed >= p.duration {
		p.finishLocked()
		prog := p.progressLocked()
		p.mu.Unlock()
		p.notify(prog)
		return
	}

	p.caption = script.ActiveCaption(elapsed, p.segments)
	prog := p.progressLocked()
	p.mu.Unlock()
	p.notify(prog)
}

// Elapsed returns the current narration position in seconds.
func (p *Player) Elapsed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePlaying {
		return p.clampElapsed(p.clk.Now() - p.origin)
	}
	return p.offset
}

// Duration returns the narration duration in seconds.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// State returns the playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Caption returns the currently active caption text.
func (p *Player) Caption() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.caption
}

// tickLoop drives Tick while the current playback is live.
func (p *Player) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}

// watchEnd reacts to the handle's natural end of buffer.
func (p *Player) watchEnd(handle output.Handle, gen int) {
	<-handle.Done()

	p.mu.Lock()
	if p.gen != gen || p.state != StatePlaying {
		// Handle was torn down by pause/stop; nothing to do.
		p.mu.Unlock()
		return
	}
	p.finishLocked()
	prog := p.progressLocked()
	p.mu.Unlock()
	p.notify(prog)
}

// finishLocked transitions to Stopped with elapsed clamped to duration.
func (p *Player) finishLocked() {
	p.teardownLocked()
	p.state = StateStopped
	p.offset = p.duration
	p.caption = ""
}

// teardownLocked stops the active handle and the tick loop.
func (p *Player) teardownLocked() {
	if p.handle != nil {
		p.handle.Stop()
		p.handle = nil
		p.gen++
	}
	if p.tickStop != nil {
		close(p.tickStop)
		p.tickStop = nil
	}
}

func (p *Player) clampElapsed(elapsed float64) float64 {
	if elapsed < 0 {
		return 0
	}
	if elapsed > p.duration {
		return p.duration
	}
	return elapsed
}

func (p *Player) progressLocked() Progress {
	elapsed := p.offset
	if p.state == StatePlaying {
		elapsed = p.clampElapsed(p.clk.Now() - p.origin)
	}
	return Progress{
		State:    p.state,
		Elapsed:  elapsed,
		Duration: p.duration,
		Caption:  p.caption,
	}
}

func (p *Player) notify(prog Progress) {
	p.mu.Lock()
	fn := p.onProgress
	p.mu.Unlock()
	if fn != nil {
		fn(prog)
	}
}

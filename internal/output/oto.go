// ABOUTME: Oto-based audio output sink
// ABOUTME: Schedules decoded buffers onto the system audio device
package output

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Stillwave-Audio/stillwave-go/internal/clock"
	"github.com/Stillwave-Audio/stillwave-go/internal/codec"
	"github.com/ebitengine/oto/v3"
)

// Oto plays decoded buffers through the oto library. One oto context
// exists per process, so the sink is created once and reused.
type Oto struct {
	otoCtx     *oto.Context
	clk        clock.Clock
	sampleRate int
	channels   int
}

// NewOto opens the system output at the given format.
func NewOto(sampleRate, channels int) (*Oto, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return &Oto{
		otoCtx:     ctx,
		clk:        clock.System(),
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Start begins playback now, offset seconds into the buffer.
func (o *Oto) Start(buf *codec.Buffer, offset float64) (Handle, error) {
	fromFrame := int(offset * float64(buf.SampleRate))
	if fromFrame >= buf.Frames() {
		h := newOtoHandle(nil)
		h.finish()
		return h, nil
	}

	pcm := codec.InterleavePCM16(buf, fromFrame)
	player := o.otoCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	h := newOtoHandle(player)
	remaining := buf.Duration() - float64(fromFrame)/float64(buf.SampleRate)
	h.timer = time.AfterFunc(time.Duration(remaining*float64(time.Second)), h.finish)
	return h, nil
}

// StartAt begins playback of the whole buffer at the given clock time.
func (o *Oto) StartAt(buf *codec.Buffer, at float64) (Handle, error) {
	delay := at - o.clk.Now()
	if delay <= 0 {
		return o.Start(buf, 0)
	}

	pcm := codec.InterleavePCM16(buf, 0)
	h := newOtoHandle(nil)
	h.timer = time.AfterFunc(time.Duration(delay*float64(time.Second)), func() {
		h.mu.Lock()
		if h.stopped {
			h.mu.Unlock()
			return
		}
		player := o.otoCtx.NewPlayer(bytes.NewReader(pcm))
		player.Play()
		h.player = player
		h.timer = time.AfterFunc(time.Duration(buf.Duration()*float64(time.Second)), h.finish)
		h.mu.Unlock()
	})
	return h, nil
}

// Clock returns the sink's output clock.
func (o *Oto) Clock() clock.Clock {
	return o.clk
}

// Close suspends the oto context. oto does not support tearing a context
// down, so the context stays alive for process lifetime.
func (o *Oto) Close() error {
	if o.otoCtx != nil {
		return o.otoCtx.Suspend()
	}
	return nil
}

// otoHandle wraps one oto player plus its completion timer.
type otoHandle struct {
	mu      sync.Mutex
	player  *oto.Player
	timer   *time.Timer
	done    chan struct{}
	stopped bool
}

func newOtoHandle(player *oto.Player) *otoHandle {
	return &otoHandle{player: player, done: make(chan struct{})}
}

func (h *otoHandle) Stop() {
	h.finish()
}

func (h *otoHandle) Done() <-chan struct{} {
	return h.done
}

func (h *otoHandle) finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	if h.timer != nil {
		h.timer.Stop()
	}
	if h.player != nil {
		h.player.Close()
	}
	close(h.done)
}

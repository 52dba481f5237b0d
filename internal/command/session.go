// ABOUTME: Push-to-talk voice command session
// ABOUTME: Records an utterance, interprets it, and latches playback commands
package command

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Stillwave-Audio/stillwave-go/internal/capture"
	"github.com/Stillwave-Audio/stillwave-go/internal/codec"
	"github.com/Stillwave-Audio/stillwave-go/internal/provider"
)

// Recorder accumulates captured frames between press and release.
type Recorder struct {
	src capture.Source

	mu        sync.Mutex
	recording bool
	pcm       []byte
}

// NewRecorder creates a push-to-talk recorder over a capture source.
func NewRecorder(src capture.Source) *Recorder {
	return &Recorder{src: src}
}

// Start begins recording. Frames are appended until Stop.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return fmt.Errorf("already recording")
	}
	r.recording = true
	r.pcm = nil
	r.mu.Unlock()

	if err := r.src.Start(r.onFrame); err != nil {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		return fmt.Errorf("start recording: %w", err)
	}
	return nil
}

func (r *Recorder) onFrame(frame []float32) {
	raw := codec.FloatsToPCM16(frame)
	r.mu.Lock()
	if r.recording {
		r.pcm = append(r.pcm, raw...)
	}
	r.mu.Unlock()
}

// Stop ends recording and returns the captured PCM16LE bytes.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, fmt.Errorf("not recording")
	}
	r.recording = false
	pcm := r.pcm
	r.pcm = nil
	r.mu.Unlock()

	if err := r.src.Stop(); err != nil {
		return pcm, fmt.Errorf("stop recording: %w", err)
	}
	return pcm, nil
}

// Session turns utterances into validated intents and one-shot playback
// commands.
type Session struct {
	svc      provider.Service
	recorder *Recorder
	latch    *Latch
}

// NewSession creates a voice command session.
func NewSession(svc provider.Service, src capture.Source) *Session {
	return &Session{
		svc:      svc,
		recorder: NewRecorder(src),
		latch:    &Latch{},
	}
}

// Recorder exposes push-to-talk start/stop.
func (s *Session) Recorder() *Recorder {
	return s.recorder
}

// Latch exposes the one-shot command latch for the player loop.
func (s *Session) Latch() *Latch {
	return s.latch
}

// Interpret transcribes captured audio, asks the service for an intent,
// validates it against the fixed vocabulary, and latches any playback
// action. The returned intent carries only recognized values.
func (s *Session) Interpret(ctx context.Context, pcm []byte) (Intent, error) {
	transcript, err := s.svc.Transcribe(ctx, pcm, codec.CaptureRate)
	if err != nil {
		return Intent{}, fmt.Errorf("transcribe: %w", err)
	}

	raw, err := s.svc.InterpretCommand(ctx, transcript)
	if err != nil {
		return Intent{}, fmt.Errorf("interpret: %w", err)
	}

	intent := Validate(Intent{
		Transcript: transcript,
		Theme:      raw.Theme,
		Voice:      raw.Voice,
		Action:     Action(raw.Action),
	})

	switch intent.Action {
	case ActionPlay, ActionPause, ActionStop:
		s.latch.Set(intent.Action)
		log.Printf("Voice command latched: %s", intent.Action)
	}

	return intent, nil
}

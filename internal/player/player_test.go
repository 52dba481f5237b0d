// ABOUTME: Tests for the playback state machine
// ABOUTME: Covers pause/resume arithmetic, handle ownership, and end of buffer
package player

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/Stillwave-Audio/stillwave-go/internal/clock"
	"github.com/Stillwave-Audio/stillwave-go/internal/output"
	"github.com/Stillwave-Audio/stillwave-go/internal/script"
	"github.com/Stillwave-Audio/stillwave-go/internal/session"
)

// testRate keeps test buffers small; duration math is rate-independent.
const testRate = 100

func makeSession(durationSeconds float64, segments []script.Segment) *session.Session {
	frames := int(durationSeconds * testRate)
	raw := make([]byte, frames*2)
	sess := session.New("Ocean", "Kore")
	sess.Audio = base64.StdEncoding.EncodeToString(raw)
	sess.AudioMime = "audio/pcm;rate=100"
	sess.Script = script.Script{Segments: segments}
	return sess
}

func newTestPlayer(t *testing.T, durationSeconds float64, segments []script.Segment) (*Player, *output.FakeSink, *clock.Manual) {
	t.Helper()
	clk := &clock.Manual{}
	sink := output.NewFakeSink(clk)
	p := New(sink)
	if err := p.Load(makeSession(durationSeconds, segments)); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return p, sink, clk
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

func TestLoadComputesDuration(t *testing.T) {
	p, _, _ := newTestPlayer(t, 10, nil)
	if d := p.Duration(); d != 10 {
		t.Errorf("expected 10s duration, got %f", d)
	}
	if p.State() != StateIdle {
		t.Errorf("expected idle after load, got %s", p.State())
	}
}

func TestPlayPauseResume(t *testing.T) {
	p, sink, clk := newTestPlayer(t, 60, nil)

	if err := p.Play(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if p.State() != StatePlaying {
		t.Fatalf("expected playing, got %s", p.State())
	}

	clk.Advance(5)
	if err := p.Pause(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if e := p.Elapsed(); e != 5 {
		t.Errorf("expected elapsed 5 at pause, got %f", e)
	}

	// Wall time passes while paused; elapsed must not.
	clk.Advance(3)
	if e := p.Elapsed(); e != 5 {
		t.Errorf("elapsed advanced while paused: %f", e)
	}

	if err := p.Resume(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	starts := sink.Starts()
	if len(starts) != 2 {
		t.Fatalf("expected 2 output starts, got %d", len(starts))
	}
	if starts[1].Offset != 5 {
		t.Errorf("expected resume from offset 5, got %f", starts[1].Offset)
	}

	clk.Advance(2)
	if e := p.Elapsed(); e != 7 {
		t.Errorf("expected elapsed 7 after resume, got %f", e)
	}
}

func TestSingleActiveHandle(t *testing.T) {
	p, sink, clk := newTestPlayer(t, 60, nil)

	for i := 0; i < 5; i++ {
		if err := p.Play(0); err != nil {
			t.Fatalf("play %d failed: %v", i, err)
		}
		clk.Advance(1)
		if err := p.Pause(); err != nil {
			t.Fatalf("pause %d failed: %v", i, err)
		}
	}

	if n := sink.ActiveCount(); n != 0 {
		t.Errorf("expected no active handles after final pause, got %d", n)
	}

	if err := p.Play(0); err != nil {
		t.Fatalf("final play failed: %v", err)
	}
	if n := sink.ActiveCount(); n != 1 {
		t.Errorf("expected exactly one active handle, got %d", n)
	}
	if err := p.Play(0); err == nil {
		t.Error("expected error playing while already playing")
	}
}

func TestTickForcesEndOfBuffer(t *testing.T) {
	p, sink, clk := newTestPlayer(t, 10, nil)

	if err := p.Play(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	clk.Advance(11)
	p.Tick()

	if p.State() != StateStopped {
		t.Errorf("expected stopped after tick past duration, got %s", p.State())
	}
	if e := p.Elapsed(); e != 10 {
		t.Errorf("expected elapsed clamped to duration, got %f", e)
	}
	if n := sink.ActiveCount(); n != 0 {
		t.Errorf("expected handle torn down at end, got %d active", n)
	}
}

func TestHardwareEndCallback(t *testing.T) {
	p, sink, clk := newTestPlayer(t, 10, nil)

	if err := p.Play(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	clk.Advance(10)
	sink.Starts()[0].Handle.Finish()

	waitFor(t, func() bool { return p.State() == StateStopped }, "stopped after handle done")
	if e := p.Elapsed(); e != 10 {
		t.Errorf("expected elapsed clamped to duration, got %f", e)
	}
}

func TestStopResetsElapsed(t *testing.T) {
	p, sink, clk := newTestPlayer(t, 60, nil)

	if err := p.Play(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	clk.Advance(20)
	p.Stop()

	if p.State() != StateStopped {
		t.Errorf("expected stopped, got %s", p.State())
	}
	if e := p.Elapsed(); e != 0 {
		t.Errorf("expected elapsed reset to 0, got %f", e)
	}
	if n := sink.ActiveCount(); n != 0 {
		t.Errorf("expected handles released, got %d active", n)
	}

	// Stop is valid from any state, repeatedly.
	p.Stop()
	p.Stop()
}

func TestCaptionScenario(t *testing.T) {
	segments := []script.Segment{
		{Text: "intro", Start: 0, End: 10},
		{Text: "breathe", Start: 10, End: 170},
		{Text: "close", Start: 170, End: 180},
	}
	p, _, clk := newTestPlayer(t, 180, segments)

	if err := p.Play(0); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	clk.Set(5)
	p.Tick()
	if c := p.Caption(); c != "intro" {
		t.Errorf("at t=5: expected %q, got %q", "intro", c)
	}

	clk.Set(175)
	p.Tick()
	if c := p.Caption(); c != "close" {
		t.Errorf("at t=175: expected %q, got %q", "close", c)
	}

	clk.Set(200)
	p.Tick()
	if p.State() != StateStopped {
		t.Errorf("at t=200: expected stopped, got %s", p.State())
	}
	if c := p.Caption(); c != "" {
		t.Errorf("post-stop: expected empty caption, got %q", c)
	}
}

func TestPlayFromOffset(t *testing.T) {
	p, sink, clk := newTestPlayer(t, 60, nil)

	clk.Set(100)
	if err := p.Play(30); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if e := p.Elapsed(); e != 30 {
		t.Errorf("expected elapsed 30 right after seek, got %f", e)
	}
	if starts := sink.Starts(); starts[0].Offset != 30 {
		t.Errorf("expected output start at offset 30, got %f", starts[0].Offset)
	}

	clk.Advance(5)
	if e := p.Elapsed(); e != 35 {
		t.Errorf("expected elapsed 35, got %f", e)
	}
}

func TestPlayWithoutLoad(t *testing.T) {
	clk := &clock.Manual{}
	p := New(output.NewFakeSink(clk))
	if err := p.Play(0); err == nil {
		t.Error("expected error playing with no session loaded")
	}
}

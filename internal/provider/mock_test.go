// ABOUTME: Tests for the mock generation service
// ABOUTME: Covers script/speech consistency and keyword intent matching
package provider

import (
	"context"
	"testing"

	"github.com/Stillwave-Audio/stillwave-go/internal/codec"
)

func TestMockScriptCoversDuration(t *testing.T) {
	m := NewMock()
	scr, err := m.GenerateScript(context.Background(), "Forest")
	if err != nil {
		t.Fatalf("generate script failed: %v", err)
	}

	if scr.Title != "Forest Meditation" {
		t.Errorf("unexpected title: %q", scr.Title)
	}
	if len(scr.Segments) == 0 {
		t.Fatal("expected segments")
	}
	last := scr.Segments[len(scr.Segments)-1]
	if last.End != m.ScriptSeconds {
		t.Errorf("expected segments to end at %f, got %f", m.ScriptSeconds, last.End)
	}
}

func TestMockSpeechMatchesScriptDuration(t *testing.T) {
	m := NewMock()
	speech, err := m.GenerateSpeech(context.Background(), "Breathe.", "Kore")
	if err != nil {
		t.Fatalf("generate speech failed: %v", err)
	}

	rate := codec.RateFromMime(speech.MimeType, codec.NarrationRate)
	buf, err := codec.DecodePCM16(speech.Payload, rate, 1)
	if err != nil {
		t.Fatalf("speech payload does not decode: %v", err)
	}
	if d := buf.Duration(); d != m.ScriptSeconds {
		t.Errorf("expected %fs of narration, got %f", m.ScriptSeconds, d)
	}
}

func TestMockInterpretCommand(t *testing.T) {
	m := NewMock()

	cases := []struct {
		transcript string
		want       RawIntent
	}{
		{"play the ocean meditation", RawIntent{Theme: "Ocean", Action: "play"}},
		{"pause please", RawIntent{Action: "pause"}},
		{"switch to fenrir and make a picture", RawIntent{Voice: "Fenrir", Action: "generate_image"}},
		{"show me a video of the cosmos", RawIntent{Theme: "Cosmos", Action: "generate_video"}},
		{"hello there", RawIntent{}},
	}

	for _, c := range cases {
		got, err := m.InterpretCommand(context.Background(), c.transcript)
		if err != nil {
			t.Fatalf("interpret %q failed: %v", c.transcript, err)
		}
		if got != c.want {
			t.Errorf("interpret %q: expected %+v, got %+v", c.transcript, c.want, got)
		}
	}
}

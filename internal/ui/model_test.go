// ABOUTME: Tests for the TUI model
// ABOUTME: Covers key handling, message updates, and render helpers
package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Stillwave-Audio/stillwave-go/internal/player"
	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysEmitCommands(t *testing.T) {
	tr := NewTransport()
	m := NewModel(tr)

	cases := []struct {
		key  string
		want Command
	}{
		{" ", CmdToggle},
		{"s", CmdStop},
		{"v", CmdVoiceStart},
	}

	var model tea.Model = m
	for _, c := range cases {
		model, _ = model.Update(keyMsg(c.key))
		select {
		case got := <-tr.Commands:
			if got != c.want {
				t.Errorf("key %q: expected command %d, got %d", c.key, c.want, got)
			}
		default:
			t.Errorf("key %q: no command emitted", c.key)
		}
	}
}

func TestVoiceKeyToggles(t *testing.T) {
	tr := NewTransport()
	var model tea.Model = NewModel(tr)

	model, _ = model.Update(keyMsg("v"))
	if got := <-tr.Commands; got != CmdVoiceStart {
		t.Errorf("first v: expected start, got %d", got)
	}
	model, _ = model.Update(keyMsg("v"))
	if got := <-tr.Commands; got != CmdVoiceStop {
		t.Errorf("second v: expected stop, got %d", got)
	}
}

func TestQuitSignals(t *testing.T) {
	tr := NewTransport()
	var model tea.Model = NewModel(tr)

	_, cmd := model.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
	select {
	case <-tr.Quit:
	default:
		t.Error("expected quit signal on transport")
	}
}

func TestViewShowsProgress(t *testing.T) {
	tr := NewTransport()
	var model tea.Model = NewModel(tr)

	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(SessionMsg{Title: "Ocean Meditation", Theme: "Ocean", Voice: "Kore"})
	model, _ = model.Update(ProgressMsg{
		State:    player.StatePlaying,
		Elapsed:  65,
		Duration: 180,
		Caption:  "Breathe slowly.",
	})

	view := model.View()
	for _, want := range []string{"Ocean Meditation", "Breathe slowly.", "1:05", "3:00", "playing"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(5, 10, 10); strings.Count(got, "█") != 5 {
		t.Errorf("expected half-filled bar, got %q", got)
	}
	if got := renderBar(20, 10, 10); strings.Count(got, "█") != 10 {
		t.Errorf("expected clamped full bar, got %q", got)
	}
	if got := renderBar(5, 0, 10); strings.Count(got, "░") != 10 {
		t.Errorf("expected empty bar for zero duration, got %q", got)
	}
}

func TestTruncateMultibyte(t *testing.T) {
	long := strings.Repeat("å", 60)
	got := truncate(long, 52)

	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 52 {
		t.Errorf("expected 52 runes, got %d: %q", n, got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}

	if short := truncate("Breathe slowly.", 52); short != "Breathe slowly." {
		t.Errorf("short text must pass through, got %q", short)
	}
	// 52 multi-byte runes fit exactly even though len() exceeds 52 bytes.
	exact := strings.Repeat("å", 52)
	if got := truncate(exact, 52); got != exact {
		t.Errorf("exact-length text must pass through, got %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[float64]string{0: "0:00", 59.9: "0:59", 60: "1:00", 605: "10:05"}
	for in, want := range cases {
		if got := formatTime(in); got != want {
			t.Errorf("formatTime(%v): expected %q, got %q", in, want, got)
		}
	}
}

// ABOUTME: Bubbletea model for the meditation player TUI
// ABOUTME: Renders caption, progress, and transport state
package ui

import (
	"fmt"

	"github.com/Stillwave-Audio/stillwave-go/internal/player"
	tea "github.com/charmbracelet/bubbletea"
)

// Command is a transport action requested from the keyboard.
type Command int

const (
	CmdToggle Command = iota // play/pause
	CmdStop
	CmdVoiceStart // push-to-talk press
	CmdVoiceStop  // push-to-talk release
)

// Transport carries keyboard commands out of the TUI.
type Transport struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewTransport creates the transport channels.
func NewTransport() *Transport {
	return &Transport{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// ProgressMsg updates playback progress from the player.
type ProgressMsg player.Progress

// SessionMsg updates the displayed session info.
type SessionMsg struct {
	Title string
	Theme string
	Voice string
}

// NoticeMsg shows a transient status line (errors, voice feedback).
type NoticeMsg string

// RecordingMsg toggles the push-to-talk indicator.
type RecordingMsg bool

// Model represents the TUI state.
type Model struct {
	transport *Transport

	title string
	theme string
	voice string

	state    player.State
	elapsed  float64
	duration float64
	caption  string

	recording bool
	notice    string

	width  int
	height int
}

// NewModel creates the initial model.
func NewModel(t *Transport) Model {
	return Model{transport: t, state: player.StateIdle}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case ProgressMsg:
		m.state = msg.State
		m.elapsed = msg.Elapsed
		m.duration = msg.Duration
		m.caption = msg.Caption
	case SessionMsg:
		m.title = msg.Title
		m.theme = msg.Theme
		m.voice = msg.Voice
	case NoticeMsg:
		m.notice = string(msg)
	case RecordingMsg:
		m.recording = bool(msg)
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := m.title
	if title == "" {
		title = "(no session)"
	}

	mic := ""
	if m.recording {
		mic = "  [listening]"
	}

	s := fmt.Sprintf(`┌─ Stillwave ──────────────────────────────────────────┐
│ %-52s │
│ Theme: %-20s Voice: %-18s │
├──────────────────────────────────────────────────────┤
`, truncate(title, 52), m.theme, m.voice)

	s += fmt.Sprintf("│ %-52s │\n", truncate(m.caption, 52))
	s += fmt.Sprintf("│ [%s] %s / %s%-12s │\n",
		renderBar(m.elapsed, m.duration, 20),
		formatTime(m.elapsed), formatTime(m.duration), "")
	s += fmt.Sprintf("│ State: %-10s%s%-27s │\n", m.state, mic, "")

	if m.notice != "" {
		s += fmt.Sprintf("│ %-52s │\n", truncate(m.notice, 52))
	}

	s += `│ space:Play/Pause  s:Stop  v:Hold-to-talk  q:Quit     │
└──────────────────────────────────────────────────────┘
`
	return s
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		select {
		case m.transport.Quit <- struct{}{}:
		default:
		}
		return m, tea.Quit
	case " ":
		m.send(CmdToggle)
	case "s":
		m.send(CmdStop)
	case "v":
		// Terminal key handling has no release events; v toggles
		// push-to-talk on and off.
		if m.recording {
			m.recording = false
			m.send(CmdVoiceStop)
		} else {
			m.recording = true
			m.send(CmdVoiceStart)
		}
	}
	return m, nil
}

func (m Model) send(cmd Command) {
	select {
	case m.transport.Commands <- cmd:
	default:
	}
}

func renderBar(value, max float64, width int) string {
	filled := 0
	if max > 0 {
		filled = int(value / max * float64(width))
	}
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func formatTime(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// truncate shortens by runes, not bytes, so multi-byte caption text is
// never cut mid-character.
func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length-3]) + "..."
}

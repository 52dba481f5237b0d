// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI.
func Run(t *Transport) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(t), tea.WithAltScreen())
	return p, nil
}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the terminal UI until the user quits.
func Start(deps Deps, version string) error {
	Version = version
	m := initialModel(deps)
	defer m.device.Close()
	if m.dispatcher != nil {
		defer m.dispatcher.Unsubscribe(m.events)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

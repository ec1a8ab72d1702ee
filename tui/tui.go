// Package tui renders the now-playing screen and maps keys to playback actions.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/eonplay/eonplay/core"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Origin is a local path or a URL.
	Origin string

	// Core must be started. Run does not stop it.
	Core *core.Core
}

// Run loads the origin and blocks until the user quits.
func Run(options *Options) error {
	bubble := newBubble(options)
	defer bubble.close()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/eonplay/eonplay/controller"
	"github.com/samber/mo"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}

		switch b.state {
		case playingState:
			return b, b.handlePlayingKey(msg)
		case errorState:
			if key.Matches(msg, b.keymap.quit) {
				return b, tea.Quit
			}
		}
	case loadedMsg:
		if !msg.ok {
			// A validation event usually arrives with the precise reason.
			if b.state != errorState {
				b.raiseError(fmt.Errorf("could not open %s", b.options.Origin))
			}
			return b, nil
		}
		if b.state == loadingState {
			b.setState(playingState)
		}
		return b, b.refresh()
	case eventMsg:
		return b, tea.Batch(b.handleEvent(msg), b.waitForEvent())
	case statusMsg:
		b.status = controller.Status(msg)
		if n, ok := b.notice.Get(); ok && b.now().After(n.expires) {
			b.notice = mo.None[notice]()
		}
	case tickMsg:
		return b, tea.Batch(b.refresh(), b.tick())
	case spinner.TickMsg:
		if b.state != loadingState {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	}

	return b, nil
}

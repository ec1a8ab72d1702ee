package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/controller"
)

const statusInterval = 250 * time.Millisecond

type (
	eventMsg  bus.Event
	statusMsg controller.Status
	loadedMsg struct{ ok bool }
	tickMsg   time.Time
)

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.load(), b.waitForEvent(), b.tick())
}

// load hands the origin to the intake and starts playback once the backend accepted it.
func (b *statefulBubble) load() tea.Cmd {
	c := b.options.Core
	origin := b.options.Origin

	return func() tea.Msg {
		var ok bool
		c.Do(func() {
			if strings.Contains(origin, "://") {
				ok = c.Intake.LoadMediaURL(origin)
			} else {
				ok = c.Intake.LoadMediaFile(origin)
			}
			if ok {
				c.Controller.Play()
			}
		})
		return loadedMsg{ok: ok}
	}
}

func (b *statefulBubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-b.events)
	}
}

func (b *statefulBubble) refresh() tea.Cmd {
	c := b.options.Core

	return func() tea.Msg {
		var s controller.Status
		if !c.Do(func() { s = c.Controller.Snapshot() }) {
			return nil
		}
		return statusMsg(s)
	}
}

func (b *statefulBubble) tick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

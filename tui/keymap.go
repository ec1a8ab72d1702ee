package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/eonplay/eonplay/color"
	"github.com/eonplay/eonplay/style"
)

type statefulKeymap struct {
	state state

	quit, forceQuit,
	playPause,
	seekForward, seekBackward,
	volumeUp, volumeDown, mute,
	speedUp, speedDown, speedReset,
	fastForward, rewind,
	frameForward, frameBackward,
	screenshot,
	cycleMode,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "seek forward"),
		),
		seekBackward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "seek back"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "volume down"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		speedUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "faster"),
		),
		speedDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "slower"),
		),
		speedReset: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "normal speed"),
		),
		fastForward: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fast forward"),
		),
		rewind: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rewind"),
		),
		frameForward: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "next frame"),
		),
		frameBackward: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "previous frame"),
		),
		screenshot: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "screenshot"),
		),
		cycleMode: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "playback mode"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit))
	case playingState:
		return h(k.playPause, k.seekForward, k.seekBackward, k.mute, k.showHelp, k.quit),
			h(
				k.playPause, k.seekForward, k.seekBackward,
				k.volumeUp, k.volumeDown, k.mute,
				k.speedUp, k.speedDown, k.speedReset,
				k.fastForward, k.rewind,
				k.frameForward, k.frameBackward,
				k.screenshot, k.cycleMode,
				k.showHelp, k.quit,
			)
	case errorState:
		return to2(h(k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

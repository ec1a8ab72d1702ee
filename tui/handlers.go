package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/controller"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
)

var errPlayback = errors.New("playback failed")

// handlePlayingKey posts the action bound to msg onto the loop.
func (b *statefulBubble) handlePlayingKey(msg tea.KeyMsg) tea.Cmd {
	c := b.options.Core
	ctl := c.Controller

	var action func()
	switch {
	case key.Matches(msg, b.keymap.quit):
		return tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	case key.Matches(msg, b.keymap.playPause):
		action = ctl.TogglePlayPause
	case key.Matches(msg, b.keymap.seekForward):
		action = func() { ctl.SeekForward(0) }
	case key.Matches(msg, b.keymap.seekBackward):
		action = func() { ctl.SeekBackward(0) }
	case key.Matches(msg, b.keymap.volumeUp):
		action = func() { ctl.VolumeUp(controller.DefaultVolumeStep) }
	case key.Matches(msg, b.keymap.volumeDown):
		action = func() { ctl.VolumeDown(controller.DefaultVolumeStep) }
	case key.Matches(msg, b.keymap.mute):
		action = ctl.ToggleMute
	case key.Matches(msg, b.keymap.speedUp):
		action = ctl.SpeedUp
	case key.Matches(msg, b.keymap.speedDown):
		action = ctl.SpeedDown
	case key.Matches(msg, b.keymap.speedReset):
		action = ctl.ResetPlaybackSpeed
	case key.Matches(msg, b.keymap.fastForward):
		action = ctl.CycleFastForward
	case key.Matches(msg, b.keymap.rewind):
		action = ctl.CycleRewind
	case key.Matches(msg, b.keymap.frameForward):
		action = ctl.StepForward
	case key.Matches(msg, b.keymap.frameBackward):
		action = ctl.StepBackward
	case key.Matches(msg, b.keymap.cycleMode):
		action = ctl.CycleMode
	case key.Matches(msg, b.keymap.screenshot):
		// The outcome comes back as a bus event.
		action = func() { _, _ = c.Intake.CaptureScreenshot("") }
	default:
		return nil
	}

	c.Post(action)
	return b.refresh()
}

// handleEvent folds a bus event into the screen.
func (b *statefulBubble) handleEvent(e eventMsg) tea.Cmd {
	switch e.Type {
	case bus.FileValidationFailed, bus.UrlValidationFailed:
		b.raiseError(errors.New(bus.Event(e).String(bus.KeyMessage)))
		return nil
	case bus.ErrorOccurred:
		message := bus.Event(e).String(bus.KeyMessage)
		if b.state == loadingState {
			b.raiseError(fmt.Errorf("%w: %s", errPlayback, message))
			return nil
		}
		b.notify(message, true)
	case bus.MediaFileLoaded, bus.MediaUrlLoaded:
		if info, ok := e.Data[bus.KeyInfo].(*media.Info); ok {
			b.info = info
		}
	case bus.SubtitlesDetected:
		if paths, ok := e.Data[bus.KeyPaths].([]string); ok {
			b.subtitles = paths
			b.notify(fmt.Sprintf("Found %s", util.Quantify(len(paths), "subtitle", "subtitles")), false)
		}
	case bus.ScreenshotCaptured:
		b.notify("Saved "+bus.Event(e).String(bus.KeyPath), false)
	case bus.ScreenshotFailed:
		b.notify("Screenshot failed: "+bus.Event(e).String(bus.KeyMessage), true)
	case bus.CrossfadeStarted:
		b.notify("Crossfading", false)
	case bus.EndOfMedia:
		b.notify("End of media", false)
	}

	return b.refresh()
}

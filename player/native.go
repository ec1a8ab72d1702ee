package player

import (
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/log"
)

// onNative runs on the event listener goroutine. It updates the cached
// fields under the lock; listeners are reached only through emit.
func (m *MPV) onNative(ev nativeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Event {
	case "file-loaded":
		m.resolveLoadLocked(loadOutcome{ok: true})

	case "end-file":
		m.onEndFileLocked(ev)

	case "property-change":
		m.onPropertyLocked(ev.Name, ev.Data)
	}
}

func (m *MPV) resolveLoadLocked(outcome loadOutcome) bool {
	if m.pendingLoad == nil {
		return false
	}
	select {
	case m.pendingLoad <- outcome:
	default:
	}
	return true
}

func (m *MPV) onEndFileLocked(ev nativeEvent) {
	switch ev.Reason {
	case "error":
		message := "playback error"
		if ev.FileError != "" {
			message += ": " + ev.FileError
		}
		if m.resolveLoadLocked(loadOutcome{message: message}) {
			return
		}

		log.For("player").Warn(message)
		m.stopPollLocked()
		m.setStateLocked(engine.Error)
		m.emit(m.generation.Load(), func(l engine.Listener) { l.ErrorOccurred(message) })

	case "eof":
		if m.handle == nil {
			return
		}
		m.stopPollLocked()
		m.setPositionLocked(m.duration)
		m.setStateLocked(engine.Stopped)
	}
	// stop, quit and redirect are consequences of our own commands.
}

func (m *MPV) onPropertyLocked(name string, data any) {
	switch name {
	case "pause":
		if b, ok := asBool(data); ok {
			m.paused = b
			m.refreshStateLocked()
		}

	case "paused-for-cache":
		if b, ok := asBool(data); ok {
			m.buffering = b
			m.refreshStateLocked()
		}

	case "eof-reached":
		if b, ok := asBool(data); ok && b && m.handle != nil {
			m.stopPollLocked()
			if m.duration > 0 {
				m.setPositionLocked(m.duration)
			}
			m.setStateLocked(engine.Stopped)
		}

	case "idle-active":
		if b, ok := asBool(data); ok && b && m.handle == nil {
			m.setStateLocked(engine.Stopped)
		}

	case "duration":
		f, ok := asFloat(data)
		if !ok || m.handle == nil {
			return
		}
		if ms := secondsToMs(f); ms != m.duration {
			m.duration = ms
			m.emit(m.generation.Load(), func(l engine.Listener) { l.DurationChanged(ms) })
		}

	case "volume":
		f, ok := asFloat(data)
		if !ok {
			return
		}
		if pct := int(f); pct != m.volume {
			m.volume = pct
			m.emit(m.generation.Load(), func(l engine.Listener) { l.VolumeChanged(pct) })
		}
	}
}

// refreshStateLocked re-derives the state from the pause and cache flags.
// A stopped stream stays stopped while mpv keeps it paused.
func (m *MPV) refreshStateLocked() {
	if m.handle == nil || m.state == engine.Error {
		return
	}
	if m.state == engine.Stopped && m.paused {
		return
	}

	next := nativeState(m.paused, m.buffering)
	m.setStateLocked(next)
	if next == engine.Playing {
		m.startPollLocked()
	} else {
		m.stopPollLocked()
	}
}

// nativeState maps mpv's pause flags onto a playback state.
func nativeState(paused, buffering bool) engine.State {
	switch {
	case paused:
		return engine.Paused
	case buffering:
		return engine.Buffering
	default:
		return engine.Playing
	}
}

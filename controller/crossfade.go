package controller

import (
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
)

const (
	MinCrossfadeMs     = 500
	MaxCrossfadeMs     = 10000
	DefaultCrossfadeMs = 3000
)

// Crossfade configures the transition into the next media.
type Crossfade struct {
	Enabled  bool
	Duration int
}

func clampCrossfade(ms int) int {
	return util.Clamp(ms, MinCrossfadeMs, MaxCrossfadeMs)
}

// SetCrossfadeEnabled stores the crossfade configuration, duration clamped
// to [500, 10000] ms, and rearms the crossfade timer.
func (c *Controller) SetCrossfadeEnabled(enabled bool, durationMs int) {
	next := Crossfade{Enabled: enabled, Duration: clampCrossfade(durationMs)}
	if next == c.crossfade {
		return
	}

	c.crossfade = next
	c.publish(bus.CrossfadeChanged,
		bus.KeyEnabled, next.Enabled,
		bus.KeyDuration, int64(next.Duration),
	)
	c.scheduleCrossfade()
}

func (c *Controller) Crossfade() Crossfade {
	return c.crossfade
}

func (c *Controller) SetGaplessPlayback(enabled bool) {
	if enabled == c.gapless {
		return
	}
	c.gapless = enabled
	c.publish(bus.GaplessPlaybackChanged, bus.KeyEnabled, enabled)
}

func (c *Controller) GaplessPlayback() bool {
	return c.gapless
}

func (c *Controller) SetPlaybackMode(mode media.PlaybackMode) {
	if mode == c.mode {
		return
	}
	c.mode = mode
	c.publish(bus.PlaybackModeChanged, bus.KeyMode, mode.String())
}

func (c *Controller) PlaybackMode() media.PlaybackMode {
	return c.mode
}

// CycleMode advances to the next playback mode.
func (c *Controller) CycleMode() {
	c.SetPlaybackMode(c.mode.Next())
}

// scheduleCrossfade arms a one-shot timer firing when the remaining
// playback time reaches the crossfade duration.
func (c *Controller) scheduleCrossfade() {
	c.cancelCrossfadeTimer()

	if !c.crossfade.Enabled || c.crossfadeFired || c.engine == nil {
		return
	}
	if c.engine.State() != engine.Playing {
		return
	}

	d := c.engine.Duration()
	if d <= 0 {
		return
	}

	remaining := d - c.engine.Position() - int64(c.crossfade.Duration)
	remaining = util.Max(remaining, 0) * 100 / int64(util.Max(c.speed, 1))

	origin := c.origin
	c.cancelCrossfade = c.sched.AfterFunc(msDuration(remaining), func() {
		c.cancelCrossfade = nil
		if c.origin != origin || c.crossfadeFired {
			return
		}
		c.crossfadeFired = true
		c.publish(bus.CrossfadeStarted,
			bus.KeyOrigin, origin,
			bus.KeyDuration, int64(c.crossfade.Duration),
		)
	})
}

func (c *Controller) cancelCrossfadeTimer() {
	if c.cancelCrossfade != nil {
		c.cancelCrossfade()
		c.cancelCrossfade = nil
	}
}

// onEndOfMedia applies the playback mode once the stream runs out.
func (c *Controller) onEndOfMedia() {
	origin := c.origin
	if origin != "" && c.remember() {
		c.ClearResumePosition(origin)
	}

	if c.mode == media.RepeatOne {
		c.crossfadeFired = false
		c.check("repeat", c.engine.Seek(0))
		c.check("repeat", c.engine.Play())
		return
	}

	c.publish(bus.EndOfMedia,
		bus.KeyOrigin, origin,
		bus.KeyMode, c.mode.String(),
	)
}

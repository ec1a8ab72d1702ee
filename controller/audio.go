package controller

import (
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/util"
	"github.com/samber/lo"
)

// DefaultVolumeStep is used by VolumeUp and VolumeDown when no step is given.
const DefaultVolumeStep = 5

// SetVolume sets the volume, clamped to [0, 100]. A positive volume unmutes.
func (c *Controller) SetVolume(pct int) {
	if !c.available("set volume") {
		return
	}

	pct = util.Clamp(pct, 0, 100)
	if c.muted && pct > 0 {
		c.muted = false
		c.publish(bus.MuteChanged, bus.KeyMuted, false)
	}
	c.check("set volume", c.engine.SetVolume(pct))
}

func (c *Controller) Volume() int {
	if c.engine == nil {
		return 0
	}
	return c.engine.Volume()
}

func (c *Controller) VolumeUp(step int) {
	if !c.available("volume up") {
		return
	}
	base := lo.Ternary(c.muted, c.volumeBeforeMute, c.engine.Volume())
	c.SetVolume(base + c.volumeStep(step))
}

// VolumeDown lowers the volume. While muted only the remembered volume changes.
func (c *Controller) VolumeDown(step int) {
	if !c.available("volume down") {
		return
	}
	if c.muted {
		c.volumeBeforeMute = util.Clamp(c.volumeBeforeMute-c.volumeStep(step), 0, 100)
		return
	}
	c.SetVolume(c.engine.Volume() - c.volumeStep(step))
}

func (c *Controller) volumeStep(step int) int {
	return lo.Ternary(step > 0, step, DefaultVolumeStep)
}

// SetMuted mutes by driving the engine volume to zero and restores the
// previous volume on unmute.
func (c *Controller) SetMuted(muted bool) {
	if !c.available("mute") || muted == c.muted {
		return
	}

	if muted {
		// state first: SetVolume(0) calls back into onVolumeChanged
		c.volumeBeforeMute = c.engine.Volume()
		c.muted = true
		c.check("mute", c.engine.SetVolume(0))
		c.publish(bus.MuteChanged, bus.KeyMuted, true)
		return
	}

	restore := c.volumeBeforeMute
	if restore <= 0 {
		restore = DefaultVolume
	}
	c.muted = false
	c.check("unmute", c.engine.SetVolume(restore))
	c.publish(bus.MuteChanged, bus.KeyMuted, false)
}

func (c *Controller) ToggleMute() {
	c.SetMuted(!c.muted)
}

func (c *Controller) IsMuted() bool {
	return c.muted
}

// SetPlaybackSpeed sets the speed in percent, clamped to [10, 1000].
// The change event fires only when the stored value changes.
func (c *Controller) SetPlaybackSpeed(pct int) {
	if !c.available("set speed") {
		return
	}

	pct = util.Clamp(pct, media.MinSpeed, media.MaxSpeed)
	c.check("set speed", c.engine.SetPlaybackRate(float64(pct)/100))

	if pct == c.speed {
		return
	}
	c.speed = pct
	c.publish(bus.PlaybackSpeedChanged, bus.KeySpeed, pct)
	c.scheduleCrossfade()
}

func (c *Controller) PlaybackSpeed() int {
	return c.speed
}

func (c *Controller) ResetPlaybackSpeed() {
	c.SetPlaybackSpeed(media.NormalRate)
}

// SpeedUp moves to the next rung of the speed ladder.
func (c *Controller) SpeedUp() {
	c.SetPlaybackSpeed(media.NextSpeed(c.speed))
}

// SpeedDown moves to the previous rung of the speed ladder.
func (c *Controller) SpeedDown() {
	c.SetPlaybackSpeed(media.PrevSpeed(c.speed))
}

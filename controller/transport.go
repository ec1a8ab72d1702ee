package controller

import (
	"math"
	"time"

	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/util"
)

const (
	// FrameStepMs approximates one frame at 30 fps.
	FrameStepMs int64 = 33

	// endTolerance is how close to the duration a stop must land to count as end of stream.
	endTolerance int64 = 1000
)

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (c *Controller) Play() {
	if !c.available("play") {
		return
	}
	if c.scan.Active {
		c.disarmScan(false)
	}
	c.check("play", c.engine.Play())
}

func (c *Controller) Pause() {
	if !c.available("pause") {
		return
	}
	c.disarmScan(false)
	c.pauseEngine("pause")
}

// pauseEngine pauses the backend on the controller's behalf, so that a
// later stop is not taken for the stream running out.
func (c *Controller) pauseEngine(op string) {
	c.userPause = true
	c.check(op, c.engine.Pause())
}

func (c *Controller) Stop() {
	if !c.available("stop") {
		return
	}
	c.disarmScan(false)
	c.cancelCrossfadeTimer()

	c.userStop = true
	c.check("stop", c.engine.Stop())
	c.userStop = false
}

// TogglePlayPause plays when paused or stopped and pauses when playing.
// Buffering is left alone and the error state is reported.
func (c *Controller) TogglePlayPause() {
	if !c.available("toggle") {
		return
	}

	switch c.engine.State() {
	case engine.Playing:
		c.Pause()
	case engine.Paused, engine.Stopped:
		c.Play()
	case engine.Buffering:
		c.logger.Debug("toggle ignored while buffering")
	case engine.Error:
		c.publishError("toggle: playback is in an error state")
	}
}

// Seek moves to ms, clamped to the known duration.
func (c *Controller) Seek(ms int64) {
	if !c.loaded("seek") {
		return
	}
	c.seek(ms)
}

func (c *Controller) seek(ms int64) {
	ms = util.Max(ms, 0)
	if d := c.engine.Duration(); d > 0 {
		ms = util.Min(ms, d)
	}
	c.check("seek", c.engine.Seek(ms))

	c.crossfadeFired = false
	c.scheduleCrossfade()
}

// SeekForward moves forward by stepMs, or by the configured step when stepMs is not positive.
func (c *Controller) SeekForward(stepMs int64) {
	if !c.loaded("seek forward") {
		return
	}
	c.seek(c.engine.Position() + c.seekStep(stepMs))
}

// SeekBackward moves back by stepMs, or by the configured step when stepMs is not positive.
func (c *Controller) SeekBackward(stepMs int64) {
	if !c.loaded("seek backward") {
		return
	}
	c.seek(c.engine.Position() - c.seekStep(stepMs))
}

// SeekToPercentage seeks to floor(pct/100 * duration) with pct clamped to [0, 100].
func (c *Controller) SeekToPercentage(pct float64) {
	if !c.loaded("seek to percentage") {
		return
	}

	d := c.engine.Duration()
	if d <= 0 {
		c.logger.Warn("seek to percentage without a known duration")
		return
	}

	pct = util.Clamp(pct, 0, 100)
	c.seek(int64(math.Floor(pct / 100 * float64(d))))
}

// StepForward pauses and advances by one frame.
func (c *Controller) StepForward() {
	c.step("step forward", FrameStepMs)
}

// StepBackward pauses and moves back by one frame.
func (c *Controller) StepBackward() {
	c.step("step backward", -FrameStepMs)
}

func (c *Controller) step(op string, delta int64) {
	if !c.loaded(op) {
		return
	}
	c.disarmScan(false)
	if c.engine.State() == engine.Playing {
		c.pauseEngine(op)
	}
	c.seek(c.engine.Position() + delta)
}

func (c *Controller) seekStep(stepMs int64) int64 {
	if stepMs > 0 {
		return stepMs
	}
	return util.Max(int64(c.settings.GetInt(key.PlaybackSeekStep)), 1)
}

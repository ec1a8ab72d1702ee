package controller

import (
	"time"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/engine"
	"github.com/samber/lo"
)

// Direction of a fast-scan.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

const (
	scanInterval = 100 * time.Millisecond

	// scanStepMs is the distance covered per tick at 1x.
	scanStepMs int64 = 100

	// scanTailMs keeps a forward scan this far from the end.
	scanTailMs int64 = 1000
)

// Multipliers are the fast-scan speeds.
var Multipliers = []int{2, 5, 10, 20}

// FastScan describes the current fast-scan.
type FastScan struct {
	Active     bool
	Direction  Direction
	Multiplier int
}

// snapMultiplier returns the allowed multiplier closest to m, preferring the lower one on ties.
func snapMultiplier(m int) int {
	return lo.MinBy(Multipliers, func(a, b int) bool {
		da, db := abs(a-m), abs(b-m)
		return da < db || (da == db && a < b)
	})
}

func abs(n int) int {
	return lo.Ternary(n < 0, -n, n)
}

// StartFastForward starts scanning forward at multiplier, snapped to Multipliers.
func (c *Controller) StartFastForward(multiplier int) {
	c.startScan("fast forward", Forward, multiplier)
}

// StartRewind starts scanning backward at multiplier, snapped to Multipliers.
func (c *Controller) StartRewind(multiplier int) {
	c.startScan("rewind", Reverse, multiplier)
}

func (c *Controller) startScan(op string, dir Direction, multiplier int) {
	if !c.loaded(op) {
		return
	}

	if c.engine.State() == engine.Playing {
		c.pauseEngine(op)
	}

	c.scan = FastScan{
		Active:     true,
		Direction:  dir,
		Multiplier: snapMultiplier(multiplier),
	}
	if c.cancelScan == nil {
		c.cancelScan = c.sched.Every(scanInterval, c.scanTick)
	}

	c.publish(bus.FastSeekChanged,
		bus.KeyActive, true,
		bus.KeyMultiplier, c.scan.Multiplier,
	)
}

// CycleFastForward starts a forward scan or moves it to the next
// multiplier. Past the fastest multiplier the scan stops.
func (c *Controller) CycleFastForward() {
	if !c.scan.Active || c.scan.Direction != Forward {
		c.StartFastForward(Multipliers[0])
		return
	}

	_, i, _ := lo.FindIndexOf(Multipliers, func(m int) bool { return m == c.scan.Multiplier })
	if i < 0 || i == len(Multipliers)-1 {
		c.StopFastSeek()
		return
	}
	c.StartFastForward(Multipliers[i+1])
}

// CycleRewind is the reverse counterpart of CycleFastForward.
func (c *Controller) CycleRewind() {
	if !c.scan.Active || c.scan.Direction != Reverse {
		c.StartRewind(Multipliers[0])
		return
	}

	_, i, _ := lo.FindIndexOf(Multipliers, func(m int) bool { return m == c.scan.Multiplier })
	if i < 0 || i == len(Multipliers)-1 {
		c.StopFastSeek()
		return
	}
	c.StartRewind(Multipliers[i+1])
}

// StopFastSeek disarms the scan and resumes normal play.
func (c *Controller) StopFastSeek() {
	c.disarmScan(true)
}

func (c *Controller) IsFastSeeking() bool {
	return c.scan.Active
}

func (c *Controller) FastScan() FastScan {
	return c.scan
}

// disarmScan cancels the tick. With resume set, playback continues.
func (c *Controller) disarmScan(resume bool) {
	if !c.scan.Active {
		return
	}

	if c.cancelScan != nil {
		c.cancelScan()
		c.cancelScan = nil
	}
	c.scan = FastScan{}
	c.publish(bus.FastSeekChanged,
		bus.KeyActive, false,
		bus.KeyMultiplier, 0,
	)

	if resume && c.engine != nil && c.engine.HasMedia() {
		c.check("resume", c.engine.Play())
	}
}

func (c *Controller) scanTick() {
	if !c.scan.Active || c.engine == nil || !c.engine.HasMedia() {
		c.disarmScan(false)
		return
	}

	var (
		pos  = c.engine.Position()
		d    = c.engine.Duration()
		step = scanStepMs * int64(c.scan.Multiplier)
	)

	if c.scan.Direction == Reverse {
		target := pos - step
		if target <= 0 {
			c.check("rewind", c.engine.Seek(0))
			c.disarmScan(true)
			return
		}
		c.check("rewind", c.engine.Seek(target))
		return
	}

	target := pos + step
	if d > 0 && target >= d-scanTailMs {
		c.check("fast forward", c.engine.Seek(max(d-scanTailMs, 0)))
		c.disarmScan(true)
		return
	}
	c.check("fast forward", c.engine.Seek(target))
}

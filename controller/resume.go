package controller

import (
	"maps"

	"github.com/eonplay/eonplay/engine"
)

const (
	// resumeHeadMs and resumeTailMs bound the positions worth remembering.
	resumeHeadMs int64 = 5000
	resumeTailMs int64 = 10000
)

// worthResuming reports whether pos is far enough from both ends of d.
func worthResuming(pos, d int64) bool {
	return pos > resumeHeadMs && pos < d-resumeTailMs
}

// SaveResumePosition remembers the current position for origin, or forgets
// it when the position is too close to either end.
func (c *Controller) SaveResumePosition(origin string) {
	if origin == "" || !c.available("save resume position") {
		return
	}

	pos, d := c.engine.Position(), c.engine.Duration()
	if worthResuming(pos, d) {
		c.resume[origin] = pos
	} else {
		delete(c.resume, origin)
	}
	c.persist()
}

// LoadResumePosition seeks to the remembered position of origin.
// It reports whether a position was applied.
func (c *Controller) LoadResumePosition(origin string) bool {
	pos, ok := c.resume[origin]
	if !ok || !c.loaded("load resume position") {
		return false
	}

	c.seek(pos)
	c.logger.WithField("origin", origin).WithField("position", pos).Info("resumed")
	return true
}

func (c *Controller) ClearResumePosition(origin string) {
	if _, ok := c.resume[origin]; !ok {
		return
	}
	delete(c.resume, origin)
	c.persist()
}

// ResumePosition returns the remembered position of origin.
func (c *Controller) ResumePosition(origin string) (int64, bool) {
	pos, ok := c.resume[origin]
	return pos, ok
}

// ResumePositions returns a copy of every remembered position.
func (c *Controller) ResumePositions() map[string]int64 {
	return maps.Clone(c.resume)
}

// PrepareMediaSwitch must run before a new origin is handed to the engine.
// It disarms fast-scan and timers and remembers where the current media
// was left.
func (c *Controller) PrepareMediaSwitch() {
	c.disarmScan(false)
	c.cancelCrossfadeTimer()
	c.cancelPendingResume()

	if c.origin == "" || c.engine == nil || !c.engine.HasMedia() || !c.remember() {
		return
	}
	if c.engine.State() == engine.Error {
		return
	}
	c.SaveResumePosition(c.origin)
}

func (c *Controller) cancelPendingResume() {
	if c.cancelResume != nil {
		c.cancelResume()
		c.cancelResume = nil
	}
}

func (c *Controller) persist() {
	if c.persister == nil || !c.remember() {
		return
	}
	if err := c.persister.Store(maps.Clone(c.resume)); err != nil {
		c.logger.WithError(err).Warn("could not store resume positions")
	}
}

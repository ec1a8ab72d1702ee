package controller

import (
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/media"
)

// Status is a point-in-time view of the playback core.
type Status struct {
	Origin    string
	State     engine.State
	Position  int64
	Duration  int64
	Volume    int
	Muted     bool
	Speed     int
	Mode      media.PlaybackMode
	Scan      FastScan
	Crossfade Crossfade
	Gapless   bool
	HasMedia  bool
	HasVideo  bool
}

// Snapshot captures the current status.
func (c *Controller) Snapshot() Status {
	s := Status{
		Origin:    c.origin,
		Muted:     c.muted,
		Speed:     c.speed,
		Mode:      c.mode,
		Scan:      c.scan,
		Crossfade: c.crossfade,
		Gapless:   c.gapless,
	}

	if c.engine == nil {
		return s
	}

	s.State = c.engine.State()
	s.Position = c.engine.Position()
	s.Duration = c.engine.Duration()
	s.Volume = c.engine.Volume()
	s.HasMedia = c.engine.HasMedia()
	s.HasVideo = c.engine.HasVideo()
	return s
}

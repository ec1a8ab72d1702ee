// Package controller layers high-level playback behaviour over a Media
// Engine: mute with restore, speed ladder, fast-scan, frame stepping,
// resume positions, seek thumbnails and crossfade timing.
//
// A Controller is confined to the core event loop. Every exported method
// and every engine callback must run on that loop; there is no internal
// locking.
package controller

import (
	"errors"
	"fmt"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/log"
	"github.com/eonplay/eonplay/loop"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/settings"
	"github.com/sirupsen/logrus"
)

// Name is the registry name of the controller.
const Name = "controller"

// DefaultVolume is restored when unmuting with no remembered volume.
const DefaultVolume = 80

// ResumePersister stores resume positions across sessions.
type ResumePersister interface {
	Load() (map[string]int64, error)
	Store(positions map[string]int64) error
}

// Controller implements the playback operations of the core.
type Controller struct {
	engine    engine.Engine
	events    *bus.Bus
	sched     loop.Scheduler
	settings  settings.Settings
	persister ResumePersister
	logger    *logrus.Entry

	unsubscribe func()

	origin     string
	lastState  engine.State
	userStop   bool
	userPause  bool
	lastVolume int

	muted            bool
	volumeBeforeMute int
	speed            int
	mode             media.PlaybackMode

	scan       FastScan
	cancelScan loop.CancelFunc

	crossfade       Crossfade
	gapless         bool
	crossfadeFired  bool
	cancelCrossfade loop.CancelFunc

	resume       map[string]int64
	cancelResume loop.CancelFunc

	thumbs *thumbnailCache
}

// Option configures a Controller.
type Option func(*Controller)

// WithPersister makes resume positions survive restarts.
func WithPersister(p ResumePersister) Option {
	return func(c *Controller) {
		c.persister = p
	}
}

// New returns a controller over e. A nil engine is allowed; every
// operation then reports an error event and does nothing.
func New(e engine.Engine, events *bus.Bus, sched loop.Scheduler, s settings.Settings, opts ...Option) *Controller {
	c := &Controller{
		engine:   e,
		events:   events,
		sched:    sched,
		settings: s,
		logger:   log.For(Name),
		speed:    media.NormalRate,
		crossfade: Crossfade{
			Duration: DefaultCrossfadeMs,
		},
		resume: make(map[string]int64),
		thumbs: newThumbnailCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Name() string { return Name }

// Initialize subscribes to the engine and applies the configured defaults.
func (c *Controller) Initialize() error {
	c.crossfade = Crossfade{
		Enabled:  c.settings.GetBool(key.PlaybackCrossfade),
		Duration: clampCrossfade(c.settings.GetInt(key.PlaybackCrossfadeDuration)),
	}
	c.gapless = c.settings.GetBool(key.PlaybackGapless)
	c.settings.OnChange(func(k string) {
		c.sched.Post(func() { c.onSettingChanged(k) })
	})

	if c.remember() && c.persister != nil {
		positions, err := c.persister.Load()
		if err != nil {
			c.logger.WithError(err).Warn("could not load resume positions")
		} else {
			for origin, ms := range positions {
				c.resume[origin] = ms
			}
		}
	}

	if c.engine == nil {
		c.logger.Warn("initialized without a media backend")
		return nil
	}

	c.unsubscribe = c.engine.Subscribe(engine.Funcs{
		OnState:    c.onStateChanged,
		OnDuration: c.onDurationChanged,
		OnVolume:   c.onVolumeChanged,
		OnLoaded:   c.onMediaLoaded,
	})

	c.lastState = c.engine.State()
	volume := c.settings.GetInt(key.PlaybackVolume)
	c.lastVolume = volume
	c.check("set volume", c.engine.SetVolume(volume))
	return nil
}

// Shutdown cancels every timer, persists resume positions and clears the
// controller-owned caches.
func (c *Controller) Shutdown() error {
	c.disarmScan(false)
	c.cancelCrossfadeTimer()
	c.cancelPendingResume()

	if c.origin != "" && c.engine != nil && c.engine.HasMedia() && c.remember() {
		c.SaveResumePosition(c.origin)
	}

	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}

	c.thumbs.clear()
	c.resume = make(map[string]int64)
	return nil
}

func (c *Controller) onSettingChanged(k string) {
	switch k {
	case key.PlaybackCrossfade, key.PlaybackCrossfadeDuration:
		c.SetCrossfadeEnabled(c.settings.GetBool(key.PlaybackCrossfade), c.settings.GetInt(key.PlaybackCrossfadeDuration))
	case key.PlaybackGapless:
		c.SetGaplessPlayback(c.settings.GetBool(key.PlaybackGapless))
	case key.PlaybackThumbnails, key.PlaybackThumbnailWidth, key.PlaybackThumbnailPlaceholder:
		c.thumbs.clear()
	}
}

func (c *Controller) onMediaLoaded(success bool, origin string) {
	if !success {
		return
	}

	c.origin = origin
	c.crossfadeFired = false
	c.userPause = false
	c.thumbs.clear()

	if !c.remember() {
		return
	}
	c.cancelPendingResume()
	delay := msDuration(int64(c.settings.GetInt(key.PlaybackResumeDelay)))
	c.cancelResume = c.sched.AfterFunc(delay, func() {
		c.cancelResume = nil
		if c.origin == origin {
			c.LoadResumePosition(origin)
		}
	})
}

func (c *Controller) onStateChanged(s engine.State) {
	previous := c.lastState
	c.lastState = s

	switch s {
	case engine.Playing:
		c.userPause = false
		c.scheduleCrossfade()
	case engine.Stopped:
		c.cancelCrossfadeTimer()
		c.disarmScan(false)
		ranOut := previous == engine.Playing || (previous == engine.Paused && !c.userPause)
		c.userPause = false
		if ranOut && !c.userStop && c.atEnd() {
			c.onEndOfMedia()
		}
	case engine.Error:
		c.cancelCrossfadeTimer()
		c.disarmScan(false)
	default:
		c.cancelCrossfadeTimer()
	}
}

func (c *Controller) onDurationChanged(int64) {
	c.scheduleCrossfade()
}

// onVolumeChanged keeps the mute flag in sync with volumes set outside the controller.
func (c *Controller) onVolumeChanged(pct int) {
	if pct > 0 {
		c.lastVolume = pct
	}

	switch {
	case pct == 0 && !c.muted:
		c.muted = true
		c.volumeBeforeMute = c.lastVolume
		c.publish(bus.MuteChanged, bus.KeyMuted, true)
	case pct > 0 && c.muted:
		c.muted = false
		c.publish(bus.MuteChanged, bus.KeyMuted, false)
	}
}

func (c *Controller) atEnd() bool {
	d := c.engine.Duration()
	return d > 0 && c.engine.Position() >= d-endTolerance
}

func (c *Controller) remember() bool {
	return c.settings.GetBool(key.PlaybackRememberPosition)
}

// available reports whether a backend is attached, publishing an error when not.
func (c *Controller) available(op string) bool {
	if c.engine != nil {
		return true
	}
	c.publishError(op + ": no media backend")
	return false
}

// loaded reports whether media is loaded, logging a warning when not.
func (c *Controller) loaded(op string) bool {
	if !c.available(op) {
		return false
	}
	if c.engine.HasMedia() {
		return true
	}
	c.logger.WithField("op", op).Warn("no media loaded")
	return false
}

// check turns an engine error into a log entry or an error event.
func (c *Controller) check(op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, engine.ErrNoMedia) {
		c.logger.WithField("op", op).Warn("no media loaded")
		return
	}

	c.logger.WithField("op", op).WithError(err).Error("engine operation failed")
	c.publishError(fmt.Sprintf("%s: %v", op, err))
}

func (c *Controller) publishError(message string) {
	c.publish(bus.ErrorOccurred, bus.KeyMessage, message)
}

func (c *Controller) publish(eventType string, kv ...any) {
	if c.events == nil {
		return
	}
	e := bus.New(eventType, kv...)
	e.Sender = c
	c.events.Publish(e)
}

// Origin returns the origin of the last successfully loaded media.
func (c *Controller) Origin() string {
	return c.origin
}

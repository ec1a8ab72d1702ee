// Package intake vets local files and URLs before they reach the engine,
// extracts media metadata, finds sidecar subtitles, handles dropped media
// and captures screenshots.
package intake

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/log"
	"github.com/eonplay/eonplay/loop"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/settings"
	"github.com/eonplay/eonplay/util"
	"github.com/sirupsen/logrus"
)

// Name is the registry name of the intake.
const Name = "intake"

// ExtractTimeout bounds metadata extraction after a load.
const ExtractTimeout = 5 * time.Second

var ErrNoBackend = errors.New("no media backend")

// Prober reads technical metadata from a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*media.Info, error)
}

// MediaSwitcher is told before the engine receives a new origin.
type MediaSwitcher interface {
	PrepareMediaSwitch()
}

// Intake is confined to the core event loop, like the controller.
type Intake struct {
	engine   engine.Engine
	events   *bus.Bus
	sched    loop.Scheduler
	settings settings.Settings
	prober   Prober
	switcher func() (MediaSwitcher, bool)
	now      func() time.Time
	logger   *logrus.Entry

	origin string

	mu    sync.Mutex
	infos map[string]cachedInfo
}

type Option func(*Intake)

// WithProber sets the metadata prober. Without one only file facts and tags are extracted.
func WithProber(p Prober) Option {
	return func(i *Intake) {
		i.prober = p
	}
}

// WithSwitcher resolves the component notified before every load. The
// lookup runs on each load so the intake never owns the controller.
func WithSwitcher(resolve func() (MediaSwitcher, bool)) Option {
	return func(i *Intake) {
		i.switcher = resolve
	}
}

// WithClock replaces the clock used for screenshot names.
func WithClock(now func() time.Time) Option {
	return func(i *Intake) {
		i.now = now
	}
}

func New(e engine.Engine, events *bus.Bus, sched loop.Scheduler, s settings.Settings, opts ...Option) *Intake {
	i := &Intake{
		engine:   e,
		events:   events,
		sched:    sched,
		settings: s,
		now:      time.Now,
		logger:   log.For(Name),
		infos:    make(map[string]cachedInfo),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Intake) Name() string { return Name }

func (i *Intake) Initialize() error {
	if i.engine == nil {
		i.logger.Warn("initialized without a media backend, loads will fail")
	}
	if i.prober == nil {
		i.logger.Debug("no prober, metadata is limited to file facts and tags")
	}
	return nil
}

func (i *Intake) Shutdown() error {
	i.mu.Lock()
	i.infos = make(map[string]cachedInfo)
	i.mu.Unlock()

	i.origin = ""
	return nil
}

// Origin returns the last origin handed to the engine successfully.
func (i *Intake) Origin() string {
	return i.origin
}

// LoadMediaFile validates path and loads it. It reports whether the engine accepted the file.
func (i *Intake) LoadMediaFile(path string) bool {
	if result := i.ValidateMediaFile(path); result != media.Valid {
		message := i.ValidationErrorMessage(path, result)
		i.logger.WithField("path", path).WithField("result", result).Warn(message)
		i.publish(bus.FileValidationFailed,
			bus.KeyOrigin, path,
			bus.KeyResult, result.String(),
			bus.KeyMessage, message,
		)
		return false
	}

	path = filepath.Clean(path)
	if !i.load(path) {
		return false
	}

	i.extractAsync(path)
	if i.settings.GetBool(key.SubtitlesAutoDetect) {
		if subs := i.AutoDetectSubtitles(path); len(subs) > 0 {
			i.publish(bus.SubtitlesDetected,
				bus.KeyPath, path,
				bus.KeyPaths, subs,
			)
		}
	}
	return true
}

// LoadMediaURL validates raw and loads it. file:// URLs go through LoadMediaFile.
func (i *Intake) LoadMediaURL(raw string) bool {
	origin, local, err := i.ValidateMediaURL(raw)
	if err != nil {
		i.logger.WithField("url", raw).WithError(err).Warn("rejected url")
		i.publish(bus.UrlValidationFailed,
			bus.KeyOrigin, raw,
			bus.KeyMessage, err.Error(),
		)
		return false
	}

	if local {
		return i.LoadMediaFile(origin)
	}

	if !i.load(origin) {
		return false
	}

	info := &media.Info{
		Origin:     origin,
		Title:      titleFromURL(origin),
		DurationMs: i.engine.Duration(),
		IsValid:    true,
	}
	info.Normalize()

	i.publish(bus.MediaUrlLoaded,
		bus.KeyOrigin, origin,
		bus.KeyInfo, info,
	)
	return true
}

func (i *Intake) load(origin string) bool {
	if i.engine == nil {
		i.publish(bus.ErrorOccurred, bus.KeyMessage, "load: "+ErrNoBackend.Error())
		return false
	}

	if i.switcher != nil {
		if s, ok := i.switcher(); ok {
			s.PrepareMediaSwitch()
		}
	}

	if err := i.engine.Load(origin); err != nil {
		i.logger.WithField("origin", origin).WithError(err).Error("engine rejected media")
		return false
	}

	i.origin = origin
	return true
}

// extractAsync reads metadata off the loop and publishes it back on the loop.
func (i *Intake) extractAsync(path string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ExtractTimeout)
		defer cancel()

		info, err := i.safeExtract(ctx, path)
		if err != nil {
			i.logger.WithField("path", path).WithError(err).Warn("metadata extraction failed")
			info = &media.Info{Origin: path, Title: util.FileStem(path)}
		}
		i.sched.Post(func() {
			if i.origin != path {
				return
			}
			i.publish(bus.MediaFileLoaded,
				bus.KeyOrigin, path,
				bus.KeyInfo, info,
			)
		})
	}()
}

// safeExtract turns a panic in the prober or the tag reader into an error.
func (i *Intake) safeExtract(ctx context.Context, path string) (info *media.Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return i.ExtractMediaInfo(ctx, path), nil
}

func (i *Intake) publish(eventType string, kv ...any) {
	if i.events == nil {
		return
	}
	e := bus.New(eventType, kv...)
	e.Sender = i
	i.events.Publish(e)
}

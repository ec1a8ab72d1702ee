// Package core assembles the playback core: the event bus, the event loop,
// the decoder backend, the controller and the intake, registered for
// ordered start-up and teardown.
package core

import (
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/controller"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/history"
	"github.com/eonplay/eonplay/intake"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/log"
	"github.com/eonplay/eonplay/loop"
	"github.com/eonplay/eonplay/player"
	"github.com/eonplay/eonplay/registry"
	"github.com/eonplay/eonplay/settings"
	"github.com/eonplay/eonplay/where"
)

// Initialization priorities. Lower starts first and stops last.
const (
	BackendPriority    = 10
	ControllerPriority = 20
	IntakePriority     = 30
)

// Backend is a decoder backend managed by the registry.
type Backend interface {
	engine.Engine
	registry.Component
}

// Options override the default collaborators. Zero values select the
// production implementations.
type Options struct {
	// Backend builds the decoder backend on the core's loop. Defaults to mpv.
	Backend func(sched loop.Scheduler) Backend

	Settings  settings.Settings
	Events    *bus.Bus
	Persister controller.ResumePersister
	Prober    intake.Prober
}

type Core struct {
	Events     *bus.Bus
	Loop       *loop.Loop
	Registry   *registry.Registry
	Settings   settings.Settings
	Backend    Backend
	Controller *controller.Controller
	Intake     *intake.Intake

	unbridge func()
}

func New(opts Options) *Core {
	if opts.Settings == nil {
		opts.Settings = settings.NewViper()
	}
	if opts.Events == nil {
		opts.Events = bus.Default()
	}
	if opts.Backend == nil {
		opts.Backend = func(sched loop.Scheduler) Backend { return player.NewMPV(sched) }
	}
	if opts.Persister == nil && opts.Settings.GetBool(key.PlaybackRememberPosition) {
		opts.Persister = history.New(where.Resume())
	}
	if opts.Prober == nil {
		opts.Prober = player.Prober{Binary: opts.Settings.GetString(key.PlayerBinary)}
	}

	c := &Core{
		Events:   opts.Events,
		Loop:     loop.New(),
		Settings: opts.Settings,
	}

	c.Registry = registry.New(c.Events)
	c.Backend = opts.Backend(c.Loop)
	c.unbridge = Bridge(c.Backend, c.Events)

	var controllerOpts []controller.Option
	if opts.Persister != nil {
		controllerOpts = append(controllerOpts, controller.WithPersister(opts.Persister))
	}
	c.Controller = controller.New(c.Backend, c.Events, c.Loop, c.Settings, controllerOpts...)

	c.Intake = intake.New(c.Backend, c.Events, c.Loop, c.Settings,
		intake.WithProber(opts.Prober),
		intake.WithSwitcher(func() (intake.MediaSwitcher, bool) {
			return registry.Lookup[intake.MediaSwitcher](c.Registry)
		}),
	)

	for _, r := range []struct {
		component registry.Component
		priority  int
	}{
		{c.Backend, BackendPriority},
		{c.Controller, ControllerPriority},
		{c.Intake, IntakePriority},
	} {
		if err := c.Registry.Register(r.component, r.priority); err != nil {
			log.For("core").WithError(err).Error("register component")
		}
	}

	return c
}

// Start initializes every component on the loop. It reports whether all of them started.
func (c *Core) Start() bool {
	var ok bool
	c.Loop.Call(func() {
		ok = c.Registry.InitializeAll()
	})
	return ok
}

// Stop tears the components down in reverse order and closes the loop.
// Nothing may be posted afterwards.
func (c *Core) Stop() {
	c.Loop.Call(c.Registry.ShutdownAll)
	if c.unbridge != nil {
		c.unbridge()
		c.unbridge = nil
	}
	c.Loop.Close()
}

// Do runs fn on the loop and waits for it. It must not be called from the loop.
func (c *Core) Do(fn func()) bool {
	return c.Loop.Call(fn)
}

// Post runs fn on the loop without waiting.
func (c *Core) Post(fn func()) bool {
	return c.Loop.Post(fn)
}

// Bridge republishes the engine's events on the bus.
func Bridge(e engine.Engine, events *bus.Bus) func() {
	publish := func(eventType string, kv ...any) {
		ev := bus.New(eventType, kv...)
		ev.Sender = e
		events.Publish(ev)
	}

	return e.Subscribe(engine.Funcs{
		OnState: func(s engine.State) {
			publish(bus.StateChanged, bus.KeyState, s.String())
		},
		OnPosition: func(ms int64) {
			publish(bus.PositionChanged, bus.KeyPosition, ms)
		},
		OnDuration: func(ms int64) {
			publish(bus.DurationChanged, bus.KeyDuration, ms)
		},
		OnVolume: func(pct int) {
			publish(bus.VolumeChanged, bus.KeyVolume, pct)
		},
		OnLoaded: func(success bool, origin string) {
			publish(bus.MediaLoaded, bus.KeySuccess, success, bus.KeyOrigin, origin)
		},
		OnError: func(message string) {
			publish(bus.ErrorOccurred, bus.KeyMessage, message)
		},
	})
}

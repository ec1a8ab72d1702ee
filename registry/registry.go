// Package registry sequences the startup and shutdown of core components.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/log"
	"github.com/samber/lo"
)

// ErrDuplicate is returned when a component name is already registered.
var ErrDuplicate = errors.New("component already registered")

// Component is a unit with a managed lifecycle.
type Component interface {
	Name() string
	Initialize() error
	Shutdown() error
}

// Failure records a component whose Initialize returned an error.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

type entry struct {
	component   Component
	priority    int
	initialized bool
	name        string
}

// Registry holds components ordered by priority. Lower priorities initialize first.
type Registry struct {
	mu       sync.Mutex
	entries  []*entry
	started  []*entry
	failures []Failure
	events   *bus.Bus
}

// New returns an empty registry. When events is non-nil, initialization
// failures are also published on it.
func New(events *bus.Bus) *Registry {
	return &Registry{events: events}
}

// Register adds c with the given priority.
func (r *Registry) Register(c Component, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, found := r.find(name); found {
		log.For("registry").WithField("name", name).Warn("duplicate component rejected")
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	r.entries = append(r.entries, &entry{component: c, priority: priority, name: name})
	return nil
}

// InitializeAll initializes every component in ascending priority order.
// A failing component is recorded and the rest still run. The result is true
// only when every component succeeded.
func (r *Registry) InitializeAll() bool {
	r.mu.Lock()
	ordered := make([]*entry, len(r.entries))
	copy(ordered, r.entries)
	r.failures = nil
	r.mu.Unlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].priority < ordered[j].priority
	})

	ok := true
	for _, e := range ordered {
		if e.initialized {
			continue
		}

		logger := log.For("registry").WithField("name", e.name)
		if err := e.component.Initialize(); err != nil {
			ok = false
			logger.WithError(err).Error("component failed to initialize")
			r.recordFailure(Failure{Name: e.name, Err: err})
			continue
		}

		logger.Debug("component initialized")
		r.mu.Lock()
		e.initialized = true
		r.started = append(r.started, e)
		r.mu.Unlock()
	}

	return ok
}

func (r *Registry) recordFailure(f Failure) {
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()

	if r.events != nil {
		r.events.Publish(bus.New(bus.ComponentFailed, bus.KeyName, f.Name, bus.KeyMessage, f.Err.Error()))
	}
}

// ShutdownAll shuts down initialized components in the exact reverse of the
// order they were initialized. Errors are logged and swallowed.
func (r *Registry) ShutdownAll() {
	r.mu.Lock()
	started := r.started
	r.started = nil
	r.mu.Unlock()

	for i := len(started) - 1; i >= 0; i-- {
		e := started[i]
		if err := e.component.Shutdown(); err != nil {
			log.For("registry").WithField("name", e.name).WithError(err).Error("component failed to shut down")
		}

		r.mu.Lock()
		e.initialized = false
		r.mu.Unlock()
	}
}

// Get returns the component registered under name.
func (r *Registry) Get(name string) (Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, found := r.find(name)
	if !found {
		return nil, false
	}
	return e.component, true
}

// Lookup returns the first registered component that implements T.
func Lookup[T any](r *Registry) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if t, ok := e.component.(T); ok {
			return t, true
		}
	}

	var zero T
	return zero, false
}

// AllInitialized reports whether every registered component is initialized.
func (r *Registry) AllInitialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.EveryBy(r.entries, func(e *entry) bool {
		return e.initialized
	})
}

// Failures returns the failures of the last InitializeAll.
func (r *Registry) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Failure(nil), r.failures...)
}

// Names returns registered component names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.Map(r.entries, func(e *entry, _ int) string {
		return e.name
	})
}

func (r *Registry) find(name string) (*entry, bool) {
	return lo.Find(r.entries, func(e *entry) bool {
		return e.name == name
	})
}

package settings

import (
	"errors"
	"slices"
	"sync"

	"github.com/eonplay/eonplay/config"
	"github.com/spf13/cast"
)

// ErrNoSecret is returned when a secret does not exist.
var ErrNoSecret = errors.New("secret not found")

// Map is an in-memory Settings. Keys that were never set fall back to the
// registered defaults.
type Map struct {
	mu        sync.Mutex
	values    map[string]any
	secrets   map[string]string
	listeners []func(string)
	saves     int
}

// NewMap returns settings seeded with values.
func NewMap(values map[string]any) *Map {
	m := &Map{values: make(map[string]any), secrets: make(map[string]string)}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Map) Get(key string) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.values[key]; ok {
		return v
	}
	if field, ok := config.Default[key]; ok {
		return field.Value
	}
	return nil
}

func (m *Map) GetString(key string) string { return cast.ToString(m.Get(key)) }
func (m *Map) GetBool(key string) bool { return cast.ToBool(m.Get(key)) }
func (m *Map) GetInt(key string) int { return cast.ToInt(m.Get(key)) }
func (m *Map) GetInt64(key string) int64 { return cast.ToInt64(m.Get(key)) }
func (m *Map) GetFloat(key string) float64 { return cast.ToFloat64(m.Get(key)) }

func (m *Map) Set(key string, value any) error {
	m.mu.Lock()
	m.values[key] = value
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(key)
	}
	return nil
}

func (m *Map) SaveNow() error {
	m.mu.Lock()
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves returns how many times SaveNow was called.
func (m *Map) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Map) OnChange(fn func(key string)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Map) SetSecret(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[name] = value
	return nil
}

func (m *Map) Secret(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.secrets[name]
	if !ok {
		return "", ErrNoSecret
	}
	return s, nil
}

func (m *Map) DeleteSecret(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.secrets[name]; !ok {
		return ErrNoSecret
	}
	delete(m.secrets, name)
	return nil
}

var _ Settings = (*Map)(nil)

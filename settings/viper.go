package settings

import (
	"errors"
	"path/filepath"
	"reflect"
	"slices"
	"sync"

	"github.com/eonplay/eonplay/config"
	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/log"
	"github.com/eonplay/eonplay/where"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// Viper is the default Settings, backed by the global viper instance and
// the system keyring.
type Viper struct {
	mu        sync.Mutex
	listeners []func(string)
	snapshot  map[string]any
	watching  bool
}

// NewViper returns settings over the global configuration. config.Setup must have run.
func NewViper() *Viper {
	return &Viper{}
}

func (v *Viper) Get(key string) any { return viper.Get(key) }
func (v *Viper) GetString(key string) string { return viper.GetString(key) }
func (v *Viper) GetBool(key string) bool { return viper.GetBool(key) }
func (v *Viper) GetInt(key string) int { return viper.GetInt(key) }
func (v *Viper) GetInt64(key string) int64 { return viper.GetInt64(key) }
func (v *Viper) GetFloat(key string) float64 { return viper.GetFloat64(key) }

func (v *Viper) Set(key string, value any) error {
	viper.Set(key, value)
	v.notify(key)
	return nil
}

// SaveNow writes the config file, creating it in where.Config() when none is in use.
func (v *Viper) SaveNow() error {
	if viper.ConfigFileUsed() != "" {
		return viper.WriteConfig()
	}

	path := filepath.Join(where.Config(), constant.App+".toml")
	return viper.WriteConfigAs(path)
}

// OnChange also starts watching the config file so that edits made outside
// the process are reported key by key.
func (v *Viper) OnChange(fn func(key string)) {
	v.mu.Lock()
	v.listeners = append(v.listeners, fn)
	start := !v.watching
	v.watching = true
	if start {
		v.snapshot = flatten(viper.AllSettings())
	}
	v.mu.Unlock()

	if start {
		config.Watch(v.reload)
	}
}

func (v *Viper) reload(e fsnotify.Event) {
	log.For("settings").WithField("file", e.Name).Debug("config file changed")

	next := flatten(viper.AllSettings())

	v.mu.Lock()
	previous := v.snapshot
	v.snapshot = next
	v.mu.Unlock()

	for _, key := range changedKeys(previous, next) {
		v.notify(key)
	}
}

func (v *Viper) notify(key string) {
	v.mu.Lock()
	listeners := slices.Clone(v.listeners)
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(key)
	}
}

func (v *Viper) SetSecret(name, value string) error {
	return keyring.Set(constant.App, name, value)
}

func (v *Viper) Secret(name string) (string, error) {
	secret, err := keyring.Get(constant.App, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoSecret
	}
	return secret, err
}

func (v *Viper) DeleteSecret(name string) error {
	err := keyring.Delete(constant.App, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNoSecret
	}
	return err
}

// flatten turns viper's nested settings into dotted keys.
func flatten(settings map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			full := k
			if prefix != "" {
				full = prefix + "." + k
			}
			if nested, ok := val.(map[string]any); ok {
				walk(full, nested)
				continue
			}
			out[full] = val
		}
	}
	walk("", settings)
	return out
}

func changedKeys(previous, next map[string]any) []string {
	var changed []string
	for k, val := range next {
		if old, ok := previous[k]; !ok || !reflect.DeepEqual(old, val) {
			changed = append(changed, k)
		}
	}
	for k := range previous {
		if _, ok := next[k]; !ok {
			changed = append(changed, k)
		}
	}
	return changed
}

var _ Settings = (*Viper)(nil)

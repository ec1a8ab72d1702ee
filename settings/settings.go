// Package settings is the read/write configuration surface consumed by the
// playback core.
package settings

// Settings reads and writes typed keys and notifies about changes.
type Settings interface {
	Get(key string) any
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat(key string) float64

	// Set stores value under key and notifies change listeners.
	Set(key string, value any) error

	// SaveNow persists pending changes.
	SaveNow() error

	// OnChange registers fn to be called with the key of every changed setting.
	OnChange(fn func(key string))

	// Sensitive values are kept out of the config file.
	SetSecret(name, value string) error
	Secret(name string) (string, error)
	DeleteSecret(name string) error
}

// Package engine defines the Media Engine contract implemented by decoder
// backends and consumed by the rest of the playback core.
package engine

import "errors"

var (
	// ErrNotInitialized is returned by every operation of a backend whose decoder failed to start.
	ErrNotInitialized = errors.New("media engine not initialized")

	// ErrNoMedia is returned by operations that need loaded media.
	ErrNoMedia = errors.New("no media loaded")

	// ErrRejectedOrigin is returned when an origin fails the backend's security policy.
	ErrRejectedOrigin = errors.New("origin rejected")
)

// Engine is a single-stream decoder backend.
//
// Numeric inputs are clamped, never rejected. Load reports through
// Listener.MediaLoaded even when it fails synchronously, and a backend
// error is always preceded by a StateChanged(Error).
type Engine interface {
	Load(origin string) error
	Play() error
	Pause() error
	Stop() error

	// Seek moves to ms, clamped to [0, duration] or to >= 0 while the duration is unknown.
	Seek(ms int64) error

	// SetVolume sets the volume in percent, clamped to [0, 100].
	SetVolume(pct int) error

	// SetPlaybackRate sets the rate as a multiple of real time. Non-positive rates are ignored.
	SetPlaybackRate(rate float64) error

	State() State
	Position() int64
	Duration() int64
	Volume() int
	HasMedia() bool
	HasVideo() bool

	// VideoFrame returns a base64-encoded PNG of the frame at ms, or "" when unavailable.
	VideoFrame(ms int64) string

	// Subscribe registers l and returns a function that removes it.
	Subscribe(l Listener) func()
}

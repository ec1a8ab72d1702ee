// Package history persists resume positions between sessions.
package history

import (
	"time"

	"github.com/eonplay/eonplay/filesystem"
	"github.com/metafates/gache"
)

// Entry is the remembered position of one origin.
type Entry struct {
	PositionMs int64     `json:"position_ms"`
	SavedAt    time.Time `json:"saved_at"`
}

// Store is a file-backed map from origin to Entry.
type Store struct {
	cacher *gache.Cache[map[string]*Entry]
}

// New returns a store persisted at path.
func New(path string) *Store {
	return &Store{
		cacher: gache.New[map[string]*Entry](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Entries returns every stored entry.
func (s *Store) Entries() (map[string]*Entry, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Load returns the remembered positions keyed by origin.
func (s *Store) Load() (map[string]int64, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	positions := make(map[string]int64, len(entries))
	for origin, e := range entries {
		if e != nil {
			positions[origin] = e.PositionMs
		}
	}
	return positions, nil
}

// Store replaces the persisted positions. Entries whose position did not
// change keep their original timestamp.
func (s *Store) Store(positions map[string]int64) error {
	previous, err := s.Entries()
	if err != nil {
		return err
	}

	now := time.Now()
	next := make(map[string]*Entry, len(positions))
	for origin, ms := range positions {
		if old, ok := previous[origin]; ok && old != nil && old.PositionMs == ms {
			next[origin] = old
			continue
		}
		next[origin] = &Entry{PositionMs: ms, SavedAt: now}
	}

	return s.cacher.Set(next)
}

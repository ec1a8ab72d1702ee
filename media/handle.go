package media

import "github.com/google/uuid"

// Handle identifies the media source currently owned by a backend.
type Handle struct {
	ID     uuid.UUID
	Origin string
	Info   *Info
}

// NewHandle returns a handle with a fresh identifier.
func NewHandle(origin string) *Handle {
	return &Handle{ID: uuid.New(), Origin: origin}
}

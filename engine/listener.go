package engine

import "sync"

// Listener receives backend events. Backends deliver them on the core event loop.
type Listener interface {
	StateChanged(state State)
	PositionChanged(ms int64)
	DurationChanged(ms int64)
	VolumeChanged(pct int)
	MediaLoaded(success bool, origin string)
	ErrorOccurred(message string)
}

// Funcs adapts optional callbacks to a Listener.
type Funcs struct {
	OnState    func(State)
	OnPosition func(int64)
	OnDuration func(int64)
	OnVolume   func(int)
	OnLoaded   func(success bool, origin string)
	OnError    func(string)
}

func (f Funcs) StateChanged(s State) {
	if f.OnState != nil {
		f.OnState(s)
	}
}

func (f Funcs) PositionChanged(ms int64) {
	if f.OnPosition != nil {
		f.OnPosition(ms)
	}
}

func (f Funcs) DurationChanged(ms int64) {
	if f.OnDuration != nil {
		f.OnDuration(ms)
	}
}

func (f Funcs) VolumeChanged(pct int) {
	if f.OnVolume != nil {
		f.OnVolume(pct)
	}
}

func (f Funcs) MediaLoaded(success bool, origin string) {
	if f.OnLoaded != nil {
		f.OnLoaded(success, origin)
	}
}

func (f Funcs) ErrorOccurred(message string) {
	if f.OnError != nil {
		f.OnError(message)
	}
}

// Listeners fans events out to subscribers in subscription order.
// The zero value is ready to use.
type Listeners struct {
	mu     sync.Mutex
	nextID int
	items  []listenerEntry
}

type listenerEntry struct {
	id int
	l  Listener
}

// Add registers l and returns a function that removes it.
func (ls *Listeners) Add(l Listener) func() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.nextID++
	id := ls.nextID
	ls.items = append(ls.items, listenerEntry{id: id, l: l})

	return func() {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		for i, e := range ls.items {
			if e.id == id {
				ls.items = append(ls.items[:i:i], ls.items[i+1:]...)
				return
			}
		}
	}
}

func (ls *Listeners) snapshot() []Listener {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	out := make([]Listener, len(ls.items))
	for i, e := range ls.items {
		out[i] = e.l
	}
	return out
}

func (ls *Listeners) StateChanged(s State) {
	for _, l := range ls.snapshot() {
		l.StateChanged(s)
	}
}

func (ls *Listeners) PositionChanged(ms int64) {
	for _, l := range ls.snapshot() {
		l.PositionChanged(ms)
	}
}

func (ls *Listeners) DurationChanged(ms int64) {
	for _, l := range ls.snapshot() {
		l.DurationChanged(ms)
	}
}

func (ls *Listeners) VolumeChanged(pct int) {
	for _, l := range ls.snapshot() {
		l.VolumeChanged(pct)
	}
}

func (ls *Listeners) MediaLoaded(success bool, origin string) {
	for _, l := range ls.snapshot() {
		l.MediaLoaded(success, origin)
	}
}

func (ls *Listeners) ErrorOccurred(message string) {
	for _, l := range ls.snapshot() {
		l.ErrorOccurred(message)
	}
}

var (
	_ Listener = Funcs{}
	_ Listener = (*Listeners)(nil)
)

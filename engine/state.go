package engine

// State is the playback state reported by a backend.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	Buffering
	Error
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Buffering:
		return "Buffering"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

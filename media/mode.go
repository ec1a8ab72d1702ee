package media

// PlaybackMode selects the end-of-stream policy.
type PlaybackMode int

const (
	Normal PlaybackMode = iota
	RepeatOne
	RepeatAll
	Shuffle
)

func (m PlaybackMode) String() string {
	switch m {
	case Normal:
		return "normal"
	case RepeatOne:
		return "repeat-one"
	case RepeatAll:
		return "repeat-all"
	case Shuffle:
		return "shuffle"
	default:
		return "unknown"
	}
}

// Next cycles through the modes.
func (m PlaybackMode) Next() PlaybackMode {
	return (m + 1) % (Shuffle + 1)
}

package bus

// Event type names published by the playback core.
const (
	StateChanged           = "stateChanged"
	PositionChanged        = "positionChanged"
	DurationChanged        = "durationChanged"
	VolumeChanged          = "volumeChanged"
	MuteChanged            = "muteChanged"
	PlaybackSpeedChanged   = "playbackSpeedChanged"
	MediaLoaded            = "mediaLoaded"
	ErrorOccurred          = "errorOccurred"
	PlaybackModeChanged    = "playbackModeChanged"
	FastSeekChanged        = "fastSeekChanged"
	CrossfadeChanged       = "crossfadeChanged"
	CrossfadeStarted       = "crossfadeStarted"
	GaplessPlaybackChanged = "gaplessPlaybackChanged"
	SeekThumbnailGenerated = "seekThumbnailGenerated"
	EndOfMedia             = "endOfMedia"

	MediaFileLoaded      = "mediaFileLoaded"
	MediaUrlLoaded       = "mediaUrlLoaded"
	FileValidationFailed = "fileValidationFailed"
	UrlValidationFailed  = "urlValidationFailed"
	SubtitlesDetected    = "subtitlesDetected"
	ScreenshotCaptured   = "screenshotCaptured"
	ScreenshotFailed     = "screenshotCaptureFailed"

	ComponentFailed = "componentInitFailed"
)

// Payload keys.
const (
	KeyState      = "state"
	KeyPosition   = "position"
	KeyDuration   = "duration"
	KeyVolume     = "volume"
	KeyMuted      = "muted"
	KeySpeed      = "speed"
	KeySuccess    = "success"
	KeyOrigin     = "origin"
	KeyMessage    = "message"
	KeyMode       = "mode"
	KeyActive     = "active"
	KeyMultiplier = "multiplier"
	KeyEnabled    = "enabled"
	KeyBlob       = "blob"
	KeyInfo       = "info"
	KeyResult     = "result"
	KeyPath       = "path"
	KeyPaths      = "paths"
	KeyName       = "name"
)

// Event is a bus payload.
type Event struct {
	Type   string
	Data   map[string]any
	Sender any
}

// New builds an event from alternating key/value pairs.
func New(eventType string, kv ...any) Event {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			data[k] = kv[i+1]
		}
	}
	return Event{Type: eventType, Data: data}
}

// String returns the string stored under key, or "".
func (e Event) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Bool returns the bool stored under key, or false.
func (e Event) Bool(key string) bool {
	b, _ := e.Data[key].(bool)
	return b
}

// Int64 returns the integer stored under key widened to int64, or 0.
func (e Event) Int64(key string) int64 {
	switch v := e.Data[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	default:
		return 0
	}
}

// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback - read by the playback controller when it initializes.
const (
	PlaybackVolume               = "playback.volume"
	PlaybackSeekStep             = "playback.seek_step_ms"
	PlaybackRememberPosition     = "playback.remember_position"
	PlaybackResumeDelay          = "playback.resume_delay_ms"
	PlaybackThumbnails           = "playback.thumbnails"
	PlaybackThumbnailWidth       = "playback.thumbnail_width"
	PlaybackThumbnailPlaceholder = "playback.thumbnail_placeholder"
	PlaybackCrossfade            = "playback.crossfade"
	PlaybackCrossfadeDuration    = "playback.crossfade_ms"
	PlaybackGapless              = "playback.gapless"
)

// Hardware acceleration - merged into the decoder initialization flags.
const (
	HardwareEnabled  = "hardware.enabled"
	HardwareDecoding = "hardware.decoding"
)

// Subtitles.
const (
	SubtitlesAutoDetect = "subtitles.auto_detect"
)

// Media intake.
const (
	IntakeMaxFileSize = "intake.max_file_size"
)

// Screenshots.
const (
	ScreenshotDir     = "screenshot.dir"
	ScreenshotFormat  = "screenshot.format"
	ScreenshotFormats = "screenshot.formats"
)

// Decoder backend.
const (
	PlayerBinary = "player.binary"
)

// Logging.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI.
const (
	CliColored = "cli.colored"
)

// Icons.
const (
	IconsVariant = "icons.variant"
)

// Package media holds the descriptive data shared by the playback core.
package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Info describes a loaded or probed media source.
type Info struct {
	Origin     string `json:"origin" jsonschema:"description=Local path or URL the media was loaded from."`
	Title      string `json:"title,omitempty" jsonschema:"description=Title from tags or the file name."`
	Artist     string `json:"artist,omitempty" jsonschema:"description=Artist from tags."`
	Album      string `json:"album,omitempty" jsonschema:"description=Album from tags."`
	Format     string `json:"format,omitempty" jsonschema:"description=Container format label."`
	DurationMs int64  `json:"durationMs" jsonschema:"description=Duration in milliseconds."`
	FileSize   int64  `json:"fileSize,omitempty" jsonschema:"description=File size in bytes. Zero for remote media."`

	HasVideo     bool    `json:"hasVideo"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	FrameRate    float64 `json:"frameRate,omitempty" jsonschema:"description=Frames per second."`
	VideoCodec   string  `json:"videoCodec,omitempty"`
	VideoBitrate int     `json:"videoBitrate,omitempty" jsonschema:"description=Video bitrate in kbps."`

	HasAudio     bool   `json:"hasAudio"`
	AudioCodec   string `json:"audioCodec,omitempty"`
	Channels     int    `json:"channels,omitempty"`
	SampleRate   int    `json:"sampleRate,omitempty" jsonschema:"description=Audio sample rate in Hz."`
	AudioBitrate int    `json:"audioBitrate,omitempty" jsonschema:"description=Audio bitrate in kbps."`

	IsValid bool `json:"isValid"`
}

// Complete reports whether the info is valid, has a duration and at least one track.
func (i *Info) Complete() bool {
	return i.IsValid && i.DurationMs > 0 && (i.HasVideo || i.HasAudio)
}

// Normalize enforces the structural invariants of Info.
// A video track without dimensions is dropped and an info without origin is never valid.
func (i *Info) Normalize() {
	if i.HasVideo && (i.Width <= 0 || i.Height <= 0) {
		i.HasVideo = false
		i.Width, i.Height = 0, 0
	}
	if i.Origin == "" {
		i.IsValid = false
	}
}

// String renders a multi-line, human-readable summary.
func (i *Info) String() string {
	var b strings.Builder

	line := func(label, value string) {
		fmt.Fprintf(&b, "%-10s %s\n", label+":", value)
	}

	line("Origin", i.Origin)
	if i.Title != "" {
		line("Title", i.Title)
	}
	if i.Artist != "" {
		line("Artist", i.Artist)
	}
	if i.Album != "" {
		line("Album", i.Album)
	}
	if i.Format != "" {
		line("Format", i.Format)
	}
	if i.DurationMs > 0 {
		line("Duration", fmt.Sprintf("%s (%d ms)", FormatMs(i.DurationMs), i.DurationMs))
	}
	if i.FileSize > 0 {
		line("Size", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(i.FileSize)), i.FileSize))
	}

	if i.HasVideo {
		video := []string{fmt.Sprintf("%dx%d", i.Width, i.Height)}
		if i.FrameRate > 0 {
			video = append(video, strconv.FormatFloat(i.FrameRate, 'f', -1, 64)+" fps")
		}
		if i.VideoCodec != "" {
			video = append(video, i.VideoCodec)
		}
		if i.VideoBitrate > 0 {
			video = append(video, fmt.Sprintf("%d kbps", i.VideoBitrate))
		}
		line("Video", strings.Join(video, ", "))
	}

	if i.HasAudio {
		var audio []string
		if i.AudioCodec != "" {
			audio = append(audio, i.AudioCodec)
		}
		if i.Channels > 0 {
			audio = append(audio, fmt.Sprintf("%d ch", i.Channels))
		}
		if i.SampleRate > 0 {
			audio = append(audio, fmt.Sprintf("%d Hz", i.SampleRate))
		}
		if i.AudioBitrate > 0 {
			audio = append(audio, fmt.Sprintf("%d kbps", i.AudioBitrate))
		}
		line("Audio", strings.Join(audio, ", "))
	}

	line("Valid", strconv.FormatBool(i.IsValid))
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatMs renders milliseconds as [h:]mm:ss.
func FormatMs(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

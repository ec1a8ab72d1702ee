// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/eonplay/eonplay/color"
	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/style"
	"github.com/eonplay/eonplay/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes both the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case int64:
		return "int64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

// DefaultMaxFileSize is the per-file size cap applied by media intake (50 GiB).
const DefaultMaxFileSize int64 = 50 << 30

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlaybackVolume, 80, "Initial volume, from 0 to 100")
	register(key.PlaybackSeekStep, 10000, "Step used by seek forward/backward, in milliseconds")
	register(key.PlaybackRememberPosition, true, "Remember the playback position of each file and resume from it")
	register(key.PlaybackResumeDelay, 500, "Delay after a load before the remembered position is restored, in milliseconds")
	register(key.PlaybackThumbnails, true, "Generate thumbnails while hovering the seek bar")
	register(key.PlaybackThumbnailWidth, 160, "Width of seek thumbnails in pixels")
	register(key.PlaybackThumbnailPlaceholder, true, "Use a placeholder image when a frame cannot be extracted")
	register(key.PlaybackCrossfade, false, "Cross-fade between consecutive media")
	register(key.PlaybackCrossfadeDuration, 3000, "Cross-fade duration in milliseconds.\nClamped to 500..10000")
	register(key.PlaybackGapless, false, "Gapless playback between consecutive media")
	register(key.HardwareEnabled, true, "Use hardware accelerated decoding when available")
	register(key.HardwareDecoding, "auto-safe", "Hardware decoding API handed to the decoder.\nExamples: auto-safe, vaapi, nvdec, videotoolbox, d3d11va")
	register(key.SubtitlesAutoDetect, true, "Look for sidecar subtitle files next to loaded media")
	register(key.IntakeMaxFileSize, DefaultMaxFileSize, "Largest local file accepted, in bytes")
	register(key.ScreenshotDir, where.DefaultScreenshots(), "Directory where screenshots are saved")
	register(key.ScreenshotFormat, "png", "Screenshot image format")
	register(key.ScreenshotFormats, []string{"png", "jpg", "jpeg", "bmp", "tiff"}, "Screenshot formats that may be selected")
	register(key.PlayerBinary, "mpv", "Decoder executable driven over JSON-IPC")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))

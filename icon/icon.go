// Package icon renders UI symbols in one of several variants.
//
// Icons can be displayed as emoji, nerd-font glyphs or plain ASCII
// depending on the icons.variant setting.
package icon

import (
	"github.com/eonplay/eonplay/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns all supported icon styles.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a UI symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Play
	Pause
	Stop
	Buffering
	Muted
	Volume
	FastForward
	Rewind
	Subtitle
	Camera
	Video
	Audio
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:     {emoji: "🎉", nerd: "", plain: "+"},
	Fail:        {emoji: "💥", nerd: "", plain: "x"},
	Warn:        {emoji: "⚠️", nerd: "", plain: "!"},
	Play:        {emoji: "▶️", nerd: "", plain: ">"},
	Pause:       {emoji: "⏸️", nerd: "", plain: "||"},
	Stop:        {emoji: "⏹️", nerd: "", plain: "[]"},
	Buffering:   {emoji: "⏳", nerd: "", plain: "..."},
	Muted:       {emoji: "🔇", nerd: "", plain: "M"},
	Volume:      {emoji: "🔊", nerd: "", plain: "V"},
	FastForward: {emoji: "⏩", nerd: "", plain: ">>"},
	Rewind:      {emoji: "⏪", nerd: "", plain: "<<"},
	Subtitle:    {emoji: "💬", nerd: "", plain: "S"},
	Camera:      {emoji: "📷", nerd: "", plain: "C"},
	Video:       {emoji: "🎞️", nerd: "", plain: "[v]"},
	Audio:       {emoji: "🎵", nerd: "", plain: "[a]"},
}

// Get returns the rendered string for i in the configured variant.
func Get(i Icon) string {
	return icons[i].get()
}

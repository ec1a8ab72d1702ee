package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/eonplay/eonplay/color"
	"github.com/eonplay/eonplay/controller"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/icon"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/style"
	"github.com/eonplay/eonplay/util"
	"github.com/muesli/reflow/wrap"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	switch b.state {
	case loadingState:
		return b.viewLoading()
	case playingState:
		return b.viewPlaying()
	case errorState:
		return b.viewError()
	default:
		return "Unknown state"
	}
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + style.Truncate(b.width)(b.options.Origin),
		},
	)
}

func (b *statefulBubble) viewPlaying() string {
	s := b.status

	lines := []string{
		style.Title(b.title()),
		"",
		b.stateLine(s),
		"",
		b.progressC.ViewAs(fraction(s.Position, s.Duration)),
		style.Faint(media.FormatMs(s.Position) + " / " + media.FormatMs(s.Duration)),
		"",
		b.audioLine(s),
	}

	if len(b.subtitles) > 0 {
		lines = append(lines, icon.Get(icon.Subtitle)+" "+util.Quantify(len(b.subtitles), "subtitle", "subtitles"))
	}

	if n, ok := b.notice.Get(); ok {
		text := n.text
		if n.failed {
			text = style.Fg(style.ErrorColor)(icon.Get(icon.Warn) + " " + text)
		} else {
			text = style.Fg(style.SuccessColor)(text)
		}
		lines = append(lines, "", style.Truncate(b.width)(text))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) title() string {
	if b.info != nil && b.info.Title != "" {
		return b.info.Title
	}
	if b.status.Origin != "" {
		return b.status.Origin
	}
	return b.options.Origin
}

func (b *statefulBubble) stateLine(s controller.Status) string {
	var glyph, label string
	switch s.State {
	case engine.Playing:
		glyph, label = icon.Get(icon.Play), style.Fg(color.Green)("Playing")
	case engine.Paused:
		glyph, label = icon.Get(icon.Pause), style.Fg(color.Yellow)("Paused")
	case engine.Buffering:
		glyph, label = icon.Get(icon.Buffering), style.Fg(color.Cyan)("Buffering")
	case engine.Error:
		glyph, label = icon.Get(icon.Fail), style.Fg(color.Red)("Error")
	default:
		glyph, label = icon.Get(icon.Stop), style.Faint("Stopped")
	}

	line := glyph + " " + label
	if s.Scan.Active {
		scan := icon.Get(icon.FastForward)
		if s.Scan.Direction == controller.Reverse {
			scan = icon.Get(icon.Rewind)
		}
		line += "  " + style.Fg(color.Orange)(fmt.Sprintf("%s %dx", scan, s.Scan.Multiplier))
	}
	if b.info != nil {
		kind := icon.Get(icon.Audio)
		if b.info.HasVideo {
			kind = icon.Get(icon.Video)
		}
		line += "  " + style.Faint(kind)
	}
	return line
}

func (b *statefulBubble) audioLine(s controller.Status) string {
	volume := icon.Get(icon.Volume) + fmt.Sprintf(" %d%%", s.Volume)
	if s.Muted {
		volume = icon.Get(icon.Muted) + " " + style.Fg(color.Red)("muted")
	}

	parts := []string{
		volume,
		fmt.Sprintf("speed %d%%", s.Speed),
		"mode " + s.Mode.String(),
	}
	if s.Crossfade.Enabled {
		parts = append(parts, fmt.Sprintf("crossfade %ds", s.Crossfade.Duration/1000))
	}
	return strings.Join(parts, style.Faint("  ·  "))
}

func fraction(position, duration int64) float64 {
	if duration <= 0 {
		return 0
	}
	return util.Clamp(float64(position)/float64(duration), 0, 1)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	errorMsg := wrap.String(errorStyle.Render(b.lastError.Error()), b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Could not play " + style.Fg(color.Purple)(b.options.Origin),
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/controller"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/style"
	"github.com/eonplay/eonplay/util"
	"github.com/samber/mo"
)

// eventBuffer bounds the events queued between the loop and the program.
// Events beyond it are dropped; the status tick catches up.
const eventBuffer = 64

const noticeLifetime = 4 * time.Second

// watched lists the bus events the screen reacts to.
var watched = []string{
	bus.StateChanged,
	bus.VolumeChanged,
	bus.MuteChanged,
	bus.PlaybackSpeedChanged,
	bus.PlaybackModeChanged,
	bus.FastSeekChanged,
	bus.CrossfadeStarted,
	bus.EndOfMedia,
	bus.ErrorOccurred,
	bus.MediaFileLoaded,
	bus.MediaUrlLoaded,
	bus.FileValidationFailed,
	bus.UrlValidationFailed,
	bus.SubtitlesDetected,
	bus.ScreenshotCaptured,
	bus.ScreenshotFailed,
}

type notice struct {
	text    string
	failed  bool
	expires time.Time
}

type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	events chan bus.Event
	subs   []bus.ID

	status    controller.Status
	info      *media.Info
	subtitles []string
	notice    mo.Option[notice]
	lastError error

	now func() time.Time

	width, height int

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) notify(text string, failed bool) {
	b.notice = mo.Some(notice{
		text:    text,
		failed:  failed,
		expires: b.now().Add(noticeLifetime),
	})
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y
	b.progressC.Width = b.width
	b.helpC.Width = b.width
}

// close detaches the bubble from the bus.
func (b *statefulBubble) close() {
	for _, id := range b.subs {
		b.options.Core.Events.Unsubscribe(id)
	}
	b.subs = nil
}

func newBubble(options *Options) *statefulBubble {
	bubble := statefulBubble{
		keymap:  newStatefulKeymap(),
		events:  make(chan bus.Event, eventBuffer),
		now:     time.Now,
		options: options,
	}

	// Handlers run on the loop and must not block it.
	forward := func(e bus.Event) {
		select {
		case bubble.events <- e:
		default:
		}
	}
	for _, t := range watched {
		bubble.subs = append(bubble.subs, options.Core.Events.Subscribe(t, forward))
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(
		progress.WithGradient(string(style.AccentColor), string(style.SecondaryColor)),
		progress.WithoutPercentage(),
	)

	bubble.setState(loadingState)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}

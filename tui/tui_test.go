package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/controller"
	"github.com/eonplay/eonplay/core"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/filesystem"
	"github.com/eonplay/eonplay/loop"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/settings"
	. "github.com/smartystreets/goconvey/convey"
)

type nopPersister struct{}

func (nopPersister) Load() (map[string]int64, error) { return nil, nil }
func (nopPersister) Store(map[string]int64) error    { return nil }

type staticProber struct{}

func (staticProber) Probe(_ context.Context, path string) (*media.Info, error) {
	return &media.Info{Origin: path, DurationMs: 120000, HasAudio: true}, nil
}

func nextEvent(b *statefulBubble, eventType string) (eventMsg, bool) {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-b.events:
			if e.Type == eventType {
				return eventMsg(e), true
			}
		case <-timeout:
			return eventMsg{}, false
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBubble(t *testing.T) {
	Convey("Given a started core over a mock backend", t, func() {
		filesystem.SetMemMapFs()
		So(filesystem.API().WriteFile("/media/clip.mp4", []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00"), 0644), ShouldBeNil)

		mock := engine.NewMock()
		mock.SetDuration(120000)
		c := core.New(core.Options{
			Backend:   func(loop.Scheduler) core.Backend { return mock },
			Settings:  settings.NewMap(nil),
			Events:    bus.NewBus(),
			Persister: nopPersister{},
			Prober:    staticProber{},
		})
		So(c.Start(), ShouldBeTrue)
		Reset(c.Stop)

		open := func(origin string) *statefulBubble {
			b := newBubble(&Options{Origin: origin, Core: c})
			b.resize(80, 24)
			Reset(b.close)
			return b
		}

		Convey("It starts in the loading state", func() {
			b := open("/media/clip.mp4")
			So(b.state, ShouldEqual, loadingState)
			So(b.View(), ShouldContainSubstring, "Loading")
			So(b.keymap.ShortHelp(), ShouldHaveLength, 1)
		})

		Convey("A valid file loads and plays", func() {
			b := open("/media/clip.mp4")
			b.Update(b.load()())
			So(b.state, ShouldEqual, playingState)
			So(mock.LoadCalls(), ShouldResemble, []string{"/media/clip.mp4"})

			b.Update(b.refresh()())
			view := b.View()
			So(view, ShouldContainSubstring, "/media/clip.mp4")
			So(view, ShouldContainSubstring, "Playing")
			So(view, ShouldContainSubstring, "80%")
			So(view, ShouldContainSubstring, "02:00")

			Convey("Space pauses through the controller", func() {
				b.Update(tea.KeyMsg{Type: tea.KeySpace})
				c.Do(func() {})
				So(mock.State(), ShouldEqual, engine.Paused)
			})

			Convey("m mutes and the view follows", func() {
				b.Update(runes("m"))
				c.Do(func() {})
				So(mock.Volume(), ShouldEqual, 0)

				b.Update(b.refresh()())
				So(b.View(), ShouldContainSubstring, "muted")
			})

			Convey("Seeking forward moves the backend", func() {
				b.Update(tea.KeyMsg{Type: tea.KeyRight})
				c.Do(func() {})
				So(mock.Position(), ShouldBeGreaterThan, 0)
			})

			Convey("Failures surface as notices", func() {
				b.Update(eventMsg(bus.New(bus.ScreenshotFailed, bus.KeyMessage, "no video stream")))
				So(b.View(), ShouldContainSubstring, "Screenshot failed: no video stream")

				b.now = func() time.Time { return time.Now().Add(time.Minute) }
				b.Update(b.refresh()())
				So(b.notice.IsPresent(), ShouldBeFalse)
			})

			Convey("A status update replaces the shown status", func() {
				b.Update(statusMsg(controller.Status{State: engine.Paused, Volume: 42, Speed: 150, Duration: 120000, HasMedia: true}))
				So(b.status.Volume, ShouldEqual, 42)
				So(b.status.State, ShouldEqual, engine.Paused)
				So(b.View(), ShouldContainSubstring, "42%")
			})

			Convey("q quits", func() {
				_, cmd := b.Update(runes("q"))
				So(cmd, ShouldNotBeNil)
				So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
			})
		})

		Convey("A missing file ends in the error state", func() {
			b := open("/media/missing.mp4")
			b.Update(b.load()())
			So(b.state, ShouldEqual, errorState)

			e, ok := nextEvent(b, bus.FileValidationFailed)
			So(ok, ShouldBeTrue)
			b.Update(e)
			So(b.lastError.Error(), ShouldEqual, bus.Event(e).String(bus.KeyMessage))
			So(b.View(), ShouldContainSubstring, "Could not play")
			So(mock.LoadCalls(), ShouldBeEmpty)
		})
	})
}

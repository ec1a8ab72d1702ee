package controller

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/eonplay/eonplay/bus"
	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/loop"
	"github.com/eonplay/eonplay/media"
	"github.com/eonplay/eonplay/settings"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type fixture struct {
	engine   *engine.Mock
	events   *bus.Bus
	sched    *loop.Manual
	settings *settings.Map
	ctl      *Controller
	seen     []bus.Event
}

var recorded = []string{
	bus.MuteChanged,
	bus.PlaybackSpeedChanged,
	bus.PlaybackModeChanged,
	bus.FastSeekChanged,
	bus.CrossfadeChanged,
	bus.CrossfadeStarted,
	bus.GaplessPlaybackChanged,
	bus.SeekThumbnailGenerated,
	bus.EndOfMedia,
	bus.ErrorOccurred,
}

func newFixture(values map[string]any, opts ...Option) *fixture {
	f := &fixture{
		engine: engine.NewMock(),
		events: bus.NewBus(),
		sched:  loop.NewManual(),
	}

	seeded := map[string]any{key.PlaybackVolume: 60}
	for k, v := range values {
		seeded[k] = v
	}
	f.settings = settings.NewMap(seeded)

	for _, t := range recorded {
		f.events.Subscribe(t, func(e bus.Event) { f.seen = append(f.seen, e) })
	}

	f.ctl = New(f.engine, f.events, f.sched, f.settings, opts...)
	So(f.ctl.Initialize(), ShouldBeNil)
	return f
}

func (f *fixture) of(eventType string) []bus.Event {
	return lo.Filter(f.seen, func(e bus.Event, _ int) bool { return e.Type == eventType })
}

func (f *fixture) load(origin string, duration int64) {
	f.engine.SetDuration(duration)
	So(f.engine.Load(origin), ShouldBeNil)
	f.engine.ResetCalls()
}

type memoryPersister struct {
	loaded map[string]int64
	stored map[string]int64
	stores int
}

func (p *memoryPersister) Load() (map[string]int64, error) { return p.loaded, nil }

func (p *memoryPersister) Store(positions map[string]int64) error {
	p.stored = positions
	p.stores++
	return nil
}

func pngFrame(w, h int) string {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeWidth(blob string) int {
	raw, err := base64.StdEncoding.DecodeString(blob)
	So(err, ShouldBeNil)
	img, err := png.Decode(bytes.NewReader(raw))
	So(err, ShouldBeNil)
	return img.Bounds().Dx()
}

func TestMute(t *testing.T) {
	Convey("Given a controller at volume 60", t, func() {
		f := newFixture(nil)
		So(f.engine.Volume(), ShouldEqual, 60)

		Convey("Muting drives the backend to zero and unmuting restores 60", func() {
			f.ctl.SetMuted(true)
			So(f.engine.Volume(), ShouldEqual, 0)
			So(f.ctl.IsMuted(), ShouldBeTrue)

			f.ctl.SetMuted(false)
			So(f.engine.Volume(), ShouldEqual, 60)
			So(f.ctl.IsMuted(), ShouldBeFalse)

			events := f.of(bus.MuteChanged)
			So(len(events), ShouldEqual, 2)
			So(events[0].Bool(bus.KeyMuted), ShouldBeTrue)
			So(events[1].Bool(bus.KeyMuted), ShouldBeFalse)
		})

		Convey("Muting twice emits once", func() {
			f.ctl.SetMuted(true)
			f.ctl.SetMuted(true)
			So(len(f.of(bus.MuteChanged)), ShouldEqual, 1)
		})

		Convey("A volume of zero set elsewhere counts as mute", func() {
			f.engine.SetExternalVolume(0)
			So(f.ctl.IsMuted(), ShouldBeTrue)

			f.engine.SetExternalVolume(40)
			So(f.ctl.IsMuted(), ShouldBeFalse)
			So(len(f.of(bus.MuteChanged)), ShouldEqual, 2)
		})

		Convey("Raising the volume while muted unmutes", func() {
			f.ctl.SetMuted(true)
			f.ctl.VolumeUp(10)
			So(f.ctl.IsMuted(), ShouldBeFalse)
			So(f.engine.Volume(), ShouldEqual, 70)
		})

		Convey("Lowering the volume while muted only changes the remembered volume", func() {
			f.ctl.SetMuted(true)
			f.ctl.VolumeDown(20)
			So(f.ctl.IsMuted(), ShouldBeTrue)
			So(f.engine.Volume(), ShouldEqual, 0)

			f.ctl.ToggleMute()
			So(f.engine.Volume(), ShouldEqual, 40)
		})

		Convey("Volume is clamped", func() {
			f.ctl.SetVolume(150)
			So(f.engine.Volume(), ShouldEqual, 100)
			f.ctl.VolumeDown(0)
			So(f.engine.Volume(), ShouldEqual, 95)
		})
	})

	Convey("Given a controller that starts silent", t, func() {
		f := newFixture(map[string]any{key.PlaybackVolume: 0})
		So(f.ctl.IsMuted(), ShouldBeTrue)

		Convey("Unmuting restores the default volume", func() {
			f.ctl.SetMuted(false)
			So(f.engine.Volume(), ShouldEqual, DefaultVolume)
		})
	})
}

func TestSpeed(t *testing.T) {
	Convey("Given a controller", t, func() {
		f := newFixture(nil)

		Convey("Speed is clamped to the allowed range", func() {
			f.ctl.SetPlaybackSpeed(5)
			So(f.ctl.PlaybackSpeed(), ShouldEqual, 10)
			So(f.engine.Rate(), ShouldAlmostEqual, 0.1)
			So(len(f.of(bus.PlaybackSpeedChanged)), ShouldEqual, 1)
			So(f.of(bus.PlaybackSpeedChanged)[0].Int64(bus.KeySpeed), ShouldEqual, 10)

			f.ctl.SetPlaybackSpeed(2000)
			So(f.ctl.PlaybackSpeed(), ShouldEqual, 1000)
			So(f.engine.Rate(), ShouldAlmostEqual, 10.0)
		})

		Convey("Setting the same speed emits nothing", func() {
			f.ctl.SetPlaybackSpeed(100)
			So(f.of(bus.PlaybackSpeedChanged), ShouldBeEmpty)
			So(f.engine.Rate(), ShouldAlmostEqual, 1.0)
		})

		Convey("The ladder steps up and down", func() {
			f.ctl.SpeedUp()
			So(f.ctl.PlaybackSpeed(), ShouldEqual, media.OneAndHalf)
			f.ctl.SpeedDown()
			f.ctl.SpeedDown()
			So(f.ctl.PlaybackSpeed(), ShouldEqual, media.Half)

			f.ctl.ResetPlaybackSpeed()
			So(f.ctl.PlaybackSpeed(), ShouldEqual, media.NormalRate)
			So(f.engine.Rate(), ShouldAlmostEqual, 1.0)
		})
	})
}

func TestSeek(t *testing.T) {
	Convey("Given media of 120 seconds", t, func() {
		f := newFixture(nil)
		f.load("/media/a.mp4", 120000)

		Convey("Percentages map onto the duration and are clamped", func() {
			f.ctl.SeekToPercentage(25.0)
			f.ctl.SeekToPercentage(-10)
			f.ctl.SeekToPercentage(150)
			So(f.engine.SeekCalls(), ShouldResemble, []int64{30000, 0, 120000})
		})

		Convey("Relative seeks use the configured step", func() {
			f.engine.SetPosition(50000)
			f.ctl.SeekForward(0)
			So(f.engine.Position(), ShouldEqual, 60000)
			f.ctl.SeekBackward(5000)
			So(f.engine.Position(), ShouldEqual, 55000)
		})

		Convey("Absolute seeks never leave the media", func() {
			f.ctl.Seek(-500)
			f.ctl.Seek(999999)
			So(f.engine.SeekCalls(), ShouldResemble, []int64{0, 120000})
		})

		Convey("Frame stepping pauses and moves by one frame", func() {
			f.ctl.Play()
			f.engine.SetPosition(1000)

			f.ctl.StepForward()
			So(f.engine.State(), ShouldEqual, engine.Paused)
			So(f.engine.Position(), ShouldEqual, 1033)

			f.ctl.StepBackward()
			So(f.engine.Position(), ShouldEqual, 1000)
		})
	})

	Convey("Without media", t, func() {
		f := newFixture(nil)

		Convey("Seeks do nothing and raise no error", func() {
			f.ctl.Seek(1000)
			f.ctl.SeekToPercentage(50)
			So(f.engine.SeekCalls(), ShouldBeEmpty)
			So(f.of(bus.ErrorOccurred), ShouldBeEmpty)
		})
	})
}

func TestTransport(t *testing.T) {
	Convey("Given loaded media", t, func() {
		f := newFixture(nil)
		f.load("/media/a.mp4", 60000)

		Convey("Toggle alternates play and pause", func() {
			f.ctl.TogglePlayPause()
			So(f.engine.State(), ShouldEqual, engine.Playing)
			f.ctl.TogglePlayPause()
			So(f.engine.State(), ShouldEqual, engine.Paused)
			f.ctl.TogglePlayPause()
			So(f.engine.State(), ShouldEqual, engine.Playing)
		})

		Convey("Toggle is ignored while buffering", func() {
			f.engine.SetState(engine.Buffering)
			f.ctl.TogglePlayPause()
			So(f.engine.State(), ShouldEqual, engine.Buffering)
		})

		Convey("Toggle in the error state reports an error", func() {
			f.engine.Fail("decoder died")
			f.ctl.TogglePlayPause()
			So(f.engine.State(), ShouldEqual, engine.Error)
			So(len(f.of(bus.ErrorOccurred)), ShouldEqual, 1)
		})

		Convey("Reaching the end publishes end of media", func() {
			f.ctl.Play()
			f.engine.Finish()

			events := f.of(bus.EndOfMedia)
			So(len(events), ShouldEqual, 1)
			So(events[0].String(bus.KeyOrigin), ShouldEqual, "/media/a.mp4")
			So(events[0].String(bus.KeyMode), ShouldEqual, "normal")
		})

		Convey("Repeat one restarts instead", func() {
			f.ctl.SetPlaybackMode(media.RepeatOne)
			f.ctl.Play()
			f.engine.Finish()

			So(f.of(bus.EndOfMedia), ShouldBeEmpty)
			So(f.engine.State(), ShouldEqual, engine.Playing)
			So(f.engine.Position(), ShouldEqual, 0)
		})

		Convey("A pause the backend makes on its own before the end still ends the media", func() {
			f.ctl.SetPlaybackMode(media.RepeatOne)
			f.ctl.Play()
			f.engine.SetState(engine.Paused)
			f.engine.Finish()

			So(f.engine.SeekCalls(), ShouldContain, int64(0))
			So(f.engine.State(), ShouldEqual, engine.Playing)

			Convey("and in normal mode announces it", func() {
				f.ctl.SetPlaybackMode(media.Normal)
				f.engine.SetState(engine.Paused)
				f.engine.Finish()
				So(len(f.of(bus.EndOfMedia)), ShouldEqual, 1)
			})
		})

		Convey("Stopping at the end after a user pause is not the end of media", func() {
			f.ctl.Play()
			f.ctl.Pause()
			f.engine.Finish()
			So(f.of(bus.EndOfMedia), ShouldBeEmpty)
		})

		Convey("A user stop near the end is not the end of media", func() {
			f.ctl.Play()
			f.engine.SetPosition(59500)
			f.ctl.Stop()
			So(f.of(bus.EndOfMedia), ShouldBeEmpty)
			So(f.engine.Position(), ShouldEqual, 0)
		})

		Convey("Playback modes are stored and announced once", func() {
			f.ctl.SetPlaybackMode(media.RepeatAll)
			f.ctl.SetPlaybackMode(media.RepeatAll)
			So(f.ctl.PlaybackMode(), ShouldEqual, media.RepeatAll)
			So(len(f.of(bus.PlaybackModeChanged)), ShouldEqual, 1)
			So(f.of(bus.PlaybackModeChanged)[0].String(bus.KeyMode), ShouldEqual, "repeat-all")

			f.ctl.CycleMode()
			So(f.ctl.PlaybackMode(), ShouldEqual, media.Shuffle)
		})
	})

	Convey("Given a controller without a backend", t, func() {
		events := bus.NewBus()
		var errs []string
		events.Subscribe(bus.ErrorOccurred, func(e bus.Event) { errs = append(errs, e.String(bus.KeyMessage)) })

		ctl := New(nil, events, loop.NewManual(), settings.NewMap(nil))
		So(ctl.Initialize(), ShouldBeNil)

		Convey("Operations report an error and do nothing", func() {
			ctl.Play()
			ctl.SetVolume(50)
			ctl.StartFastForward(2)
			So(errs, ShouldResemble, []string{
				"play: no media backend",
				"set volume: no media backend",
				"fast forward: no media backend",
			})
			So(ctl.Volume(), ShouldEqual, 0)
			So(ctl.Snapshot().HasMedia, ShouldBeFalse)
		})
	})
}

func TestFastScan(t *testing.T) {
	Convey("Multipliers snap to the allowed set", t, func() {
		for in, want := range map[int]int{-3: 2, 1: 2, 3: 2, 4: 5, 7: 5, 10: 10, 15: 10, 16: 20, 100: 20} {
			So(snapMultiplier(in), ShouldEqual, want)
		}
	})

	Convey("Given playing media", t, func() {
		f := newFixture(map[string]any{key.PlaybackRememberPosition: false})
		f.load("/media/a.mp4", 60000)
		f.ctl.Play()
		f.engine.SetPosition(10000)

		Convey("Fast forward pauses and advances every tick", func() {
			f.ctl.StartFastForward(4)
			So(f.engine.State(), ShouldEqual, engine.Paused)
			So(f.ctl.FastScan(), ShouldResemble, FastScan{Active: true, Direction: Forward, Multiplier: 5})

			f.sched.Advance(100 * time.Millisecond)
			So(f.engine.Position(), ShouldEqual, 10500)
			f.sched.Advance(300 * time.Millisecond)
			So(f.engine.Position(), ShouldEqual, 12000)

			Convey("and stopping resumes play", func() {
				f.ctl.StopFastSeek()
				So(f.ctl.IsFastSeeking(), ShouldBeFalse)
				So(f.engine.State(), ShouldEqual, engine.Playing)
				So(f.sched.Pending(), ShouldEqual, 0)

				events := f.of(bus.FastSeekChanged)
				So(len(events), ShouldEqual, 2)
				So(events[0].Bool(bus.KeyActive), ShouldBeTrue)
				So(events[0].Int64(bus.KeyMultiplier), ShouldEqual, 5)
				So(events[1].Bool(bus.KeyActive), ShouldBeFalse)
			})
		})

		Convey("Fast forward stops one second before the end", func() {
			f.engine.SetPosition(57000)
			f.ctl.StartFastForward(20)
			f.sched.Advance(100 * time.Millisecond)

			So(f.engine.Position(), ShouldEqual, 59000)
			So(f.ctl.IsFastSeeking(), ShouldBeFalse)
			So(f.engine.State(), ShouldEqual, engine.Playing)
		})

		Convey("Rewind stops at the start", func() {
			f.engine.SetPosition(300)
			f.ctl.StartRewind(2)
			f.sched.Advance(100 * time.Millisecond)
			So(f.engine.Position(), ShouldEqual, 100)

			f.sched.Advance(100 * time.Millisecond)
			So(f.engine.Position(), ShouldEqual, 0)
			So(f.ctl.IsFastSeeking(), ShouldBeFalse)
		})

		Convey("Cycling walks through the multipliers and then stops", func() {
			for _, want := range Multipliers {
				f.ctl.CycleFastForward()
				So(f.ctl.FastScan().Multiplier, ShouldEqual, want)
			}
			f.ctl.CycleFastForward()
			So(f.ctl.IsFastSeeking(), ShouldBeFalse)
		})

		Convey("A media switch disarms the scan without resuming", func() {
			f.ctl.StartRewind(10)
			f.ctl.PrepareMediaSwitch()
			So(f.ctl.IsFastSeeking(), ShouldBeFalse)
			So(f.engine.State(), ShouldEqual, engine.Paused)
			So(f.sched.Pending(), ShouldEqual, 0)
		})
	})
}

func TestResume(t *testing.T) {
	Convey("Given media of 60 seconds", t, func() {
		persister := &memoryPersister{loaded: map[string]int64{"/media/b.mp4": 20000}}
		f := newFixture(nil, WithPersister(persister))
		f.load("x", 60000)

		Convey("Positions near the start are not remembered", func() {
			f.engine.SetPosition(3000)
			f.ctl.SaveResumePosition("x")
			_, ok := f.ctl.ResumePosition("x")
			So(ok, ShouldBeFalse)

			f.engine.SetPosition(30000)
			f.ctl.SaveResumePosition("x")
			pos, ok := f.ctl.ResumePosition("x")
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 30000)
			So(persister.stored["x"], ShouldEqual, 30000)

			So(f.ctl.LoadResumePosition("x"), ShouldBeTrue)
			So(f.engine.SeekCalls(), ShouldResemble, []int64{30000})
		})

		Convey("Positions near the end are forgotten", func() {
			f.engine.SetPosition(30000)
			f.ctl.SaveResumePosition("x")
			f.engine.SetPosition(55000)
			f.ctl.SaveResumePosition("x")
			_, ok := f.ctl.ResumePosition("x")
			So(ok, ShouldBeFalse)
		})

		Convey("Unknown origins do not seek", func() {
			So(f.ctl.LoadResumePosition("nowhere"), ShouldBeFalse)
			So(f.engine.SeekCalls(), ShouldBeEmpty)
		})

		Convey("Persisted positions are restored after the resume delay", func() {
			f.engine.SetDuration(60000)
			So(f.engine.Load("/media/b.mp4"), ShouldBeNil)
			f.engine.ResetCalls()

			f.sched.Advance(400 * time.Millisecond)
			So(f.engine.SeekCalls(), ShouldBeEmpty)
			f.sched.Advance(100 * time.Millisecond)
			So(f.engine.SeekCalls(), ShouldResemble, []int64{20000})
		})

		Convey("Switching media remembers where the old one was left", func() {
			f.ctl.Play()
			f.engine.SetPosition(25000)
			f.ctl.PrepareMediaSwitch()

			pos, ok := f.ctl.ResumePosition("x")
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 25000)
		})

		Convey("Finishing the media clears its position", func() {
			f.engine.SetPosition(30000)
			f.ctl.SaveResumePosition("x")
			f.ctl.Play()
			f.engine.Finish()
			_, ok := f.ctl.ResumePosition("x")
			So(ok, ShouldBeFalse)
		})

		Convey("Shutdown persists and forgets", func() {
			f.ctl.Play()
			f.engine.SetPosition(40000)
			So(f.ctl.Shutdown(), ShouldBeNil)
			So(persister.stored["x"], ShouldEqual, 40000)
			So(f.ctl.ResumePositions(), ShouldBeEmpty)
		})
	})
}

func TestCrossfade(t *testing.T) {
	Convey("Given crossfade enabled with too short a duration", t, func() {
		f := newFixture(map[string]any{key.PlaybackRememberPosition: false})
		f.ctl.SetCrossfadeEnabled(true, 100)

		So(f.ctl.Crossfade(), ShouldResemble, Crossfade{Enabled: true, Duration: MinCrossfadeMs})
		So(f.of(bus.CrossfadeChanged)[0].Int64(bus.KeyDuration), ShouldEqual, 500)

		f.load("/media/a.mp4", 10000)

		Convey("The crossfade starts when the remaining time reaches its duration", func() {
			f.ctl.Play()
			f.sched.Advance(9400 * time.Millisecond)
			So(f.of(bus.CrossfadeStarted), ShouldBeEmpty)

			f.sched.Advance(100 * time.Millisecond)
			events := f.of(bus.CrossfadeStarted)
			So(len(events), ShouldEqual, 1)
			So(events[0].String(bus.KeyOrigin), ShouldEqual, "/media/a.mp4")
		})

		Convey("Faster playback brings the crossfade forward", func() {
			f.ctl.SetPlaybackSpeed(200)
			f.ctl.Play()
			f.sched.Advance(4750 * time.Millisecond)
			So(len(f.of(bus.CrossfadeStarted)), ShouldEqual, 1)
		})

		Convey("Pausing disarms it", func() {
			f.ctl.Play()
			f.ctl.Pause()
			f.sched.Advance(20 * time.Second)
			So(f.of(bus.CrossfadeStarted), ShouldBeEmpty)
		})

		Convey("Long durations are clamped", func() {
			f.ctl.SetCrossfadeEnabled(true, 60000)
			So(f.ctl.Crossfade().Duration, ShouldEqual, MaxCrossfadeMs)
		})
	})

	Convey("Given a controller", t, func() {
		f := newFixture(nil)

		Convey("Gapless follows the settings", func() {
			So(f.settings.Set(key.PlaybackGapless, true), ShouldBeNil)
			So(f.ctl.GaplessPlayback(), ShouldBeTrue)
			So(len(f.of(bus.GaplessPlaybackChanged)), ShouldEqual, 1)
		})
	})
}

func TestThumbnails(t *testing.T) {
	Convey("Given video media", t, func() {
		f := newFixture(nil)
		f.engine.SetHasVideo(true)
		f.engine.SetFrame(pngFrame(320, 180))
		f.load("/media/a.mp4", 60000)

		Convey("Frames are scaled to the configured width and cached", func() {
			blob := f.ctl.GenerateSeekThumbnail(1000)
			So(blob, ShouldNotBeEmpty)
			So(decodeWidth(blob), ShouldEqual, 160)

			So(f.ctl.GenerateSeekThumbnail(1000), ShouldEqual, blob)
			So(f.engine.FrameCalls(), ShouldResemble, []int64{1000})
			So(len(f.of(bus.SeekThumbnailGenerated)), ShouldEqual, 2)
		})

		Convey("The cache never grows past its limit", func() {
			f.engine.SetFrame(pngFrame(8, 8))
			for i := 0; i <= thumbnailCacheLimit; i++ {
				f.ctl.GenerateSeekThumbnail(int64(i * 100))
				So(f.ctl.ThumbnailCacheSize(), ShouldBeLessThanOrEqualTo, thumbnailCacheLimit)
			}
			So(f.ctl.ThumbnailCacheSize(), ShouldEqual, thumbnailCacheLimit+1-thumbnailEvictCount)
		})

		Convey("A missing frame yields the placeholder", func() {
			f.engine.SetFrame("")
			So(f.ctl.GenerateSeekThumbnail(2000), ShouldEqual, Placeholder)

			Convey("unless placeholders are disabled", func() {
				So(f.settings.Set(key.PlaybackThumbnailPlaceholder, false), ShouldBeNil)
				So(f.ctl.GenerateSeekThumbnail(3000), ShouldBeEmpty)
			})
		})

		Convey("Loading new media empties the cache", func() {
			f.ctl.GenerateSeekThumbnail(1000)
			So(f.engine.Load("/media/b.mp4"), ShouldBeNil)
			So(f.ctl.ThumbnailCacheSize(), ShouldEqual, 0)
		})

		Convey("Nothing is generated when thumbnails are off", func() {
			So(f.settings.Set(key.PlaybackThumbnails, false), ShouldBeNil)
			So(f.ctl.GenerateSeekThumbnail(1000), ShouldBeEmpty)
			So(f.engine.FrameCalls(), ShouldBeEmpty)
		})
	})

	Convey("Given audio only media", t, func() {
		f := newFixture(nil)
		f.load("/media/a.flac", 60000)

		Convey("No thumbnail is requested", func() {
			So(f.ctl.GenerateSeekThumbnail(1000), ShouldBeEmpty)
			So(f.engine.FrameCalls(), ShouldBeEmpty)
		})
	})
}

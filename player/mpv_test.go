package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eonplay/eonplay/engine"
	"github.com/eonplay/eonplay/hwaccel"
	"github.com/eonplay/eonplay/loop"
	. "github.com/smartystreets/goconvey/convey"
)

// recorder collects listener callbacks on the loop goroutine.
type recorder struct {
	mu     sync.Mutex
	events []string
	pos    []int64
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) funcs() engine.Funcs {
	return engine.Funcs{
		OnState: func(s engine.State) { r.add("state:" + s.String()) },
		OnPosition: func(ms int64) {
			r.mu.Lock()
			r.pos = append(r.pos, ms)
			r.mu.Unlock()
		},
		OnDuration: func(int64) { r.add("duration") },
		OnVolume:   func(int) { r.add("volume") },
		OnLoaded: func(ok bool, _ string) {
			if ok {
				r.add("loaded")
			} else {
				r.add("load-failed")
			}
		},
		OnError: func(string) { r.add("error") },
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) positions() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.pos...)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestMPV(t *testing.T) {
	Convey("Given an adapter attached to a fake mpv", t, func() {
		fake, err := newFakeMPV()
		So(err, ShouldBeNil)
		defer fake.close()

		l := loop.New()
		defer l.Close()

		m := NewMPV(l)
		So(m.attach(fake.path), ShouldBeNil)
		defer m.Shutdown()

		rec := &recorder{}
		m.Subscribe(rec.funcs())

		fake.set("duration", 120.5)
		fake.set("width", float64(1920))
		fake.set("height", float64(1080))

		Convey("Loading succeeds once mpv reports file-loaded", func() {
			So(m.Load("/media/Movie.mkv"), ShouldBeNil)
			l.Call(func() {})

			So(m.HasMedia(), ShouldBeTrue)
			So(m.HasVideo(), ShouldBeTrue)
			So(m.Duration(), ShouldEqual, 120500)
			So(m.Handle().Origin, ShouldEqual, "/media/Movie.mkv")
			So(rec.snapshot(), ShouldResemble, []string{"loaded", "duration"})
			So(fake.sent("loadfile"), ShouldHaveLength, 1)

			Convey("seeking clamps to the duration", func() {
				So(m.Seek(999999), ShouldBeNil)
				So(m.Position(), ShouldEqual, 120500)
				seeks := fake.sent("seek")
				So(seeks[len(seeks)-1][1], ShouldEqual, 120.5)

				So(m.Seek(-10), ShouldBeNil)
				So(m.Position(), ShouldEqual, 0)
			})

			Convey("playing polls the position", func() {
				fake.set("time-pos", 3.25)
				So(m.Play(), ShouldBeNil)
				So(m.State(), ShouldEqual, engine.Playing)

				So(eventually(func() bool {
					for _, p := range rec.positions() {
						if p == 3250 {
							return true
						}
					}
					return false
				}), ShouldBeTrue)

				Convey("and identical values are suppressed", func() {
					time.Sleep(300 * time.Millisecond)
					l.Call(func() {})
					count := 0
					for _, p := range rec.positions() {
						if p == 3250 {
							count++
						}
					}
					So(count, ShouldEqual, 1)
				})

				Convey("pause stops at Paused", func() {
					So(m.Pause(), ShouldBeNil)
					So(m.State(), ShouldEqual, engine.Paused)
				})
			})

			Convey("end of stream reported by mpv stops playback", func() {
				So(m.Play(), ShouldBeNil)
				fake.broadcast(map[string]any{"event": "property-change", "name": "eof-reached", "data": true})
				So(eventually(func() bool { return m.State() == engine.Stopped }), ShouldBeTrue)
				So(m.Position(), ShouldEqual, 120500)
			})

			Convey("a pause mpv reports just before the end still stops at the end", func() {
				So(m.Play(), ShouldBeNil)
				fake.broadcast(map[string]any{"event": "property-change", "name": "pause", "data": true})
				fake.broadcast(map[string]any{"event": "property-change", "name": "eof-reached", "data": true})
				So(eventually(func() bool { return m.State() == engine.Stopped }), ShouldBeTrue)
				So(m.Position(), ShouldEqual, 120500)

				l.Call(func() {})
				events := rec.snapshot()
				So(events[len(events)-1], ShouldEqual, "state:Stopped")
			})

			Convey("an external volume change is reported", func() {
				fake.broadcast(map[string]any{"event": "property-change", "name": "volume", "data": 35.0})
				So(eventually(func() bool { return m.Volume() == 35 }), ShouldBeTrue)
			})

			Convey("stop rewinds without unloading", func() {
				So(m.Play(), ShouldBeNil)
				So(m.Seek(5000), ShouldBeNil)
				So(m.Stop(), ShouldBeNil)
				So(m.State(), ShouldEqual, engine.Stopped)
				So(m.Position(), ShouldEqual, 0)
				So(m.HasMedia(), ShouldBeTrue)
			})
		})

		Convey("A decoder error fails the load with Error before errorOccurred", func() {
			fake.mu.Lock()
			fake.onLoad = func(f *fakeMPV, _ string) {
				f.broadcast(map[string]any{"event": "end-file", "reason": "error", "file_error": "unrecognized file format"})
			}
			fake.mu.Unlock()

			So(m.Load("/media/broken.mkv"), ShouldNotBeNil)
			l.Call(func() {})
			So(m.HasMedia(), ShouldBeFalse)
			So(rec.snapshot(), ShouldResemble, []string{"load-failed", "state:Error", "error"})
		})

		Convey("A rejected origin never reaches mpv", func() {
			err := m.Load("--script=evil.lua")
			So(errors.Is(err, engine.ErrRejectedOrigin), ShouldBeTrue)
			l.Call(func() {})
			So(rec.snapshot(), ShouldResemble, []string{"load-failed"})
			So(fake.sent("loadfile"), ShouldBeEmpty)
		})

		Convey("Operations without media report ErrNoMedia", func() {
			So(errors.Is(m.Play(), engine.ErrNoMedia), ShouldBeTrue)
			So(m.VideoFrame(1000), ShouldBeEmpty)
		})

		Convey("Volume is clamped before it is sent", func() {
			So(m.SetVolume(140), ShouldBeNil)
			So(m.Volume(), ShouldEqual, 100)
			sets := fake.sent("set_property")
			last := sets[len(sets)-1]
			So(last[1], ShouldEqual, "volume")
			So(last[2], ShouldEqual, 100.0)
		})

		Convey("Callbacks from a replaced handle are discarded", func() {
			stale := m.generation.Load()
			m.generation.Add(1)
			called := false
			m.emit(stale, func(engine.Listener) { called = true })
			l.Call(func() {})
			So(called, ShouldBeFalse)
		})
	})

	Convey("An adapter that never initialized refuses work", t, func() {
		l := loop.New()
		defer l.Close()

		m := NewMPV(l)
		rec := &recorder{}
		m.Subscribe(rec.funcs())

		So(errors.Is(m.Load("/media/a.mp4"), engine.ErrNotInitialized), ShouldBeTrue)
		So(errors.Is(m.Play(), engine.ErrNotInitialized), ShouldBeTrue)
		So(errors.Is(m.SetVolume(10), engine.ErrNotInitialized), ShouldBeTrue)
		l.Call(func() {})
		So(rec.snapshot(), ShouldResemble, []string{"load-failed"})
	})
}

func TestNativeState(t *testing.T) {
	Convey("mpv flags map onto playback states", t, func() {
		So(nativeState(true, false), ShouldEqual, engine.Paused)
		So(nativeState(true, true), ShouldEqual, engine.Paused)
		So(nativeState(false, true), ShouldEqual, engine.Buffering)
		So(nativeState(false, false), ShouldEqual, engine.Playing)
	})
}

func TestSanitizeOrigin(t *testing.T) {
	Convey("SanitizeOrigin", t, func() {
		for _, bad := range []string{"", "  ", "-flag", "a\x00b", "line\nbreak", "javascript://x", "gopher://host/x"} {
			_, err := SanitizeOrigin(bad)
			So(err, ShouldNotBeNil)
		}

		for _, good := range []string{"https://example.com/a.mp4", "rtsp://cam.local/stream", "file:///tmp/a.mkv"} {
			out, err := SanitizeOrigin(good)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, good)
		}

		out, err := SanitizeOrigin("/tmp/../tmp/a.mkv")
		So(err, ShouldBeNil)
		So(out, ShouldEqual, "/tmp/a.mkv")
	})

	Convey("Network origins get the larger cache", t, func() {
		So(isNetworkOrigin("https://example.com/a.mp4"), ShouldBeTrue)
		So(isNetworkOrigin("file:///tmp/a.mp4"), ShouldBeFalse)
		So(isNetworkOrigin("/tmp/a.mp4"), ShouldBeFalse)
	})
}

func TestFlags(t *testing.T) {
	Convey("Initialization flags lock down the decoder", t, func() {
		flags := Flags(hwaccel.Capabilities{Enabled: true, Decoding: "vaapi"})
		for _, f := range []string{"--idle=yes", "--keep-open-pause=no", "--ytdl=no", "--load-scripts=no", "--config=no", "--osc=no", "--osd-level=0", "--terminal=no", "--cache-secs=1", "--hwdec=vaapi"} {
			So(flags, ShouldContain, f)
		}

		So(Flags(hwaccel.Capabilities{}), ShouldContain, "--hwdec=no")
	})
}

package bus

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBus(t *testing.T) {
	Convey("Given a bus", t, func() {
		b := NewBus()

		Convey("Handlers run in subscription order", func() {
			var order []int
			b.Subscribe(StateChanged, func(Event) { order = append(order, 1) })
			b.Subscribe(StateChanged, func(Event) { order = append(order, 2) })
			b.Subscribe(StateChanged, func(Event) { order = append(order, 3) })

			b.Publish(New(StateChanged))
			So(order, ShouldResemble, []int{1, 2, 3})
		})

		Convey("Only handlers of the published type run", func() {
			var got []string
			b.Subscribe(VolumeChanged, func(e Event) { got = append(got, e.Type) })
			b.Subscribe(MuteChanged, func(e Event) { got = append(got, e.Type) })

			b.Publish(New(MuteChanged, KeyMuted, true))
			So(got, ShouldResemble, []string{MuteChanged})
		})

		Convey("A panicking handler does not stop the rest", func() {
			called := false
			b.Subscribe(ErrorOccurred, func(Event) { panic("boom") })
			b.Subscribe(ErrorOccurred, func(Event) { called = true })

			So(func() { b.Publish(New(ErrorOccurred)) }, ShouldNotPanic)
			So(called, ShouldBeTrue)
		})

		Convey("Unsubscribe removes only that handler", func() {
			count := 0
			id := b.Subscribe(PositionChanged, func(Event) { count += 10 })
			b.Subscribe(PositionChanged, func(Event) { count++ })

			b.Unsubscribe(id)
			b.Publish(New(PositionChanged))
			So(count, ShouldEqual, 1)
			So(b.Subscribers(PositionChanged), ShouldEqual, 1)
		})

		Convey("Reentrant publishes are queued until the current dispatch returns", func() {
			var trace []string
			b.Subscribe(MediaLoaded, func(Event) {
				trace = append(trace, "loaded-1")
				b.Publish(New(DurationChanged))
				trace = append(trace, "loaded-1-done")
			})
			b.Subscribe(MediaLoaded, func(Event) { trace = append(trace, "loaded-2") })
			b.Subscribe(DurationChanged, func(Event) { trace = append(trace, "duration") })

			b.Publish(New(MediaLoaded))
			So(trace, ShouldResemble, []string{"loaded-1", "loaded-1-done", "loaded-2", "duration"})
		})

		Convey("Clear drops all subscriptions", func() {
			called := false
			b.Subscribe(StateChanged, func(Event) { called = true })
			b.Clear()
			b.Publish(New(StateChanged))
			So(called, ShouldBeFalse)
		})

		Convey("Payload accessors tolerate missing and mistyped keys", func() {
			e := New(PositionChanged, KeyPosition, 1500, KeyOrigin, "a.mp4", KeyMuted, true)
			So(e.Int64(KeyPosition), ShouldEqual, 1500)
			So(e.String(KeyOrigin), ShouldEqual, "a.mp4")
			So(e.Bool(KeyMuted), ShouldBeTrue)
			So(e.Int64(KeyOrigin), ShouldEqual, 0)
			So(e.String("missing"), ShouldBeEmpty)
		})
	})

	Convey("Default returns a singleton", t, func() {
		So(Default(), ShouldPointTo, Default())
	})
}

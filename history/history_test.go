package history

import (
	"testing"

	"github.com/eonplay/eonplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a store on an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		store := New("/config/resume.json")

		Convey("An empty store loads nothing", func() {
			positions, err := store.Load()
			So(err, ShouldBeNil)
			So(positions, ShouldBeEmpty)
		})

		Convey("Stored positions survive a new store on the same path", func() {
			So(store.Store(map[string]int64{"/media/a.mkv": 30000, "https://x/b.mp4": 61000}), ShouldBeNil)

			reopened := New("/config/resume.json")
			positions, err := reopened.Load()
			So(err, ShouldBeNil)
			So(positions, ShouldResemble, map[string]int64{"/media/a.mkv": 30000, "https://x/b.mp4": 61000})
		})

		Convey("Unchanged entries keep their timestamp and removed ones disappear", func() {
			So(store.Store(map[string]int64{"a": 10000, "b": 20000}), ShouldBeNil)
			before, _ := store.Entries()
			savedAt := before["a"].SavedAt

			So(store.Store(map[string]int64{"a": 10000}), ShouldBeNil)
			after, err := store.Entries()
			So(err, ShouldBeNil)
			So(after, ShouldHaveLength, 1)
			So(after["a"].SavedAt.Equal(savedAt), ShouldBeTrue)
		})
	})
}

package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestReadHeader(t *testing.T) {
	Convey("Given an in-memory file", t, func() {
		SetMemMapFs()
		So(API().WriteFile("/clip.mkv", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01}, 0o644), ShouldBeNil)

		Convey("A short file returns every byte it has", func() {
			header, err := ReadHeader("/clip.mkv", 16)
			So(err, ShouldBeNil)
			So(header, ShouldResemble, []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01})
		})

		Convey("A longer file is truncated to n", func() {
			header, err := ReadHeader("/clip.mkv", 2)
			So(err, ShouldBeNil)
			So(len(header), ShouldEqual, 2)
		})

		Convey("A missing file is an error", func() {
			_, err := ReadHeader("/nope.mkv", 16)
			So(err, ShouldNotBeNil)
		})
	})
}

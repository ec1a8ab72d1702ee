package util

import (
	"testing"

	"github.com/eonplay/eonplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.png"), ShouldEqual, "file_name_.png")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("My  Movie (2020)"), ShouldEqual, "My_Movie_(2020)")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "file", "files"), ShouldEqual, "1 file")
		So(Quantify(2, "file", "files"), ShouldEqual, "2 files")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem strips only the last extension", t, func() {
		So(FileStem("/media/Movie.mp4"), ShouldEqual, "Movie")
		So(FileStem("/media/Movie.en.srt"), ShouldEqual, "Movie.en")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestExt(t *testing.T) {
	Convey("Ext lowercases and drops the dot", t, func() {
		So(Ext("/tmp/doc.PDF"), ShouldEqual, "pdf")
		So(Ext("/tmp/noext"), ShouldEqual, "")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 10, 1000), ShouldEqual, 10)
		So(Clamp(2000, 10, 1000), ShouldEqual, 1000)
		So(Clamp(150, 10, 1000), ShouldEqual, 150)
		So(Clamp(-0.5, 0.0, 100.0), ShouldEqual, 0.0)
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete removes files and directories", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		So(fs.WriteFile("/shots/a.png", []byte("x"), 0o644), ShouldBeNil)

		So(Delete("/shots/a.png"), ShouldBeNil)
		exists, _ := fs.Exists("/shots/a.png")
		So(exists, ShouldBeFalse)

		So(Delete("/shots"), ShouldBeNil)
		exists, _ = fs.Exists("/shots")
		So(exists, ShouldBeFalse)
	})
}

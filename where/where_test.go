package where

import (
	"path/filepath"
	"testing"

	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config() creates its directory", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs() lives under the config directory", func() {
			So(filepath.Dir(Logs()), ShouldEqual, Config())
			So(lo.Must(filesystem.API().IsDir(Logs())), ShouldBeTrue)
		})

		Convey("Resume() is a file under the config directory", func() {
			So(Resume(), ShouldEqual, filepath.Join(Config(), "resume.json"))
		})

		Convey("DefaultScreenshots() ends with the display name", func() {
			So(filepath.Base(DefaultScreenshots()), ShouldEqual, constant.AppName)
		})

		Convey("Temp() exists", func() {
			So(lo.Must(filesystem.API().IsDir(Temp())), ShouldBeTrue)
		})
	})
}

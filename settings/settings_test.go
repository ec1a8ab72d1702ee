package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/eonplay/eonplay/config"
	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/filesystem"
	"github.com/eonplay/eonplay/key"
	"github.com/eonplay/eonplay/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestMap(t *testing.T) {
	Convey("Given map settings", t, func() {
		s := NewMap(map[string]any{key.PlaybackVolume: 60})

		Convey("Set values win over defaults", func() {
			So(s.GetInt(key.PlaybackVolume), ShouldEqual, 60)
			So(s.GetInt(key.PlaybackSeekStep), ShouldEqual, 10000)
			So(s.GetInt64(key.IntakeMaxFileSize), ShouldEqual, config.DefaultMaxFileSize)
			So(s.GetBool(key.PlaybackRememberPosition), ShouldBeTrue)
		})

		Convey("Set notifies listeners with the key", func() {
			var changed []string
			s.OnChange(func(k string) { changed = append(changed, k) })
			So(s.Set(key.PlaybackGapless, true), ShouldBeNil)
			So(changed, ShouldResemble, []string{key.PlaybackGapless})
			So(s.GetBool(key.PlaybackGapless), ShouldBeTrue)
		})

		Convey("Secrets round-trip and can be deleted", func() {
			So(s.SetSecret("stream-token", "abc"), ShouldBeNil)
			v, err := s.Secret("stream-token")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "abc")

			So(s.DeleteSecret("stream-token"), ShouldBeNil)
			_, err = s.Secret("stream-token")
			So(errors.Is(err, ErrNoSecret), ShouldBeTrue)
		})
	})
}

func TestViper(t *testing.T) {
	Convey("Given viper settings on an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		So(config.Setup(), ShouldBeNil)
		s := NewViper()

		Convey("Set is visible through the getters", func() {
			So(s.Set(key.PlaybackCrossfadeDuration, 4500), ShouldBeNil)
			So(s.GetInt(key.PlaybackCrossfadeDuration), ShouldEqual, 4500)
		})

		Convey("Set notifies listeners registered before and during delivery", func() {
			var changed []string
			s.listeners = append(s.listeners, func(k string) {
				changed = append(changed, k)
				s.listeners = append(s.listeners, func(string) { changed = append(changed, "late") })
			})
			So(s.Set(key.PlaybackGapless, true), ShouldBeNil)
			So(changed, ShouldResemble, []string{key.PlaybackGapless})
		})

		Convey("SaveNow creates the config file", func() {
			So(s.SaveNow(), ShouldBeNil)
			exists, err := filesystem.API().Exists(filepath.Join(where.Config(), constant.App+".toml"))
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})

		Convey("Secrets go to the keyring", func() {
			keyring.MockInit()
			So(s.SetSecret("proxy-password", "hunter2"), ShouldBeNil)
			v, err := s.Secret("proxy-password")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "hunter2")

			So(s.DeleteSecret("proxy-password"), ShouldBeNil)
			_, err = s.Secret("proxy-password")
			So(errors.Is(err, ErrNoSecret), ShouldBeTrue)
		})
	})
}

func TestChangedKeys(t *testing.T) {
	Convey("Nested settings are diffed by dotted key", t, func() {
		before := flatten(map[string]any{"playback": map[string]any{"volume": 80, "gapless": false}})
		after := flatten(map[string]any{"playback": map[string]any{"volume": 50, "gapless": false}, "logs": map[string]any{"write": true}})

		So(changedKeys(before, after), ShouldHaveLength, 2)
		So(changedKeys(before, after), ShouldContain, "playback.volume")
		So(changedKeys(before, after), ShouldContain, "logs.write")
		So(changedKeys(after, after), ShouldBeEmpty)
	})
}

package log

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func todaysLog() string {
	contents, err := filesystem.API().ReadFile(filepath.Join(where.Logs(), fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))))
	if err != nil {
		return ""
	}
	return string(contents)
}

func TestSetup(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		defer viper.Reset()

		Convey("When logs are disabled", func() {
			viper.Set(key.LogsWrite, false)
			So(Setup(), ShouldBeNil)

			Convey("Then nothing is written", func() {
				Info("hidden")
				So(Enabled(), ShouldBeFalse)
				So(todaysLog(), ShouldBeEmpty)
			})
		})

		Convey("When logs are enabled", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "debug")
			viper.Set(key.LogsJson, true)
			So(Setup(), ShouldBeNil)
			defer func() { enabled = false }()

			Convey("Then entries carry their fields", func() {
				WithFields(Fields{"request": "r1"}).WithField("url", "https://a.example").Debugf("matched %s", "Site")
				Report(errors.New("boom"))

				contents := todaysLog()
				So(contents, ShouldContainSubstring, `"request":"r1"`)
				So(contents, ShouldContainSubstring, `"msg":"matched Site"`)
				So(contents, ShouldContainSubstring, `"msg":"boom"`)
			})
		})
	})
}

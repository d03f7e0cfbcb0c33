package util

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.lua"), ShouldEqual, "file_name_.lua")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("My  Host"), ShouldEqual, "My_Host")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-plugin-name-"), ShouldEqual, "plugin-name")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "plugin", "plugins"), ShouldEqual, "1 plugin")
		So(Quantify(0, "plugin", "plugins"), ShouldEqual, "0 plugins")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("mirror"), ShouldEqual, "Mirror")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("/plugins/example.lua"), ShouldEqual, "example")
		So(FileStem("example"), ShouldEqual, "example")
	})
}

func TestMax(t *testing.T) {
	Convey("Max", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestIgnore(t *testing.T) {
	Convey("Ignore", t, func() {
		called := false
		Ignore(func() error {
			called = true
			return errors.New("dropped")
		})
		So(called, ShouldBeTrue)
	})
}

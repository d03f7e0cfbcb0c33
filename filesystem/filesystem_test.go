package filesystem

import (
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBackend(t *testing.T) {
	Convey("Given the filesystem backend", t, func() {
		Convey("When switched to the OS", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("When switched to memory", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestWriteAtomic(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		SetMemMapFs()
		lo.Must0(API().MkdirAll("/plugins", 0o755))
		lo.Must0(API().WriteFile("/plugins/a.lua", []byte("old"), 0o644))

		Convey("When a file is replaced", func() {
			So(WriteAtomic("/plugins/a.lua", []byte("new"), 0o644), ShouldBeNil)

			Convey("Then the new content is visible and no temp file is left", func() {
				So(string(lo.Must(API().ReadFile("/plugins/a.lua"))), ShouldEqual, "new")
				So(lo.Must(API().Exists("/plugins/a.lua.tmp")), ShouldBeFalse)
			})
		})

		Convey("When a directory is deleted", func() {
			So(Delete("/plugins"), ShouldBeNil)
			So(lo.Must(API().Exists("/plugins/a.lua")), ShouldBeFalse)
		})

		Convey("When a missing path is deleted", func() {
			So(Delete("/missing"), ShouldNotBeNil)
		})
	})
}

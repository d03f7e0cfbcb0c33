package extractors

import (
	"testing"

	"github.com/anisan-cli/vidresolve/registry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegisterBuiltins(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		reg := registry.New()
		RegisterBuiltins(reg)

		Convey("Every built-in should be registered without a plugin tag", func() {
			So(reg.Len(), ShouldEqual, len(Builtins()))
			for _, d := range reg.All() {
				So(d.IsPlugin(), ShouldBeFalse)
				So(d.MainURL, ShouldStartWith, "https://")
			}
		})

		Convey("Built-ins should be found by name", func() {
			d, ok := reg.Lookup("MegaCloud")
			So(ok, ShouldBeTrue)
			So(d.MainURL, ShouldEqual, "https://megacloud.blog")
		})
	})
}

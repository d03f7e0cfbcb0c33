package registry

import (
	"context"
	"testing"

	"github.com/anisan-cli/vidresolve/extractor"
	. "github.com/smartystreets/goconvey/convey"
)

type stub struct {
	extractor.Base
}

func (s *stub) Resolve(context.Context, string, string, extractor.LinkFunc, extractor.SubtitleFunc) error {
	return nil
}

func newStub(name, mainURL string, referer bool) *stub {
	return &stub{extractor.Base{ExtractorName: name, ExtractorMainURL: mainURL, NeedsReferer: referer}}
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry with three extractors", t, func() {
		r := New()
		a := r.Register(newStub("MegaCloud", "https://megacloud.blog", false))
		b := r.Register(newStub("StreamTape", "https://streamtape.com", true))
		c := r.Register(newStub("Megaup", "https://megaup.net", false))

		Convey("Then entries keep registration order", func() {
			So(r.Len(), ShouldEqual, 3)
			So(r.All(), ShouldResemble, []*Descriptor{a, b, c})
		})

		Convey("Then the priority order is reversed", func() {
			So(r.Priority(), ShouldResemble, []*Descriptor{c, b, a})
			So(r.All()[0], ShouldEqual, a)
		})

		Convey("When looking up a known name", func() {
			d, ok := r.Lookup("StreamTape")
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, b)
			So(r.LookupOrFirst("StreamTape"), ShouldEqual, b)
		})

		Convey("When looking up an unknown name", func() {
			_, ok := r.Lookup("Nope")
			So(ok, ShouldBeFalse)

			Convey("Then the legacy lookup falls back to the first entry", func() {
				So(r.LookupOrFirst("Nope"), ShouldEqual, a)
			})
		})

		Convey("When a name is registered twice", func() {
			dup := r.Register(newStub("MegaCloud", "https://megacloud.club", false))

			Convey("Then lookup returns the first one", func() {
				d, _ := r.Lookup("MegaCloud")
				So(d, ShouldEqual, a)
				So(d, ShouldNotEqual, dup)
			})
		})

		Convey("Then referer requirements are reported by name", func() {
			So(r.RequiresReferer("StreamTape"), ShouldBeTrue)
			So(r.RequiresReferer("MegaCloud"), ShouldBeFalse)
			So(r.RequiresReferer("Nope"), ShouldBeFalse)
		})

		Convey("When plugin entries are added", func() {
			p := r.RegisterPlugin("/plugins/a.lua", newStub("PluginA", "https://a.com", false))
			untagged := r.Register(newStub("PluginB", "https://b.com", false))

			Convey("Then built-ins stay untagged until tagged", func() {
				So(p.IsPlugin(), ShouldBeTrue)
				So(p.SourcePlugin.MustGet(), ShouldEqual, "/plugins/a.lua")
				So(untagged.IsPlugin(), ShouldBeFalse)
			})

			Convey("Then tagging marks every untagged entry", func() {
				So(r.TagPlugin("/plugins/b.lua"), ShouldEqual, 4)
				So(untagged.SourcePlugin.MustGet(), ShouldEqual, "/plugins/b.lua")
				So(p.SourcePlugin.MustGet(), ShouldEqual, "/plugins/a.lua")
			})
		})

		Convey("When searching by name", func() {
			found := r.Search("mega")

			Convey("Then the closest names come first", func() {
				So(found, ShouldHaveLength, 2)
				So(found[0], ShouldEqual, c)
				So(found[1], ShouldEqual, a)
			})
		})

		Convey("Then a misspelled name gets a suggestion", func() {
			So(r.Suggest("StreamTap").MustGet(), ShouldEqual, "StreamTape")
		})
	})

	Convey("Given an empty registry", t, func() {
		r := New()

		So(r.LookupOrFirst("x"), ShouldBeNil)
		So(r.Suggest("x").IsAbsent(), ShouldBeTrue)
		So(r.Priority(), ShouldBeEmpty)
	})
}

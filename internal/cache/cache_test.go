package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCollectGarbage(t *testing.T) {
	Convey("Given a directory with old and fresh files", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()

		dir := "/tmp/vidresolve"
		old := filepath.Join(dir, "nested", "old.json")
		fresh := filepath.Join(dir, "fresh.json")

		lo.Must0(fs.MkdirAll(filepath.Dir(old), 0o755))
		lo.Must0(fs.WriteFile(old, []byte("{}"), 0o644))
		lo.Must0(fs.WriteFile(fresh, []byte("{}"), 0o644))

		stale := time.Now().Add(-48 * time.Hour)
		lo.Must0(fs.Chtimes(old, stale, stale))

		Convey("Only the stale file should be removed", func() {
			So(CollectGarbage(dir, 24*time.Hour), ShouldEqual, 1)

			exists, _ := fs.Exists(old)
			So(exists, ShouldBeFalse)
			exists, _ = fs.Exists(fresh)
			So(exists, ShouldBeTrue)
		})

		Convey("A missing directory should remove nothing", func() {
			So(CollectGarbage("/nowhere", time.Hour), ShouldEqual, 0)
		})
	})
}

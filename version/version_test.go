package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anisan-cli/vidresolve/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		for _, tc := range []struct {
			a, b string
			want int
		}{
			{"1.2.3", "1.2.3", 0},
			{"v1.2.4", "1.2.3", 1},
			{"1.2", "1.2.1", -1},
			{"2.0.0-beta", "1.9.9", 1},
			{"0.3.0", "v0.10.0", -1},
		} {
			got, err := Compare(tc.a, tc.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, tc.want)
		}

		_, err := Compare("latest", "1.0.0")
		So(err, ShouldNotBeNil)
		_, err = Compare("1.0.0", "")
		So(err, ShouldNotBeNil)
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a release api", t, func() {
		filesystem.SetMemMapFs()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte(`{"tag_name":"v1.4.0"}`))
		}))
		defer server.Close()

		previous := ReleasesURL
		ReleasesURL = server.URL
		defer func() { ReleasesURL = previous }()

		Convey("Latest should strip the prefix and cache the answer", func() {
			ver, err := Latest(context.Background())
			So(err, ShouldBeNil)
			So(ver, ShouldEqual, "1.4.0")

			ver, err = Latest(context.Background())
			So(err, ShouldBeNil)
			So(ver, ShouldEqual, "1.4.0")
			So(hits.Load(), ShouldEqual, int32(1))
		})
	})
}

package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anisan-cli/vidresolve/link"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProber(t *testing.T) {
	Convey("Given a server reporting a content length", t, func() {
		var heads atomic.Int32
		var referer atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				heads.Add(1)
			}
			referer.Store(r.Header.Get("Referer"))
			w.Header().Set("Content-Length", "2048")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		prober := Prober{Client: server.Client()}

		Convey("When probing directly", func() {
			size, err := prober.ContentLength(context.Background(), server.URL+"/a.mp4", map[string]string{"Referer": "https://r"})

			So(err, ShouldBeNil)
			So(size, ShouldEqual, int64(2048))
			So(referer.Load(), ShouldEqual, "https://r")
		})

		Convey("When a video link asks for its size twice", func() {
			l := link.New("s", "n", server.URL+"/a.mp4", link.WithReferer("https://r"))

			first, err := l.Size(context.Background(), prober)
			So(err, ShouldBeNil)
			second, err := l.Size(context.Background(), prober)
			So(err, ShouldBeNil)

			Convey("Then a single HEAD request is made", func() {
				So(first, ShouldEqual, int64(2048))
				So(second, ShouldEqual, first)
				So(heads.Load(), ShouldEqual, int32(1))
				So(referer.Load(), ShouldEqual, "https://r")
			})
		})
	})

	Convey("Given a server answering with an error status", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := Prober{Client: server.Client()}.ContentLength(context.Background(), server.URL, nil)

		var statusErr *StatusError
		So(errors.As(err, &statusErr), ShouldBeTrue)
		So(statusErr.Status, ShouldEqual, http.StatusForbidden)
	})
}

func TestRequests(t *testing.T) {
	Convey("Given an echo server", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Method", r.Method)
			_, _ = w.Write([]byte(r.Method + " " + r.Header.Get("User-Agent")))
		}))
		defer server.Close()

		Convey("When sending a GET", func() {
			body, err := GetString(context.Background(), server.Client(), server.URL, nil)

			So(err, ShouldBeNil)
			So(body, ShouldStartWith, "GET Mozilla")
		})

		Convey("When sending a POST with a custom user agent", func() {
			body, err := PostString(context.Background(), server.Client(), server.URL, map[string]string{"User-Agent": "test"}, "x=1")

			So(err, ShouldBeNil)
			So(body, ShouldEqual, "POST test")
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := GetString(ctx, server.Client(), server.URL, nil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a rate limited client", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := New(Options{Timeout: 5 * time.Second, RateLimit: 0.001, Burst: 1})

		Convey("When the burst is used up", func() {
			_, err := GetString(context.Background(), client, server.URL, nil)
			So(err, ShouldBeNil)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			Convey("Then the next request waits and gives up with the context", func() {
				_, err := GetString(ctx, client, server.URL, nil)
				So(err, ShouldNotBeNil)
			})
		})
	})
}

package link

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type countingProber struct {
	mu    sync.Mutex
	calls int
	size  int64
	err   error
}

func (p *countingProber) ContentLength(context.Context, string, map[string]string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	return p.size, p.err
}

func TestInferType(t *testing.T) {
	Convey("Given urls of different formats", t, func() {
		Convey("When the path ends with .m3u8", func() {
			Convey("Then it should be an HLS playlist", func() {
				So(InferType("https://x/a.m3u8"), ShouldEqual, HLSPlaylist)
				So(InferType("https://x/a.m3u8?token=1"), ShouldEqual, HLSPlaylist)
			})
		})

		Convey("When the path ends with .mpd", func() {
			So(InferType("https://x/a.mpd"), ShouldEqual, DASHManifest)
		})

		Convey("When the path ends with .torrent", func() {
			So(InferType("https://x/a.torrent"), ShouldEqual, Torrent)
		})

		Convey("When it is a magnet uri", func() {
			So(InferType("magnet:?xt=urn:btih:abc"), ShouldEqual, Magnet)
		})

		Convey("When the url has an invalid escape", func() {
			Convey("Then the raw path before the query still decides", func() {
				So(InferType("https://x/a%zz.m3u8"), ShouldEqual, HLSPlaylist)
				So(InferType("https://x/a%zz.mpd?t=1#f"), ShouldEqual, DASHManifest)
				So(InferType("https://x/a%zz.mp4?next=b.m3u8"), ShouldEqual, Video)
			})
		})

		Convey("When nothing matches", func() {
			So(InferType("https://x/a.mp4"), ShouldEqual, Video)
			So(InferType(""), ShouldEqual, Video)
			So(InferType("::not a url::"), ShouldEqual, Video)
			So(InferType("%zz"), ShouldEqual, Video)
		})

		Convey("Then every result is a known format", func() {
			for _, u := range []string{"", "a", "https://x/.m3u8/y", "magnet:", "ftp://x/y.mpd"} {
				So(FormatTypes, ShouldContain, InferType(u))
			}
		})
	})
}

func TestParseQuality(t *testing.T) {
	Convey("Given quality labels", t, func() {
		So(ParseQuality("1080p"), ShouldEqual, 1080)
		So(ParseQuality(" 720P "), ShouldEqual, 720)
		So(ParseQuality("4K"), ShouldEqual, 2160)
		So(ParseQuality("4k"), ShouldEqual, 2160)
		So(ParseQuality(""), ShouldEqual, int(Unknown))
		So(ParseQuality("garbage"), ShouldEqual, int(Unknown))
		So(ParseQuality("9999"), ShouldEqual, 9999)
	})
}

func TestQuality(t *testing.T) {
	Convey("Given the quality tiers", t, func() {
		Convey("Then unknown ranks alongside 480p", func() {
			So(Priority(int(Unknown)), ShouldEqual, Priority(int(P480)))
			So(Priority(int(P720)), ShouldBeGreaterThan, Priority(int(Unknown)))
			So(Priority(int(P360)), ShouldBeLessThan, Priority(int(Unknown)))
		})

		Convey("Then priorities grow with the tiers", func() {
			for i := 1; i < len(Qualities); i++ {
				So(Priority(int(Qualities[i])), ShouldBeGreaterThanOrEqualTo, Priority(int(Qualities[i-1])))
			}
		})

		Convey("Then custom values rank with the tier below", func() {
			So(Priority(900), ShouldEqual, Priority(int(P720)))
			So(Priority(100), ShouldEqual, -1)
		})

		Convey("Then names are readable", func() {
			So(QualityName(2160), ShouldEqual, "4K")
			So(QualityName(400), ShouldEqual, "Unknown")
			So(P1080.String(), ShouldEqual, "1080p")
		})
	})
}

func TestFormatType(t *testing.T) {
	Convey("Given a format type", t, func() {
		Convey("Then it maps to a mime type", func() {
			So(Video.MIME(), ShouldEqual, "video/mp4")
			So(HLSPlaylist.MIME(), ShouldEqual, "application/x-mpegURL")
			So(DASHManifest.MIME(), ShouldEqual, "application/dash+xml")
			So(Torrent.MIME(), ShouldEqual, "application/x-bittorrent")
			So(Magnet.MIME(), ShouldEqual, "application/x-bittorrent")
		})

		Convey("Then torrents are not streamable", func() {
			So(Torrent.Streamable(), ShouldBeFalse)
			So(Magnet.Streamable(), ShouldBeFalse)
			So(HLSPlaylist.Streamable(), ShouldBeTrue)
		})

		Convey("When parsing text", func() {
			parsed, err := ParseFormatType("m3u8")
			So(err, ShouldBeNil)
			So(parsed, ShouldEqual, HLSPlaylist)

			parsed, err = ParseFormatType("hls")
			So(err, ShouldBeNil)
			So(parsed, ShouldEqual, HLSPlaylist)

			_, err = ParseFormatType("flv")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLink(t *testing.T) {
	Convey("Given a plain link", t, func() {
		headers := map[string]string{"Origin": "https://o"}
		l := New("Src", "Name", "https://cdn/a.m3u8",
			WithReferer("https://r"),
			WithQuality(720),
			WithHeaders(headers),
		)

		Convey("Then the type is inferred", func() {
			So(l.Type(), ShouldEqual, HLSPlaylist)
			So(l.IsPlaylist(), ShouldBeFalse)
			So(l.IsDRM(), ShouldBeFalse)
		})

		Convey("Then it is not affected by changes to the given headers", func() {
			headers["Origin"] = "changed"
			So(l.Headers()["Origin"], ShouldEqual, "https://o")
		})

		Convey("Then the referer is part of the effective headers", func() {
			eff := l.EffectiveHeaders()
			So(eff["referer"], ShouldEqual, "https://r")
			So(eff["Origin"], ShouldEqual, "https://o")
			So(l.Headers(), ShouldNotContainKey, "referer")
		})

		Convey("Then the quality defaults to unknown when not given", func() {
			So(New("s", "n", "https://x").Quality(), ShouldEqual, int(Unknown))
		})
	})

	Convey("Given a link with only a referer", t, func() {
		l := New("s", "n", "https://x/a.mp4", WithReferer("https://r"))

		So(l.EffectiveHeaders(), ShouldResemble, map[string]string{"referer": "https://r"})
	})

	Convey("Given a link with a referer header of a different case", t, func() {
		l := New("s", "n", "https://x/a.mp4",
			WithReferer("https://r"),
			WithHeaders(map[string]string{"Referer": "https://other"}),
		)

		So(l.EffectiveHeaders(), ShouldResemble, map[string]string{"Referer": "https://other"})
	})

	Convey("Given a link with a blank referer", t, func() {
		l := New("s", "n", "https://x/a.mp4", WithReferer("  "))

		So(l.EffectiveHeaders(), ShouldBeEmpty)
	})

	Convey("Given a playlist link", t, func() {
		l := NewPlaylist("s", "n", []PlaylistItem{
			{URL: "https://x/1.ts", DurationMicroseconds: 2_000_000},
			{URL: "https://x/2.ts", DurationMicroseconds: 1_500_000},
		})

		So(l.URL(), ShouldBeEmpty)
		So(l.IsPlaylist(), ShouldBeTrue)
		So(l.Playlist(), ShouldHaveLength, 2)
		So(l.Playlist()[0].Duration().Seconds(), ShouldEqual, 2.0)
	})

	Convey("Given a DRM link", t, func() {
		l := NewDRM("s", "n", "https://x/manifest.mpd", DRM{
			KeyID:     mo.Some("a2V5aWQ="),
			Key:       mo.Some("a2V5"),
			KeySystem: ClearKey,
		})

		Convey("Then the key type defaults to oct", func() {
			d, ok := l.DRM().Get()
			So(ok, ShouldBeTrue)
			So(d.KeyType, ShouldEqual, DefaultKeyType)
			So(d.KeyRequestParameters, ShouldNotBeNil)
			So(l.Type(), ShouldEqual, DASHManifest)
		})

		Convey("When it is serialized", func() {
			raw, err := json.Marshal(l)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)

			Convey("Then nullable fields are kept", func() {
				So(decoded["keyId"], ShouldEqual, "a2V5aWQ=")
				So(decoded["keySystem"], ShouldEqual, ClearKey)
				So(decoded["keyType"], ShouldEqual, "oct")
				So(decoded, ShouldContainKey, "licenseUrl")
				So(decoded["licenseUrl"], ShouldBeNil)
				So(decoded["type"], ShouldEqual, "DASH")
				So(decoded["extractorData"], ShouldBeNil)
			})
		})
	})

	Convey("Given a plain link when it is serialized", t, func() {
		raw, err := json.Marshal(New("s", "n", "https://x/a.mp4", WithExtractorData("token")))
		So(err, ShouldBeNil)

		var decoded map[string]any
		So(json.Unmarshal(raw, &decoded), ShouldBeNil)

		So(decoded, ShouldNotContainKey, "keySystem")
		So(decoded, ShouldNotContainKey, "playlist")
		So(decoded["extractorData"], ShouldEqual, "token")
		So(decoded["quality"], ShouldEqual, float64(400))
	})
}

func TestSize(t *testing.T) {
	Convey("Given a video link", t, func() {
		l := New("s", "n", "https://x/a.mp4")
		prober := &countingProber{size: 1024}

		Convey("When the size is requested twice", func() {
			first, err := l.Size(context.Background(), prober)
			So(err, ShouldBeNil)
			second, err := l.Size(context.Background(), prober)
			So(err, ShouldBeNil)

			Convey("Then only one probe is made", func() {
				So(first, ShouldEqual, int64(1024))
				So(second, ShouldEqual, int64(1024))
				So(prober.calls, ShouldEqual, 1)
				So(l.CachedSize().MustGet(), ShouldEqual, int64(1024))
			})
		})

		Convey("When the probe fails", func() {
			prober.err = errors.New("boom")
			_, err := l.Size(context.Background(), prober)
			So(err, ShouldNotBeNil)

			Convey("Then the failure is not remembered", func() {
				prober.err = nil
				size, err := l.Size(context.Background(), prober)
				So(err, ShouldBeNil)
				So(size, ShouldEqual, int64(1024))
				So(prober.calls, ShouldEqual, 2)
			})
		})

		Convey("When many goroutines ask at once", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = l.Size(context.Background(), prober)
				}()
			}
			wg.Wait()

			So(prober.calls, ShouldEqual, 1)
		})
	})

	Convey("Given an HLS link", t, func() {
		l := New("s", "n", "https://x/a.m3u8")
		prober := &countingProber{size: 1}

		_, err := l.Size(context.Background(), prober)
		So(err, ShouldEqual, ErrSizeUnsupported)
		So(prober.calls, ShouldEqual, 0)
	})
}

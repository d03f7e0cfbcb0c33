package megacloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anisan-cli/vidresolve/link"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClientKey(t *testing.T) {
	Convey("Given embed pages hiding their key", t, func() {
		pages := map[string]string{
			`<html><head><meta name="_gg_fb" content="abc123XYZ"></head></html>`:                           "abc123XYZ",
			`<html><!-- _is_th:secretKey42 --><body></body></html>`:                                        "secretKey42",
			`<html><script>window._lk_db = {x: "partA", y: "partB", z: "partC"};</script></html>`:         "partApartBpartC",
			`<html><script>window._lk_db = {z: "partC", x: "partA", y: "partB"};</script></html>`:         "partApartBpartC",
			`<html><body><div data-dpi="myKey99" class="test"></div></body></html>`:                        "myKey99",
			`<html><script nonce="nonceKey123">console.log('hi');</script></html>`:                        "nonceKey123",
			"<html><script>window._xy_ws = `wsKey456`;</script></html>":                                     "wsKey456",
		}

		for page, want := range pages {
			key, err := clientKey(page)
			So(err, ShouldBeNil)
			So(key, ShouldEqual, want)
		}
	})

	Convey("Given a page without a key", t, func() {
		_, err := clientKey(`<html><body>nothing here</body></html>`)
		So(err, ShouldEqual, ErrNoClientKey)
	})
}

func TestParseEmbed(t *testing.T) {
	Convey("Given embed urls", t, func() {
		e, err := parseEmbed("https://streameeeeee.site/embed-1/v3/e-1/AbCdEf123?z=")
		So(err, ShouldBeNil)
		So(e.origin, ShouldEqual, "https://streameeeeee.site")
		So(e.prefix, ShouldEqual, "embed-1")
		So(e.id, ShouldEqual, "AbCdEf123")
		So(e.sources("k y"), ShouldEqual, "https://streameeeeee.site/embed-1/v3/e-1/getSources?id=AbCdEf123&_k=k+y")

		e, err = parseEmbed("https://megacloud.blog/e/v3/XyZ789/")
		So(err, ShouldBeNil)
		So(e.prefix, ShouldEqual, "embed-2")
		So(e.id, ShouldEqual, "XyZ789")

		_, err = parseEmbed("")
		So(err, ShouldNotBeNil)
	})
}

func TestDecryptPrimitives(t *testing.T) {
	Convey("Given the shuffle", t, func() {
		shuffled := shuffle(charset, "some key")

		Convey("Then it is a deterministic permutation of the charset", func() {
			So(shuffled, ShouldHaveLength, charsetSize)
			So(string(shuffle(charset, "some key")), ShouldEqual, string(shuffled))

			seen := make(map[byte]bool)
			for _, c := range shuffled {
				seen[c] = true
			}
			So(seen, ShouldHaveLength, charsetSize)
		})
	})

	Convey("Given the columnar transposition", t, func() {
		Convey("Then columns are filled in key order and read by rows", func() {
			So(string(columnar([]byte("abcdef"), "ba")), ShouldEqual, "daebfc")
			So(string(columnar([]byte("abcde"), "ab")), ShouldEqual, "adbec ")
		})

		Convey("Then an empty key leaves the input unchanged", func() {
			So(string(columnar([]byte("abc"), "")), ShouldEqual, "abc")
		})
	})

	Convey("Given the key generator", t, func() {
		key := keygen("megacloud-key-from-the-index", "clientKey123")

		Convey("Then the key is printable", func() {
			for _, c := range []byte(key) {
				So(c, ShouldBeBetweenOrEqual, byte(charsetStart), byte(charsetStart+charsetSize-1))
			}
		})

		Convey("Then short inputs are interleaved whole", func() {
			So(len(key), ShouldEqual, len("megacloud-key-from-the-index")+2*len("clientKey123"))
			So(keygen("megacloud-key-from-the-index", "clientKey123"), ShouldEqual, key)
		})
	})

	Convey("Given an empty payload", t, func() {
		_, err := decrypt("", "client", "mega")
		So(err, ShouldEqual, errMalformed)
	})

	Convey("Given a payload that is not base64", t, func() {
		_, err := decrypt("!!!", "client", "mega")
		So(err, ShouldNotBeNil)
	})
}

func TestResolve(t *testing.T) {
	Convey("Given an embed host serving plain sources", t, func() {
		var sourcesQuery string

		mux := http.NewServeMux()
		mux.HandleFunc("/embed-2/v3/e-1/XyZ", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><head><meta name="_gg_fb" content="clientKey1"></head></html>`))
		})
		mux.HandleFunc("/embed-2/v3/e-1/getSources", func(w http.ResponseWriter, r *http.Request) {
			sourcesQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{
				"sources": [{"file": "https://cdn.example/master.m3u8", "type": "hls"}],
				"tracks": [
					{"file": "https://cdn.example/en.vtt", "label": "English", "kind": "captions"},
					{"file": "https://cdn.example/thumbs.vtt", "kind": "thumbnails"}
				],
				"encrypted": false
			}`))
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		e := New(Options{Name: "MegaCloud", MainURL: "https://megacloud.blog", Client: server.Client()})

		var (
			links     []*link.Link
			subtitles []link.Subtitle
		)

		err := e.Resolve(context.Background(), server.URL+"/embed-2/v3/e-1/XyZ?k=1", "",
			func(l *link.Link) { links = append(links, l) },
			func(s link.Subtitle) { subtitles = append(subtitles, s) },
		)

		Convey("Then the sources endpoint is called with the client key", func() {
			So(err, ShouldBeNil)
			So(sourcesQuery, ShouldEqual, "id=XyZ&_k=clientKey1")
		})

		Convey("Then the stream is emitted as an HLS link", func() {
			So(links, ShouldHaveLength, 1)
			So(links[0].URL(), ShouldEqual, "https://cdn.example/master.m3u8")
			So(links[0].Type(), ShouldEqual, link.HLSPlaylist)
			So(links[0].Referer(), ShouldEqual, "https://megacloud.blog/")
			So(links[0].Quality(), ShouldEqual, int(link.Unknown))
		})

		Convey("Then thumbnails are not emitted as subtitles", func() {
			So(subtitles, ShouldResemble, []link.Subtitle{{Language: "English", URL: "https://cdn.example/en.vtt"}})
		})
	})

	Convey("Given an embed host serving encrypted sources", t, func() {
		keyRequests := 0

		mux := http.NewServeMux()
		mux.HandleFunc("/embed-2/v3/e-1/XyZ", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html><script nonce="clientKey2"></script></html>`))
		})
		mux.HandleFunc("/embed-2/v3/e-1/getSources", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"sources": "bm90IHJlYWxseSBlbmNyeXB0ZWQ=", "tracks": [], "encrypted": true}`))
		})
		mux.HandleFunc("/keys.json", func(w http.ResponseWriter, r *http.Request) {
			keyRequests++
			_, _ = w.Write([]byte(`{"mega": "megaKey"}`))
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		e := New(Options{Name: "MegaCloud", MainURL: "https://megacloud.blog", Client: server.Client(), KeysURL: server.URL + "/keys.json"})

		Convey("When the payload does not decrypt", func() {
			for i := 0; i < 2; i++ {
				err := e.Resolve(context.Background(), server.URL+"/embed-2/v3/e-1/XyZ", "", func(*link.Link) {}, func(link.Subtitle) {})
				So(err, ShouldNotBeNil)
				So(strings.Contains(err.Error(), "MegaCloud"), ShouldBeTrue)
			}

			Convey("Then the published key is fetched only once", func() {
				So(keyRequests, ShouldEqual, 1)
			})
		})
	})
}

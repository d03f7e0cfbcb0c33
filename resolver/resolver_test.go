package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anisan-cli/vidresolve/extractor"
	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/link"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

type recordingExtractor struct {
	extractor.Base
	calls   []string
	err     error
	onCall  func(ctx context.Context)
	results int
}

func (r *recordingExtractor) Resolve(ctx context.Context, url, _ string, onLink extractor.LinkFunc, onSubtitle extractor.SubtitleFunc) error {
	r.calls = append(r.calls, url)
	if r.onCall != nil {
		r.onCall(ctx)
	}

	for i := 0; i < r.results; i++ {
		onLink(link.New(r.Name(), fmt.Sprint(i), url+"/video.m3u8"))
	}
	onSubtitle(link.Subtitle{Language: "English", URL: url + "/en.vtt"})

	return r.err
}

func newExtractor(name, mainURL string) *recordingExtractor {
	return &recordingExtractor{Base: extractor.Base{ExtractorName: name, ExtractorMainURL: mainURL}, results: 1}
}

type recordingLogger struct {
	errs []error
}

func (l *recordingLogger) LogError(err error) {
	l.errs = append(l.errs, err)
}

type countingSimilarity struct {
	calls  int
	scores map[string]int
}

func (s *countingSimilarity) PartialRatio(a, _ string) int {
	s.calls++
	return s.scores[a]
}

type fakeUnshortener struct {
	target string
	err    error
	calls  int
}

func (f *fakeUnshortener) IsShortLink(url string) bool {
	return url == "https://bit.ly/x"
}

func (f *fakeUnshortener) Unshorten(context.Context, string) (string, error) {
	f.calls++
	return f.target, f.err
}

func collect() (*[]*link.Link, *[]link.Subtitle, extractor.LinkFunc, extractor.SubtitleFunc) {
	var links []*link.Link
	var subs []link.Subtitle

	return &links, &subs,
		func(l *link.Link) { links = append(links, l) },
		func(s link.Subtitle) { subs = append(subs, s) }
}

func TestKey(t *testing.T) {
	Convey("Given urls to compare", t, func() {
		So(Key("https://www.Example.com/x"), ShouldEqual, "example.com/x")
		So(Key("//www.example.com"), ShouldEqual, "example.com")
		So(Key("https://example.com"), ShouldEqual, "example.com")
		So(Key("http://example.com"), ShouldEqual, "http://example.com")
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	Convey("Given three extractors owning the same domain", t, func() {
		reg := registry.New()
		a := newExtractor("A", "https://example.com")
		b := newExtractor("B", "https://example.com")
		c := newExtractor("C", "https://www.example.com")
		reg.Register(a)
		reg.Register(b)
		reg.Register(c)

		logger := &recordingLogger{}
		engine := New(reg, WithLogger(logger))

		Convey("When resolving a url of that domain", func() {
			links, subs, onLink, onSub := collect()
			matched, err := engine.Resolve(ctx, "https://example.com/e/1", "", onLink, onSub)

			Convey("Then only the last registered extractor runs", func() {
				So(err, ShouldBeNil)
				So(matched, ShouldBeTrue)
				So(c.calls, ShouldResemble, []string{"https://example.com/e/1"})
				So(a.calls, ShouldBeEmpty)
				So(b.calls, ShouldBeEmpty)
			})

			Convey("Then its results are streamed to the callbacks", func() {
				So(*links, ShouldHaveLength, 1)
				So((*links)[0].Source(), ShouldEqual, "C")
				So(*subs, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given an exact match whose extractor fails", t, func() {
		reg := registry.New()
		mirror := newExtractor("Mirror", "https://failing.com")
		failing := newExtractor("Failing", "https://failing.net")
		failing.err = errors.New("page layout changed")
		failing.results = 0
		reg.Register(mirror)
		reg.Register(failing)

		logger := &recordingLogger{}
		similarity := &countingSimilarity{scores: map[string]int{"https://failing.com": 100}}
		engine := New(reg, WithLogger(logger), WithSimilarity(similarity))

		links, _, onLink, onSub := collect()
		matched, err := engine.Resolve(ctx, "https://failing.net/e/1", "", onLink, onSub)

		Convey("Then the url is still matched", func() {
			So(err, ShouldBeNil)
			So(matched, ShouldBeTrue)
			So(*links, ShouldBeEmpty)
		})

		Convey("Then the failure is logged", func() {
			So(logger.errs, ShouldHaveLength, 1)
			So(logger.errs[0].Error(), ShouldContainSubstring, "page layout changed")
		})

		Convey("Then the mirror phase never runs", func() {
			So(similarity.calls, ShouldEqual, 0)
			So(mirror.calls, ShouldBeEmpty)
		})
	})

	Convey("Given extractors on other domains", t, func() {
		reg := registry.New()
		far := newExtractor("Far", "https://unrelated.org")
		near := newExtractor("Near", "https://example.com")
		reg.Register(near)
		reg.Register(far)

		engine := New(reg, WithLogger(&recordingLogger{}))

		Convey("When the url is on a mirror of one of them", func() {
			matched, err := engine.Resolve(ctx, "https://example.net/e/1", "", func(*link.Link) {}, func(link.Subtitle) {})

			Convey("Then the similar one runs", func() {
				So(err, ShouldBeNil)
				So(matched, ShouldBeTrue)
				So(near.calls, ShouldHaveLength, 1)
				So(far.calls, ShouldBeEmpty)
			})

			Convey("Then the match is reported as a mirror", func() {
				m, ok := engine.Match("https://example.net/e/1")
				So(ok, ShouldBeTrue)
				So(m.Phase, ShouldEqual, Mirror)
				So(m.Score, ShouldBeGreaterThan, DefaultThreshold)
			})
		})

		Convey("When the url is on a domain nobody owns", func() {
			matched, err := engine.Resolve(ctx, "https://zzz.qqq/xyz", "", func(*link.Link) {}, func(link.Subtitle) {})

			Convey("Then nothing runs and nothing fails", func() {
				So(err, ShouldBeNil)
				So(matched, ShouldBeFalse)
				So(near.calls, ShouldBeEmpty)
				So(far.calls, ShouldBeEmpty)
			})
		})
	})

	Convey("Given scores around the threshold", t, func() {
		reg := registry.New()
		exactly := newExtractor("Exactly", "https://exactly.example")
		first := newExtractor("First", "https://first.example")
		better := newExtractor("Better", "https://better.example")
		reg.Register(better)
		reg.Register(first)
		reg.Register(exactly)

		similarity := &countingSimilarity{scores: map[string]int{
			"https://exactly.example": 80,
			"https://first.example":   81,
			"https://better.example":  99,
		}}
		engine := New(reg, WithSimilarity(similarity), WithLogger(&recordingLogger{}))

		matched, err := engine.Resolve(ctx, "https://other.site/v", "", func(*link.Link) {}, func(link.Subtitle) {})

		Convey("Then a score of exactly 80 is not enough", func() {
			So(exactly.calls, ShouldBeEmpty)
		})

		Convey("Then the first candidate above it wins over better ones", func() {
			So(err, ShouldBeNil)
			So(matched, ShouldBeTrue)
			So(first.calls, ShouldHaveLength, 1)
			So(better.calls, ShouldBeEmpty)
		})

		Convey("Then a custom threshold changes the outcome", func() {
			strict := New(reg, WithSimilarity(similarity), WithThreshold(90))
			m, ok := strict.Match("https://other.site/v")
			So(ok, ShouldBeTrue)
			So(m.Descriptor.Name, ShouldEqual, "Better")
		})
	})

	Convey("Given an extractor that gets cancelled", t, func() {
		reg := registry.New()
		slow := newExtractor("Slow", "https://slow.com")
		reg.Register(slow)

		logger := &recordingLogger{}
		engine := New(reg, WithLogger(logger))

		cctx, cancel := context.WithCancel(ctx)
		slow.onCall = func(context.Context) { cancel() }
		slow.err = fmt.Errorf("fetch: %w", context.Canceled)

		matched, err := engine.Resolve(cctx, "https://slow.com/e/1", "", func(*link.Link) {}, func(link.Subtitle) {})

		Convey("Then the cancellation propagates instead of being logged", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(matched, ShouldBeFalse)
			So(logger.errs, ShouldBeEmpty)
		})
	})

	Convey("Given an already cancelled context", t, func() {
		reg := registry.New()
		ex := newExtractor("Any", "https://bit.ly")
		reg.Register(ex)

		unshortener := &fakeUnshortener{target: "https://bit.ly/y"}
		engine := New(reg, WithUnshortener(unshortener))

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		matched, err := engine.Resolve(cctx, "https://bit.ly/x", "", func(*link.Link) {}, func(link.Subtitle) {})

		So(err, ShouldEqual, context.Canceled)
		So(matched, ShouldBeFalse)
		So(unshortener.calls, ShouldEqual, 0)
		So(ex.calls, ShouldBeEmpty)
	})

	Convey("Given a short link", t, func() {
		reg := registry.New()
		target := newExtractor("Target", "https://target.com")
		reg.Register(target)

		logger := &recordingLogger{}
		unshortener := &fakeUnshortener{target: "https://target.com/e/42"}
		engine := New(reg, WithUnshortener(unshortener), WithLogger(logger), WithSimilarity(&countingSimilarity{}))

		Convey("When it unshortens", func() {
			matched, err := engine.Resolve(ctx, "https://bit.ly/x", "", func(*link.Link) {}, func(link.Subtitle) {})

			Convey("Then the target url is matched and passed on", func() {
				So(err, ShouldBeNil)
				So(matched, ShouldBeTrue)
				So(target.calls, ShouldResemble, []string{"https://target.com/e/42"})
			})
		})

		Convey("When unshortening fails", func() {
			unshortener.err = errors.New("dns failure")
			matched, err := engine.Resolve(ctx, "https://bit.ly/x", "", func(*link.Link) {}, func(link.Subtitle) {})

			Convey("Then the original url is used and the failure logged", func() {
				So(err, ShouldBeNil)
				So(matched, ShouldBeFalse)
				So(logger.errs, ShouldHaveLength, 1)
			})
		})

		Convey("When unshortening is cancelled", func() {
			unshortener.err = fmt.Errorf("head: %w", context.DeadlineExceeded)
			matched, err := engine.Resolve(ctx, "https://bit.ly/x", "", func(*link.Link) {}, func(link.Subtitle) {})

			Convey("Then resolution stops", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(matched, ShouldBeFalse)
				So(target.calls, ShouldBeEmpty)
				So(logger.errs, ShouldBeEmpty)
			})
		})

		Convey("When the url is not short", func() {
			matched, err := engine.Resolve(ctx, "https://target.com/e/1", "", func(*link.Link) {}, func(link.Subtitle) {})

			So(err, ShouldBeNil)
			So(matched, ShouldBeTrue)
			So(unshortener.calls, ShouldEqual, 0)
		})
	})
}

func TestResolveLogsRequest(t *testing.T) {
	Convey("Given json logs and no injected logger", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsJson, true)
		So(log.Setup(), ShouldBeNil)
		defer func() {
			viper.Reset()
			So(log.Setup(), ShouldBeNil)
		}()

		reg := registry.New()
		broken := newExtractor("Broken", "https://broken.com")
		broken.err = errors.New("page layout changed")
		reg.Register(broken)

		matched, err := New(reg).Resolve(context.Background(), "https://broken.com/e/1", "", func(*link.Link) {}, func(link.Subtitle) {})
		So(err, ShouldBeNil)
		So(matched, ShouldBeTrue)

		Convey("Then the handler failure is logged with the request id and url", func() {
			logs, err := filesystem.API().ReadFile(filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log"))
			So(err, ShouldBeNil)

			line, ok := lo.Find(strings.Split(string(logs), "\n"), func(line string) bool {
				return strings.Contains(line, "page layout changed")
			})
			So(ok, ShouldBeTrue)
			So(line, ShouldContainSubstring, `"request":"`)
			So(line, ShouldContainSubstring, `"url":"https://broken.com/e/1"`)
			So(line, ShouldContainSubstring, `"level":"error"`)
		})
	})
}

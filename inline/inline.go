package inline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/anisan-cli/vidresolve/extractor"
	"github.com/anisan-cli/vidresolve/link"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/network"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/anisan-cli/vidresolve/resolver"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

// ErrNoMatch is returned when no extractor claims the url.
var ErrNoMatch = errors.New("no extractor matched the url")

// ErrNotStreamable is returned by Play runs when every remaining link is a
// torrent or magnet.
var ErrNotStreamable = errors.New("no streamable link to play")

// Run resolves options.URL and writes the links found to options.Out.
// Links are ordered best quality first. Links of equal quality keep
// the order the extractor produced them in.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	if options.Engine == nil {
		options.Engine = resolver.New(registry.Default)
	}

	var (
		mu        sync.Mutex
		links     []*link.Link
		subtitles []link.Subtitle
	)

	matched, err := options.Engine.Resolve(ctx, options.URL, options.Referer,
		func(l *link.Link) {
			mu.Lock()
			defer mu.Unlock()
			links = append(links, l)
		},
		func(s link.Subtitle) {
			mu.Lock()
			defer mu.Unlock()
			subtitles = append(subtitles, s)
		},
	)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if !matched {
		if options.Json {
			if err := writeJson(options.Out, newOutput(options.URL, false, nil, nil)); err != nil {
				return err
			}
		}

		return ErrNoMatch
	}

	links = sortLinks(links)
	if filter, ok := options.LinkFilter.Get(); ok {
		links = filter(links)
	}

	if options.ProbeSize {
		if err := probe(ctx, links, options.Prober); err != nil {
			return err
		}
	}

	if options.Json {
		err = writeJson(options.Out, newOutput(options.URL, true, links, subtitles))
	} else {
		err = writePlain(options.Out, links, subtitles)
	}

	if err != nil {
		return err
	}

	if play, ok := options.Play.Get(); ok {
		if len(links) == 0 {
			return extractor.ErrNoSources
		}

		best, ok := lo.Find(links, func(l *link.Link) bool {
			return l.Type().Streamable()
		})
		if !ok {
			return ErrNotStreamable
		}

		return play(best)
	}

	return nil
}

// sortLinks orders links by quality priority, highest first.
func sortLinks(links []*link.Link) []*link.Link {
	slices.SortStableFunc(links, func(a, b *link.Link) int {
		return cmp.Compare(link.Priority(b.Quality()), link.Priority(a.Quality()))
	})

	return links
}

// probe resolves the size of video links. Failures are logged and skipped.
func probe(ctx context.Context, links []*link.Link, prober link.Prober) error {
	if prober == nil {
		prober = network.Prober{Client: network.Client}
	}

	for _, l := range links {
		_, err := l.Size(ctx, prober)
		switch {
		case err == nil, errors.Is(err, link.ErrSizeUnsupported):
		case extractor.IsCancellation(err):
			return err
		default:
			log.Warnf("size of %s: %v", l.URL(), err)
		}
	}

	return nil
}

func writePlain(out io.Writer, links []*link.Link, subtitles []link.Subtitle) error {
	for _, l := range links {
		urls := []string{l.URL()}
		if l.IsPlaylist() {
			urls = urls[:0]
			for _, item := range l.Playlist() {
				urls = append(urls, item.URL)
			}
		}

		for _, u := range urls {
			line := fmt.Sprintf("%s\t%s\t%s", link.QualityName(l.Quality()), l.Type(), u)
			if size, ok := l.CachedSize().Get(); ok {
				line += "\t" + humanize.Bytes(uint64(size))
			}

			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
	}

	for _, s := range subtitles {
		if _, err := fmt.Fprintf(out, "subtitle\t%s\t%s\n", s.Language, s.URL); err != nil {
			return err
		}
	}

	return nil
}

// Package inline provides the non-interactive mode: resolve one url and print what was found.
package inline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/anisan-cli/vidresolve/link"
	"github.com/anisan-cli/vidresolve/resolver"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// LinkFilter narrows the links of a resolution. It receives them best first.
type LinkFilter func([]*link.Link) []*link.Link

type Options struct {
	Out     io.Writer
	Engine  *resolver.Engine
	URL     string
	Referer string
	Json    bool
	// ProbeSize fetches the byte size of video links.
	ProbeSize  bool
	Prober     link.Prober
	LinkFilter mo.Option[LinkFilter]
	// Play is called with the best remaining link after printing.
	Play mo.Option[func(*link.Link) error]
}

// ParseLinkFilter builds a filter from its kind and argument.
// Kinds: all, best, worst, quality <label>, type <format>, index <n>.
func ParseLinkFilter(kind, value string) (LinkFilter, error) {
	switch kind {
	case "all":
		return func(links []*link.Link) []*link.Link {
			return links
		}, nil
	case "best":
		return func(links []*link.Link) []*link.Link {
			if len(links) == 0 {
				return links
			}
			return links[:1]
		}, nil
	case "worst":
		return func(links []*link.Link) []*link.Link {
			if len(links) == 0 {
				return links
			}
			return links[len(links)-1:]
		}, nil
	case "quality":
		if value == "" {
			return nil, fmt.Errorf("quality filter needs a label, e.g. 1080p")
		}

		want := link.ParseQuality(value)
		return func(links []*link.Link) []*link.Link {
			return lo.Filter(links, func(l *link.Link, _ int) bool {
				return l.Quality() == want
			})
		}, nil
	case "type":
		format, err := link.ParseFormatType(value)
		if err != nil {
			return nil, err
		}

		return func(links []*link.Link) []*link.Link {
			return lo.Filter(links, func(l *link.Link, _ int) bool {
				return l.Type() == format
			})
		}, nil
	case "index":
		idx, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", value)
		}

		return func(links []*link.Link) []*link.Link {
			if uint64(len(links)) <= idx {
				return []*link.Link{}
			}
			return []*link.Link{links[idx]}
		}, nil
	default:
		return nil, fmt.Errorf("unknown link filter: %s", kind)
	}
}

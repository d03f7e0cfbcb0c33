package inline

import (
	"encoding/json"
	"io"

	"github.com/anisan-cli/vidresolve/link"
	"github.com/samber/lo"
)

// Link is a resolved link as printed by the json output.
type Link struct {
	link.Wire
	// Size in bytes, present when probing was requested and succeeded.
	Size *int64 `json:"size,omitempty"`
}

type Output struct {
	// URL is the url that was resolved, as given.
	URL string `json:"url"`
	// Matched reports whether an extractor claimed the url.
	Matched   bool            `json:"matched"`
	Links     []*Link         `json:"links"`
	Subtitles []link.Subtitle `json:"subtitles"`
}

func newOutput(url string, matched bool, links []*link.Link, subtitles []link.Subtitle) *Output {
	if subtitles == nil {
		subtitles = []link.Subtitle{}
	}

	return &Output{
		URL:     url,
		Matched: matched,
		Links: lo.Map(links, func(l *link.Link, _ int) *Link {
			out := &Link{Wire: l.Wire()}
			if size, ok := l.CachedSize().Get(); ok {
				out.Size = &size
			}
			return out
		}),
		Subtitles: subtitles,
	}
}

func writeJson(out io.Writer, output *Output) error {
	data, err := json.Marshal(output)
	if err != nil {
		return err
	}

	_, err = out.Write(append(data, '\n'))
	return err
}

// Package extractor defines the contract every site handler implements.
package extractor

import (
	"context"

	"github.com/anisan-cli/vidresolve/link"
)

// LinkFunc receives every link an extractor discovers.
type LinkFunc func(*link.Link)

// SubtitleFunc receives every subtitle an extractor discovers.
type SubtitleFunc func(link.Subtitle)

// Identity is the static part of an extractor.
type Identity interface {
	// Name is the display name, also used for lookups.
	Name() string
	// MainURL is the site the extractor owns, e.g. https://example.com.
	MainURL() string
	// RequiresReferer reports whether callers must pass a referer.
	RequiresReferer() bool
}

// Extractor turns a url owned by a site into playable links.
//
// Resolve calls onLink once per discovered variant and onSubtitle once per
// discovered subtitle track. It blocks while performing network calls and
// must return the context error, unwrapped or wrapped, when cancelled.
type Extractor interface {
	Identity
	Resolve(ctx context.Context, url, referer string, onLink LinkFunc, onSubtitle SubtitleFunc) error
}

// Lister is the older, list-returning form of an extractor.
type Lister interface {
	Identity
	List(ctx context.Context, url, referer string) ([]*link.Link, error)
}

// URLBuilder is implemented by extractors that build embed urls out of ids.
type URLBuilder interface {
	BuildFullURL(id string) string
}

// FromLister adapts a Lister to an Extractor.
func FromLister(l Lister) Extractor {
	return &listerAdapter{Lister: l}
}

type listerAdapter struct {
	Lister
}

func (a *listerAdapter) Resolve(ctx context.Context, url, referer string, onLink LinkFunc, _ SubtitleFunc) error {
	links, err := a.List(ctx, url, referer)
	if err != nil {
		return err
	}

	for _, l := range links {
		if l != nil {
			onLink(l)
		}
	}

	return nil
}

// BuildFullURL turns an id into a url using the extractor's own builder.
// Extractors that do not build urls get the id back.
func BuildFullURL(e Identity, id string) string {
	if builder, ok := e.(URLBuilder); ok {
		return builder.BuildFullURL(id)
	}

	return id
}

// Base implements Identity and is meant to be embedded.
type Base struct {
	ExtractorName    string
	ExtractorMainURL string
	NeedsReferer     bool
}

func (b *Base) Name() string { return b.ExtractorName }

func (b *Base) MainURL() string { return b.ExtractorMainURL }

func (b *Base) RequiresReferer() bool { return b.NeedsReferer }

// FixURL resolves u against the base's main url.
func (b *Base) FixURL(u string) string {
	return FixURL(b, u)
}

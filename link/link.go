package link

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/mo"
)

// PlaylistItem is a single segment of a playlist link.
type PlaylistItem struct {
	URL                  string `json:"url"`
	DurationMicroseconds int64  `json:"durationMicroseconds"`
}

// Duration returns the item duration.
func (p PlaylistItem) Duration() time.Duration {
	return time.Duration(p.DurationMicroseconds) * time.Microsecond
}

// Link is a resolved, playable resource.
//
// A link is either plain, a playlist (ordered items, empty url) or DRM
// protected (carries a DRM record). It is not modified after construction,
// except for the lazily resolved byte size.
type Link struct {
	source        string
	name          string
	url           string
	referer       string
	quality       int
	headers       map[string]string
	extractorData string
	typ           FormatType
	playlist      []PlaylistItem
	drm           mo.Option[DRM]

	sizeMu sync.Mutex
	size   mo.Option[int64]
}

// Option customizes a link during construction.
type Option func(*Link)

// WithReferer sets the referer the resource must be requested with.
func WithReferer(referer string) Option {
	return func(l *Link) {
		l.referer = referer
	}
}

// WithQuality sets the numeric quality value.
func WithQuality(quality int) Option {
	return func(l *Link) {
		l.quality = quality
	}
}

// WithHeaders sets additional request headers. The map is copied.
func WithHeaders(headers map[string]string) Option {
	return func(l *Link) {
		l.headers = maps.Clone(headers)
	}
}

// WithExtractorData attaches opaque data for later use by the owning extractor.
func WithExtractorData(data string) Option {
	return func(l *Link) {
		l.extractorData = data
	}
}

// WithType overrides the inferred format type.
func WithType(t FormatType) Option {
	return func(l *Link) {
		l.typ = t
	}
}

func build(source, name, url string, typ FormatType, opts []Option) *Link {
	l := &Link{
		source:  source,
		name:    name,
		url:     url,
		quality: int(Unknown),
		typ:     typ,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.headers == nil {
		l.headers = make(map[string]string)
	}

	return l
}

// New creates a plain link. The type is inferred from the url unless WithType is given.
func New(source, name, url string, opts ...Option) *Link {
	return build(source, name, url, InferType(url), opts)
}

// NewPlaylist creates a playlist link. Its url is always empty.
func NewPlaylist(source, name string, items []PlaylistItem, opts ...Option) *Link {
	l := build(source, name, "", Video, opts)
	l.url = ""
	l.playlist = slices.Clone(items)
	if l.playlist == nil {
		l.playlist = []PlaylistItem{}
	}

	return l
}

// NewDRM creates a DRM protected link.
func NewDRM(source, name, url string, drm DRM, opts ...Option) *Link {
	l := build(source, name, url, InferType(url), opts)
	l.drm = mo.Some(drm.normalized())
	return l
}

// Source is the display name of the extractor that produced the link.
func (l *Link) Source() string { return l.source }

// Name is the display title.
func (l *Link) Name() string { return l.name }

// URL of the resource. Empty for playlist links.
func (l *Link) URL() string { return l.url }

func (l *Link) Referer() string { return l.referer }

func (l *Link) Quality() int { return l.quality }

func (l *Link) ExtractorData() string { return l.extractorData }

func (l *Link) Type() FormatType { return l.typ }

// Headers returns a copy of the headers the link was created with.
func (l *Link) Headers() map[string]string {
	return maps.Clone(l.headers)
}

// IsPlaylist reports whether the link is a playlist.
func (l *Link) IsPlaylist() bool {
	return l.playlist != nil
}

// Playlist returns a copy of the playlist items.
func (l *Link) Playlist() []PlaylistItem {
	return slices.Clone(l.playlist)
}

// DRM returns the DRM record, if any.
func (l *Link) DRM() mo.Option[DRM] {
	if d, ok := l.drm.Get(); ok {
		d.KeyRequestParameters = maps.Clone(d.KeyRequestParameters)
		return mo.Some(d)
	}

	return mo.None[DRM]()
}

// IsDRM reports whether the link is DRM protected.
func (l *Link) IsDRM() bool {
	return l.drm.IsPresent()
}

// EffectiveHeaders returns the headers a player should send.
// The referer is added under "referer" unless it is blank or a header
// with that name, in any case, already exists.
func (l *Link) EffectiveHeaders() map[string]string {
	headers := maps.Clone(l.headers)
	if strings.TrimSpace(l.referer) == "" {
		return headers
	}

	for k := range headers {
		if strings.EqualFold(k, "referer") {
			return headers
		}
	}

	headers["referer"] = l.referer
	return headers
}

// String returns a short human readable description.
func (l *Link) String() string {
	return l.source + " " + l.name + " " + QualityName(l.quality)
}

// Wire is the serialized form of a link handed to players.
type Wire struct {
	Source        string            `json:"source"`
	Name          string            `json:"name"`
	URL           string            `json:"url"`
	Referer       string            `json:"referer"`
	Quality       int               `json:"quality"`
	Headers       map[string]string `json:"headers"`
	ExtractorData *string           `json:"extractorData"`
	Type          FormatType        `json:"type" jsonschema:"type=string,enum=VIDEO,enum=M3U8,enum=DASH,enum=TORRENT,enum=MAGNET"`
	Playlist      []PlaylistItem    `json:"playlist,omitempty"`
	*WireDRM
}

// WireDRM holds the DRM fields of a serialized link.
type WireDRM struct {
	KeyID                *string           `json:"keyId"`
	Key                  *string           `json:"key"`
	KeySystem            string            `json:"keySystem"`
	KeyType              string            `json:"keyType"`
	KeyRequestParameters map[string]string `json:"keyRequestParameters"`
	LicenseURL           *string           `json:"licenseUrl"`
}

// Wire converts the link to its serialized form.
func (l *Link) Wire() Wire {
	w := Wire{
		Source:   l.source,
		Name:     l.name,
		URL:      l.url,
		Referer:  l.referer,
		Quality:  l.quality,
		Headers:  l.Headers(),
		Type:     l.typ,
		Playlist: l.Playlist(),
	}

	if l.extractorData != "" {
		data := l.extractorData
		w.ExtractorData = &data
	}

	if d, ok := l.DRM().Get(); ok {
		w.WireDRM = &WireDRM{
			KeyID:                optionalString(d.KeyID),
			Key:                  optionalString(d.Key),
			KeySystem:            d.KeySystem,
			KeyType:              d.KeyType,
			KeyRequestParameters: d.KeyRequestParameters,
			LicenseURL:           optionalString(d.LicenseURL),
		}
	}

	return w
}

func (l *Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Wire())
}

// Package megacloud extracts HLS streams and subtitles from MegaCloud style embeds.
package megacloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/anisan-cli/vidresolve/extractor"
	"github.com/anisan-cli/vidresolve/link"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/network"
)

// KeysURL publishes the current decryption keys.
const KeysURL = "https://raw.githubusercontent.com/yogesh-hacker/MegacloudKeys/refs/heads/main/keys.json"

var embedPrefix = regexp.MustCompile(`^embed-\d+$`)

// Options configure an Extractor.
type Options struct {
	Name    string
	MainURL string
	// Client defaults to network.Client.
	Client *http.Client
	// KeysURL defaults to KeysURL.
	KeysURL string
}

// Extractor resolves embed urls of the form https://host/embed-N/v3/e-1/{id}.
type Extractor struct {
	extractor.Base

	client  *http.Client
	keysURL string

	keyMu sync.Mutex
	key   string
}

// New creates an Extractor.
func New(options Options) *Extractor {
	e := &Extractor{
		Base: extractor.Base{
			ExtractorName:    options.Name,
			ExtractorMainURL: options.MainURL,
		},
		client:  options.Client,
		keysURL: options.KeysURL,
	}

	if e.keysURL == "" {
		e.keysURL = KeysURL
	}

	return e
}

type sourcesResponse struct {
	Sources   json.RawMessage `json:"sources"`
	Tracks    []track         `json:"tracks"`
	Encrypted bool            `json:"encrypted"`
}

type track struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type source struct {
	File string `json:"file"`
	Type string `json:"type"`
}

type embed struct {
	origin string
	prefix string
	id     string
}

func (e embed) page() string {
	return fmt.Sprintf("%s/%s/v3/e-1/%s?z=", e.origin, e.prefix, e.id)
}

func (e embed) sources(clientKey string) string {
	return fmt.Sprintf("%s/%s/v3/e-1/getSources?id=%s&_k=%s", e.origin, e.prefix, url.QueryEscape(e.id), url.QueryEscape(clientKey))
}

// parseEmbed splits an embed url into origin, embed prefix and source id.
func parseEmbed(rawURL string) (embed, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return embed{}, err
	}

	if u.Host == "" {
		return embed{}, fmt.Errorf("no host in %q", rawURL)
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	e := embed{
		origin: scheme + "://" + u.Host,
		prefix: parts[0],
		id:     parts[len(parts)-1],
	}

	if !embedPrefix.MatchString(e.prefix) {
		e.prefix = "embed-2"
	}

	if e.id == "" || len(parts) < 2 {
		return embed{}, fmt.Errorf("no source id in %q", rawURL)
	}

	return e, nil
}

func (e *Extractor) httpClient() *http.Client {
	if e.client != nil {
		return e.client
	}

	return network.Client
}

// Resolve fetches the embed page, reads its client key and emits the sources it unlocks.
func (e *Extractor) Resolve(ctx context.Context, rawURL, referer string, onLink extractor.LinkFunc, onSubtitle extractor.SubtitleFunc) error {
	target, err := parseEmbed(rawURL)
	if err != nil {
		return extractor.Errorf(e, rawURL, "parse embed url: %w", err)
	}

	if referer == "" {
		referer = e.MainURL() + "/"
	}

	page, err := network.GetString(ctx, e.httpClient(), target.page(), map[string]string{
		"Referer": referer,
		"Accept":  "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	if err != nil {
		return extractor.Errorf(e, rawURL, "fetch embed page: %w", err)
	}

	key, err := clientKey(page)
	if err != nil {
		return extractor.Errorf(e, rawURL, "%w", err)
	}

	body, err := network.GetString(ctx, e.httpClient(), target.sources(key), map[string]string{
		"Referer":          rawURL,
		"Accept":           "application/json",
		"X-Requested-With": "XMLHttpRequest",
	})
	if err != nil {
		return extractor.Errorf(e, rawURL, "fetch sources: %w", err)
	}

	var resp sourcesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return extractor.Errorf(e, rawURL, "parse sources: %w", err)
	}

	sources, err := e.sources(ctx, resp, key)
	if err != nil {
		return extractor.Errorf(e, rawURL, "%w", err)
	}

	if len(sources) == 0 {
		return extractor.Errorf(e, rawURL, "%w", extractor.ErrNoSources)
	}

	streamReferer := e.MainURL() + "/"
	for _, s := range sources {
		if s.File == "" {
			continue
		}

		typ := link.InferType(s.File)
		if strings.EqualFold(s.Type, "hls") {
			typ = link.HLSPlaylist
		}

		onLink(link.New(e.Name(), e.Name(), s.File,
			link.WithReferer(streamReferer),
			link.WithType(typ),
		))
	}

	for _, t := range resp.Tracks {
		if t.File == "" || strings.EqualFold(t.Kind, "thumbnails") {
			continue
		}

		onSubtitle(link.Subtitle{Language: t.Label, URL: t.File})
	}

	return nil
}

func (e *Extractor) sources(ctx context.Context, resp sourcesResponse, clientKey string) ([]source, error) {
	var sources []source

	if !resp.Encrypted {
		if err := json.Unmarshal(resp.Sources, &sources); err != nil {
			return nil, fmt.Errorf("parse plain sources: %w", err)
		}

		return sources, nil
	}

	var encrypted string
	if err := json.Unmarshal(resp.Sources, &encrypted); err != nil {
		return nil, fmt.Errorf("parse encrypted sources: %w", err)
	}

	megacloudKey, err := e.megacloudKey(ctx)
	if err != nil {
		return nil, err
	}

	plain, err := decrypt(encrypted, clientKey, megacloudKey)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(plain), &sources); err != nil {
		return nil, fmt.Errorf("parse decrypted sources: %w", err)
	}

	return sources, nil
}

// megacloudKey fetches the published key once per extractor.
func (e *Extractor) megacloudKey(ctx context.Context) (string, error) {
	e.keyMu.Lock()
	defer e.keyMu.Unlock()

	if e.key != "" {
		return e.key, nil
	}

	body, err := network.GetString(ctx, e.httpClient(), e.keysURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch keys: %w", err)
	}

	var keys map[string]string
	if err := json.Unmarshal([]byte(body), &keys); err != nil {
		return "", fmt.Errorf("parse keys: %w", err)
	}

	key, ok := keys["mega"]
	if !ok || key == "" {
		return "", fmt.Errorf("no mega key in %s", e.keysURL)
	}

	log.Debugf("megacloud: fetched decryption key")
	e.key = key
	return key, nil
}

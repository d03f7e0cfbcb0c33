// Package unshorten follows the redirect chain of short links to their target.
package unshorten

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/network"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/metafates/gache"
	"github.com/spf13/viper"
)

// ErrTooManyRedirects is returned when a chain is longer than the configured maximum.
var ErrTooManyRedirects = errors.New("too many redirects")

// Hosts are the link shorteners recognized out of the box.
var Hosts = []string{
	"adf.ly",
	"bit.ly",
	"bl.ink",
	"buff.ly",
	"cutt.ly",
	"goo.gl",
	"is.gd",
	"ow.ly",
	"ouo.io",
	"rb.gy",
	"rebrand.ly",
	"shorturl.at",
	"t.co",
	"t.ly",
	"tiny.cc",
	"tinyurl.com",
	"v.gd",
}

// Options configure an Unshortener.
type Options struct {
	// Client sends the requests. Its redirect policy is ignored.
	Client *http.Client
	// ExtraHosts are treated as shorteners in addition to Hosts.
	ExtraHosts []string
	// MaxRedirects bounds the chain. Defaults to 10.
	MaxRedirects int
	// CachePath enables a disk cache of resolved links when not empty.
	CachePath string
	// CacheLifetime is how long the cache file stays valid.
	CacheLifetime time.Duration
}

// Unshortener resolves short links.
type Unshortener struct {
	client       *http.Client
	hosts        map[string]struct{}
	maxRedirects int

	mu    sync.Mutex
	cache *gache.Cache[map[string]string]
}

// New creates an Unshortener.
func New(options Options) *Unshortener {
	client := options.Client
	if client == nil {
		client = network.Client
	}

	// redirects are followed by hand so every hop can be inspected
	noFollow := *client
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	u := &Unshortener{
		client:       &noFollow,
		hosts:        make(map[string]struct{}),
		maxRedirects: options.MaxRedirects,
	}

	if u.maxRedirects <= 0 {
		u.maxRedirects = 10
	}

	for _, host := range append(slices.Clone(Hosts), options.ExtraHosts...) {
		u.hosts[strings.ToLower(host)] = struct{}{}
	}

	if options.CachePath != "" {
		u.cache = gache.New[map[string]string](&gache.Options{
			Path:       options.CachePath,
			Lifetime:   options.CacheLifetime,
			FileSystem: &filesystem.GacheFs{},
		})
	}

	return u
}

// FromConfig creates an Unshortener from the unshorten.* keys.
func FromConfig() *Unshortener {
	return New(Options{
		Client:        network.Client,
		ExtraHosts:    viper.GetStringSlice(key.UnshortenExtraHosts),
		MaxRedirects:  viper.GetInt(key.UnshortenMaxRedirects),
		CachePath:     where.Unshortened(),
		CacheLifetime: time.Duration(viper.GetInt(key.UnshortenCacheLifetime)) * time.Hour,
	})
}

// IsShortLink reports whether u points to a known link shortener.
func (u *Unshortener) IsShortLink(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	_, ok := u.hosts[host]
	return ok
}

// Unshorten follows redirects starting at rawURL and returns the last url.
func (u *Unshortener) Unshorten(ctx context.Context, rawURL string) (string, error) {
	if cached, ok := u.cached(rawURL); ok {
		return cached, nil
	}

	current, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}

	for hop := 0; ; hop++ {
		if hop > u.maxRedirects {
			return "", fmt.Errorf("%s: %w", rawURL, ErrTooManyRedirects)
		}

		next, err := u.next(ctx, current.String())
		if err != nil {
			return "", err
		}

		if next == "" {
			break
		}

		target, err := current.Parse(next)
		if err != nil {
			return "", fmt.Errorf("parse location %q: %w", next, err)
		}

		log.Debugf("unshorten: %s -> %s", current, target)
		current = target
	}

	resolved := current.String()
	u.remember(rawURL, resolved)
	return resolved, nil
}

// next returns the Location of a redirect response, or "" when the
// response is not a redirect.
func (u *Unshortener) next(ctx context.Context, rawURL string) (string, error) {
	resp, err := u.send(ctx, http.MethodHead, rawURL)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		resp, err = u.send(ctx, http.MethodGet, rawURL)
		if err != nil {
			return "", err
		}
	}

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return resp.Header.Get("Location"), nil
	default:
		return "", nil
	}
}

func (u *Unshortener) send(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := network.NewRequest(ctx, method, rawURL, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}

	resp.Body.Close()
	return resp, nil
}

func (u *Unshortener) cached(rawURL string) (string, bool) {
	if u.cache == nil {
		return "", false
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	entries, expired, err := u.cache.Get()
	if err != nil || expired || entries == nil {
		return "", false
	}

	resolved, ok := entries[rawURL]
	return resolved, ok
}

func (u *Unshortener) remember(rawURL, resolved string) {
	if u.cache == nil {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	entries, expired, err := u.cache.Get()
	if err != nil || expired || entries == nil {
		entries = make(map[string]string)
	}

	entries[rawURL] = resolved
	if err := u.cache.Set(entries); err != nil {
		log.Warnf("unshorten: cache %s: %v", rawURL, err)
	}
}

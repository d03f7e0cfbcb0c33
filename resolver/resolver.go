// Package resolver dispatches a url to the extractor that owns it.
//
// Matching runs in two phases over the registry, last registered entry
// first. Phase one looks for an extractor whose main url is a prefix of
// the url. Only when none exists, phase two takes the first extractor
// whose main url is similar enough to the url, which catches sites that
// moved to a mirror domain.
package resolver

import (
	"context"
	"regexp"
	"strings"

	"github.com/anisan-cli/vidresolve/extractor"
	"github.com/anisan-cli/vidresolve/fuzzy"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/registry"
	"github.com/google/uuid"
)

// DefaultThreshold is the similarity a mirror domain must exceed.
const DefaultThreshold = 80

var schemeStrip = regexp.MustCompile(`^(https:|)//(www\.|)`)

// Unshortener expands short links.
type Unshortener interface {
	IsShortLink(url string) bool
	Unshorten(ctx context.Context, url string) (string, error)
}

// Similarity scores two strings from 0 to 100.
type Similarity interface {
	PartialRatio(a, b string) int
}

// Logger receives swallowed failures.
type Logger interface {
	LogError(err error)
}

// Phase tells how a url was matched.
type Phase int

const (
	// Exact means the main url was a prefix of the url.
	Exact Phase = iota + 1
	// Mirror means the main url was similar to the url.
	Mirror
)

func (p Phase) String() string {
	switch p {
	case Exact:
		return "exact"
	case Mirror:
		return "mirror"
	default:
		return "none"
	}
}

// Match is the outcome of matching a url against the registry.
type Match struct {
	Descriptor *registry.Descriptor
	Phase      Phase
	// Score is the similarity for mirror matches.
	Score int
}

// Engine resolves urls with the extractors of a registry.
type Engine struct {
	registry    *registry.Registry
	unshortener Unshortener
	similarity  Similarity
	logger      Logger
	threshold   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithUnshortener sets the short link collaborator. Without one urls are used as given.
func WithUnshortener(u Unshortener) Option {
	return func(e *Engine) {
		e.unshortener = u
	}
}

// WithSimilarity replaces the mirror similarity score.
func WithSimilarity(s Similarity) Option {
	return func(e *Engine) {
		e.similarity = s
	}
}

// WithLogger sets where swallowed failures go. By default they are logged
// with the request id and url of the resolution they belong to.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithThreshold sets the score a mirror match must exceed.
func WithThreshold(threshold int) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// New creates an engine over reg.
func New(reg *registry.Registry, options ...Option) *Engine {
	e := &Engine{
		registry:   reg,
		similarity: fuzzy.Levenshtein{},
		threshold:  DefaultThreshold,
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Key strips a leading https: or scheme-less // and www. from a lowercased url.
func Key(url string) string {
	return schemeStrip.ReplaceAllString(strings.ToLower(url), "")
}

// Match finds the extractor that owns url without invoking it.
func (e *Engine) Match(url string) (Match, bool) {
	candidates := e.registry.Priority()

	key := Key(url)
	for _, d := range candidates {
		if strings.HasPrefix(key, Key(d.MainURL)) {
			return Match{Descriptor: d, Phase: Exact, Score: 100}, true
		}
	}

	for _, d := range candidates {
		if score := e.similarity.PartialRatio(d.MainURL, url); score > e.threshold {
			return Match{Descriptor: d, Phase: Mirror, Score: score}, true
		}
	}

	return Match{}, false
}

// Resolve finds the extractor that owns url and runs it, streaming its
// results to onLink and onSubtitle.
//
// It reports whether an extractor matched. A matched extractor that fails
// still counts as a match; its failure is logged. The only error returned
// is the context's, when resolution was cancelled or timed out.
func (e *Engine) Resolve(ctx context.Context, url, referer string, onLink extractor.LinkFunc, onSubtitle extractor.SubtitleFunc) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	trace := log.WithFields(log.Fields{"request": uuid.NewString(), "url": url})

	failures := e.failures(trace)

	resolved, err := e.unshorten(ctx, url, failures)
	if err != nil {
		return false, err
	}

	if resolved != url {
		trace = trace.WithField("resolved", resolved)
		trace.Debugf("unshortened")
	}

	match, ok := e.Match(resolved)
	if !ok {
		trace.Infof("no extractor matched")
		return false, nil
	}

	trace.Infof("matched %s (%s, score %d)", match.Descriptor.Name, match.Phase, match.Score)

	handler := extractor.Safe(match.Descriptor.Handler, failures.LogError)
	if err := handler.Resolve(ctx, resolved, referer, onLink, onSubtitle); err != nil {
		return false, err
	}

	return true, nil
}

// unshorten returns the target of a short link. Failures other than
// cancellation are logged and the url is returned unchanged.
func (e *Engine) unshorten(ctx context.Context, url string, failures Logger) (string, error) {
	if e.unshortener == nil || !e.unshortener.IsShortLink(url) {
		return url, nil
	}

	resolved, err := e.unshortener.Unshorten(ctx, url)
	if err == nil {
		if resolved == "" {
			return url, nil
		}

		return resolved, nil
	}

	if extractor.IsCancellation(err) {
		return "", err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	failures.LogError(err)
	return url, nil
}

func (e *Engine) failures(trace *log.Entry) Logger {
	if e.logger != nil {
		return e.logger
	}

	return trace
}

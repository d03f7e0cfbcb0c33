package megacloud

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoClientKey is returned when the embed page hides its key in a way we do not know.
var ErrNoClientKey = errors.New("client key not found")

var (
	alnum        = regexp.MustCompile(`^[0-9a-zA-Z]+$`)
	commentKey   = regexp.MustCompile(`<!--\s*_is_th:([0-9a-zA-Z]+)\s*-->`)
	lkDBObject   = regexp.MustCompile(`window\._lk_db\s*=\s*\{([^}]*)\}`)
	lkDBPart     = regexp.MustCompile(`([xyz]):\s*["']([0-9a-zA-Z]+)["']`)
	xyWSVariable = regexp.MustCompile("window\\._xy_ws\\s*=\\s*['\"`]([0-9a-zA-Z]+)['\"`]")
)

// keyFinder looks for the client key in one of the places the page may hide it.
type keyFinder func(doc *goquery.Document, html string) (string, bool)

// finders are tried in order; the page only uses one method per response.
var finders = []keyFinder{
	attr(`meta[name="_gg_fb"]`, "content"),
	submatch(commentKey),
	lkDB,
	attr("div[data-dpi]", "data-dpi"),
	attr("script[nonce]", "nonce"),
	submatch(xyWSVariable),
}

func attr(selector, name string) keyFinder {
	return func(doc *goquery.Document, _ string) (string, bool) {
		value, ok := doc.Find(selector).First().Attr(name)
		if !ok || !alnum.MatchString(value) {
			return "", false
		}

		return value, true
	}
}

func submatch(re *regexp.Regexp) keyFinder {
	return func(_ *goquery.Document, html string) (string, bool) {
		groups := re.FindStringSubmatch(html)
		if groups == nil {
			return "", false
		}

		return groups[1], true
	}
}

// lkDB joins the three parts of window._lk_db = {x: .., y: .., z: ..} in x, y, z order.
func lkDB(_ *goquery.Document, html string) (string, bool) {
	object := lkDBObject.FindStringSubmatch(html)
	if object == nil {
		return "", false
	}

	parts := make(map[string]string, 3)
	for _, part := range lkDBPart.FindAllStringSubmatch(object[1], -1) {
		parts[part[1]] = part[2]
	}

	var key strings.Builder
	for _, name := range []string{"x", "y", "z"} {
		part, ok := parts[name]
		if !ok {
			return "", false
		}

		key.WriteString(part)
	}

	return key.String(), true
}

// clientKey extracts the obfuscated client key from an embed page.
func clientKey(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, find := range finders {
		if key, ok := find(doc, html); ok {
			return key, nil
		}
	}

	return "", ErrNoClientKey
}

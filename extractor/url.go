package extractor

import (
	"regexp"
	"strings"
)

var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// FixURL resolves u against the extractor's main url.
//
// Urls with a scheme and JSON payloads are returned unchanged.
// Scheme relative urls get https, absolute paths get the main url.
func FixURL(e interface{ MainURL() string }, u string) string {
	switch {
	case u == "":
		return ""
	case strings.HasPrefix(u, `{"`), schemeRegex.MatchString(u):
		return u
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "/"):
		return e.MainURL() + u
	default:
		return e.MainURL() + "/" + u
	}
}

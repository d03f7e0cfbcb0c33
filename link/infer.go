package link

import (
	"net/url"
	"strings"
)

// InferType guesses the format of a link from its url.
// It never fails: urls that cannot be parsed, such as ones with bad
// escapes, are matched on the raw string up to the query or fragment.
func InferType(rawURL string) FormatType {
	var path string
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	} else if !strings.HasPrefix(rawURL, "magnet:") {
		path, _, _ = strings.Cut(rawURL, "?")
		path, _, _ = strings.Cut(path, "#")
	}

	switch {
	case strings.HasSuffix(path, ".m3u8"):
		return HLSPlaylist
	case strings.HasSuffix(path, ".mpd"):
		return DASHManifest
	case strings.HasSuffix(path, ".torrent"):
		return Torrent
	case strings.HasPrefix(rawURL, "magnet:"):
		return Magnet
	default:
		return Video
	}
}

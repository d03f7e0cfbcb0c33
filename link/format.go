// Package link defines the normalized media link model produced by extractors.
package link

import (
	"fmt"
	"strings"
)

// FormatType describes how a player is expected to fetch a link.
type FormatType int

const (
	// Video is a single progressive file, usually mp4.
	Video FormatType = iota
	// HLSPlaylist is an m3u8 playlist.
	HLSPlaylist
	// DASHManifest is an mpd manifest.
	DASHManifest
	// Torrent is a .torrent file. Players cannot stream it.
	Torrent
	// Magnet is a magnet uri. Players cannot stream it.
	Magnet
)

var formatNames = map[FormatType]string{
	Video:        "VIDEO",
	HLSPlaylist:  "M3U8",
	DASHManifest: "DASH",
	Torrent:      "TORRENT",
	Magnet:       "MAGNET",
}

var formatMIMEs = map[FormatType]string{
	Video:        "video/mp4",
	HLSPlaylist:  "application/x-mpegURL",
	DASHManifest: "application/dash+xml",
	Torrent:      "application/x-bittorrent",
	Magnet:       "application/x-bittorrent",
}

// FormatTypes lists every known format in declaration order.
var FormatTypes = []FormatType{Video, HLSPlaylist, DASHManifest, Torrent, Magnet}

// MIME returns the mime type associated with the format.
func (t FormatType) MIME() string {
	if mime, ok := formatMIMEs[t]; ok {
		return mime
	}

	return formatMIMEs[Video]
}

// Streamable reports whether downstream players can stream the format.
func (t FormatType) Streamable() bool {
	return t != Torrent && t != Magnet
}

func (t FormatType) String() string {
	if name, ok := formatNames[t]; ok {
		return name
	}

	return fmt.Sprintf("FormatType(%d)", int(t))
}

// ParseFormatType parses the textual form of a format, case-insensitively.
func ParseFormatType(s string) (FormatType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for t, name := range formatNames {
		if name == s {
			return t, nil
		}
	}

	// common aliases used by scripts
	switch s {
	case "HLS":
		return HLSPlaylist, nil
	case "MPD":
		return DASHManifest, nil
	case "MP4":
		return Video, nil
	}

	return Video, fmt.Errorf("unknown format type %q", s)
}

func (t FormatType) MarshalText() ([]byte, error) {
	if _, ok := formatNames[t]; !ok {
		return nil, fmt.Errorf("unknown format type %d", int(t))
	}

	return []byte(t.String()), nil
}

func (t *FormatType) UnmarshalText(text []byte) error {
	parsed, err := ParseFormatType(string(text))
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

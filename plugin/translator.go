package plugin

import (
	"fmt"
	"strings"

	"github.com/anisan-cli/vidresolve/link"
	"github.com/samber/lo"
	"github.com/samber/mo"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	switch val.Type() {
	case lua.LTString, lua.LTNumber:
		return val.String()
	default:
		return ""
	}
}

func getOption(table *lua.LTable, key string) mo.Option[string] {
	return mo.EmptyableToOption(getString(table, key))
}

func getTable(table *lua.LTable, key string) (*lua.LTable, bool) {
	t, ok := table.RawGetString(key).(*lua.LTable)
	return t, ok
}

// getStringMap reads a table of string keys to string values, e.g. headers.
func getStringMap(table *lua.LTable, key string) map[string]string {
	t, ok := getTable(table, key)
	if !ok {
		return nil
	}

	m := make(map[string]string)
	t.ForEach(func(k, v lua.LValue) {
		if k.Type() == lua.LTString {
			m[k.String()] = v.String()
		}
	})

	return m
}

// getList returns the tables stored in the array part of a table.
func getList(table *lua.LTable) []*lua.LTable {
	var list []*lua.LTable
	for i := 1; i <= table.Len(); i++ {
		if t, ok := table.RawGetInt(i).(*lua.LTable); ok {
			list = append(list, t)
		}
	}

	return list
}

// qualityOf accepts either a number or a label such as "1080p".
func qualityOf(table *lua.LTable) int {
	val := table.RawGetString("quality")
	switch v := val.(type) {
	case lua.LNumber:
		return int(v)
	case lua.LString:
		return link.ParseQuality(string(v))
	default:
		return int(link.Unknown)
	}
}

func playlistFromTable(table *lua.LTable) []link.PlaylistItem {
	return lo.FilterMap(getList(table), func(item *lua.LTable, _ int) (link.PlaylistItem, bool) {
		url := getString(item, "url")
		if url == "" {
			return link.PlaylistItem{}, false
		}

		var duration int64
		if n, ok := item.RawGetString("duration").(lua.LNumber); ok {
			duration = int64(n)
		}

		return link.PlaylistItem{URL: url, DurationMicroseconds: duration}, true
	})
}

func drmFromTable(table *lua.LTable) link.DRM {
	system := getString(table, "system")
	if system == "" {
		system = link.ClearKey
	}

	return link.DRM{
		KeyID:                getOption(table, "key_id"),
		Key:                  getOption(table, "key"),
		KeySystem:            system,
		KeyType:              getString(table, "key_type"),
		KeyRequestParameters: getStringMap(table, "params"),
		LicenseURL:           getOption(table, "license_url"),
	}
}

// linkFromTable converts a link table returned by a plugin. Missing names
// default to source, the plugin name.
func linkFromTable(table *lua.LTable, source string) (*link.Link, error) {
	name := getString(table, "name")
	if name == "" {
		name = source
	}

	opts := []link.Option{
		link.WithReferer(getString(table, "referer")),
		link.WithQuality(qualityOf(table)),
		link.WithHeaders(getStringMap(table, "headers")),
		link.WithExtractorData(getString(table, "extractor_data")),
	}

	if typ := getString(table, "type"); typ != "" {
		parsed, err := link.ParseFormatType(typ)
		if err != nil {
			return nil, err
		}

		opts = append(opts, link.WithType(parsed))
	}

	if playlist, ok := getTable(table, "playlist"); ok {
		return link.NewPlaylist(source, name, playlistFromTable(playlist), opts...), nil
	}

	url := getString(table, "url")
	if url == "" {
		return nil, fmt.Errorf("link %q must have url or playlist", name)
	}

	if drm, ok := getTable(table, "drm"); ok {
		return link.NewDRM(source, name, url, drmFromTable(drm), opts...), nil
	}

	return link.New(source, name, url, opts...), nil
}

func subtitleFromTable(table *lua.LTable) (link.Subtitle, error) {
	url := getString(table, "url")
	if url == "" {
		return link.Subtitle{}, fmt.Errorf("subtitle must have url")
	}

	language := getString(table, "language")
	if language == "" {
		language = getString(table, "lang")
	}

	return link.Subtitle{
		Language: strings.TrimSpace(language),
		URL:      url,
		Headers:  getStringMap(table, "headers"),
	}, nil
}

// linksFromList converts every entry of a list of link tables, skipping and
// collecting the entries that fail.
func linksFromList(list *lua.LTable, source string) ([]*link.Link, []error) {
	var (
		links []*link.Link
		errs  []error
	)

	for i, item := range getList(list) {
		l, err := linkFromTable(item, source)
		if err != nil {
			errs = append(errs, fmt.Errorf("link %d: %w", i+1, err))
			continue
		}

		links = append(links, l)
	}

	return links, errs
}

func subtitlesFromList(list *lua.LTable) ([]link.Subtitle, []error) {
	var (
		subtitles []link.Subtitle
		errs      []error
	)

	for i, item := range getList(list) {
		s, err := subtitleFromTable(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("subtitle %d: %w", i+1, err))
			continue
		}

		subtitles = append(subtitles, s)
	}

	return subtitles, errs
}

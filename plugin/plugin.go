// Package plugin loads extractors written in Lua from the plugins directory.
//
// A plugin declares the globals Name, MainUrl and optionally RequiresReferer,
// and implements either GetUrl(url, referer), returning a table with links
// and subtitles, or the older GetLinks(url, referer), returning a list of links.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anisan-cli/vidresolve/extractor"
	"github.com/anisan-cli/vidresolve/link"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// Extension of plugin files.
const Extension = ".lua"

// Globals and entry points a plugin defines.
const (
	NameGlobal            = "Name"
	MainURLGlobal         = "MainUrl"
	RequiresRefererGlobal = "RequiresReferer"
	GetURLFn              = "GetUrl"
	GetLinksFn            = "GetLinks"
)

// Plugin is an extractor backed by a Lua state. Calls into the state are
// serialized.
type Plugin struct {
	extractor.Base

	path      string
	streaming bool

	mu    sync.Mutex
	state *lua.LState
}

// Load runs the script at path and validates the globals it defines.
func Load(path string) (*Plugin, error) {
	L := lua.NewState()
	libs.Preload(L)
	registerHTTP(L)
	registerHelpers(L)

	if err := run(L, path); err != nil {
		L.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	p := &Plugin{
		Base: extractor.Base{
			ExtractorName:    lua.LVAsString(L.GetGlobal(NameGlobal)),
			ExtractorMainURL: lua.LVAsString(L.GetGlobal(MainURLGlobal)),
			NeedsReferer:     lua.LVAsBool(L.GetGlobal(RequiresRefererGlobal)),
		},
		path:  path,
		state: L,
	}

	if p.ExtractorName == "" {
		p.ExtractorName = util.FileStem(path)
	}

	if p.ExtractorMainURL == "" {
		L.Close()
		return nil, fmt.Errorf("%s: global %s is required", path, MainURLGlobal)
	}

	switch {
	case L.GetGlobal(GetURLFn).Type() == lua.LTFunction:
		p.streaming = true
	case L.GetGlobal(GetLinksFn).Type() == lua.LTFunction:
	default:
		L.Close()
		return nil, fmt.Errorf("%s: function %s or %s is required", path, GetURLFn, GetLinksFn)
	}

	return p, nil
}

// Path is the file the plugin was loaded from.
func (p *Plugin) Path() string {
	return p.path
}

// Extractor returns p in the form the registry expects: p itself for
// GetUrl plugins, adapted from List for GetLinks plugins.
func (p *Plugin) Extractor() extractor.Extractor {
	if p.streaming {
		return p
	}

	return extractor.FromLister(p)
}

// Close releases the Lua state.
func (p *Plugin) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Close()
}

// call invokes a global function with url and referer and hands its single
// result to convert while the state is still locked.
func (p *Plugin) call(ctx context.Context, fn, url, referer string, convert func(lua.LValue) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.SetContext(ctx)
	defer p.state.RemoveContext()

	err := p.state.CallByParam(lua.P{
		Fn:      p.state.GetGlobal(fn),
		NRet:    1,
		Protect: true,
	}, lua.LString(url), lua.LString(referer))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return extractor.Errorf(p, url, "%s: %w", fn, err)
	}

	ret := p.state.Get(-1)
	p.state.Pop(1)

	return convert(ret)
}

func (p *Plugin) logSkipped(url string, errs []error) {
	if len(errs) == 0 {
		return
	}

	log.WithFields(log.Fields{"plugin": p.Name(), "url": url}).
		Warnf("skipped %d malformed entries: %v", len(errs), errors.Join(errs...))
}

// Resolve calls GetUrl.
func (p *Plugin) Resolve(ctx context.Context, url, referer string, onLink extractor.LinkFunc, onSubtitle extractor.SubtitleFunc) error {
	if !p.streaming {
		return extractor.FromLister(p).Resolve(ctx, url, referer, onLink, onSubtitle)
	}

	var (
		links     []*link.Link
		subtitles []link.Subtitle
	)

	err := p.call(ctx, GetURLFn, url, referer, func(ret lua.LValue) error {
		if ret == lua.LNil {
			return nil
		}

		result, ok := ret.(*lua.LTable)
		if !ok {
			return extractor.Errorf(p, url, "%s returned %s, expected table", GetURLFn, ret.Type())
		}

		var skipped []error
		if list, ok := getTable(result, "links"); ok {
			var errs []error
			links, errs = linksFromList(list, p.Name())
			skipped = append(skipped, errs...)
		}

		if list, ok := getTable(result, "subtitles"); ok {
			var errs []error
			subtitles, errs = subtitlesFromList(list)
			skipped = append(skipped, errs...)
		}

		p.logSkipped(url, skipped)
		return nil
	})
	if err != nil {
		return err
	}

	for _, l := range links {
		onLink(l)
	}

	for _, s := range subtitles {
		onSubtitle(s)
	}

	return nil
}

// List calls GetLinks.
func (p *Plugin) List(ctx context.Context, url, referer string) ([]*link.Link, error) {
	var links []*link.Link

	err := p.call(ctx, GetLinksFn, url, referer, func(ret lua.LValue) error {
		if ret == lua.LNil {
			return nil
		}

		list, ok := ret.(*lua.LTable)
		if !ok {
			return extractor.Errorf(p, url, "%s returned %s, expected table", GetLinksFn, ret.Type())
		}

		var skipped []error
		links, skipped = linksFromList(list, p.Name())
		p.logSkipped(url, skipped)
		return nil
	})

	return links, err
}

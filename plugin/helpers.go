package plugin

import (
	"github.com/anisan-cli/vidresolve/extractor"
	"github.com/anisan-cli/vidresolve/jsunpack"
	"github.com/anisan-cli/vidresolve/link"
	lua "github.com/yuin/gopher-lua"
)

// mainURL reads the MainUrl global at call time, so fix_url follows scripts
// that compute it.
type mainURL struct {
	L *lua.LState
}

func (m mainURL) MainURL() string {
	return lua.LVAsString(m.L.GetGlobal(MainURLGlobal))
}

func registerHelpers(L *lua.LState) {
	L.SetGlobal("unpack_js", L.NewFunction(func(L *lua.LState) int {
		code, err := jsunpack.Unpack(contextOf(L), L.CheckString(1))
		if err != nil {
			L.RaiseError("unpack_js: %s", err.Error())
			return 0
		}

		L.Push(lua.LString(code))
		return 1
	}))

	L.SetGlobal("unpack_js_all", L.NewFunction(func(L *lua.LState) int {
		scripts, err := jsunpack.UnpackAll(contextOf(L), L.CheckString(1))
		if err != nil {
			L.RaiseError("unpack_js_all: %s", err.Error())
			return 0
		}

		list := L.NewTable()
		for _, code := range scripts {
			list.Append(lua.LString(code))
		}

		L.Push(list)
		return 1
	}))

	L.SetGlobal("fix_url", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(extractor.FixURL(mainURL{L: L}, L.CheckString(1))))
		return 1
	}))

	L.SetGlobal("infer_type", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(link.InferType(L.CheckString(1)).String()))
		return 1
	}))

	L.SetGlobal("parse_quality", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(link.ParseQuality(L.OptString(1, ""))))
		return 1
	}))
}

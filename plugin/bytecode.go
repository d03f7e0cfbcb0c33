package plugin

import (
	"bytes"
	"crypto/sha256"
	"sync"

	"github.com/anisan-cli/vidresolve/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

type compiled struct {
	sum   [sha256.Size]byte
	proto *lua.FunctionProto
}

// bytecode holds compiled prototypes by script path. An entry is reused
// only while the file content is unchanged, so updated plugins recompile.
var bytecode sync.Map

// compile returns the prototype of the script at path, compiling it on first use.
func compile(path string) (*lua.FunctionProto, error) {
	source, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(source)
	if cached, ok := bytecode.Load(path); ok && cached.(compiled).sum == sum {
		return cached.(compiled).proto, nil
	}

	chunk, err := parse.Parse(bytes.NewReader(source), path)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	bytecode.Store(path, compiled{sum: sum, proto: proto})
	return proto, nil
}

// run executes the script at path in L.
func run(L *lua.LState, path string) error {
	proto, err := compile(path)
	if err != nil {
		return err
	}

	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}

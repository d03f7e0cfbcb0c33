// Package extractors bundles the extractors compiled into the binary.
package extractors

import (
	"github.com/anisan-cli/vidresolve/extractor"
	"github.com/anisan-cli/vidresolve/extractors/megacloud"
	"github.com/anisan-cli/vidresolve/registry"
)

// Builtins returns a fresh instance of every built-in extractor, in registration order.
func Builtins() []extractor.Extractor {
	return []extractor.Extractor{
		megacloud.New(megacloud.Options{Name: "VidCloud", MainURL: "https://videostr.net"}),
		megacloud.New(megacloud.Options{Name: "MegaCloud", MainURL: "https://megacloud.blog"}),
	}
}

// RegisterBuiltins registers the built-in extractors with reg.
// Call it before loading plugins so plugins take priority.
func RegisterBuiltins(reg *registry.Registry) {
	for _, e := range Builtins() {
		reg.Register(e)
	}
}

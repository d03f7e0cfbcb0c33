package registry

import "github.com/anisan-cli/vidresolve/extractor"

// Default is the process wide registry, filled once at startup.
var Default = New()

// Register adds e to the default registry.
func Register(e extractor.Extractor) *Descriptor {
	return Default.Register(e)
}

// Lookup finds an extractor in the default registry.
func Lookup(name string) (*Descriptor, bool) {
	return Default.Lookup(name)
}

// RequiresReferer reports whether the named extractor in the default registry needs a referer.
func RequiresReferer(name string) bool {
	return Default.RequiresReferer(name)
}

// Package registry keeps the ordered set of known extractors.
//
// Entries are appended at startup. Later entries take priority when
// matching urls, so plugins registered after the built-ins can take
// over their domains.
package registry

import (
	"sync"

	"github.com/anisan-cli/vidresolve/extractor"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// Descriptor is a registry entry.
type Descriptor struct {
	Name            string
	MainURL         string
	RequiresReferer bool
	// SourcePlugin is the path of the plugin that registered the entry.
	// Built-ins have none.
	SourcePlugin mo.Option[string]
	Handler      extractor.Extractor
}

// IsPlugin reports whether the entry came from a plugin.
func (d *Descriptor) IsPlugin() bool {
	return d.SourcePlugin.IsPresent()
}

func (d *Descriptor) String() string {
	return d.Name
}

// Registry is an append-only list of descriptors.
// Reads are safe to run concurrently; registration is meant to happen
// before resolution starts.
type Registry struct {
	mu      sync.RWMutex
	entries []*Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register appends an extractor and returns its descriptor.
func (r *Registry) Register(e extractor.Extractor) *Descriptor {
	d := &Descriptor{
		Name:            e.Name(),
		MainURL:         e.MainURL(),
		RequiresReferer: e.RequiresReferer(),
		SourcePlugin:    mo.None[string](),
		Handler:         e,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, d)
	return d
}

// RegisterPlugin appends an extractor tagged with the plugin it came from.
func (r *Registry) RegisterPlugin(plugin string, e extractor.Extractor) *Descriptor {
	d := r.Register(e)

	r.mu.Lock()
	defer r.mu.Unlock()

	d.SourcePlugin = mo.Some(plugin)
	return d
}

// TagPlugin marks every untagged entry as coming from plugin and
// returns how many entries were tagged.
func (r *Registry) TagPlugin(plugin string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tagged int
	for _, d := range r.entries {
		if d.SourcePlugin.IsAbsent() {
			d.SourcePlugin = mo.Some(plugin)
			tagged++
		}
	}

	return tagged
}

// Lookup returns the first entry with the given name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Find(r.entries, func(d *Descriptor) bool {
		return d.Name == name
	})
}

// LookupOrFirst is Lookup that falls back to the first registered entry
// when no entry has the given name. It returns nil only when empty.
func (r *Registry) LookupOrFirst(name string) *Descriptor {
	if d, ok := r.Lookup(name); ok {
		return d
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.entries) == 0 {
		return nil
	}

	return r.entries[0]
}

// RequiresReferer reports whether the named extractor needs a referer.
// Unknown names do not.
func (r *Registry) RequiresReferer(name string) bool {
	d, ok := r.Lookup(name)
	return ok && d.RequiresReferer
}

// All returns the entries in registration order.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.entries)
}

// Priority returns the entries in matching order, last registered first.
func (r *Registry) Priority() []*Descriptor {
	entries := r.All()
	slices.Reverse(entries)
	return entries
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Search returns the entries whose name fuzzily contains query,
// best matches first.
func (r *Registry) Search(query string) []*Descriptor {
	all := r.All()
	names := lo.Map(all, func(d *Descriptor, _ int) string {
		return d.Name
	})

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		return a.Distance - b.Distance
	})

	return lo.Map(ranks, func(rank fuzzy.Rank, _ int) *Descriptor {
		return all[rank.OriginalIndex]
	})
}

// Suggest returns the registered name closest to name.
func (r *Registry) Suggest(name string) mo.Option[string] {
	all := r.All()
	if len(all) == 0 {
		return mo.None[string]()
	}

	closest := lo.MinBy(all, func(a, b *Descriptor) bool {
		return levenshtein.Distance(name, a.Name) < levenshtein.Distance(name, b.Name)
	})

	return mo.Some(closest.Name)
}

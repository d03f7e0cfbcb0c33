// Package constant defines application-level identifiers.
package constant

const (
	// App is the application identifier used for paths, env prefixes and branding.
	App = "vidresolve"

	// Version is the current semantic version.
	Version = "0.3.0"

	// UserAgent is the default User-Agent sent to media hosts.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Repository hosts releases and the default plugin index.
	Repository = "anisan-cli/vidresolve"
)

// Set at build time with -ldflags "-X".
var (
	BuiltAt  string
	BuiltBy  string
	Revision string
)

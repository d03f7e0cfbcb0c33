// Package key defines the configuration keys.
package key

// Logging
const (
	LogsWrite  = "logs.write"
	LogsLevel  = "logs.level"
	LogsJson   = "logs.json"
	LogsMaxAge = "logs.max_age"
)

// CLI behaviour
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Iconography
const (
	IconsVariant = "icons.variant"
)

// Network client
const (
	NetworkTimeout        = "network.timeout"
	NetworkUserAgent      = "network.user_agent"
	NetworkTLSFingerprint = "network.tls_fingerprint"
	NetworkRateLimit      = "network.rate_limit"
	NetworkRateBurst      = "network.rate_burst"
)

// Short link resolution
const (
	UnshortenEnabled       = "unshorten.enabled"
	UnshortenMaxRedirects  = "unshorten.max_redirects"
	UnshortenExtraHosts    = "unshorten.extra_hosts"
	UnshortenCacheLifetime = "unshorten.cache_lifetime"
)

// Resolution
const (
	ResolveTimeout        = "resolve.timeout"
	ResolveFuzzyThreshold = "resolve.fuzzy_threshold"
	ResolveProbeSize      = "resolve.probe_size"
)

// Handing links to players
const (
	OpenWith = "open.with"
)

// Lua plugins
const (
	PluginsEnabled    = "plugins.enabled"
	PluginsRepository = "plugins.repository"
	PluginsDisabled   = "plugins.disabled"
)

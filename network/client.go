// Package network provides the shared HTTP client used by extractors and collaborators.
package network

import (
	"net/http"
	"time"

	"github.com/anisan-cli/vidresolve/key"
	"github.com/spf13/viper"
)

// Client is shared across the application. Setup replaces it with one
// built from the configuration.
var Client = New(Options{Timeout: time.Minute})

// Options describes how a client is built.
type Options struct {
	// Timeout bounds a whole request. Zero means no limit.
	Timeout time.Duration
	// Fingerprint routes https requests through a browser-like TLS handshake.
	Fingerprint bool
	// RateLimit caps requests per second across the client. Zero disables it.
	RateLimit float64
	// Burst is the number of requests allowed above the rate at once.
	Burst int
}

// New builds a client from options.
func New(options Options) *http.Client {
	var transport http.RoundTripper = newTransport()
	if options.Fingerprint {
		transport = &fingerprintTransport{plain: transport}
	}

	if options.RateLimit > 0 {
		transport = newRateLimitedTransport(transport, options.RateLimit, options.Burst)
	}

	return &http.Client{
		Timeout:   options.Timeout,
		Transport: transport,
	}
}

// Setup rebuilds Client from the network.* configuration keys.
func Setup() {
	Client = New(Options{
		Timeout:     time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second,
		Fingerprint: viper.GetBool(key.NetworkTLSFingerprint),
		RateLimit:   viper.GetFloat64(key.NetworkRateLimit),
		Burst:       viper.GetInt(key.NetworkRateBurst),
	})
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

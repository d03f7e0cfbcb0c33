package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// fingerprintTransport sends https requests with a Chrome 120 TLS hello.
// HTTP/2 is tried first; when that fails the request is retried over a
// connection that only advertises HTTP/1.1. Plain http goes to plain.
type fingerprintTransport struct {
	plain http.RoundTripper

	h2Once sync.Once
	h2     *http2.Transport
	h1Once sync.Once
	h1     *http.Transport
}

func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.plain.RoundTrip(req)
	}

	resp, err := t.http2().RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	if ctxErr := req.Context().Err(); ctxErr != nil {
		return nil, ctxErr
	}

	retry := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, fmt.Errorf("h2 request failed and body cannot be replayed: %w", err)
		}

		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		retry.Body = body
	}

	return t.http1().RoundTrip(retry)
}

func (t *fingerprintTransport) http2() *http2.Transport {
	t.h2Once.Do(func() {
		t.h2 = &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialFingerprint(ctx, network, addr, nil)
			},
		}
	})

	return t.h2
}

func (t *fingerprintTransport) http1() *http.Transport {
	t.h1Once.Do(func() {
		t.h1 = &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialFingerprint(ctx, network, addr, []string{"http/1.1"})
			},
			IdleConnTimeout: 30 * time.Second,
		}
	})

	return t.h1
}

// dialFingerprint opens a TLS connection mimicking Chrome 120.
// With nextProtos nil the hello advertises h2 and http/1.1 like Chrome does.
func dialFingerprint(ctx context.Context, network, addr string, nextProtos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: nextProtos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

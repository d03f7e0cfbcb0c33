package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/spf13/viper"
)

// ErrUnknownLength is returned when a server does not report a content length.
var ErrUnknownLength = errors.New("content length unknown")

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Status)
}

// NewRequest creates a request carrying the default user agent and the given headers.
func NewRequest(ctx context.Context, method, url string, headers map[string]string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func userAgent() string {
	if ua := viper.GetString(key.NetworkUserAgent); ua != "" {
		return ua
	}

	return constant.UserAgent
}

// Do sends a request with client and fails on non 2xx responses.
// The caller closes the body.
func Do(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body io.Reader) (*http.Response, error) {
	req, err := NewRequest(ctx, method, url, headers, body)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}

	return resp, nil
}

// Head sends a HEAD request.
func Head(ctx context.Context, client *http.Client, url string, headers map[string]string) (*http.Response, error) {
	resp, err := Do(ctx, client, http.MethodHead, url, headers, nil)
	if err != nil {
		return nil, err
	}

	resp.Body.Close()
	return resp, nil
}

// GetString sends a GET request and returns the body.
func GetString(ctx context.Context, client *http.Client, url string, headers map[string]string) (string, error) {
	resp, err := Do(ctx, client, http.MethodGet, url, headers, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// PostString sends a POST request with a string body and returns the response body.
func PostString(ctx context.Context, client *http.Client, url string, headers map[string]string, body string) (string, error) {
	resp, err := Do(ctx, client, http.MethodPost, url, headers, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// Prober reports content lengths with HEAD requests.
type Prober struct {
	Client *http.Client
}

// ContentLength sends one HEAD request and returns the reported length.
func (p Prober) ContentLength(ctx context.Context, url string, headers map[string]string) (int64, error) {
	client := p.Client
	if client == nil {
		client = Client
	}

	resp, err := Head(ctx, client, url, headers)
	if err != nil {
		return 0, err
	}

	if resp.ContentLength < 0 {
		return 0, ErrUnknownLength
	}

	return resp.ContentLength, nil
}

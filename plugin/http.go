package plugin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/key"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/anisan-cli/vidresolve/network"
	"github.com/anisan-cli/vidresolve/where"
	"github.com/metafates/gache"
	"github.com/spf13/viper"
	lua "github.com/yuin/gopher-lua"
)

// HTTPModule is the global through which plugins reach the fingerprinted client.
//
//	http_tls.get(url [, headers])                            -> body
//	http_tls.request{method, url, headers, body, cache}      -> {status, body, headers}
const HTTPModule = "http_tls"

const responseCacheLifetime = time.Hour

var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

var (
	clientOnce sync.Once
	client     *http.Client
)

func httpClient() *http.Client {
	clientOnce.Do(func() {
		if client != nil {
			return
		}

		client = network.New(network.Options{
			Timeout:     time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second,
			Fingerprint: true,
			RateLimit:   viper.GetFloat64(key.NetworkRateLimit),
			Burst:       viper.GetInt(key.NetworkRateBurst),
		})
	})

	return client
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

var (
	responsesMu sync.Mutex
	responses   *gache.Cache[map[string]cachedResponse]
)

func responseCache() *gache.Cache[map[string]cachedResponse] {
	if responses == nil {
		responses = gache.New[map[string]cachedResponse](&gache.Options{
			Path:       filepath.Join(where.Cache(), "http_tls.json"),
			Lifetime:   responseCacheLifetime,
			FileSystem: &filesystem.GacheFs{},
		})
	}

	return responses
}

func cacheKey(method, url, body string) string {
	sum := sha256.Sum256([]byte(method + " " + url + "\n" + body))
	return hex.EncodeToString(sum[:])
}

func cachedLookup(id string) (cachedResponse, bool) {
	responsesMu.Lock()
	defer responsesMu.Unlock()

	entries, expired, err := responseCache().Get()
	if err != nil || expired {
		return cachedResponse{}, false
	}

	resp, ok := entries[id]
	return resp, ok
}

func cacheStore(id string, resp cachedResponse) error {
	responsesMu.Lock()
	defer responsesMu.Unlock()

	entries, expired, err := responseCache().Get()
	if err != nil || expired || entries == nil {
		entries = make(map[string]cachedResponse)
	}

	entries[id] = resp
	return responseCache().Set(entries)
}

func registerHTTP(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(httpGet))
	L.SetField(mod, "post", L.NewFunction(httpPost))
	L.SetField(mod, "request", L.NewFunction(httpRequest))
	L.SetGlobal(HTTPModule, mod)
}

func contextOf(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func headersOf(table *lua.LTable) map[string]string {
	headers := maps.Clone(defaultHeaders)
	if table == nil {
		return headers
	}

	table.ForEach(func(k, v lua.LValue) {
		headers[k.String()] = v.String()
	})

	return headers
}

func send(ctx context.Context, method, url string, headers map[string]string, body string) (*http.Response, string, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := network.NewRequest(ctx, method, url, headers, reader)
	if err != nil {
		return nil, "", err
	}

	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	return resp, string(raw), nil
}

func httpGet(L *lua.LState) int {
	url := L.CheckString(1)
	headers := headersOf(L.OptTable(2, nil))

	_, body, err := send(contextOf(L), http.MethodGet, url, headers, "")
	if err != nil {
		L.RaiseError("%s.get %s: %s", HTTPModule, url, err.Error())
		return 0
	}

	L.Push(lua.LString(body))
	return 1
}

func httpPost(L *lua.LState) int {
	url := L.CheckString(1)
	body := L.OptString(2, "")
	headers := headersOf(L.OptTable(3, nil))

	raw, err := network.PostString(contextOf(L), httpClient(), url, headers, body)
	if err != nil {
		L.RaiseError("%s.post %s: %s", HTTPModule, url, err.Error())
		return 0
	}

	L.Push(lua.LString(raw))
	return 1
}

func httpRequest(L *lua.LState) int {
	opts := L.CheckTable(1)

	method := strings.ToUpper(getString(opts, "method"))
	if method == "" {
		method = http.MethodGet
	}

	url := getString(opts, "url")
	if url == "" {
		L.ArgError(1, "url is required")
		return 0
	}

	body := getString(opts, "body")
	headersTable, _ := getTable(opts, "headers")
	useCache := lua.LVAsBool(opts.RawGetString("cache"))

	result := L.NewTable()

	id := cacheKey(method, url, body)
	if useCache {
		if cached, ok := cachedLookup(id); ok {
			L.SetField(result, "status", lua.LNumber(cached.Status))
			L.SetField(result, "body", lua.LString(cached.Body))
			L.SetField(result, "headers", L.NewTable())
			L.Push(result)
			return 1
		}
	}

	resp, respBody, err := send(contextOf(L), method, url, headersOf(headersTable), body)
	if err != nil {
		L.RaiseError("%s.request %s: %s", HTTPModule, url, err.Error())
		return 0
	}

	if useCache && resp.StatusCode == http.StatusOK {
		if err := cacheStore(id, cachedResponse{Status: resp.StatusCode, Body: respBody}); err != nil {
			log.Warnf("%s: cache %s: %v", HTTPModule, url, err)
		}
	}

	headers := L.NewTable()
	for name := range resp.Header {
		L.SetField(headers, strings.ToLower(name), lua.LString(resp.Header.Get(name)))
	}

	L.SetField(result, "status", lua.LNumber(resp.StatusCode))
	L.SetField(result, "body", lua.LString(respBody))
	L.SetField(result, "headers", headers)
	L.Push(result)
	return 1
}

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/observability"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a remote mixture document doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for
// mixture document requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Client fetches remote mixture documents over HTTP.
// It handles response caching, retry logic, and common request headers.
type Client struct {
	http       *http.Client
	cache      *Cache
	headers    map[string]string
	attempts   int
	retryDelay time.Duration
}

// NewClient creates a Client with the given cache and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for cache to fetch without response caching, and nil for
// headers if no default headers are needed.
func NewClient(cache *Cache, headers map[string]string) *Client {
	return &Client{
		http:       NewHTTPClient(),
		cache:      cache,
		headers:    headers,
		attempts:   3,
		retryDelay: time.Second,
	}
}

// FetchBytes retrieves the body at url, from cache when fresh.
// If refresh is true, the cache is bypassed and the document is always
// fetched. Fetched bodies are stored under the "bodies:" namespace keyed
// by the full URL.
func (c *Client) FetchBytes(ctx context.Context, rawurl string, refresh bool) ([]byte, error) {
	var bodies *Cache
	if c.cache != nil {
		bodies = c.cache.Namespace("bodies:")
	}
	hooks := observability.Cache()

	if bodies != nil && !refresh {
		var data []byte
		if ok, _ := bodies.Get(rawurl, &data); ok {
			hooks.OnCacheHit(ctx, "http")
			return data, nil
		}
		hooks.OnCacheMiss(ctx, "http")
	}

	var data []byte
	fetch := func() error {
		body, err := c.doRequest(ctx, rawurl)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(body)
		return err
	}
	if err := Retry(ctx, c.attempts, c.retryDelay, fetch); err != nil {
		return nil, err
	}

	if bodies != nil {
		if err := bodies.Set(rawurl, data); err == nil {
			hooks.OnCacheSet(ctx, "http", len(data))
		}
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, rawurl string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := splitURL(rawurl)
	hooks.OnRequest(ctx, http.MethodGet, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		after, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RetryableError{Err: &apperrors.RateLimitedError{RetryAfter: after}}
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func splitURL(rawurl string) (host, path string) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl, ""
	}
	return u.Host, u.Path
}

// ABOUTME: HTTP client for the foraging locations API
// ABOUTME: Retries transient failures and caches list queries with a stale time

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Defaults for a new Client.
const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultTimeout   = 15 * time.Second
	DefaultStaleTime = 30 * time.Second
	DefaultCacheTTL  = 5 * time.Minute
	DefaultRetries   = 2
	DefaultBackoff   = 200 * time.Millisecond
)

// ErrNotFound is matched by a StatusError with code 404.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx API response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api status %d", e.Code)
	}
	return fmt.Sprintf("api status %d: %s", e.Code, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Cache outcomes reported to the observer.
const (
	CacheFresh    = "fresh"
	CacheMiss     = "miss"
	CacheStale    = "stale"
	CacheFallback = "fallback"
)

// Observer is told about every HTTP exchange and cache lookup.
type Observer interface {
	APIRequest(endpoint string, code int, d time.Duration, err error)
	APICache(endpoint, outcome string)
}

// Client talks to the locations API.
type Client struct {
	baseURL   string
	http      *http.Client
	cache     *cache.Cache
	staleTime time.Duration
	retries   int
	backoff   time.Duration
	now       func() time.Time
	logger    *log.Logger
	observer  Observer
	group     singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithStaleTime sets how long a cached query is served without refetching.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) { c.staleTime = d }
}

// WithCacheTTL sets how long a query result is kept at all. A stale entry
// is still returned when its refetch fails.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.cache = cache.New(d, 2*d) }
}

// WithRetry sets the retry count and initial backoff for transient failures.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = backoff
	}
}

// WithClock sets the clock used for staleness.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a client for baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		cache:     cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		staleTime: DefaultStaleTime,
		retries:   DefaultRetries,
		backoff:   DefaultBackoff,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Invalidate drops every cached query.
func (c *Client) Invalidate() {
	c.cache.Flush()
}

type cached struct {
	value     any
	fetchedAt time.Time
}

// query serves key from the cache while fresh, otherwise fetches it once
// per key no matter how many callers ask concurrently. When the fetch fails
// and an older result exists, that result is returned instead of the error.
func (c *Client) query(ctx context.Context, endpoint, key string, fetch func(context.Context) (any, error)) (any, error) {
	var prev *cached
	if v, ok := c.cache.Get(key); ok {
		entry := v.(cached)
		if c.now().Sub(entry.fetchedAt) < c.staleTime {
			c.reportCache(endpoint, CacheFresh)
			return entry.value, nil
		}
		prev = &entry
		c.reportCache(endpoint, CacheStale)
	} else {
		c.reportCache(endpoint, CacheMiss)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Shared by every waiting caller, so one caller cancelling must not
		// fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout())
		defer cancel()
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, cached{value: v, fetchedAt: c.now()})
		return v, nil
	})

	var v any
	var err error
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		if prev != nil && ctx.Err() == nil {
			c.logger.Warn("refetch failed, serving previous data", "endpoint", endpoint, "age", c.now().Sub(prev.fetchedAt), "err", err)
			c.reportCache(endpoint, CacheFallback)
			return prev.value, nil
		}
		return nil, err
	}
	return v, nil
}

func (c *Client) fetchTimeout() time.Duration {
	if c.http != nil && c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return DefaultTimeout
}

func (c *Client) reportCache(endpoint, outcome string) {
	if c.observer != nil {
		c.observer.APICache(endpoint, outcome)
	}
}

// getJSON fetches path with query values into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	start := time.Now()
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, u)
	})
	code := 0
	if resp != nil {
		code = resp.StatusCode
	} else {
		var se *StatusError
		if errors.As(err, &se) {
			code = se.Code
		}
	}
	if c.observer != nil {
		c.observer.APIRequest(endpoint, code, time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, u string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses with
// exponential backoff while respecting ctx.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.retries {
			return nil, lastErr
		}
		c.logger.Debug("retrying request", "url", req.URL.Path, "attempt", attempt+1, "err", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Package audius is a client for the public Audius catalog API.
package audius

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/errors"
	"github.com/tessro/station/internal/store"
)

const (
	// DefaultDiscoveryURL lists the currently healthy API hosts.
	DefaultDiscoveryURL = "https://api.audius.co"

	// DefaultAppName identifies this client to the API.
	DefaultAppName = "station"

	DefaultHostTTL   = 30 * time.Minute
	DefaultArtistTTL = 10 * time.Minute

	cacheBucket = "catalog"

	// Retry configuration for transient errors
	maxRetries = 3
)

var baseRetryWait = 500 * time.Millisecond

// Options configures a Client. Zero values select the defaults.
type Options struct {
	DiscoveryURL string
	AppName      string
	Timeout      time.Duration
	HostTTL      time.Duration
	ArtistTTL    time.Duration

	// Scheme is used to reach discovered hosts. Defaults to https.
	Scheme string

	Cache      store.Store
	HTTPClient *http.Client
	Logger     *slog.Logger
	Rand       *rand.Rand
}

// Client is an Audius API client. It discovers a host on first use and
// caches it for HostTTL.
type Client struct {
	httpClient   *http.Client
	discoveryURL string
	appName      string
	scheme       string
	hostTTL      time.Duration
	artistTTL    time.Duration
	cache        store.Store
	logger       *slog.Logger

	mu   sync.Mutex
	host string
	rng  *rand.Rand
}

// New creates a new Audius client.
func New(opts Options) *Client {
	c := &Client{
		httpClient:   opts.HTTPClient,
		discoveryURL: opts.DiscoveryURL,
		appName:      opts.AppName,
		scheme:       opts.Scheme,
		hostTTL:      opts.HostTTL,
		artistTTL:    opts.ArtistTTL,
		cache:        opts.Cache,
		logger:       opts.Logger,
		rng:          opts.Rand,
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.discoveryURL == "" {
		c.discoveryURL = DefaultDiscoveryURL
	}
	if c.appName == "" {
		c.appName = DefaultAppName
	}
	if c.scheme == "" {
		c.scheme = "https"
	}
	if c.hostTTL <= 0 {
		c.hostTTL = DefaultHostTTL
	}
	if c.artistTTL <= 0 {
		c.artistTTL = DefaultArtistTTL
	}
	if c.cache == nil {
		c.cache = store.NewMemory(nil)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c
}

// Host returns the API host to use, discovering one if needed.
func (c *Client) Host(ctx context.Context) (string, error) {
	c.mu.Lock()
	host := c.host
	c.mu.Unlock()
	if host != "" {
		return host, nil
	}

	if data, ok, err := c.cache.Get(cacheBucket, "host"); err == nil && ok {
		host = string(data)
	} else {
		host, err = c.discover(ctx)
		if err != nil {
			return "", err
		}
		if err := c.cache.Put(cacheBucket, "host", []byte(host), c.hostTTL); err != nil {
			c.logger.Warn("cache catalog host", "err", err)
		}
	}

	c.mu.Lock()
	c.host = host
	c.mu.Unlock()
	return host, nil
}

// ResetHost forgets the discovered host so the next request rediscovers.
func (c *Client) ResetHost() {
	c.mu.Lock()
	c.host = ""
	c.mu.Unlock()
	if err := c.cache.Delete(cacheBucket, "host"); err != nil {
		c.logger.Warn("forget catalog host", "err", err)
	}
}

func (c *Client) discover(ctx context.Context) (string, error) {
	c.logger.Debug("discovering catalog host", "url", c.discoveryURL)

	body, err := c.fetch(ctx, c.discoveryURL)
	if err != nil {
		return "", fmt.Errorf("discover hosts: %w", err)
	}

	var hosts []string
	var env response[[]string]
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		hosts = env.Data
	} else if err := json.Unmarshal(body, &hosts); err != nil {
		return "", fmt.Errorf("discover hosts: unexpected payload: %w", errors.ErrNoHosts)
	}
	if len(hosts) == 0 || hosts[0] == "" {
		return "", errors.ErrNoHosts
	}
	return stripScheme(hosts[0]), nil
}

func stripScheme(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimSuffix(host, "/")
}

// StreamURL returns the audio stream URL for track.
func (c *Client) StreamURL(ctx context.Context, track core.Track) (string, error) {
	if track.ID == "" {
		return "", errors.ErrTrackNotFound
	}
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	q := url.Values{"app_name": {c.appName}}
	return fmt.Sprintf("%s://%s/v1/tracks/%s/stream?%s", c.scheme, host, url.PathEscape(track.ID), q.Encode()), nil
}

// Get performs a GET against the discovered host and decodes the data
// envelope into result.
func (c *Client) Get(ctx context.Context, path string, params url.Values, result any) error {
	host, err := c.Host(ctx)
	if err != nil {
		return err
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("app_name", c.appName)
	fullURL := fmt.Sprintf("%s://%s%s?%s", c.scheme, host, path, q.Encode())

	body, err := c.fetch(ctx, fullURL)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			// The host may have gone away; pick another next time.
			c.ResetHost()
		}
		return err
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// fetch GETs fullURL, retrying network errors and 5xx responses with
// exponential backoff.
func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	c.logger.Debug("catalog request", "url", fullURL)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := baseRetryWait * time.Duration(1<<(attempt-1))
			c.logger.Debug("catalog retry", "attempt", attempt, "wait", wait, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctxErr(ctx)
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctxErr(ctx)
			}
			lastErr = fmt.Errorf("%w: %v", errors.ErrNetworkError, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		c.logger.Debug("catalog response", "status", resp.StatusCode)

		if resp.StatusCode >= 500 {
			lastErr = newAPIError(resp.StatusCode, body)
			continue
		}
		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			return nil, newAPIError(resp.StatusCode, body)
		}
		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// ctxErr marks an expired deadline as ErrTimeout.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", errors.ErrTimeout, ctx.Err())
}

// APIError represents a non-success catalog response.
type APIError struct {
	Status  int
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			msg = payload.Message
		} else if payload.Error != "" {
			msg = payload.Error
		}
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return &APIError{Status: status, Message: msg}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog API error: status %d", e.Status)
	}
	return fmt.Sprintf("catalog API error: status %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is match ErrRateLimited on 429 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return errors.ErrRateLimited
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the catalog.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

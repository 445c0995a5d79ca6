// Package catalog talks to the Spotify Web API on behalf of one listener.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/ademuri/taste-engine/internal/cache"
)

const (
	DefaultBaseURL     = "https://api.spotify.com/v1"
	DefaultCacheTTL    = 5 * time.Minute
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Second

	// Only this many trailing characters of a credential go into cache keys.
	credentialSuffixLen = 10
)

type Config struct {
	BaseURL     string
	CacheTTL    time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
	// Timeout bounds one Fetch, retries included. Zero means no deadline
	// beyond the caller's context.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		CacheTTL:    DefaultCacheTTL,
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
	}
}

type Client struct {
	httpClient *http.Client
	cache      cache.Cache
	config     Config
	now        func() time.Time
}

// NewClient returns a client that answers repeated reads from c. Zero config
// fields take their defaults; a negative MaxRetries disables retrying.
func NewClient(httpClient *http.Client, c cache.Cache, config Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if c == nil {
		c = cache.NewMemory()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.BaseBackoff <= 0 {
		config.BaseBackoff = DefaultBaseBackoff
	}
	return &Client{
		httpClient: httpClient,
		cache:      c,
		config:     config,
		now:        time.Now,
	}
}

// CacheKey scopes a cached value to the tail of the credential that fetched
// it, so two listeners never share an entry.
func CacheKey(credential, path string) string {
	suffix := credential
	if len(suffix) > credentialSuffixLen {
		suffix = suffix[len(suffix)-credentialSuffixLen:]
	}
	return suffix + ":" + path
}

// Fetch GETs path (relative to the base URL, query included) with credential
// as the bearer token and returns the JSON body. Successful bodies are cached
// for the configured TTL. A 429 is retried after Retry-After or an
// exponential backoff; a 401 is returned at once as ErrUnauthorized.
func (c *Client) Fetch(ctx context.Context, path, credential string) ([]byte, error) {
	key := CacheKey(credential, path)
	if body, ok := c.cache.Get(key); ok {
		return body, nil
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	attempts := uint(c.config.MaxRetries) + 1
	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = c.get(ctx, path, credential)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rl *rateLimitError
			return errors.As(err, &rl)
		}),
		retry.DelayType(func(n uint, err error, _ *retry.Config) time.Duration {
			var rl *rateLimitError
			if errors.As(err, &rl) && rl.retryAfter > 0 {
				return rl.retryAfter
			}
			return backoff(c.config.BaseBackoff, n)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("WARN catalog: %s rate limited (attempt %d/%d)", path, n+1, attempts)
		}),
	)
	if err != nil {
		var rl *rateLimitError
		if errors.As(err, &rl) {
			return nil, fmt.Errorf("%w: %s after %d attempts", ErrRateLimited, path, attempts)
		}
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("catalog: %s: %w", path, ctxErr)
		}
		return nil, err
	}

	c.cache.Set(key, body, c.config.CacheTTL)
	return body, nil
}

func (c *Client) get(ctx context.Context, path, credential string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("catalog: building request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &rateLimitError{
			path:       path,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Path: path, Message: strings.TrimSpace(string(msg))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	if !json.Valid(body) {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Path: path, Message: "response is not JSON"}
	}
	return body, nil
}

func (c *Client) fetchJSON(ctx context.Context, path, credential string, v any) error {
	body, err := c.Fetch(ctx, path, credential)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("catalog: decoding %s: %w", path, err)
	}
	return nil
}

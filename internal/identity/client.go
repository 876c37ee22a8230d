// Package identity resolves user display names from the identity service.
// Resolution is best effort: callers fall back to stored contact details
// when a lookup fails.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	cacheKeyPrefix  = "liveclass:display_name:"
	defaultCacheTTL = 10 * time.Minute
)

// Client looks up display names, optionally caching hits in Redis so
// repeated admissions by the same user skip the identity service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
}

// NewClient builds a resolver. cache may be nil to disable caching; a nil
// httpClient falls back to a default with a 5 second timeout.
func NewClient(baseURL string, httpClient *http.Client, cache *redis.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   defaultCacheTTL,
	}
}

type userResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DisplayName resolves the user's display name. Errors are returned, not
// swallowed; the fallback policy lives with the caller.
func (c *Client) DisplayName(ctx context.Context, userID string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("identity: base URL is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("identity: user id is required")
	}

	if name, ok := c.cached(ctx, userID); ok {
		return name, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return "", fmt.Errorf("identity: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: lookup %s: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity: lookup %s: unexpected status %d", userID, resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("identity: decode response: %w", err)
	}
	name := strings.TrimSpace(user.Name)
	if name == "" {
		return "", fmt.Errorf("identity: user %s has no name", userID)
	}

	c.store(ctx, userID, name)
	return name, nil
}

// cached reads the name from Redis. Any cache failure is treated as a miss.
func (c *Client) cached(ctx context.Context, userID string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	name, err := c.cache.Get(ctx, cacheKeyPrefix+userID).Result()
	if err != nil {
		// Cache trouble, including a plain miss, never fails a lookup.
		return "", false
	}
	return name, name != ""
}

func (c *Client) store(ctx context.Context, userID, name string) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Set(ctx, cacheKeyPrefix+userID, name, c.cacheTTL).Err()
}

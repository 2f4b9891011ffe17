package sidebar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/janseva/constituency-admin/internal/logging"
)

// AccessPath is where the API serves the snapshot.
const AccessPath = "/api/sidebar-access"

// Client fetches the access map over HTTP for tools that mirror the SPA. It
// keeps the last good snapshot and falls back to a fixed default map when
// nothing was ever fetched.
type Client struct {
	baseURL  string
	http     *http.Client
	fallback Map

	mu   sync.RWMutex
	last *Snapshot
}

func NewClient(baseURL string, fallback Map, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient, fallback: fallback}
}

// Refresh fetches a fresh snapshot. On failure the previous map stays in
// use and the error is returned for logging.
func (c *Client) Refresh(ctx context.Context, token string) error {
	snap, err := c.fetch(ctx, token)
	if err != nil {
		logging.Warn("sidebar access fetch failed, keeping previous map", "error", err)
		return err
	}
	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()
	return nil
}

func (c *Client) fetch(ctx context.Context, token string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+AccessPath, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting sidebar access: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sidebar access returned status %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding sidebar access: %w", err)
	}
	if snap.Access == nil {
		return nil, fmt.Errorf("sidebar access response has no access map")
	}
	return &snap, nil
}

// Map returns the last fetched map, or the fallback.
func (c *Client) Map() Map {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last != nil {
		return c.last.Access
	}
	return c.fallback
}

// Version is 0 until a fetch has succeeded.
func (c *Client) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return 0
	}
	return c.last.Version
}

// Guard builds a route guard over tree using the current map.
func (c *Client) Guard(tree []NavItem) *Guard {
	return NewGuard(tree, c.Map())
}

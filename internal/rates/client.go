// Package rates queries the public exchange-rate API used by the
// currency settings workflow. Responses are cached briefly so flipping
// between currencies on the settings screen does not hammer the API.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"trirule/internal/cache"
)

const (
	defaultTimeout = 10 * time.Second
	cacheSize      = 64
	cacheTTL       = 10 * time.Minute
)

// ErrRateUnavailable is returned when the API answers but the requested
// rate is missing from the table.
var ErrRateUnavailable = fmt.Errorf("rate unavailable")

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.LRUCache[map[string]float64]
}

// NewClient creates a rate-lookup client for a frankfurter-compatible
// endpoint (GET {base}/latest with base/symbols or from/to parameters).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.NewLRUCache[map[string]float64](cacheSize, cacheTTL),
	}
}

// Latest fetches the rate table for the given base currency, restricted
// to symbols when non-empty.
func (c *Client) Latest(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	params := url.Values{"base": {base}}
	if len(symbols) > 0 {
		sorted := append([]string(nil), symbols...)
		sort.Strings(sorted)
		params.Set("symbols", strings.Join(sorted, ","))
	}
	return c.latest(ctx, params)
}

// Rate fetches the single conversion factor from one currency to another.
// Converting a currency to itself is always 1 without a round trip.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	table, err := c.latest(ctx, url.Values{"from": {from}, "to": {to}})
	if err != nil {
		return 0, err
	}
	rate, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s to %s", ErrRateUnavailable, from, to)
	}
	return rate, nil
}

func (c *Client) latest(ctx context.Context, params url.Values) (map[string]float64, error) {
	key := params.Encode()
	if table, ok := c.cache.Get(key); ok {
		return table, nil
	}

	u := c.baseURL + "/latest?" + key
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
		return nil, fmt.Errorf("rate lookup returned %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}
	if payload.Rates == nil {
		return nil, fmt.Errorf("rate response missing rates table")
	}

	c.cache.Set(key, payload.Rates)
	return payload.Rates, nil
}

// CleanExpired sweeps expired entries; the cache manager calls it
// periodically.
func (c *Client) CleanExpired() int {
	return c.cache.CleanExpired()
}

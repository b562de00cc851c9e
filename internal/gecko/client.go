// Package gecko provides a read-only HTTP client for the GeckoTerminal
// pools API. It returns the raw attribute payload; normalization and the
// override transform live in the market package.
package gecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.geckoterminal.com/api/v2"
	DefaultNetwork = "solana"
	DefaultTimeout = 15 * time.Second
)

// Client fetches pool data from the GeckoTerminal API.
type Client struct {
	baseURL string
	network string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithNetwork sets the chain network segment of the pool endpoint.
func WithNetwork(network string) ClientOption {
	return func(c *Client) {
		c.network = network
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a GeckoTerminal client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		network: DefaultNetwork,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PoolAttributes mirrors data.attributes of the pool endpoint envelope.
// Any of the numeric fields may be absent or empty in the raw payload.
type PoolAttributes struct {
	Name                  string `json:"name"`
	BaseTokenPriceUsd     string `json:"base_token_price_usd"`
	MarketCapUsd          string `json:"market_cap_usd"`
	FdvUsd                string `json:"fdv_usd"`
	ReserveInUsd          string `json:"reserve_in_usd"`
	PriceChangePercentage struct {
		H24 string `json:"h24"`
	} `json:"price_change_percentage"`
	VolumeUsd struct {
		H24 string `json:"h24"`
	} `json:"volume_usd"`
}

type poolEnvelope struct {
	Data *struct {
		Attributes *PoolAttributes `json:"attributes"`
	} `json:"data"`
}

// PoolAttributes performs a single GET for the pool and decodes the
// envelope. The pool ID is forwarded verbatim. No retries: the caller
// decides what a failed cycle means.
func (c *Client) PoolAttributes(ctx context.Context, poolID string) (*PoolAttributes, error) {
	endpoint := fmt.Sprintf("%s/networks/%s/pools/%s", c.baseURL, c.network, url.PathEscape(poolID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope poolEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Data == nil || envelope.Data.Attributes == nil {
		return nil, fmt.Errorf("missing data.attributes in response")
	}

	return envelope.Data.Attributes, nil
}

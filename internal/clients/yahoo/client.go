// Package yahoo provides a Yahoo Finance client for ticker validation and
// spot-price retrieval.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ErrSymbolNotFound is returned when Yahoo does not know the ticker.
var ErrSymbolNotFound = errors.New("symbol not found")

// Client is a Yahoo Finance API client
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client.Timeout = timeout }
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://query1.finance.yahoo.com",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse is the subset of the Yahoo chart API response we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote holds the latest market data for a symbol.
type Quote struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// GetQuote fetches the most recent close price for a symbol using the chart
// API with a one-day range. An unknown ticker yields ErrSymbolNotFound;
// other failures are transport or upstream errors.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", c.baseURL, url.PathEscape(symbol))
	c.log.Debug().Str("symbol", symbol).Msg("Fetching quote")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	// Yahoo rejects requests without a user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; quantsvc/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request returned status %d", resp.StatusCode)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	if parsed.Chart.Error != nil {
		if parsed.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("quote API error: %s", parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	meta := parsed.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("%w: %s has no market price", ErrSymbolNotFound, symbol)
	}

	return &Quote{
		Symbol:   meta.Symbol,
		Price:    meta.RegularMarketPrice,
		Currency: meta.Currency,
	}, nil
}

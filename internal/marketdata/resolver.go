// Package marketdata resolves ticker symbols to spot prices through an
// external provider, with a persistent TTL cache in front of it. It is the
// boundary the simulation engine depends on: resolution failures surface
// before any simulation begins.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fintool/quantsvc/internal/clientdata"
)

// ErrNotFound is returned when the provider does not recognize the ticker.
var ErrNotFound = errors.New("ticker not found")

const quotesTable = "quotes"

// Quote is the cached representation of a resolved spot price.
type Quote struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

// Provider fetches the latest quote for a symbol. Implementations must
// return ErrNotFound (possibly wrapped) for unknown tickers.
type Provider interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// Resolver resolves spot prices with cache-first behavior. When the
// provider is down, stale cached data is served as a documented fallback
// (stale data beats no data); unknown tickers are never served from cache.
type Resolver struct {
	provider Provider
	cache    *clientdata.Repository
	ttl      time.Duration
	log      zerolog.Logger
}

// NewResolver creates a new resolver. cache is optional; when nil every
// resolution hits the provider.
func NewResolver(provider Provider, cache *clientdata.Repository, log zerolog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		cache:    cache,
		ttl:      clientdata.TTLQuote,
		log:      log.With().Str("component", "marketdata").Logger(),
	}
}

// SetTTL overrides the cache freshness window.
func (r *Resolver) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		r.ttl = ttl
	}
}

// Resolve returns the most recent close price for the ticker.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (float64, error) {
	if ticker == "" {
		return 0, fmt.Errorf("%w: empty ticker", ErrNotFound)
	}

	if r.cache != nil {
		data, err := r.cache.GetIfFresh(quotesTable, ticker)
		if err == nil && data != nil {
			var cached Quote
			if err := json.Unmarshal(data, &cached); err == nil && cached.Price > 0 {
				r.log.Debug().Str("ticker", ticker).Float64("price", cached.Price).Msg("Cache hit")
				return cached.Price, nil
			}
		}
	}

	quote, err := r.provider.Quote(ctx, ticker)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		// Provider is slow or down: fall back to stale cache if we have it.
		if price, ok := r.staleFromCache(ticker); ok {
			r.log.Warn().
				Err(err).
				Str("ticker", ticker).
				Float64("price", price).
				Msg("Provider failed, using stale cached quote")
			return price, nil
		}
		return 0, fmt.Errorf("quote lookup failed: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Store(quotesTable, ticker, quote, r.ttl); err != nil {
			r.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache quote")
		}
	}

	return quote.Price, nil
}

// staleFromCache returns an expired cached price, if any.
func (r *Resolver) staleFromCache(ticker string) (float64, bool) {
	if r.cache == nil {
		return 0, false
	}

	data, err := r.cache.Get(quotesTable, ticker)
	if err != nil || data == nil {
		return 0, false
	}

	var cached Quote
	if err := json.Unmarshal(data, &cached); err != nil || cached.Price <= 0 {
		return 0, false
	}
	return cached.Price, true
}

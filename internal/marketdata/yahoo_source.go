package marketdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintool/quantsvc/internal/clients/yahoo"
)

// YahooSource adapts the Yahoo Finance client to the Provider interface,
// translating its not-found error into the package-level ErrNotFound.
type YahooSource struct {
	client *yahoo.Client
}

// NewYahooSource creates a Yahoo-backed quote provider.
func NewYahooSource(client *yahoo.Client) *YahooSource {
	return &YahooSource{client: client}
}

// Quote fetches the latest quote for a symbol.
func (s *YahooSource) Quote(ctx context.Context, symbol string) (*Quote, error) {
	q, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, yahoo.ErrSymbolNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		return nil, err
	}

	return &Quote{
		Symbol:   q.Symbol,
		Price:    q.Price,
		Currency: q.Currency,
	}, nil
}

package marketdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/fintool/quantsvc/internal/clientdata"
)

// fakeProvider returns canned quotes and counts calls.
type fakeProvider struct {
	quotes map[string]float64
	err    error
	calls  int
}

func (p *fakeProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	price, ok := p.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return &Quote{Symbol: symbol, Price: price, Currency: "USD"}, nil
}

func newTestCache(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := clientdata.NewRepository(db)
	require.NoError(t, repo.EnsureSchema())
	return repo
}

func TestResolve_ProviderHit(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]float64{"AAPL": 187.44}}
	r := NewResolver(provider, newTestCache(t), zerolog.Nop())

	price, err := r.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 187.44, price, 1e-9)
	assert.Equal(t, 1, provider.calls)
}

func TestResolve_CacheHitSkipsProvider(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]float64{"AAPL": 187.44}}
	r := NewResolver(provider, newTestCache(t), zerolog.Nop())

	ctx := context.Background()

	_, err := r.Resolve(ctx, "AAPL")
	require.NoError(t, err)

	price, err := r.Resolve(ctx, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 187.44, price, 1e-9)
	assert.Equal(t, 1, provider.calls, "second resolution should come from cache")
}

func TestResolve_StaleCacheFallbackOnOutage(t *testing.T) {
	cache := newTestCache(t)
	stale := Quote{Symbol: "AAPL", Price: 187.44, Currency: "USD"}
	require.NoError(t, cache.Store("quotes", "AAPL", stale, -time.Minute))

	provider := &fakeProvider{err: errors.New("connection refused")}
	r := NewResolver(provider, cache, zerolog.Nop())

	price, err := r.Resolve(context.Background(), "AAPL")
	require.NoError(t, err, "stale cache should cover a provider outage")
	assert.InDelta(t, 187.44, price, 1e-9)
	assert.Equal(t, 1, provider.calls)
}

func TestResolve_UnknownTickerNotServedFromCache(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]float64{}}
	r := NewResolver(provider, newTestCache(t), zerolog.Nop())

	_, err := r.Resolve(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_OutageWithoutCacheFails(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	r := NewResolver(provider, newTestCache(t), zerolog.Nop())

	_, err := r.Resolve(context.Background(), "AAPL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolve_EmptyTicker(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]float64{}}
	r := NewResolver(provider, newTestCache(t), zerolog.Nop())

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, provider.calls)
}

func TestResolve_NilCache(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]float64{"MSFT": 420.5}}
	r := NewResolver(provider, nil, zerolog.Nop())

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		price, err := r.Resolve(ctx, "MSFT")
		require.NoError(t, err)
		assert.InDelta(t, 420.5, price, 1e-9)
	}
	assert.Equal(t, 2, provider.calls, "no cache means every resolution hits the provider")
}

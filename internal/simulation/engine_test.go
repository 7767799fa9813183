package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// fakeSpots resolves tickers from a fixed price table.
type fakeSpots struct {
	prices map[string]float64
}

func (f *fakeSpots) Resolve(_ context.Context, ticker string) (float64, error) {
	price, ok := f.prices[ticker]
	if !ok {
		return 0, errors.New("ticker not found")
	}
	return price, nil
}

func newTestEngine() *Engine {
	return NewEngine(nil, zerolog.Nop())
}

func TestSimulatePortfolio_Deterministic(t *testing.T) {
	engine := newTestEngine()
	req := PortfolioRequest{
		Assets: []AssetSpec{
			{S0: 100, Mu: 0.05, Sigma: 0.2},
			{S0: 50, Mu: 0.07, Sigma: 0.3},
		},
		Weights:     []float64{0.5, 0.5},
		Horizon:     1.0,
		Steps:       10,
		Paths:       500,
		Seed:        int64Ptr(42),
		ReturnPaths: true,
	}

	first, err := engine.SimulatePortfolio(context.Background(), req)
	require.NoError(t, err)

	second, err := engine.SimulatePortfolio(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.FinalValues, second.FinalValues)
	assert.Len(t, first.FinalValues, 500)
}

func TestSimulatePortfolio_OmitsRawValuesByDefault(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{S0: 100, Mu: 0.05, Sigma: 0.2}},
		Weights: []float64{1.0},
		Horizon: 1.0,
		Steps:   5,
		Paths:   100,
		Seed:    int64Ptr(1),
	})
	require.NoError(t, err)

	assert.Nil(t, result.FinalValues)
	assert.Greater(t, result.Std, 0.0)
}

func TestSimulatePortfolio_LognormalMeanScenario(t *testing.T) {
	// S0=100, mu=0.05, sigma=0.2, T=1: E[ST] = 100*exp(0.05) ~ 105.13.
	engine := newTestEngine()

	result, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{S0: 100, Mu: 0.05, Sigma: 0.2}},
		Weights: []float64{1.0},
		Horizon: 1.0,
		Steps:   252,
		Paths:   50_000,
		Seed:    int64Ptr(42),
	})
	require.NoError(t, err)

	expected := 100.0 * math.Exp(0.05)

	// Holdings from weights give V0=1, so scale the mean back to price terms.
	scale := 100.0 / result.Params.V0
	assert.InDelta(t, expected, result.Mean*scale, expected*0.03)
}

func TestSimulatePortfolio_RiskMetricsMatchLognormal(t *testing.T) {
	// Single asset, one step: analytic lognormal cross-check via distuv.
	mu, sigma, horizon := 0.07, 0.2, 1.0
	engine := newTestEngine()

	result, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{S0: 100, Mu: mu, Sigma: sigma}},
		Weights: []float64{1.0},
		Horizon: horizon,
		Steps:   1,
		Paths:   200_000,
		Seed:    int64Ptr(42),
	})
	require.NoError(t, err)

	expectedReturn := math.Exp(mu*horizon) - 1.0
	assert.InDelta(t, expectedReturn, result.ExpectedReturn, 0.01)

	z05 := distuv.UnitNormal.Quantile(0.05)
	expectedVaR := math.Exp((mu-0.5*sigma*sigma)*horizon+sigma*math.Sqrt(horizon)*z05) - 1.0
	assert.InDelta(t, expectedVaR, result.VaR95, 0.01)

	assert.LessOrEqual(t, result.CVaR95, result.VaR95)
	assert.GreaterOrEqual(t, result.Std, 0.0)
}

func TestSimulatePortfolio_NilCorrMatchesExplicitIdentity(t *testing.T) {
	engine := newTestEngine()
	base := PortfolioRequest{
		Assets: []AssetSpec{
			{S0: 100, Mu: 0.05, Sigma: 0.2},
			{S0: 80, Mu: 0.06, Sigma: 0.25},
		},
		Weights:     []float64{0.5, 0.5},
		Horizon:     1.0,
		Steps:       10,
		Paths:       1_000,
		Seed:        int64Ptr(42),
		ReturnPaths: true,
	}

	implicit, err := engine.SimulatePortfolio(context.Background(), base)
	require.NoError(t, err)

	withIdentity := base
	withIdentity.Corr = [][]float64{{1, 0}, {0, 1}}
	explicit, err := engine.SimulatePortfolio(context.Background(), withIdentity)
	require.NoError(t, err)

	// The identity factor is exact, so the same seed yields the same paths.
	assert.Equal(t, implicit.FinalValues, explicit.FinalValues)
	assert.False(t, implicit.Params.HasCorr)
	assert.True(t, explicit.Params.HasCorr)
}

func TestSimulatePortfolio_CorrelationDiagnosticsRecorded(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets: []AssetSpec{
			{S0: 100, Mu: 0.05, Sigma: 0.2},
			{S0: 100, Mu: 0.05, Sigma: 0.2},
		},
		Weights: []float64{0.5, 0.5},
		Horizon: 1.0,
		Steps:   1,
		Paths:   100,
		Seed:    int64Ptr(1),
		Corr:    [][]float64{{1, 1}, {1, 1}},
	})
	require.NoError(t, err)

	assert.Greater(t, result.Params.JitterUsed, 0.0)
	assert.NotEmpty(t, result.Params.SimulationID)
	assert.InDelta(t, 1.0, result.Params.Dt, 1e-12)
	assert.Equal(t, 2, result.Params.NAssets)
}

func TestSimulatePortfolio_InvalidCorrelationFailsFast(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets: []AssetSpec{
			{S0: 100, Mu: 0.05, Sigma: 0.2},
			{S0: 100, Mu: 0.05, Sigma: 0.2},
		},
		Weights: []float64{0.5, 0.5},
		Horizon: 1.0,
		Corr:    [][]float64{{1, 2}, {2, 1}},
	})
	require.Error(t, err)

	var corrErr *InvalidCorrelationError
	assert.ErrorAs(t, err, &corrErr)
}

func TestSimulatePortfolio_SinglePathRejected(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{S0: 100, Mu: 0.05, Sigma: 0.2}},
		Weights: []float64{1.0},
		Horizon: 1.0,
		Paths:   1,
	})
	require.Error(t, err)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSimulatePortfolio_DefaultsApplied(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{S0: 100, Mu: 0.05, Sigma: 0.2}},
		Weights: []float64{1.0},
		Horizon: 0.1,
		Seed:    int64Ptr(3),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.1/float64(DefaultSteps), result.Params.Dt, 1e-12)
}

func TestSimulatePortfolio_TickerResolution(t *testing.T) {
	engine := NewEngine(&fakeSpots{prices: map[string]float64{"AAPL": 190.0}}, zerolog.Nop())

	result, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{Ticker: "AAPL", Mu: 0.05, Sigma: 0.2}},
		Weights: []float64{1.0},
		Horizon: 1.0,
		Steps:   1,
		Paths:   10,
		Seed:    int64Ptr(1),
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Params.V0, 1e-9)
}

func TestSimulatePortfolio_UnknownTicker(t *testing.T) {
	engine := NewEngine(&fakeSpots{prices: map[string]float64{}}, zerolog.Nop())

	_, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{Ticker: "NOPE", Mu: 0.05, Sigma: 0.2}},
		Weights: []float64{1.0},
		Horizon: 1.0,
	})
	require.Error(t, err)

	var dataErr *DataUnavailableError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "NOPE", dataErr.Ticker)
}

func TestSimulatePortfolio_NoResolverConfigured(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.SimulatePortfolio(context.Background(), PortfolioRequest{
		Assets:  []AssetSpec{{Ticker: "AAPL", Mu: 0.05, Sigma: 0.2}},
		Weights: []float64{1.0},
		Horizon: 1.0,
	})
	require.Error(t, err)

	var dataErr *DataUnavailableError
	assert.ErrorAs(t, err, &dataErr)
}

func TestSimulateAsset_InvalidWeightCoercedToOne(t *testing.T) {
	engine := newTestEngine()
	base := AssetRequest{
		S0:      100,
		Mu:      0.05,
		Sigma:   0.2,
		Horizon: 1.0,
		Steps:   5,
		Paths:   200,
		Seed:    int64Ptr(42),
	}

	defaulted, err := engine.SimulateAsset(context.Background(), base)
	require.NoError(t, err)

	negative := base
	negative.Weight = floatPtr(-5.0)
	coerced, err := engine.SimulateAsset(context.Background(), negative)
	require.NoError(t, err)

	assert.Equal(t, defaulted.Mean, coerced.Mean)
	assert.Equal(t, defaulted.VaR95, coerced.VaR95)
}

func TestSimulateAsset_ReportsPriceScale(t *testing.T) {
	// The asset operation holds one unit, so the mean final value is the
	// lognormal mean of the price itself: 100*exp(0.05) ~ 105.13.
	engine := newTestEngine()

	result, err := engine.SimulateAsset(context.Background(), AssetRequest{
		S0:      100,
		Mu:      0.05,
		Sigma:   0.2,
		Horizon: 1.0,
		Steps:   252,
		Paths:   50_000,
		Seed:    int64Ptr(42),
	})
	require.NoError(t, err)

	expected := 100.0 * math.Exp(0.05)
	assert.InDelta(t, expected, result.Mean, expected*0.03)
	assert.InDelta(t, 100.0, result.Params.V0, 1e-9)
}

func TestSimulateAsset_ReportsMedian(t *testing.T) {
	engine := newTestEngine()

	result, err := engine.SimulateAsset(context.Background(), AssetRequest{
		S0:      100,
		Mu:      0.05,
		Sigma:   0.2,
		Horizon: 1.0,
		Steps:   10,
		Paths:   2_000,
		Seed:    int64Ptr(42),
	})
	require.NoError(t, err)

	// Lognormal: median < mean.
	assert.Less(t, result.Median, result.Mean)
	assert.Greater(t, result.Median, 0.0)
}

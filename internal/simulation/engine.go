package simulation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine composes the resolvers, path simulator, valuer and risk summarizer
// into the two public simulation operations. It holds no mutable state
// between calls; concurrent requests are fully independent.
type Engine struct {
	spots SpotResolver
	log   zerolog.Logger
}

// NewEngine creates a simulation engine. spots may be nil, in which case
// every asset must carry an inline spot price.
func NewEngine(spots SpotResolver, log zerolog.Logger) *Engine {
	return &Engine{
		spots: spots,
		log:   log.With().Str("component", "simulation_engine").Logger(),
	}
}

// resolveSpots fills in missing S0 values from the market-data resolver.
// Resolution happens before any validation or path generation so that a
// slow or unavailable provider can never interrupt a running simulation.
func (e *Engine) resolveSpots(ctx context.Context, assets []AssetSpec) ([]AssetSpec, error) {
	resolved := make([]AssetSpec, len(assets))
	copy(resolved, assets)

	for i := range resolved {
		if resolved[i].S0 > 0 || resolved[i].Ticker == "" {
			continue
		}
		if e.spots == nil {
			return nil, &DataUnavailableError{Ticker: resolved[i].Ticker}
		}
		price, err := e.spots.Resolve(ctx, resolved[i].Ticker)
		if err != nil {
			return nil, &DataUnavailableError{Ticker: resolved[i].Ticker, Err: err}
		}
		resolved[i].S0 = price
	}
	return resolved, nil
}

// SimulatePortfolio runs the full pipeline: spot resolution, exposure and
// correlation resolution, correlated GBM path generation, portfolio
// valuation and risk summarization. All input validation happens before any
// path is generated.
func (e *Engine) SimulatePortfolio(ctx context.Context, req PortfolioRequest) (*Result, error) {
	if req.Steps == 0 {
		req.Steps = DefaultSteps
	}
	if req.Paths == 0 {
		req.Paths = DefaultPaths
	}

	assets, err := e.resolveSpots(ctx, req.Assets)
	if err != nil {
		return nil, err
	}

	exposure, err := ResolveExposure(assets, req.Weights, req.InitialValue)
	if err != nil {
		return nil, err
	}

	factor, err := ResolveCorrelation(req.Corr, len(assets))
	if err != nil {
		return nil, err
	}

	s0 := make([]float64, len(assets))
	mu := make([]float64, len(assets))
	sigma := make([]float64, len(assets))
	for i, a := range assets {
		s0[i] = a.S0
		mu[i] = a.Mu
		sigma[i] = a.Sigma
	}

	simID := uuid.NewString()
	start := time.Now()

	paths, err := SimulatePaths(PathConfig{
		S0:      s0,
		Mu:      mu,
		Sigma:   sigma,
		Factor:  factor,
		Horizon: req.Horizon,
		Steps:   req.Steps,
		Paths:   req.Paths,
		Seed:    req.Seed,
	})
	if err != nil {
		return nil, err
	}

	values, err := ValuePortfolio(paths.Terminal, exposure.Holdings)
	if err != nil {
		return nil, err
	}

	summary := Summarize(values, exposure.V0)

	e.log.Info().
		Str("simulation_id", simID).
		Int("n_assets", len(assets)).
		Int("n_steps", req.Steps).
		Int("n_paths", req.Paths).
		Bool("has_corr", req.Corr != nil).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio simulation completed")

	result := &Result{
		Mean:           summary.Mean,
		Std:            summary.Std,
		Median:         summary.Median,
		ExpectedReturn: summary.ExpectedReturn,
		VaR95:          summary.VaR95,
		CVaR95:         summary.CVaR95,
		Params: Params{
			NAssets:      len(assets),
			HasCorr:      req.Corr != nil,
			V0:           exposure.V0,
			Dt:           paths.Dt,
			Mu:           mu,
			Sigma:        sigma,
			JitterUsed:   factor.Jitter,
			Rate:         req.Rate,
			SimulationID: simID,
		},
	}
	if req.ReturnPaths {
		result.FinalValues = values
	}
	return result, nil
}

// SimulateAsset treats the request as a one-asset portfolio holding `weight`
// units of the instrument, so the reported values are scaled prices rather
// than fractions of a normalized base value. An invalid or absent weight is
// coerced to 1.0; the return statistics are identical for any positive
// weight since returns are taken against V0 = weight*S0.
func (e *Engine) SimulateAsset(ctx context.Context, req AssetRequest) (*Result, error) {
	weight := 1.0
	if req.Weight != nil && isPositiveFinite(*req.Weight) {
		weight = *req.Weight
	}

	return e.SimulatePortfolio(ctx, PortfolioRequest{
		Assets: []AssetSpec{{
			Ticker:   req.Ticker,
			S0:       req.S0,
			Mu:       req.Mu,
			Sigma:    req.Sigma,
			Quantity: &weight,
		}},
		Weights:     []float64{1.0},
		Horizon:     req.Horizon,
		Rate:        req.Rate,
		Steps:       req.Steps,
		Paths:       req.Paths,
		Seed:        req.Seed,
		ReturnPaths: req.ReturnPaths,
	})
}

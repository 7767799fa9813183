// Package simulation implements Monte Carlo pricing of single assets and
// multi-asset portfolios under Geometric Brownian Motion, and the risk
// metrics (expected return, VaR95, CVaR95) derived from the simulated
// terminal distribution.
package simulation

import "context"

// Default request parameters, matching the service's public contract.
const (
	DefaultSteps = 252
	DefaultPaths = 10_000
)

// AssetSpec describes one simulated instrument. S0 is the spot price, Mu the
// annualized drift and Sigma the annualized volatility. Quantity, when set,
// is an explicit share count; otherwise holdings are derived from portfolio
// weights. Ticker is optional: when set and S0 is absent, the spot price is
// resolved through the market-data resolver before validation.
type AssetSpec struct {
	Ticker   string   `json:"ticker,omitempty"`
	S0       float64  `json:"S0"`
	Mu       float64  `json:"mu"`
	Sigma    float64  `json:"sigma"`
	Quantity *float64 `json:"quantity,omitempty"`
}

// PortfolioRequest is the input to a multi-asset portfolio simulation.
type PortfolioRequest struct {
	Assets       []AssetSpec `json:"assets"`
	Weights      []float64   `json:"weights"`
	Horizon      float64     `json:"T"`
	Rate         float64     `json:"r"`
	Steps        int         `json:"n_steps"`
	Paths        int         `json:"n_paths"`
	Seed         *int64      `json:"seed,omitempty"`
	ReturnPaths  bool        `json:"return_paths"`
	Corr         [][]float64 `json:"corr,omitempty"`
	InitialValue *float64    `json:"initial_value,omitempty"`
}

// AssetRequest is the input to a single-asset simulation. It is treated as a
// one-asset portfolio whose weight is coerced to a positive finite value
// (1.0 when invalid or absent).
type AssetRequest struct {
	Ticker      string   `json:"ticker,omitempty"`
	S0          float64  `json:"S0"`
	Mu          float64  `json:"mu"`
	Sigma       float64  `json:"sigma"`
	Weight      *float64 `json:"weight,omitempty"`
	Horizon     float64  `json:"T"`
	Rate        float64  `json:"r"`
	Steps       int      `json:"n_steps"`
	Paths       int      `json:"n_paths"`
	Seed        *int64   `json:"seed,omitempty"`
	ReturnPaths bool     `json:"return_paths"`
}

// Params carries per-request diagnostics echoed back to the caller. The
// risk-free rate is recorded here but never applied to the simulated drift:
// paths evolve under the physical measure, driven by each asset's Mu.
type Params struct {
	NAssets      int       `json:"n_assets"`
	HasCorr      bool      `json:"has_corr"`
	V0           float64   `json:"V0"`
	Dt           float64   `json:"dt"`
	Mu           []float64 `json:"mu"`
	Sigma        []float64 `json:"sigma"`
	JitterUsed   float64   `json:"jitter_used"`
	Rate         float64   `json:"r"`
	SimulationID string    `json:"simulation_id"`
}

// Result is the outcome of one simulation request. FinalValues is populated
// only when the caller asked for raw output. Std is the sample standard
// deviation (divisor n-1).
type Result struct {
	FinalValues    []float64
	Mean           float64
	Std            float64
	Median         float64
	ExpectedReturn float64
	VaR95          float64
	CVaR95         float64
	Params         Params
}

// SpotResolver resolves a ticker symbol to its most recent close price.
// Implementations live at the market-data boundary; the engine only needs
// this capability so it can be tested with fixed, injected prices.
type SpotResolver interface {
	Resolve(ctx context.Context, ticker string) (float64, error)
}

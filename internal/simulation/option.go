package simulation

import (
	"math"

	"github.com/fintool/quantsvc/pkg/formulas"
)

// OptionRequest is the input to the European call Monte Carlo pricer.
// Unlike the asset and portfolio simulations, option pricing runs under the
// risk-neutral measure: the drift is the risk-free rate r and payoffs are
// discounted by exp(-r*T).
type OptionRequest struct {
	S0    float64 `json:"S0"`
	K     float64 `json:"K"`
	Mu    float64 `json:"mu,omitempty"` // accepted for contract symmetry, unused
	Sigma float64 `json:"sigma"`
	T     float64 `json:"T"`
	R     float64 `json:"r"`
	Paths int     `json:"n_paths"`
	Seed  *int64  `json:"seed,omitempty"`
}

// OptionResult holds the Monte Carlo price estimate and its standard error.
type OptionResult struct {
	Price  float64 `json:"price"`
	Stderr float64 `json:"stderr"`
}

// PriceEuropeanCall prices a European call by simulating terminal GBM prices
// in a single step: ST = S0*exp((r - 0.5*sigma^2)*T + sigma*sqrt(T)*Z).
// Stderr is the sample standard deviation of the discounted payoffs divided
// by sqrt(n_paths).
func PriceEuropeanCall(req OptionRequest) (*OptionResult, error) {
	if req.Paths == 0 {
		req.Paths = DefaultPaths
	}

	if !(req.S0 > 0) {
		return nil, validationErrorf("S0 must be > 0, got %g", req.S0)
	}
	if !(req.K > 0) {
		return nil, validationErrorf("K must be > 0, got %g", req.K)
	}
	if !(req.Sigma > 0) {
		return nil, validationErrorf("sigma must be > 0, got %g", req.Sigma)
	}
	if !(req.T > 0) {
		return nil, validationErrorf("T must be > 0, got %g", req.T)
	}
	if req.Paths < 2 {
		return nil, validationErrorf("n_paths must be >= 2, got %d", req.Paths)
	}

	rng := newRNG(req.Seed)

	drift := (req.R - 0.5*req.Sigma*req.Sigma) * req.T
	diffusion := req.Sigma * math.Sqrt(req.T)
	discount := math.Exp(-req.R * req.T)

	payoffs := make([]float64, req.Paths)
	for i := range payoffs {
		st := req.S0 * math.Exp(drift+diffusion*rng.NormFloat64())
		payoffs[i] = discount * math.Max(st-req.K, 0.0)
	}

	return &OptionResult{
		Price:  formulas.Mean(payoffs),
		Stderr: formulas.StdDev(payoffs) / math.Sqrt(float64(req.Paths)),
	}, nil
}

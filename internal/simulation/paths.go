package simulation

import (
	"math"
	"math/rand/v2"
)

// PathConfig describes one Monte Carlo path generation run. S0, Mu and Sigma
// must have the same length as the correlation factor's dimension.
//
// Memory scales with Paths*Assets doubles for the terminal matrix, and
// Paths*Steps*Assets when KeepPaths is set; callers are expected to bound
// path and step counts accordingly.
type PathConfig struct {
	S0        []float64
	Mu        []float64
	Sigma     []float64
	Factor    *CorrelationFactor
	Horizon   float64
	Steps     int
	Paths     int
	Seed      *int64
	KeepPaths bool
}

// PathSet holds the simulated trajectories. Terminal is always populated
// with shape Paths x Assets. Full is populated only when KeepPaths was set,
// with shape Paths x Steps x Assets (prices after each step).
type PathSet struct {
	Terminal [][]float64
	Full     [][][]float64
	Dt       float64
}

// newRNG returns a seeded PCG source for deterministic runs, or a randomly
// seeded one when no seed is supplied.
func newRNG(seed *int64) *rand.Rand {
	if seed != nil {
		s := uint64(*seed)
		return rand.New(rand.NewPCG(s, s))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// SimulatePaths generates correlated GBM trajectories.
//
// Log-price increments per asset and step are
// (mu - 0.5*sigma^2)*dt + sigma*sqrt(dt)*cz, where cz is the per-step
// standard-normal shock vector left-multiplied by the correlation factor.
// Log-prices accumulate additively from ln(S0); terminal prices are the
// exponential of the cumulative sum at the final step.
//
// Identical seed and inputs reproduce bit-identical results.
func SimulatePaths(cfg PathConfig) (*PathSet, error) {
	nAssets := len(cfg.S0)
	if nAssets == 0 {
		return nil, validationErrorf("no assets provided")
	}
	if len(cfg.Mu) != nAssets || len(cfg.Sigma) != nAssets {
		return nil, validationErrorf("mu and sigma must have length %d", nAssets)
	}
	if cfg.Factor == nil || cfg.Factor.N != nAssets {
		return nil, validationErrorf("correlation factor dimension does not match asset count %d", nAssets)
	}
	if !(cfg.Horizon > 0) {
		return nil, validationErrorf("T must be > 0, got %g", cfg.Horizon)
	}
	if cfg.Steps < 1 {
		return nil, validationErrorf("n_steps must be >= 1, got %d", cfg.Steps)
	}
	if cfg.Paths < 2 {
		return nil, validationErrorf("n_paths must be >= 2, got %d", cfg.Paths)
	}

	dt := cfg.Horizon / float64(cfg.Steps)

	drift := make([]float64, nAssets)
	diffusion := make([]float64, nAssets)
	logS0 := make([]float64, nAssets)
	for i := 0; i < nAssets; i++ {
		drift[i] = (cfg.Mu[i] - 0.5*cfg.Sigma[i]*cfg.Sigma[i]) * dt
		diffusion[i] = cfg.Sigma[i] * math.Sqrt(dt)
		logS0[i] = math.Log(cfg.S0[i])
	}

	rng := newRNG(cfg.Seed)

	set := &PathSet{
		Terminal: make([][]float64, cfg.Paths),
		Dt:       dt,
	}
	if cfg.KeepPaths {
		set.Full = make([][][]float64, cfg.Paths)
	}

	z := make([]float64, nAssets)
	cz := make([]float64, nAssets)
	logS := make([]float64, nAssets)

	for p := 0; p < cfg.Paths; p++ {
		copy(logS, logS0)

		var steps [][]float64
		if cfg.KeepPaths {
			steps = make([][]float64, cfg.Steps)
		}

		for s := 0; s < cfg.Steps; s++ {
			for i := 0; i < nAssets; i++ {
				z[i] = rng.NormFloat64()
			}
			cfg.Factor.Correlate(cz, z)

			for i := 0; i < nAssets; i++ {
				logS[i] += drift[i] + diffusion[i]*cz[i]
			}

			if cfg.KeepPaths {
				prices := make([]float64, nAssets)
				for i := 0; i < nAssets; i++ {
					prices[i] = math.Exp(logS[i])
				}
				steps[s] = prices
			}
		}

		terminal := make([]float64, nAssets)
		for i := 0; i < nAssets; i++ {
			terminal[i] = math.Exp(logS[i])
		}
		set.Terminal[p] = terminal
		if cfg.KeepPaths {
			set.Full[p] = steps
		}
	}

	return set, nil
}

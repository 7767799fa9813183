package simulation

import "math"

// weightSumTolerance is the band around 1.0 inside which a weight vector is
// used as supplied. Outside it, weights are rescaled to sum to exactly 1
// while preserving relative proportions.
const weightSumTolerance = 0.001

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Exposure is the resolved holdings of a portfolio: the share count per
// asset, the normalized weight vector, and the resulting base value
// V0 = sum(holdings_i * S0_i).
type Exposure struct {
	Holdings       []float64
	Weights        []float64
	V0             float64
	FromQuantities bool
}

// ResolveExposure converts asset specs plus a weight vector (or explicit
// per-asset quantities) into a holdings vector.
//
// When every asset carries a usable quantity (finite, positive) those are
// taken verbatim and the weights serve only as diagnostics. Otherwise all
// holdings are derived uniformly from weights:
// holdings_i = w_i * basePortfolioValue / S0_i, with basePortfolioValue the
// supplied initial value when positive, else 1.0. Mixing explicit and
// implicit quantities is intentionally not supported.
func ResolveExposure(assets []AssetSpec, weights []float64, initialValue *float64) (*Exposure, error) {
	n := len(assets)
	if n == 0 {
		return nil, validationErrorf("no assets provided")
	}
	if len(weights) != n {
		return nil, validationErrorf("weights length %d does not match asset count %d", len(weights), n)
	}

	for i, a := range assets {
		if !(a.S0 > 0) || math.IsInf(a.S0, 0) {
			return nil, validationErrorf("asset %d: S0 must be > 0, got %g", i, a.S0)
		}
		if !(a.Sigma > 0) || math.IsInf(a.Sigma, 0) {
			return nil, validationErrorf("asset %d: sigma must be > 0, got %g", i, a.Sigma)
		}
		if math.IsNaN(a.Mu) || math.IsInf(a.Mu, 0) {
			return nil, validationErrorf("asset %d: mu must be finite", i)
		}
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if !(sum > 0) || math.IsNaN(sum) {
		return nil, validationErrorf("weights must sum > 0, got %g", sum)
	}

	w := make([]float64, n)
	copy(w, weights)
	if math.Abs(sum-1.0) > weightSumTolerance {
		for i := range w {
			w[i] /= sum
		}
	}

	holdings := make([]float64, n)
	fromQuantities := true
	for _, a := range assets {
		if a.Quantity == nil || !(*a.Quantity > 0) || math.IsInf(*a.Quantity, 0) || math.IsNaN(*a.Quantity) {
			fromQuantities = false
			break
		}
	}

	if fromQuantities {
		for i, a := range assets {
			holdings[i] = *a.Quantity
		}
	} else {
		baseValue := 1.0
		if initialValue != nil && *initialValue > 0 {
			baseValue = *initialValue
		}
		for i, a := range assets {
			holdings[i] = w[i] * baseValue / a.S0
		}
	}

	v0 := 0.0
	for i, a := range assets {
		v0 += holdings[i] * a.S0
	}
	if !(v0 > 0) {
		return nil, validationErrorf("initial portfolio value must be > 0, got %g", v0)
	}

	return &Exposure{
		Holdings:       holdings,
		Weights:        w,
		V0:             v0,
		FromQuantities: fromQuantities,
	}, nil
}

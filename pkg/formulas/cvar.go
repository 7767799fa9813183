package formulas

// VaR returns the Value-at-Risk threshold for the given confidence level:
// the (1-confidence) quantile of returns. For confidence 0.95 this is the
// 5th-percentile return, so 95% of outcomes are no worse than the result.
func VaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return Quantile(returns, 1.0-confidence)
}

// CVaR returns the Conditional Value-at-Risk for the given confidence level:
// the mean of all returns at or below the VaR threshold. For a degenerate
// distribution with an empty tail the threshold itself is returned, which
// keeps the invariant CVaR <= VaR.
func CVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	threshold := VaR(returns, confidence)

	sum := 0.0
	count := 0
	for _, r := range returns {
		if r <= threshold {
			sum += r
			count++
		}
	}

	if count == 0 {
		return threshold
	}
	return sum / float64(count)
}

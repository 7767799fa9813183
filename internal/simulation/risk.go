package simulation

import "github.com/fintool/quantsvc/pkg/formulas"

// riskConfidence is the confidence level for the VaR/CVaR summary.
const riskConfidence = 0.95

// Summary holds the risk statistics of a simulated terminal value
// distribution. VaR95 is the loss-signed 5th-percentile return threshold:
// 95% of outcomes have return >= VaR95. CVaR95 is the mean return of the
// tail at or below that threshold.
type Summary struct {
	Mean           float64
	Std            float64
	Median         float64
	ExpectedReturn float64
	VaR95          float64
	CVaR95         float64
}

// Summarize computes the risk summary of the terminal value vector against
// the baseline value v0. Per-path returns are R = value/v0 - 1. Std is the
// sample standard deviation (divisor n-1), defined as 0 for a single path.
func Summarize(finalValues []float64, v0 float64) Summary {
	returns := make([]float64, len(finalValues))
	for i, v := range finalValues {
		returns[i] = v/v0 - 1.0
	}

	return Summary{
		Mean:           formulas.Mean(finalValues),
		Std:            formulas.StdDev(finalValues),
		Median:         formulas.Median(finalValues),
		ExpectedReturn: formulas.Mean(returns),
		VaR95:          formulas.VaR(returns, riskConfidence),
		CVaR95:         formulas.CVaR(returns, riskConfidence),
	}
}

package simulation

// ValuePortfolio aggregates per-asset terminal prices into a scalar
// portfolio value per path: value = sum_i holdings_i * price_i. A shape
// mismatch between the terminal matrix and the holdings vector is a
// programming error, not bad user input.
func ValuePortfolio(terminal [][]float64, holdings []float64) ([]float64, error) {
	values := make([]float64, len(terminal))
	for p, prices := range terminal {
		if len(prices) != len(holdings) {
			return nil, validationErrorf("terminal matrix has %d assets on path %d, holdings has %d", len(prices), p, len(holdings))
		}
		v := 0.0
		for i, price := range prices {
			v += holdings[i] * price
		}
		values[p] = v
	}
	return values, nil
}

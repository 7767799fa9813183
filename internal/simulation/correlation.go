package simulation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Jitter repair bounds for near-singular correlation matrices. The repair
// loop adds eps*I to the diagonal, escalating eps by a factor of 10 per
// attempt, and gives up once eps would exceed the ceiling.
const (
	jitterStart   = 1e-10
	jitterCeiling = 1e-4
)

// CorrelationFactor is a lower-triangular factor L such that L*Lᵗ
// reproduces the repaired correlation matrix. Jitter records the diagonal
// perturbation that was needed to make the factorization succeed (0 when
// the matrix factorized cleanly or defaulted to identity).
type CorrelationFactor struct {
	N      int
	Rows   [][]float64 // lower-triangular, Rows[i][j] valid for j <= i
	Jitter float64
}

// identityFactor returns the factor of the identity correlation matrix,
// used when no matrix is supplied (independent assets).
func identityFactor(n int) *CorrelationFactor {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, i+1)
		rows[i][i] = 1.0
	}
	return &CorrelationFactor{N: n, Rows: rows}
}

// ResolveCorrelation validates or defaults a correlation matrix and produces
// its Cholesky factor.
//
// A nil matrix defaults to identity. Otherwise the matrix is symmetrized as
// (C+Cᵗ)/2, its diagonal forced to 1, and factorized; on failure the
// diagonal-jitter repair loop runs with a hard ceiling so termination is
// guaranteed. Shape mismatches and unrepairable matrices return
// *InvalidCorrelationError.
func ResolveCorrelation(corr [][]float64, nAssets int) (*CorrelationFactor, error) {
	if corr == nil {
		return identityFactor(nAssets), nil
	}

	if len(corr) != nAssets {
		return nil, correlationErrorf("corr must be %dx%d, got %d rows", nAssets, nAssets, len(corr))
	}
	for i, row := range corr {
		if len(row) != nAssets {
			return nil, correlationErrorf("corr must be %dx%d, row %d has %d columns", nAssets, nAssets, i, len(row))
		}
	}
	for i := range corr {
		for j := range corr[i] {
			if math.IsNaN(corr[i][j]) || math.IsInf(corr[i][j], 0) {
				return nil, correlationErrorf("corr[%d][%d] is not finite", i, j)
			}
		}
	}

	// Symmetrize and force unit diagonal.
	c := make([]float64, nAssets*nAssets)
	for i := 0; i < nAssets; i++ {
		for j := 0; j < nAssets; j++ {
			c[i*nAssets+j] = 0.5 * (corr[i][j] + corr[j][i])
		}
		c[i*nAssets+i] = 1.0
	}

	jitter := 0.0
	for {
		data := make([]float64, len(c))
		copy(data, c)
		for i := 0; i < nAssets; i++ {
			data[i*nAssets+i] += jitter
		}

		var chol mat.Cholesky
		if chol.Factorize(mat.NewSymDense(nAssets, data)) {
			var l mat.TriDense
			chol.LTo(&l)

			rows := make([][]float64, nAssets)
			for i := 0; i < nAssets; i++ {
				rows[i] = make([]float64, i+1)
				for j := 0; j <= i; j++ {
					rows[i][j] = l.At(i, j)
				}
			}
			return &CorrelationFactor{N: nAssets, Rows: rows, Jitter: jitter}, nil
		}

		if jitter == 0.0 {
			jitter = jitterStart
		} else {
			jitter *= 10
		}
		if jitter > jitterCeiling {
			return nil, correlationErrorf("correlation matrix not positive semi-definite (jitter repair exhausted at %g)", jitterCeiling)
		}
	}
}

// Correlate left-multiplies the shock vector z by L in place of allocating:
// dst[i] = sum_{j<=i} L[i][j] * z[j]. dst and z must both have length N.
func (f *CorrelationFactor) Correlate(dst, z []float64) {
	for i := 0; i < f.N; i++ {
		sum := 0.0
		row := f.Rows[i]
		for j := 0; j <= i; j++ {
			sum += row[j] * z[j]
		}
		dst[i] = sum
	}
}

// Matrix reconstructs L*Lᵗ, mainly for diagnostics and tests.
func (f *CorrelationFactor) Matrix() [][]float64 {
	out := make([][]float64, f.N)
	for i := range out {
		out[i] = make([]float64, f.N)
		for j := 0; j < f.N; j++ {
			lo := i
			if j < i {
				lo = j
			}
			sum := 0.0
			for k := 0; k <= lo; k++ {
				sum += f.Rows[i][k] * f.Rows[j][k]
			}
			out[i][j] = sum
		}
	}
	return out
}

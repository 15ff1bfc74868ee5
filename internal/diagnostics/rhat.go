// Package diagnostics implements multi-chain convergence checks: the split
// Gelman-Rubin statistic, effective sample size via Geyer's initial monotone
// sequence, and per-parameter posterior summaries.
package diagnostics

import "math"

// SplitRhat computes the split-Rhat statistic for one scalar parameter from
// draws shaped [chains][samples].
//
// Each chain is halved, giving 2C chains of length N' = ⌊N/2⌋. With W the
// mean within-chain variance and B = N'·Var(chain means), the statistic is
// √(Var⁺/W) where Var⁺ = ((N'-1)/N')·W + B/N'. Values near 1 indicate the
// chains agree; constant or too-short series report exactly 1.
func SplitRhat(chains [][]float64) float64 {
	halves := splitChains(chains)
	if len(halves) < 2 {
		return 1
	}
	n := len(halves[0])
	if n < 2 {
		return 1
	}

	means := make([]float64, len(halves))
	var w float64
	for i, h := range halves {
		m, v := meanVar(h)
		means[i] = m
		w += v
	}
	w /= float64(len(halves))
	if w == 0 {
		return 1
	}

	_, varMeans := meanVar(means)
	b := float64(n) * varMeans
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// splitChains halves each chain, dropping the middle element of odd-length
// chains.
func splitChains(chains [][]float64) [][]float64 {
	out := make([][]float64, 0, 2*len(chains))
	for _, ch := range chains {
		half := len(ch) / 2
		if half == 0 {
			continue
		}
		out = append(out, ch[:half], ch[len(ch)-half:])
	}
	return out
}

// meanVar returns the sample mean and the (n-1)-denominator variance.
func meanVar(xs []float64) (float64, float64) {
	n := len(xs)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(n)
	if n < 2 {
		return m, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return m, ss / float64(n-1)
}

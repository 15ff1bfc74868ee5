package diagnostics

import "math"

// ESS estimates the effective sample size of one scalar parameter from draws
// shaped [chains][samples], using Geyer's initial monotone sequence.
//
// The autocovariance of each chain is computed up to lag ⌊N/2⌋ and averaged
// across chains; normalizing by the averaged lag-0 term gives ρ̂_t.
// Consecutive pairs (ρ̂_{2k-1} + ρ̂_{2k}) are summed while positive, the
// integrated autocorrelation time is τ = 1 + 2·Σ, and the estimate
// C·N/τ is clamped to [1, C·N].
func ESS(chains [][]float64) float64 {
	c := len(chains)
	if c == 0 || len(chains[0]) == 0 {
		return 1
	}
	n := len(chains[0])
	total := float64(c * n)
	maxLag := n / 2
	if maxLag < 1 {
		return clampESS(total, total)
	}

	acov := make([]float64, maxLag+1)
	for _, ch := range chains {
		m, _ := meanVar(ch)
		for t := 0; t <= maxLag; t++ {
			var s float64
			for i := 0; i+t < n; i++ {
				s += (ch[i] - m) * (ch[i+t] - m)
			}
			acov[t] += s / float64(n)
		}
	}
	for t := range acov {
		acov[t] /= float64(c)
	}
	if acov[0] <= 0 {
		return clampESS(total, total)
	}

	var sum float64
	for k := 1; 2*k <= maxLag; k++ {
		pair := (acov[2*k-1] + acov[2*k]) / acov[0]
		if pair <= 0 {
			break
		}
		sum += pair
	}
	tau := 1 + 2*sum
	return clampESS(total/tau, total)
}

func clampESS(ess, total float64) float64 {
	if math.IsNaN(ess) || ess < 1 {
		return 1
	}
	if ess > total {
		return total
	}
	return ess
}

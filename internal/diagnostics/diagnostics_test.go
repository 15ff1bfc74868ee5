package diagnostics

import (
	"math"
	"math/rand"
	"testing"
)

func gaussSeries(seed int64, n int, mean float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + rng.NormFloat64()
	}
	return out
}

// ar1Series produces a strongly autocorrelated chain with stationary unit
// variance.
func ar1Series(seed int64, n int, phi float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	innov := math.Sqrt(1 - phi*phi)
	x := rng.NormFloat64()
	for i := range out {
		x = phi*x + innov*rng.NormFloat64()
		out[i] = x
	}
	return out
}

// TestSplitRhatAgreementNearOne checks well-mixed chains from the same
// distribution produce Rhat close to 1.
func TestSplitRhatAgreementNearOne(t *testing.T) {
	chains := [][]float64{
		gaussSeries(1, 1000, 0),
		gaussSeries(2, 1000, 0),
		gaussSeries(3, 1000, 0),
		gaussSeries(4, 1000, 0),
	}
	r := SplitRhat(chains)
	if r < 0.99 || r > 1.01 {
		t.Fatalf("Rhat for agreeing chains: %v", r)
	}
}

// TestSplitRhatIdenticalChains duplicates one series across chains: the only
// between-chain spread left is the gap between the two halves of that one
// series, so Rhat stays within 0.01 of 1.
func TestSplitRhatIdenticalChains(t *testing.T) {
	series := gaussSeries(5, 1000, 0)
	r := SplitRhat([][]float64{series, series, series, series})
	if math.Abs(r-1) > 0.01 {
		t.Fatalf("Rhat for identical chains: %v", r)
	}
}

// TestSplitRhatMonotoneInDivergence shifts one chain progressively and
// expects Rhat to grow with the shift.
func TestSplitRhatMonotoneInDivergence(t *testing.T) {
	base := [][]float64{
		gaussSeries(10, 500, 0),
		gaussSeries(11, 500, 0),
		gaussSeries(12, 500, 0),
	}
	prev := 0.0
	for _, shift := range []float64{0.5, 2, 8} {
		chains := append([][]float64{}, base...)
		chains = append(chains, gaussSeries(13, 500, shift))
		r := SplitRhat(chains)
		if r <= prev {
			t.Fatalf("Rhat not monotone: shift %v gave %v after %v", shift, r, prev)
		}
		prev = r
	}
	if prev < 1.5 {
		t.Fatalf("strongly diverged chains should give large Rhat, got %v", prev)
	}
}

// TestSplitRhatConstantChains reports exactly 1 instead of dividing zero by
// zero.
func TestSplitRhatConstantChains(t *testing.T) {
	flat := make([]float64, 100)
	if r := SplitRhat([][]float64{flat, flat}); r != 1 {
		t.Fatalf("constant chains should give Rhat 1, got %v", r)
	}
}

// TestESSIndependentDraws expects near-nominal effective sample size for
// independent draws, and never more than the draw count.
func TestESSIndependentDraws(t *testing.T) {
	chains := [][]float64{
		gaussSeries(21, 2000, 0),
		gaussSeries(22, 2000, 0),
	}
	total := 4000.0
	ess := ESS(chains)
	if ess > total {
		t.Fatalf("ESS %v exceeds draw count %v", ess, total)
	}
	if ess < 0.5*total {
		t.Fatalf("independent draws should have near-nominal ESS, got %v of %v", ess, total)
	}
}

// TestESSAutocorrelatedDraws expects a strongly autocorrelated chain to lose
// most of its effective sample size: AR(1) with φ=0.9 has τ ≈ 19.
func TestESSAutocorrelatedDraws(t *testing.T) {
	chains := [][]float64{
		ar1Series(31, 2000, 0.9),
		ar1Series(32, 2000, 0.9),
	}
	ess := ESS(chains)
	if ess > 0.3*4000 {
		t.Fatalf("AR(1) chains should have small ESS, got %v", ess)
	}
	if ess < 1 {
		t.Fatalf("ESS fell below clamp: %v", ess)
	}
}

// TestESSClampBounds pins the [1, C·N] clamp on degenerate input.
func TestESSClampBounds(t *testing.T) {
	flat := make([]float64, 50)
	if ess := ESS([][]float64{flat}); ess != 50 {
		t.Fatalf("constant chain ESS should clamp to C·N, got %v", ess)
	}
	if ess := ESS(nil); ess != 1 {
		t.Fatalf("empty input ESS should clamp to 1, got %v", ess)
	}
}

package adapt

import (
	"math"

	"github.com/StefanSko/go-mcmc/internal/hmc"
	"github.com/StefanSko/go-mcmc/pkg/prng"
	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// maxStepSearchIters bounds the doubling/halving search so a pathological
// target cannot spin it forever.
const maxStepSearchIters = 50

// FindReasonableStep primes the step size before dual averaging begins.
//
// Starting from step0 it takes a single leapfrog step, then doubles the step
// size while the acceptance ratio exceeds 1/2 and halves it while the ratio
// falls below 1/2, stopping at the first sign flip of (2α − 1). The returned
// step yields an acceptance ratio near 1/2, which puts dual averaging in its
// useful regime from the first iteration.
func FindReasonableStep(q *ptree.Tree, key prng.Key, step0 float64, invMass *ptree.Tree, logProb hmc.LogProbFunc, grad hmc.GradFunc) float64 {
	z := key.NormalLike(q)
	p := ptree.Div(z, ptree.Sqrt(invMass))

	h0 := hmc.Energy(logProb, q, p, invMass)
	step := step0

	ratio := stepRatio(q, p, h0, step, invMass, logProb, grad)
	if math.IsNaN(ratio) {
		return clampStep(step0)
	}
	dir := 1.0
	if ratio <= 0.5 {
		dir = -1
	}
	for i := 0; i < maxStepSearchIters; i++ {
		step *= math.Pow(2, dir)
		if step <= StepSizeMin || step >= StepSizeMax {
			break
		}
		ratio = stepRatio(q, p, h0, step, invMass, logProb, grad)
		if math.IsNaN(ratio) {
			break
		}
		// Stop on the first crossing of α = 1/2.
		if (dir > 0) != (ratio > 0.5) {
			break
		}
	}
	return clampStep(step)
}

// stepRatio returns exp(H₀ − H₁) after one leapfrog step of the given size,
// or NaN when H₀ − H₁ is NaN or +∞. A proposal with H₁ = +∞ (outside the
// support) gives 0.
func stepRatio(q, p *ptree.Tree, h0, step float64, invMass *ptree.Tree, logProb hmc.LogProbFunc, grad hmc.GradFunc) float64 {
	q1, p1 := hmc.Leapfrog(q, p, grad, step, 1, invMass)
	h1 := hmc.Energy(logProb, q1, p1, invMass)
	dh := h0 - h1
	if math.IsNaN(dh) || math.IsInf(dh, 1) {
		return math.NaN()
	}
	return math.Exp(dh)
}

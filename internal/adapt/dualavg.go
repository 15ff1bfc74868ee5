// Package adapt implements warmup-time adaptation: Nesterov dual averaging
// for the integrator step size, a Welford estimator for the diagonal mass
// matrix, and the windowed warmup driver that schedules both.
package adapt

import "math"

// Step-size clamp applied to every adapted value.
const (
	StepSizeMin = 1e-4
	StepSizeMax = 100
)

// Dual-averaging hyperparameters.
const (
	daGamma = 0.05
	daT0    = 10
	daKappa = 0.75
)

// DualAveraging tunes the log step size toward a target acceptance
// probability using Nesterov's dual-averaging scheme.
type DualAveraging struct {
	mu         float64
	logStep    float64
	logStepAvg float64
	hBar       float64
	t          int
	target     float64
}

// NewDualAveraging starts adaptation from step0 toward the given target
// acceptance probability. The iterate is centered at mu = log(10·step0).
func NewDualAveraging(step0, target float64) *DualAveraging {
	return &DualAveraging{
		mu:         math.Log(10 * step0),
		logStep:    math.Log(step0),
		logStepAvg: math.Log(step0),
		target:     target,
	}
}

// Observe feeds one acceptance probability into the running estimate.
// A non-finite alpha counts as 0.
func (da *DualAveraging) Observe(alpha float64) {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		alpha = 0
	}
	da.t++
	t := float64(da.t)
	eta := 1 / (t + daT0)
	da.hBar = (1-eta)*da.hBar + eta*(da.target-alpha)
	da.logStep = da.mu - math.Sqrt(t)/daGamma*da.hBar
	w := math.Pow(t, -daKappa)
	da.logStepAvg = w*da.logStep + (1-w)*da.logStepAvg
}

// Step returns the clamped step size for the next transition.
func (da *DualAveraging) Step() float64 {
	return clampStep(math.Exp(da.logStep))
}

// Final returns the clamped averaged step size, frozen at end of warmup.
func (da *DualAveraging) Final() float64 {
	return clampStep(math.Exp(da.logStepAvg))
}

// Restart re-centers adaptation at step0, discarding accumulated state.
// Used after each mass-matrix update so the new metric gets a fresh
// step-size search.
func (da *DualAveraging) Restart(step0 float64) {
	da.mu = math.Log(10 * step0)
	da.logStep = math.Log(step0)
	da.logStepAvg = math.Log(step0)
	da.hBar = 0
	da.t = 0
}

func clampStep(step float64) float64 {
	return math.Min(math.Max(step, StepSizeMin), StepSizeMax)
}

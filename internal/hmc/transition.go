package hmc

import (
	"math"

	"github.com/StefanSko/go-mcmc/pkg/prng"
	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// Info reports what happened during one transition.
type Info struct {
	// AcceptProb is the Metropolis acceptance probability min(1, exp(-ΔH)),
	// or 0 when ΔH was not finite.
	AcceptProb float64
	// Accepted reports whether the proposal replaced the current position.
	Accepted bool
	// Energy is the Hamiltonian at the start of the trajectory.
	Energy float64
}

// Transition performs one Metropolis-corrected HMC step from s.
//
// It consumes key and returns the successor chain key alongside the new state
// and transition info. The kernel is detailed-balanced with respect to
// exp(logProb): leapfrog is volume-preserving and reversible under momentum
// negation, and the Gaussian momentum refresh is symmetric.
//
// Divergences never abort the chain. A non-finite momentum draw, Hamiltonian,
// or proposal position yields acceptance probability 0 and keeps the current
// position.
func Transition(s State, key prng.Key, steps int, logProb LogProbFunc, grad GradFunc) (State, Info, prng.Key) {
	ks := key.Split(3)
	kMom, kAcc, kNext := ks[0], ks[1], ks[2]

	// p = z ⊙ √M where M = 1/M⁻¹, drawn per element.
	z := kMom.NormalLike(s.Q)
	p := ptree.Div(z, ptree.Sqrt(s.InvMass))

	info := Info{}
	if !ptree.AllFinite(p) {
		kAcc.Uniform()
		return s, info, kNext
	}

	h0 := Energy(logProb, s.Q, p, s.InvMass)
	info.Energy = h0

	q1, p1 := Leapfrog(s.Q, p, grad, s.StepSize, steps, s.InvMass)
	h1 := Energy(logProb, q1, p1, s.InvMass)

	dh := h1 - h0
	alpha := 0.0
	switch {
	case math.IsNaN(dh) || math.IsInf(dh, 0):
		alpha = 0
	case dh <= 0:
		alpha = 1
	default:
		alpha = math.Exp(-dh)
	}
	if !ptree.AllFinite(q1) {
		alpha = 0
	}
	info.AcceptProb = alpha

	u := kAcc.Uniform()
	if u < alpha {
		s.Q = q1
		info.Accepted = true
	}
	return s, info, kNext
}

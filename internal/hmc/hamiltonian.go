package hmc

import "github.com/StefanSko/go-mcmc/pkg/ptree"

// Kinetic computes K(p) = 0.5 · Σ p ⊙ p ⊙ M⁻¹, summed over all leaves and
// elements, accumulated in float64.
func Kinetic(p, invMass *ptree.Tree) float64 {
	return 0.5 * ptree.Dot(ptree.Mul(p, invMass), p)
}

// Energy computes the Hamiltonian H(q, p) = -logProb(q) + K(p).
//
// Non-finite log densities propagate into the returned value; the caller
// treats a non-finite ΔH as rejection.
func Energy(logProb LogProbFunc, q, p, invMass *ptree.Tree) float64 {
	return -logProb(q) + Kinetic(p, invMass)
}

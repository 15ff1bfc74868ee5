package hmc

import "github.com/StefanSko/go-mcmc/pkg/ptree"

// Leapfrog integrates Hamiltonian dynamics for steps full steps of size step
// starting from (q, p), using the diagonal inverse mass invMass.
//
// The update ordering is the textbook half-kick / drift / kick sequence:
//
//	p½   = p + (ε/2)·∇logProb(q)
//	qᵢ₊₁ = qᵢ + ε·(M⁻¹ ⊙ pᵢ₊½)
//	pᵢ₊½ = pᵢ₋½ + ε·∇logProb(qᵢ₊₁)     (final kick uses ε/2)
//
// This ordering is what makes the map symplectic and time-reversible; do not
// reorder it. The gradient is evaluated exactly steps+1 times and never
// reused across invocations.
//
// Non-finite gradients are not an error here: they flow through the state and
// surface as a non-finite Hamiltonian, which the transition rejects. The
// integrator itself never fails.
func Leapfrog(q, p *ptree.Tree, grad GradFunc, step float64, steps int, invMass *ptree.Tree) (*ptree.Tree, *ptree.Tree) {
	if steps < 1 {
		panic("hmc: leapfrog needs at least one step")
	}
	eps := float32(step)
	half := eps / 2

	g := grad(q)
	p = ptree.AddScaled(p, g, half)
	for i := 1; i <= steps; i++ {
		q = ptree.AddScaled(q, ptree.Mul(invMass, p), eps)
		g = grad(q)
		if i < steps {
			p = ptree.AddScaled(p, g, eps)
		} else {
			p = ptree.AddScaled(p, g, half)
		}
	}
	return q, p
}

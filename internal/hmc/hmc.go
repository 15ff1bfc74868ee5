// Package hmc implements the Hamiltonian Monte Carlo transition kernel: the
// leapfrog integrator, the Hamiltonian functional, and the
// Metropolis-corrected transition built on top of them.
package hmc

import (
	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// LogProbFunc evaluates the (possibly unnormalized) target log-density.
type LogProbFunc func(q *ptree.Tree) float64

// GradFunc evaluates the gradient of the log-density. The returned tree has
// the structure of q.
type GradFunc func(q *ptree.Tree) *ptree.Tree

// State is the per-chain sampler state: the current position, the integrator
// step size, and the diagonal inverse mass stored as a tree with the
// structure of the position. Inverse-mass entries are strictly positive.
type State struct {
	Q        *ptree.Tree
	StepSize float64
	InvMass  *ptree.Tree
}

// NewState initializes a chain at q with the given step size and an identity
// inverse mass.
func NewState(q *ptree.Tree, stepSize float64) State {
	return State{
		Q:        q.Clone(),
		StepSize: stepSize,
		InvMass:  ptree.OnesLike(q),
	}
}

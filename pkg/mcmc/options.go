package mcmc

import (
	"errors"
	"fmt"

	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// Validation errors surfaced synchronously by Sample.
var (
	ErrNoLogProb         = errors.New("mcmc: LogProb is required")
	ErrNoGrad            = errors.New("mcmc: GradLogProb is required")
	ErrNoInitial         = errors.New("mcmc: Initial position is required")
	ErrInvalidSamples    = errors.New("mcmc: NumSamples must be positive")
	ErrInvalidWarmup     = errors.New("mcmc: NumWarmup must be nonnegative")
	ErrInvalidChains     = errors.New("mcmc: NumChains must be positive")
	ErrInvalidLeapfrog   = errors.New("mcmc: NumLeapfrogSteps must be positive")
	ErrInvalidStepSize   = errors.New("mcmc: InitialStepSize must be positive")
	ErrInvalidTarget     = errors.New("mcmc: TargetAcceptRate must lie in (0, 1)")
	ErrStructureMismatch = errors.New("mcmc: gradient structure does not match the initial position")
)

// Options configure a sampling run. The zero value is completed by
// withDefaults; only NumSamples has no default.
type Options struct {
	// NumSamples is the number of post-warmup draws per chain. Required.
	NumSamples int
	// NumWarmup is the adaptation iteration count. Default 1000.
	NumWarmup int
	// NumLeapfrogSteps is the trajectory length L. Default 25.
	NumLeapfrogSteps int
	// NumChains is the number of independent chains. Default 1.
	NumChains int
	// InitialStepSize is ε₀ before adaptation. Default 0.1.
	InitialStepSize float64
	// TargetAcceptRate is the dual-averaging target δ. Default 0.8.
	TargetAcceptRate float64
	// DisableMassAdaptation turns off Welford diagonal-mass estimation and
	// keeps the identity metric. Default false: the mass matrix is adapted.
	DisableMassAdaptation bool
}

func (o Options) withDefaults() Options {
	if o.NumWarmup == 0 {
		o.NumWarmup = 1000
	}
	if o.NumLeapfrogSteps == 0 {
		o.NumLeapfrogSteps = 25
	}
	if o.NumChains == 0 {
		o.NumChains = 1
	}
	if o.InitialStepSize == 0 {
		o.InitialStepSize = 0.1
	}
	if o.TargetAcceptRate == 0 {
		o.TargetAcceptRate = 0.8
	}
	return o
}

func (o Options) validate() error {
	if o.NumSamples <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidSamples, o.NumSamples)
	}
	if o.NumWarmup < 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidWarmup, o.NumWarmup)
	}
	if o.NumChains <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidChains, o.NumChains)
	}
	if o.NumLeapfrogSteps <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidLeapfrog, o.NumLeapfrogSteps)
	}
	if o.InitialStepSize <= 0 {
		return fmt.Errorf("%w (got %g)", ErrInvalidStepSize, o.InitialStepSize)
	}
	if o.TargetAcceptRate <= 0 || o.TargetAcceptRate >= 1 {
		return fmt.Errorf("%w (got %g)", ErrInvalidTarget, o.TargetAcceptRate)
	}
	return nil
}

// checkProblem validates the user-supplied callbacks against the initial
// position: the gradient must return a tree with the same structure.
func checkProblem(p Problem) error {
	if p.LogProb == nil {
		return ErrNoLogProb
	}
	if p.GradLogProb == nil {
		return ErrNoGrad
	}
	if p.Initial == nil {
		return ErrNoInitial
	}
	// A non-finite gradient here is not fatal: divergence handling in the
	// transition covers it. Only the structure contract is checked up front.
	g := p.GradLogProb(p.Initial)
	if !ptree.SameStructure(p.Initial, g) {
		return ErrStructureMismatch
	}
	return nil
}

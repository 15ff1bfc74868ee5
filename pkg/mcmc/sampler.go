// Package mcmc is the public entry point of the sampling engine: it draws
// approximately independent samples from a differentiable log-density using
// Hamiltonian Monte Carlo with warmup-time adaptation of the integrator step
// size and a diagonal mass matrix.
//
// The caller supplies the log-density, its gradient, an initial parameter
// tree, and a root PRNG key; everything downstream of the root key is
// deterministic and bit-reproducible.
package mcmc

import (
	"sync"

	"github.com/StefanSko/go-mcmc/internal/logger"
	"github.com/StefanSko/go-mcmc/internal/sampler"
	"github.com/StefanSko/go-mcmc/pkg/prng"
	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// Problem is the user-supplied sampling target.
type Problem struct {
	// LogProb evaluates the target log-density, possibly unnormalized.
	LogProb func(q *ptree.Tree) float64
	// GradLogProb evaluates ∇logProb; the result must share the structure
	// of its input.
	GradLogProb func(q *ptree.Tree) *ptree.Tree
	// Initial defines the parameter structure and the starting position of
	// every chain.
	Initial *ptree.Tree
}

// Stats aggregates per-chain run statistics.
type Stats struct {
	// AcceptRate and StepSize are indexed by chain.
	AcceptRate []float64
	StepSize   []float64
	// MassMatrix is the inverse mass averaged across chains, with the
	// structure of the parameter tree.
	MassMatrix *ptree.Tree
}

// MeanAcceptRate returns the acceptance rate averaged over chains.
func (s Stats) MeanAcceptRate() float64 { return mean(s.AcceptRate) }

// MeanStepSize returns the frozen step size averaged over chains.
func (s Stats) MeanStepSize() float64 { return mean(s.StepSize) }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Result is the output of a sampling run.
type Result struct {
	// Draws mirrors the parameter tree with a leading
	// [numChains, numSamples] axis pair on every leaf.
	Draws *ptree.Tree
	Stats Stats
}

// Sample runs numChains independent HMC chains and stacks their draws.
//
// The root key is split into one child per chain in index order; each chain
// uses its child exclusively, so results are bit-identical across runs and
// across sequential or parallel chain execution. Chains run concurrently,
// one goroutine each.
//
// Configuration errors are returned synchronously; numerical divergence
// during sampling is never an error (the affected proposals are rejected).
func Sample(p Problem, key prng.Key, opts Options, log logger.Logger) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkProblem(p); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}

	chainKeys := key.Split(opts.NumChains)
	results := make([]sampler.ChainResult, opts.NumChains)

	var wg sync.WaitGroup
	for c := 0; c < opts.NumChains; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			results[c] = sampler.Run(sampler.ChainConfig{
				Initial:         p.Initial,
				Key:             chainKeys[c],
				NumWarmup:       opts.NumWarmup,
				NumSamples:      opts.NumSamples,
				LeapfrogSteps:   opts.NumLeapfrogSteps,
				InitialStepSize: opts.InitialStepSize,
				TargetAccept:    opts.TargetAcceptRate,
				AdaptMassMatrix: !opts.DisableMassAdaptation,
				LogProb:         p.LogProb,
				Grad:            p.GradLogProb,
				Log:             log.With("chain", c),
			})
		}(c)
	}
	wg.Wait()

	perChain := make([]*ptree.Tree, opts.NumChains)
	stats := Stats{
		AcceptRate: make([]float64, opts.NumChains),
		StepSize:   make([]float64, opts.NumChains),
	}
	for c, r := range results {
		perChain[c] = ptree.Stack(r.Draws)
		stats.AcceptRate[c] = r.AcceptRate
		stats.StepSize[c] = r.StepSize
		if stats.MassMatrix == nil {
			stats.MassMatrix = r.InvMass.Clone()
		} else {
			stats.MassMatrix = ptree.Add(stats.MassMatrix, r.InvMass)
		}
	}
	stats.MassMatrix = ptree.Scale(stats.MassMatrix, 1/float32(opts.NumChains))

	log.Info("sampling complete",
		"chains", opts.NumChains,
		"samples", opts.NumSamples,
		"accept_rate", stats.MeanAcceptRate(),
		"step_size", stats.MeanStepSize())

	return &Result{
		Draws: ptree.Stack(perChain),
		Stats: stats,
	}, nil
}

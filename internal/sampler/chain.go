// Package sampler runs a single HMC chain: warmup followed by recorded
// sampling transitions. Chains are orchestrated by the public mcmc package.
package sampler

import (
	"github.com/StefanSko/go-mcmc/internal/adapt"
	"github.com/StefanSko/go-mcmc/internal/hmc"
	"github.com/StefanSko/go-mcmc/internal/logger"
	"github.com/StefanSko/go-mcmc/pkg/prng"
	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

// ChainConfig carries everything one chain needs. All fields are required.
type ChainConfig struct {
	Initial         *ptree.Tree
	Key             prng.Key
	NumWarmup       int
	NumSamples      int
	LeapfrogSteps   int
	InitialStepSize float64
	TargetAccept    float64
	AdaptMassMatrix bool
	LogProb         hmc.LogProbFunc
	Grad            hmc.GradFunc
	Log             logger.Logger
}

// ChainResult is the output of one finished chain.
type ChainResult struct {
	// Draws holds the recorded positions, one tree per post-warmup
	// transition, accepted or not.
	Draws []*ptree.Tree
	// AcceptRate is the mean acceptance probability over post-warmup
	// transitions.
	AcceptRate float64
	// StepSize and InvMass are the frozen adaptation results.
	StepSize float64
	InvMass  *ptree.Tree
}

// Run executes warmup and sampling for one chain.
func Run(cfg ChainConfig) ChainResult {
	s := hmc.NewState(cfg.Initial, cfg.InitialStepSize)
	key := cfg.Key

	s, key = adapt.Warmup(s, key, adapt.Config{
		NumWarmup:       cfg.NumWarmup,
		LeapfrogSteps:   cfg.LeapfrogSteps,
		TargetAccept:    cfg.TargetAccept,
		AdaptMassMatrix: cfg.AdaptMassMatrix,
	}, cfg.LogProb, cfg.Grad, cfg.Log)

	draws := make([]*ptree.Tree, 0, cfg.NumSamples)
	var alphaSum float64
	for i := 0; i < cfg.NumSamples; i++ {
		var info hmc.Info
		s, info, key = hmc.Transition(s, key, cfg.LeapfrogSteps, cfg.LogProb, cfg.Grad)
		alphaSum += info.AcceptProb
		draws = append(draws, s.Q.Clone())
	}

	res := ChainResult{
		Draws:    draws,
		StepSize: s.StepSize,
		InvMass:  s.InvMass,
	}
	if cfg.NumSamples > 0 {
		res.AcceptRate = alphaSum / float64(cfg.NumSamples)
	}
	return res
}

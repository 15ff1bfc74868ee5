package sampler

import (
	"testing"

	"github.com/StefanSko/go-mcmc/internal/logger"
	"github.com/StefanSko/go-mcmc/pkg/prng"
	"github.com/StefanSko/go-mcmc/pkg/ptree"
)

func gaussConfig(key prng.Key, warmup, samples int) ChainConfig {
	return ChainConfig{
		Initial:         ptree.Vector(0.5, -0.5),
		Key:             key,
		NumWarmup:       warmup,
		NumSamples:      samples,
		LeapfrogSteps:   10,
		InitialStepSize: 0.1,
		TargetAccept:    0.8,
		AdaptMassMatrix: true,
		LogProb: func(q *ptree.Tree) float64 {
			return -0.5 * ptree.Dot(q, q)
		},
		Grad: func(q *ptree.Tree) *ptree.Tree {
			return ptree.Scale(q, -1)
		},
		Log: logger.Discard(),
	}
}

// TestRunRecordsEveryTransition checks one draw is recorded per post-warmup
// transition, each owning its own buffers.
func TestRunRecordsEveryTransition(t *testing.T) {
	res := Run(gaussConfig(prng.NewKey(3), 50, 40))
	if len(res.Draws) != 40 {
		t.Fatalf("expected 40 draws, got %d", len(res.Draws))
	}
	for i := 1; i < len(res.Draws); i++ {
		if res.Draws[i] == res.Draws[i-1] {
			t.Fatal("consecutive draws share a tree")
		}
	}
	res.Draws[0].Leaf.Data[0] = 1e9
	if res.Draws[1].Leaf.Data[0] == 1e9 {
		t.Fatal("draws alias each other's buffers")
	}
}

// TestRunFrozenAdaptation requires the returned step size and inverse mass
// to be present and positive after warmup.
func TestRunFrozenAdaptation(t *testing.T) {
	res := Run(gaussConfig(prng.NewKey(4), 200, 10))
	if res.StepSize <= 0 {
		t.Fatalf("frozen step size %v", res.StepSize)
	}
	for _, leaf := range res.InvMass.Leaves() {
		for _, v := range leaf.Data {
			if v <= 0 {
				t.Fatalf("non-positive inverse mass entry %v", v)
			}
		}
	}
	if res.AcceptRate <= 0 || res.AcceptRate > 1 {
		t.Fatalf("acceptance rate %v out of range", res.AcceptRate)
	}
}

package adapt

import (
	"github.com/StefanSko/go-mcmc/internal/hmc"
	"github.com/StefanSko/go-mcmc/internal/logger"
	"github.com/StefanSko/go-mcmc/pkg/prng"
)

// Window layout constants for the windowed schedule: an initial buffer that
// adapts step size only, a middle region of doubling mass-matrix windows, and
// a terminal buffer that lets dual averaging settle against the final metric.
const (
	initBufferFrac = 0.15
	termBufferFrac = 0.10
	firstWindow    = 25
)

// Config drives one warmup run.
type Config struct {
	NumWarmup       int
	LeapfrogSteps   int
	TargetAccept    float64
	AdaptMassMatrix bool
}

// Warmup runs cfg.NumWarmup adaptation transitions from s and returns the
// state with the frozen step size and inverse mass installed, plus the
// advanced chain key.
//
// Schedule: windowed. The first ~15% of iterations adapt the step size only.
// The middle region additionally feeds positions to a Welford estimator in
// doubling windows (25, 50, 100, ... iterations, the last window absorbing
// the remainder); at each window end the inverse mass is frozen from the
// window's samples, the estimator is cleared, and dual averaging restarts
// centered on its current averaged step so the new metric gets a fresh
// step-size search. The final ~10% adapt the step size only. The frozen step
// size is the averaged iterate of the last dual-averaging leg.
//
// When the middle region is too short for even one full window, mass
// adaptation is skipped and the identity metric is kept.
func Warmup(s hmc.State, key prng.Key, cfg Config, logProb hmc.LogProbFunc, grad hmc.GradFunc, log logger.Logger) (hmc.State, prng.Key) {
	if cfg.NumWarmup <= 0 {
		return s, key
	}

	ks := key.Split(2)
	key = ks[1]
	s.StepSize = FindReasonableStep(s.Q, ks[0], s.StepSize, s.InvMass, logProb, grad)
	log.Debug("primed step size", "step_size", s.StepSize)

	da := NewDualAveraging(s.StepSize, cfg.TargetAccept)

	massStart, massEnd, windowEnds := massWindows(cfg.NumWarmup)
	var wf *Welford
	if cfg.AdaptMassMatrix && massStart < massEnd {
		wf = NewWelford(s.Q)
	}

	for t := 0; t < cfg.NumWarmup; t++ {
		var info hmc.Info
		s, info, key = hmc.Transition(s, key, cfg.LeapfrogSteps, logProb, grad)
		da.Observe(info.AcceptProb)
		s.StepSize = da.Step()

		if wf == nil || t < massStart || t >= massEnd {
			continue
		}
		wf.Observe(s.Q)
		if windowEnds[t] {
			s.InvMass = wf.InvMass()
			wf.Reset()
			da.Restart(da.Final())
			s.StepSize = da.Step()
			log.Debug("mass window closed", "iter", t, "step_size", s.StepSize)
		}
	}

	s.StepSize = da.Final()
	log.Debug("warmup complete", "step_size", s.StepSize)
	return s, key
}

// massWindows computes the half-open middle region [start, end) and the set
// of iterations that close a mass-matrix window. An empty region disables
// mass adaptation.
func massWindows(numWarmup int) (start, end int, windowEnds map[int]bool) {
	start = int(initBufferFrac * float64(numWarmup))
	end = numWarmup - int(termBufferFrac*float64(numWarmup))
	windowEnds = make(map[int]bool)
	if end-start < firstWindow {
		return start, start, windowEnds
	}
	w := firstWindow
	pos := start
	for pos < end {
		size := w
		// The last window absorbs a remainder too short to double into.
		if pos+size > end || end-(pos+size) < 2*size {
			size = end - pos
		}
		pos += size
		windowEnds[pos-1] = true
		w *= 2
	}
	return start, end, windowEnds
}

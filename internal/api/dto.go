package api

import "github.com/StefanSko/go-mcmc/internal/diagnostics"

// RunRequest submits a sampling run against a built-in target.
type RunRequest struct {
	Target string `json:"target"`
	// Seed is the root PRNG seed. Runs with the same seed and settings are
	// bit-identical.
	Seed       uint64 `json:"seed"`
	NumSamples int    `json:"num_samples"`
	NumWarmup  *int   `json:"num_warmup,omitempty"`
	NumChains  *int   `json:"num_chains,omitempty"`
	// NumLeapfrogSteps is the trajectory length.
	NumLeapfrogSteps *int `json:"num_leapfrog_steps,omitempty"`
}

// RunStats mirrors the sampler statistics for JSON transport.
type RunStats struct {
	AcceptRate []float64 `json:"accept_rate"`
	StepSize   []float64 `json:"step_size"`
}

// RunResponse describes one run's lifecycle state.
type RunResponse struct {
	ID        string                `json:"id"`
	Object    string                `json:"object"`
	Target    string                `json:"target"`
	Status    string                `json:"status"`
	CreatedAt int64                 `json:"created_at"`
	Error     string                `json:"error,omitempty"`
	Stats     *RunStats             `json:"stats,omitempty"`
	Summary   []diagnostics.Summary `json:"summary,omitempty"`
}

// TargetInfo describes one built-in target.
type TargetInfo struct {
	Name string `json:"name"`
	Desc string `json:"description"`
}

// ResponseError is the error envelope returned by every failing endpoint.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Run lifecycle states.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

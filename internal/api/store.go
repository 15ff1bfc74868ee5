package api

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/StefanSko/go-mcmc/internal/diagnostics"
)

// RunStore is a mutex-guarded in-memory registry of submitted runs.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*RunResponse
}

// NewRunStore creates an empty store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*RunResponse)}
}

// Create registers a new run in the running state and returns its snapshot.
func (s *RunStore) Create(target string, now time.Time) RunResponse {
	run := &RunResponse{
		ID:        "run-" + uuid.NewString(),
		Object:    "sampling.run",
		Target:    target,
		Status:    StatusRunning,
		CreatedAt: now.Unix(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return *run
}

// Complete marks a run finished and attaches its results.
func (s *RunStore) Complete(id string, stats *RunStats, summary []diagnostics.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return
	}
	run.Status = StatusCompleted
	run.Stats = stats
	run.Summary = summary
}

// Fail marks a run failed with a message.
func (s *RunStore) Fail(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return
	}
	run.Status = StatusFailed
	run.Error = msg
}

// Get returns a snapshot of one run.
func (s *RunStore) Get(id string) (RunResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return RunResponse{}, false
	}
	return *run, true
}

// List returns snapshots of all runs, newest first.
func (s *RunStore) List() []RunResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunResponse, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, *run)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

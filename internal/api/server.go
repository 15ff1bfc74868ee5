// Package api exposes sampling runs over HTTP: submit a run against a
// built-in target, poll its status, and fetch diagnostics once it finishes.
package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/StefanSko/go-mcmc/internal/diagnostics"
	"github.com/StefanSko/go-mcmc/internal/logger"
	"github.com/StefanSko/go-mcmc/internal/targets"
	"github.com/StefanSko/go-mcmc/pkg/mcmc"
	"github.com/StefanSko/go-mcmc/pkg/prng"
)

// Server wires the run store and the sampler into echo routes.
type Server struct {
	store *RunStore
	log   logger.Logger
}

// NewServer creates a Server around the given store.
func NewServer(store *RunStore, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{store: store, log: log}
}

// Register installs all routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/runs", s.handleCreateRun)
	e.GET("/v1/runs", s.handleListRuns)
	e.GET("/v1/runs/:id", s.handleGetRun)
	e.GET("/v1/targets", s.handleListTargets)
}

func (s *Server) handleCreateRun(c *echo.Context) error {
	req, err := decodeJSON[RunRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	target, err := targets.Lookup(req.Target)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.NumSamples <= 0 {
		return writeBadRequest(c, "num_samples must be positive")
	}

	opts := mcmc.Options{NumSamples: req.NumSamples}
	if req.NumWarmup != nil {
		opts.NumWarmup = *req.NumWarmup
	}
	if req.NumChains != nil {
		opts.NumChains = *req.NumChains
	}
	if req.NumLeapfrogSteps != nil {
		opts.NumLeapfrogSteps = *req.NumLeapfrogSteps
	}

	run := s.store.Create(target.Name, time.Now())
	s.log.Info("run submitted", "id", run.ID, "target", target.Name)

	go s.execute(run.ID, target, req.Seed, opts)

	return c.JSON(http.StatusAccepted, run)
}

// execute performs the sampling run in the background and records the
// outcome. Configuration errors surface as a failed run, never a panic.
func (s *Server) execute(id string, target *targets.Target, seed uint64, opts mcmc.Options) {
	result, err := mcmc.Sample(mcmc.Problem{
		LogProb:     target.LogProb,
		GradLogProb: target.Grad,
		Initial:     target.Init(),
	}, prng.NewKey(seed), opts, s.log.With("run", id))
	if err != nil {
		s.log.Error("run failed", "id", id, "error", err)
		s.store.Fail(id, err.Error())
		return
	}
	s.store.Complete(id, &RunStats{
		AcceptRate: result.Stats.AcceptRate,
		StepSize:   result.Stats.StepSize,
	}, diagnostics.Summarize(result.Draws))
	s.log.Info("run complete", "id", id)
}

func (s *Server) handleGetRun(c *echo.Context) error {
	run, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "no such run")
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) handleListRuns(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   s.store.List(),
	})
}

func (s *Server) handleListTargets(c *echo.Context) error {
	names := targets.Names()
	infos := make([]TargetInfo, 0, len(names))
	for _, n := range names {
		t, err := targets.Lookup(n)
		if err != nil {
			continue
		}
		infos = append(infos, TargetInfo{Name: t.Name, Desc: t.Desc})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   infos,
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("invalid JSON body: %w", err)
	}
	return v, nil
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{Message: msg, Type: errType},
	})
}

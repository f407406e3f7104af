package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/rsum/pkg/dataset"
	"github.com/papercomputeco/rsum/pkg/pipeline"
	"github.com/papercomputeco/rsum/pkg/runner"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SubmitRunRequest is the body of POST /v1/runs.
type SubmitRunRequest struct {
	Sessions       [][]string `json:"sessions"`
	CurrentContext []string   `json:"current_context"`
	Variant        string     `json:"variant,omitempty"`
}

// SubmitRunResponse acknowledges a queued run.
type SubmitRunResponse struct {
	ID     string        `json:"id"`
	Status runner.Status `json:"status"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSubmitRun validates a dataset body and queues it.
func (s *Server) handleSubmitRun(c *fiber.Ctx) error {
	var req SubmitRunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	ds, err := dataset.Build(dataset.Document{
		Sessions:       req.Sessions,
		CurrentContext: req.CurrentContext,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	var variant pipeline.Variant
	if req.Variant != "" {
		variant, err = pipeline.ParseVariant(req.Variant)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	run, err := s.runs.Submit(runner.Job{
		Variant:  variant,
		Sessions: ds.Sessions,
		Context:  ds.Context,
	})
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrUnknownVariant):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, runner.ErrQueueFull), errors.Is(err, runner.ErrClosed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("failed to submit run", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to submit run"})
	}

	s.logger.Info("run accepted",
		"run_id", run.ID,
		"variant", string(run.Variant),
		"sessions", len(ds.Sessions),
	)

	return c.Status(fiber.StatusAccepted).JSON(SubmitRunResponse{ID: run.ID, Status: run.Status})
}

// handleGetRun returns the status of a run and, once finished, its result.
func (s *Server) handleGetRun(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	run, err := s.runs.Get(id)
	if err != nil {
		if errors.Is(err, runner.ErrRunNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "run not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get run"})
	}

	return c.JSON(run)
}

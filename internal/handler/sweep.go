package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/service"
	"github.com/tuneforge/api/pkg/response"
)

// SweepHandler exposes the internal sweep trigger used by external cron
// callers. The asynq scheduler drives the same sweeper in-process.
type SweepHandler struct {
	sweeper    *service.Sweeper
	sweepToken string
}

func NewSweepHandler(sweeper *service.Sweeper, sweepToken string) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, sweepToken: sweepToken}
}

// Sweep handles POST /internal/tasks/sweep
// @Summary      Trigger a reconciliation sweep
// @Description  Poll all due generation tasks against the provider
// @Tags         Internal
// @Produce      json
// @Param        X-Sweep-Token header string true "Shared sweep token"
// @Success      200 {object} model.SweepResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      500 {object} model.SweepResponse
// @Router       /internal/tasks/sweep [post]
func (h *SweepHandler) Sweep(c *fiber.Ctx) error {
	if h.sweepToken == "" || c.Get("X-Sweep-Token") != h.sweepToken {
		return response.Unauthorized(c, "Invalid sweep token")
	}

	result, err := h.sweeper.Run(c.Context())
	if err != nil {
		// The response body stays well-formed so cron callers can always
		// parse it.
		log.Printf("[Sweep] run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(model.SweepResponse{Success: false})
	}

	return c.JSON(model.SweepResponse{
		Success:   true,
		Polled:    result.Polled,
		Completed: result.Completed,
		Failed:    result.Failed,
	})
}

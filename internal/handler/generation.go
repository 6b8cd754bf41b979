package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tuneforge/api/internal/middleware"
	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/service"
	"github.com/tuneforge/api/internal/store"
	"github.com/tuneforge/api/pkg/response"
)

type GenerationHandler struct {
	generation *service.GenerationService
	sweeper    *service.Sweeper
	validator  *validator.Validate
}

func NewGenerationHandler(generation *service.GenerationService, sweeper *service.Sweeper, v *validator.Validate) *GenerationHandler {
	return &GenerationHandler{
		generation: generation,
		sweeper:    sweeper,
		validator:  v,
	}
}

// Generate handles POST /api/generate
// @Summary      Submit a generation task
// @Description  Submit a song generation request; songs are delivered asynchronously
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request body model.GenerateRequest true "Generation request"
// @Success      202 {object} model.GenerateResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generate [post]
func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.generation.Submit(c.Context(), middleware.GetUserID(c), middleware.GetUserEmail(c), middleware.GetUserName(c), &req)
	if err != nil {
		switch err {
		case service.ErrUserSuspended:
			return response.Forbidden(c, "Account is suspended")
		case service.ErrPersonaNotFound:
			return response.NotFound(c, "Persona not found")
		}
		return response.ProviderError(c, "Music generation is temporarily unavailable")
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/generate/status/:taskId
// @Summary      Get generation task status
// @Description  Get the current status of a generation task, including any persisted songs
// @Tags         Generation
// @Produce      json
// @Param        taskId path string true "Task ID"
// @Success      200 {object} model.TaskStatusResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generate/status/{taskId} [get]
func (h *GenerationHandler) Status(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		return response.ValidationError(c, "Task ID is required", nil)
	}

	result, err := h.generation.Status(c.Context(), middleware.GetUserID(c), taskID)
	if err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "Task not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Pending handles GET /api/generate/pending
// @Summary      List pending generation tasks
// @Description  List the caller's outstanding generation tasks
// @Tags         Generation
// @Produce      json
// @Success      200 {object} model.PendingTasksResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generate/pending [get]
func (h *GenerationHandler) Pending(c *fiber.Ctx) error {
	result, err := h.generation.Pending(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, result)
}

// Recover handles POST /api/generate/recover
// @Summary      Recover stuck generation tasks
// @Description  Re-check all of the caller's recent non-terminal tasks against the provider
// @Tags         Generation
// @Produce      json
// @Success      200 {object} model.RecoveryResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/generate/recover [post]
func (h *GenerationHandler) Recover(c *fiber.Ctx) error {
	result, err := h.sweeper.RecoverUser(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, result)
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}

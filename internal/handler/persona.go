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

type PersonaHandler struct {
	personas  *service.PersonaService
	validator *validator.Validate
}

func NewPersonaHandler(personas *service.PersonaService, v *validator.Validate) *PersonaHandler {
	return &PersonaHandler{personas: personas, validator: v}
}

// Create handles POST /api/personas
// @Summary      Create a persona
// @Tags         Personas
// @Accept       json
// @Produce      json
// @Param        request body model.PersonaRequest true "Persona"
// @Success      201 {object} model.Persona
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/personas [post]
func (h *PersonaHandler) Create(c *fiber.Ctx) error {
	var req model.PersonaRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	persona, err := h.personas.Create(c.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.Created(c, persona)
}

// List handles GET /api/personas
// @Summary      List personas
// @Tags         Personas
// @Produce      json
// @Success      200 {array} model.Persona
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/personas [get]
func (h *PersonaHandler) List(c *fiber.Ctx) error {
	personas, err := h.personas.List(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, personas)
}

// Get handles GET /api/personas/:id
// @Summary      Get a persona
// @Tags         Personas
// @Produce      json
// @Param        id path string true "Persona ID"
// @Success      200 {object} model.Persona
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/personas/{id} [get]
func (h *PersonaHandler) Get(c *fiber.Ctx) error {
	persona, err := h.personas.Get(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "Persona not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, persona)
}

// Update handles PUT /api/personas/:id
// @Summary      Update a persona
// @Tags         Personas
// @Accept       json
// @Produce      json
// @Param        id path string true "Persona ID"
// @Param        request body model.PersonaRequest true "Persona"
// @Success      200 {object} model.Persona
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/personas/{id} [put]
func (h *PersonaHandler) Update(c *fiber.Ctx) error {
	var req model.PersonaRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	persona, err := h.personas.Update(c.Context(), middleware.GetUserID(c), c.Params("id"), &req)
	if err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "Persona not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, persona)
}

// Delete handles DELETE /api/personas/:id
// @Summary      Delete a persona
// @Tags         Personas
// @Param        id path string true "Persona ID"
// @Success      204 "No Content"
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/personas/{id} [delete]
func (h *PersonaHandler) Delete(c *fiber.Ctx) error {
	if err := h.personas.Delete(c.Context(), middleware.GetUserID(c), c.Params("id")); err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "Persona not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}

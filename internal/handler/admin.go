package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tuneforge/api/internal/model"
	"github.com/tuneforge/api/internal/service"
	"github.com/tuneforge/api/internal/store"
	"github.com/tuneforge/api/pkg/response"
)

type AdminHandler struct {
	admin     *service.AdminService
	validator *validator.Validate
}

func NewAdminHandler(admin *service.AdminService, v *validator.Validate) *AdminHandler {
	return &AdminHandler{admin: admin, validator: v}
}

// ListUsers handles GET /api/admin/users
// @Summary      List users
// @Tags         Admin
// @Produce      json
// @Param        limit  query int false "Page size (max 200)"
// @Param        offset query int false "Page offset"
// @Success      200 {array} model.User
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.Context(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, users)
}

// UpdateUserStatus handles PUT /api/admin/users/:id/status
// @Summary      Suspend or reactivate a user
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body model.UserStatusRequest true "New status"
// @Success      200 {object} map[string]string
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/admin/users/{id}/status [put]
func (h *AdminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	var req model.UserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	userID := c.Params("id")
	if err := h.admin.UpdateUserStatus(c.Context(), userID, req.Status); err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, fiber.Map{"userId": userID, "status": req.Status})
}

// ListTasks handles GET /api/admin/tasks
// @Summary      List generation tasks
// @Tags         Admin
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        limit  query int    false "Page size (max 200)"
// @Success      200 {array} model.GenerationTask
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/admin/tasks [get]
func (h *AdminHandler) ListTasks(c *fiber.Ctx) error {
	status := model.TaskStatus(c.Query("status"))
	tasks, err := h.admin.ListTasks(c.Context(), status, c.QueryInt("limit", 50))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, tasks)
}

// DeleteSong handles DELETE /api/admin/songs/:id
// @Summary      Delete any user's song
// @Tags         Admin
// @Param        id path string true "Song ID"
// @Success      204 "No Content"
// @Failure      401 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/admin/songs/{id} [delete]
func (h *AdminHandler) DeleteSong(c *fiber.Ctx) error {
	if err := h.admin.DeleteSong(c.Context(), c.Params("id")); err != nil {
		if err == store.ErrNotFound {
			return response.NotFound(c, "Song not found")
		}
		return response.ServiceError(c, err.Error())
	}
	return response.NoContent(c)
}

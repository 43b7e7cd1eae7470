package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/internal/model"
	"github.com/intellijobs/api/internal/service"
	"github.com/intellijobs/api/pkg/response"
)

type UserHandler struct {
	service   *service.UserService
	validator *validator.Validate
}

func NewUserHandler(svc *service.UserService, v *validator.Validate) *UserHandler {
	return &UserHandler{
		service:   svc,
		validator: v,
	}
}

// Sync handles POST /api/sync-user
// @Summary Insert the user row if it does not exist
// @Accept json
// @Produce json
// @Param body body model.UserRequest true "userId"
// @Success 200 {object} model.SyncUserResponse
// @Router /api/sync-user [post]
func (h *UserHandler) Sync(c *fiber.Ctx) error {
	var req model.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	userID, err := resolveUserID(c, req.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "userId is required", formatValidationErrors(err))
	}

	result, err := h.service.Sync(c.UserContext(), req.UserID)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// CheckResume handles POST /api/check-resume
// @Summary Report whether a resume was ever stored
// @Accept json
// @Produce json
// @Param body body model.UserRequest true "userId"
// @Success 200 {object} model.CheckResumeResponse
// @Router /api/check-resume [post]
func (h *UserHandler) CheckResume(c *fiber.Ctx) error {
	var req model.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	userID, err := resolveUserID(c, req.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "userId is required", formatValidationErrors(err))
	}

	result, err := h.service.HasResume(c.UserContext(), req.UserID)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

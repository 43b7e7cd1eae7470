package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/internal/model"
	"github.com/intellijobs/api/internal/service"
	"github.com/intellijobs/api/pkg/response"
)

type SearchHandler struct {
	service   *service.SearchService
	validator *validator.Validate
}

func NewSearchHandler(svc *service.SearchService, v *validator.Validate) *SearchHandler {
	return &SearchHandler{
		service:   svc,
		validator: v,
	}
}

// Search handles POST /job-search
// @Summary Conversational job search
// @Accept json
// @Produce json
// @Param body body model.SearchRequest true "query, optional conversation_id and user_id"
// @Success 200 {object} model.SearchResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /job-search [post]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req model.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "query is required", formatValidationErrors(err))
	}

	userID, err := resolveUserID(c, req.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	req.UserID = userID

	result, err := h.service.Search(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

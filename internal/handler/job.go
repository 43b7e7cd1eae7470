package handler

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/internal/model"
	"github.com/intellijobs/api/internal/service"
	"github.com/intellijobs/api/pkg/response"
)

type JobHandler struct {
	matcher   *service.MatcherService
	actions   *service.JobActionService
	validator *validator.Validate
}

func NewJobHandler(matcher *service.MatcherService, actions *service.JobActionService, v *validator.Validate) *JobHandler {
	return &JobHandler{
		matcher:   matcher,
		actions:   actions,
		validator: v,
	}
}

// Recommended handles GET /api/recommended-jobs
// @Summary Listings closest to the user's resume
// @Produce json
// @Param userId query string true "user id"
// @Param page query int false "1-based page"
// @Param limit query int false "page size"
// @Param skills query string false "comma separated skills"
// @Param remote query bool false "remote only / on-site only"
// @Param minSalary query number false "lower bound in thousands"
// @Param maxSalary query number false "upper bound in thousands"
// @Success 200 {object} model.RecommendResponse
// @Router /api/recommended-jobs [get]
func (h *JobHandler) Recommended(c *fiber.Ctx) error {
	userID, err := resolveUserID(c, c.Query("userId"))
	if err != nil {
		return serviceError(c, err)
	}
	if userID == "" {
		return response.ValidationError(c, "userId is required", nil)
	}

	filters := model.RecommendFilters{
		MinSalary: c.QueryFloat("minSalary", 0),
		MaxSalary: c.QueryFloat("maxSalary", 0),
	}
	for _, s := range strings.Split(c.Query("skills"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			filters.Skills = append(filters.Skills, s)
		}
	}
	if raw := c.Query("remote"); raw != "" {
		remote, err := strconv.ParseBool(raw)
		if err != nil {
			return response.ValidationError(c, "remote must be true or false", nil)
		}
		filters.Remote = &remote
	}

	result, err := h.matcher.Recommend(c.UserContext(), userID, c.QueryInt("page", 1), c.QueryInt("limit", 10), filters)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// Action handles POST /api/job-action
// @Summary Save, unsave, apply or unapply a listing
// @Accept json
// @Produce json
// @Param body body model.JobActionRequest true "userId, jobId, action"
// @Success 200 {object} model.JobActionResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /api/job-action [post]
func (h *JobHandler) Action(c *fiber.Ctx) error {
	var req model.JobActionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	userID, err := resolveUserID(c, req.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.actions.Apply(c.UserContext(), req.UserID, req.JobID, req.Action)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// UserActions handles GET /api/user-job-actions
// @Summary Saved and applied listing ids
// @Produce json
// @Param userId query string true "user id"
// @Success 200 {object} model.JobStats
// @Router /api/user-job-actions [get]
func (h *JobHandler) UserActions(c *fiber.Ctx) error {
	userID, err := resolveUserID(c, c.Query("userId"))
	if err != nil {
		return serviceError(c, err)
	}

	result, err := h.actions.Actions(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

// Stats handles GET /api/job-stats
// @Summary Saved and applied counts
// @Produce json
// @Param userId query string true "user id"
// @Success 200 {object} model.JobCounts
// @Router /api/job-stats [get]
func (h *JobHandler) Stats(c *fiber.Ctx) error {
	userID, err := resolveUserID(c, c.Query("userId"))
	if err != nil {
		return serviceError(c, err)
	}

	result, err := h.actions.Counts(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/internal/service"
	"github.com/intellijobs/api/pkg/response"
)

type TaskHandler struct {
	service *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// Status handles GET /task-status/:id
// @Summary Poll a background task
// @Produce json
// @Param id path string true "task id"
// @Success 200 {object} model.TaskStatusResponse
// @Router /task-status/{id} [get]
func (h *TaskHandler) Status(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return response.ValidationError(c, "Task ID is required", nil)
	}

	result, err := h.service.GetStatus(c.UserContext(), taskID)
	if err != nil {
		return serviceError(c, err)
	}

	return response.OK(c, result)
}

package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/pkg/response"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Root handles GET /
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"timestamp": time.Now().Unix()})
}

// Health handles GET /health
// @Summary Liveness and dependency status
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	services := make(map[string]bool, len(h.checks))
	for name, check := range h.checks {
		err := check(ctx)
		services[name] = err == nil
		if err != nil {
			status = "degraded"
		}
	}

	return response.OK(c, fiber.Map{
		"status":   status,
		"services": services,
	})
}

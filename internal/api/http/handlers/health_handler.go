package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-api/internal/observability"
	"github.com/spec-kit/school-api/internal/persistence"
)

// HealthHandler reports service liveness and dependency readiness.
type HealthHandler struct {
	postgres *persistence.Postgres
	redis    *persistence.Redis
	metrics  *observability.Metrics
}

// NewHealthHandler constructs handler.
func NewHealthHandler(postgres *persistence.Postgres, redisStore *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redisStore, metrics: metrics}
}

// Index handles GET / with a short endpoint map.
func (h *HealthHandler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"service": "school-api",
			"endpoints": fiber.Map{
				"login":    "POST /api/auth/login",
				"health":   "GET /api/health",
				"ready":    "GET /api/health/ready",
				"students": "GET /api/students",
				"sessions": "GET /api/sessions",
				"search":   "GET /api/search/:table?q=term",
				"gateway":  "GET /api/:table",
			},
		},
	})
}

// Live handles GET /api/health. Always 200 while the process serves traffic.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	requests, errCount := h.metrics.Totals()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"status":   "ok",
			"requests": requests,
			"errors":   errCount,
		},
	})
}

// Ready handles GET /api/health/ready, probing postgres and redis.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx := c.UserContext()
	deps := fiber.Map{"postgres": "ok", "redis": "ok"}
	healthy := true

	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		healthy = false
	}
	if err := h.redis.Ping(ctx); err != nil {
		deps["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies are unavailable",
				"details": deps,
			},
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ready", "dependencies": deps}})
}

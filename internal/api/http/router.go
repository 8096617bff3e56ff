package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-api/internal/api/http/handlers"
	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/domain"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// RouteConfig bundles everything the router needs.
type RouteConfig struct {
	Guard    *auth.AccessGuard
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Students *handlers.StudentsHandler
	Sessions *handlers.SessionsHandler
	Gateway  *handlers.GatewayHandler
}

// RegisterRoutes mounts all endpoints. Named-entity routes are registered
// before the generic /:table routes so they win on matching paths.
func RegisterRoutes(app *fiber.App, rc RouteConfig) {
	app.Get("/", rc.Health.Index)

	api := app.Group("/api")
	api.Get("/health", rc.Health.Live)
	api.Get("/health/ready", rc.Health.Ready)
	api.Post("/auth/login", rc.Auth.Login)

	staff := []domain.Role{domain.RoleAdmin, domain.RoleTeacher}
	hosts := []domain.Role{domain.RoleAdmin, domain.RoleTeacher, domain.RoleMentor}

	students := api.Group("/students", rc.Guard.Handle)
	students.Get("/", auth.RequireRole(), rc.Students.List)
	students.Get("/:id", auth.RequireRole(), rc.Students.Get)
	students.Post("/", auth.RequireRole(staff...), rc.Students.Create)
	students.Put("/:id", auth.RequireRole(staff...), rc.Students.Update)
	students.Delete("/:id", auth.RequireRole(domain.RoleAdmin), rc.Students.Delete)

	sessions := api.Group("/sessions", rc.Guard.Handle)
	sessions.Get("/", auth.RequireRole(), rc.Sessions.List)
	sessions.Post("/enroll", auth.RequireRole(), rc.Sessions.Enroll)
	sessions.Post("/", auth.RequireRole(hosts...), rc.Sessions.Create)

	api.Get("/search/:table", rc.Guard.Handle, auth.RequireRole(), rc.Gateway.Search)

	table := api.Group("/:table", rc.Guard.Handle)
	table.Get("/", auth.RequireRole(), rc.Gateway.List)
	table.Post("/bulk", auth.RequireRole(domain.RoleAdmin), rc.Gateway.BulkInsert)
	table.Get("/:id", auth.RequireRole(), rc.Gateway.Get)
	table.Post("/", auth.RequireRole(domain.RoleAdmin), rc.Gateway.Create)
	table.Put("/:id", auth.RequireRole(domain.RoleAdmin), rc.Gateway.Update)
	table.Delete("/:id", auth.RequireRole(domain.RoleAdmin), rc.Gateway.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", nil)
	})
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Complaints     *handlers.ComplaintsHandler
	Agencies       *handlers.AgenciesHandler
	Analytics      *handlers.AnalyticsHandler
	WS             *handlers.WSHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	complaints := api.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("/classify", cfg.Complaints.Classify)
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id/respond", auth.RequireRole(domain.RoleAgency, domain.RoleAdmin), cfg.Complaints.Respond)
	complaints.Post("/:id/assign-agency", auth.RequireAdmin(), cfg.Complaints.AssignAgency)

	agencies := api.Group("/agencies", cfg.AuthMiddleware.Handle)
	agencies.Get("/", cfg.Agencies.List)
	agencies.Get("/:id", cfg.Agencies.Get)
	agencies.Post("/", auth.RequireAdmin(), cfg.Agencies.Create)
	agencies.Put("/:id", auth.RequireAdmin(), cfg.Agencies.Update)
	agencies.Delete("/:id", auth.RequireAdmin(), cfg.Agencies.Delete)

	analytics := api.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	analytics.Get("/overall", cfg.Analytics.Overall)
	analytics.Get("/status", cfg.Analytics.ByStatus)
	analytics.Get("/category", cfg.Analytics.ByCategory)
	analytics.Get("/trend", cfg.Analytics.Trend)
	analytics.Get("/agency-performance", cfg.Analytics.AgencyPerformance)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)

	app.Use("/ws", cfg.WS.Upgrade)
	app.Get("/ws", cfg.WS.Serve())
}

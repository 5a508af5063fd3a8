package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixit-suporte/fixit-gateway/internal/api/http/handlers"
	"github.com/fixit-suporte/fixit-gateway/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Incidents      *handlers.IncidentsHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	me := authGroup.Group("", cfg.AuthMiddleware.Handle)
	me.Post("/logout", cfg.Auth.Logout)
	me.Get("/me", cfg.Auth.Me)
	me.Put("/me", cfg.Auth.UpdateMe)

	incidents := app.Group("/incidents", cfg.AuthMiddleware.Handle)
	incidents.Get("/", cfg.Incidents.List)
	incidents.Post("/", cfg.Incidents.Create)
	incidents.Get("/search", cfg.Incidents.Search)
	incidents.Get("/filter", cfg.Incidents.Filter)
	incidents.Get("/:id", cfg.Incidents.Get)
	incidents.Delete("/:id", cfg.Incidents.Delete)
	incidents.Post("/:id/claim", auth.RequireTechnician(), cfg.Incidents.Claim)
	incidents.Post("/:id/assign", auth.RequireTechnician(), cfg.Incidents.Assign)
	incidents.Post("/:id/solve", auth.RequireTechnician(), cfg.Incidents.Solve)
	incidents.Post("/:id/comments", cfg.Incidents.Comment)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	users.Get("/", cfg.Users.List)
	users.Get("/technicians", cfg.Users.Technicians)
	users.Post("/technicians", cfg.Users.CreateTechnician)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle)
	dashboard.Get("/summary", cfg.Dashboard.Summary)

	app.Get("/reports", cfg.AuthMiddleware.Handle, cfg.Dashboard.Report)
}

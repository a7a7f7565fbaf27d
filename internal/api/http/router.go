package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/support-desk/internal/api/http/handlers"
	"github.com/crmkit/support-desk/internal/auth"
	"github.com/crmkit/support-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Departments    *handlers.DepartmentsHandler
	Agents         *handlers.AgentsHandler
	Customers      *handlers.CustomersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	// Customer registration stays open; everything else requires a token.
	app.Post("/customers", cfg.Customers.Create)

	admin := auth.RequireRole(domain.RoleAdmin)
	staff := auth.RequireRole(domain.RoleAdmin, domain.RoleAgent)
	anyone := auth.RequireRole(domain.RoleAdmin, domain.RoleAgent, domain.RoleCustomer)

	departments := app.Group("/departments", cfg.AuthMiddleware.Handle)
	departments.Get("/", anyone, cfg.Departments.List)
	departments.Get("/:id", anyone, cfg.Departments.Get)
	departments.Post("/", admin, cfg.Departments.Create)
	departments.Put("/:id", admin, cfg.Departments.Update)
	departments.Delete("/:id", admin, cfg.Departments.Delete)

	agents := app.Group("/agents", cfg.AuthMiddleware.Handle)
	agents.Get("/", staff, cfg.Agents.List)
	agents.Get("/:id", staff, cfg.Agents.Get)
	agents.Post("/", admin, cfg.Agents.Create)
	agents.Put("/:id", admin, cfg.Agents.Update)
	agents.Delete("/:id", admin, cfg.Agents.Delete)

	customers := app.Group("/customers", cfg.AuthMiddleware.Handle)
	customers.Get("/", staff, cfg.Customers.List)
	customers.Get("/:id", anyone, cfg.Customers.Get)
	customers.Put("/:id", anyone, cfg.Customers.Update)
	customers.Delete("/:id", admin, cfg.Customers.Delete)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", staff, cfg.Tickets.List)
	tickets.Get("/:id", anyone, cfg.Tickets.Get)
	tickets.Post("/", anyone, cfg.Tickets.Create)
	tickets.Put("/:id", staff, cfg.Tickets.Update)
	tickets.Patch("/:id/status", staff, cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/assign", staff, cfg.Tickets.Assign)
	tickets.Delete("/:id", admin, cfg.Tickets.Delete)

	tickets.Post("/:id/comments", anyone, cfg.Comments.Create)
	tickets.Get("/:id/comments", anyone, cfg.Comments.ListByTicket)

	comments := app.Group("/comments", cfg.AuthMiddleware.Handle)
	comments.Put("/:id", anyone, cfg.Comments.Update)
	comments.Delete("/:id", staff, cfg.Comments.Delete)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/:id/comments", staff, cfg.Comments.ListByAuthor)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/portkey-logistics/portkey/internal/api/http/handlers"
	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/gate"
	"github.com/portkey-logistics/portkey/internal/observability"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Users          *handlers.UsersHandler
	AdminUsers     *handlers.AdminUsersHandler
	Shipments      *handlers.ShipmentsHandler
	Dashboard      *handlers.DashboardHandler
	Pages          *handlers.PagesHandler
	AuthMiddleware *auth.AuthMiddleware
	Gate           *gate.Gate
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Page requests fall through to the
// access gate; API routes authenticate with AuthMiddleware instead.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/session", cfg.Session.Exchange)
	authGroup.Post("/logout", cfg.Session.Logout)

	api := app.Group("/api")
	api.Get("/dashboard/status", cfg.Dashboard.Status)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/users/sync", cfg.Users.Sync)
	protected.Get("/users/me", cfg.Users.Me)

	protected.Get("/dashboard/metrics", cfg.Dashboard.Metrics)

	protected.Post("/shipments", cfg.Shipments.CreateShipment)
	protected.Get("/shipments", cfg.Shipments.ListShipments)
	protected.Get("/shipments/:id", cfg.Shipments.GetShipment)
	protected.Patch("/shipments/:id", cfg.Shipments.UpdateShipment)
	protected.Delete("/shipments/:id", cfg.Shipments.DeleteShipment)
	protected.Post("/shipments/:id/documents", cfg.Shipments.AttachDocument)
	protected.Get("/shipments/:id/documents", cfg.Shipments.ListDocuments)
	protected.Delete("/shipments/:id/documents/:documentId", cfg.Shipments.DeleteDocument)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/metrics", cfg.Dashboard.Metrics)
	admin.Get("/users", cfg.AdminUsers.List)
	admin.Patch("/users/:id/role", cfg.AdminUsers.SetRole)
	admin.Delete("/users/:id", cfg.AdminUsers.Delete)

	api.All("/*", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", map[string]any{"path": c.Path()})
	})

	app.Get("/*", cfg.Gate.Handle, cfg.Pages.Render)
}

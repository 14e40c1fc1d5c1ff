package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noryangjin/auction-server/internal/api/http/handlers"
	"github.com/noryangjin/auction-server/internal/auth"
	"github.com/noryangjin/auction-server/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Identities     auth.IdentityResolver
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}

	users := app.Group("/users", authenticated...)
	users.Get("/me", cfg.Users.Me)
	users.Patch("/me", cfg.Users.UpdateMe)
	users.Post("/me/password", cfg.Users.ChangePassword)

	products := app.Group("/api/products", authenticated...)
	products.Post("/", cfg.Products.Register)
	products.Get("/mine", cfg.Products.ListMine)
	products.Get("/:id", cfg.Products.Get)

	admin := app.Group("/admin", append(authenticated, auth.RequireRole(cfg.Identities, domain.RoleAdmin))...)
	admin.Patch("/users/:id/status", cfg.Admin.ChangeUserStatus)
}

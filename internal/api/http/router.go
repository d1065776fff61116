package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/condohub/property-service/internal/api/http/handlers"
	"github.com/condohub/property-service/internal/auth"
	"github.com/condohub/property-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	Users            *handlers.UsersHandler
	RegistrationKeys *handlers.RegistrationKeysHandler
	PublicProfiles   *handlers.PublicProfileHandler
	Properties       *handlers.PropertiesHandler
	AuthMiddleware   *auth.AuthMiddleware
	MetricsRegistry  *prometheus.Registry
}

// RegisterRoutes wires HTTP routes. Authentication is attached per route so
// that unmatched paths still produce a 404.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsRegistry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.MetricsRegistry, promhttp.HandlerOpts{})))
	}

	authenticated := func(roles ...domain.Role) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(roles...)}
	}
	with := func(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
		return append(guards, handler)
	}
	issuers := []domain.Role{domain.RoleCompany, domain.RoleAdmin}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", with(authenticated(), cfg.Users.Logout)...)
	authGroup.Get("/me", with(authenticated(), cfg.Users.Me)...)

	keys := app.Group("/registration-keys")
	keys.Post("/:kind", with(authenticated(issuers...), cfg.RegistrationKeys.Issue)...)
	keys.Get("/:kind", with(authenticated(issuers...), cfg.RegistrationKeys.List)...)
	keys.Patch("/:kind/:key/deactivate", with(authenticated(issuers...), cfg.RegistrationKeys.Deactivate)...)

	app.Post("/properties", with(authenticated(domain.RoleCompany), cfg.Properties.CreateProperty)...)
	app.Get("/company-profile/:company_id/properties", with(authenticated(), cfg.Properties.ListCompanyProperties)...)
	app.Get("/company-profile/:company_id/finance-report", with(authenticated(issuers...), cfg.Properties.FinanceReport)...)

	for _, kind := range domain.UnitKinds {
		app.Patch("/public-profile/register-"+kind.String(), with(authenticated(domain.RolePublic), cfg.PublicProfiles.Register(kind))...)
		app.Get("/public-profile/:user_id/"+kind.String()+"-units", with(authenticated(), cfg.PublicProfiles.Units(kind))...)
		app.Post("/properties/:property_id/"+kind.String()+"-units", with(authenticated(issuers...), cfg.Properties.CreateUnit(kind))...)
		app.Get("/properties/:property_id/"+kind.String()+"-units", with(authenticated(), cfg.Properties.ListUnits(kind))...)
	}
}

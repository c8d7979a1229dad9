package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/routedesk/routedesk/internal/auth"
	"github.com/routedesk/routedesk/internal/customers"
	"github.com/routedesk/routedesk/internal/orders"
	"github.com/routedesk/routedesk/internal/platform/httpx"
	"github.com/routedesk/routedesk/internal/registry"
)

// RouterParams aggregates the handlers mounted on the API router.
type RouterParams struct {
	Config           *Config
	AuthMiddleware   auth.Middleware
	AuthHandler      *auth.Handler
	RegistryHandler  *registry.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	Middleware       MiddlewareConfig
}

// NewRouter assembles the HTTP router. Everything under /api except the
// login endpoint requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(params.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.Authenticate)
			params.RegistryHandler.MountRoutes(r)
			params.CustomersHandler.MountRoutes(r)
			params.OrdersHandler.MountRoutes(r)
		})
	})

	return r
}

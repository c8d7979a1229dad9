package registry

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/routedesk/routedesk/internal/auth"
	"github.com/routedesk/routedesk/internal/platform/httpx"
)

// Handler exposes route administration and directory endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	authmw   auth.Middleware
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		authmw:   authmw,
		validate: validator.New(),
	}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/routes", h.listRoutes)
	r.Get("/routes/active", h.listActiveRoutes)
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAdmin)
		r.Post("/routes", h.createRoute)
		r.Put("/routes/{id}", h.updateRoute)
		r.Delete("/routes/{id}", h.deleteRoute)
		r.Get("/sales-executives", h.listSalesExecutives)
	})
}

type createRouteRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type updateRouteRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (h *Handler) listRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.service.ListRoutes(r.Context())
	if err != nil {
		h.logger.Error("list routes failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (h *Handler) listActiveRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.service.ActiveRoutes(r.Context())
	if err != nil {
		h.logger.Error("list active routes failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (h *Handler) createRoute(w http.ResponseWriter, r *http.Request) {
	var req createRouteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "route name is required")
		return
	}

	route, err := h.service.CreateRoute(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("create route failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, route)
}

func (h *Handler) updateRoute(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid route id")
		return
	}

	var req updateRouteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}

	route, err := h.service.UpdateRoute(r.Context(), id, req.Name, req.IsActive)
	if err != nil {
		h.logger.Error("update route failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *Handler) deleteRoute(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid route id")
		return
	}

	if err := h.service.DeleteRoute(r.Context(), id); err != nil {
		h.logger.Error("delete route failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listSalesExecutives(w http.ResponseWriter, r *http.Request) {
	execs, err := h.service.ListSalesExecutives(r.Context())
	if err != nil {
		h.logger.Error("list sales executives failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales_executives": execs})
}

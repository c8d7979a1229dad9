package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/routedesk/routedesk/internal/platform/httpx"
)

// Service provides the reference registry operations: route administration
// and name-keyed lookups consumed by the customer and order subsystems.
type Service struct {
	repo  Repository
	cache *RouteCache
}

// NewService constructs a registry service.
func NewService(repo Repository, cache *RouteCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateRoute adds a route. The name is upper-cased before storage so
// uniqueness is case-insensitive.
func (s *Service) CreateRoute(ctx context.Context, name string) (*Route, error) {
	normalized := NormalizeRouteName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: route name is required", httpx.ErrValidation)
	}

	existing, err := s.repo.FindRouteByName(ctx, normalized)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing route: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: route %q already exists", httpx.ErrConflict, normalized)
	}

	id, err := s.repo.CreateRoute(ctx, normalized, true)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return s.repo.GetRoute(ctx, id)
}

// UpdateRoute renames a route or toggles its active flag.
func (s *Service) UpdateRoute(ctx context.Context, id int64, name *string, isActive *bool) (*Route, error) {
	if _, err := s.repo.GetRoute(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: route not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("get route: %w", err)
	}

	if name != nil {
		normalized := NormalizeRouteName(*name)
		if normalized == "" {
			return nil, fmt.Errorf("%w: route name is required", httpx.ErrValidation)
		}
		existing, err := s.repo.FindRouteByName(ctx, normalized)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check existing route: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%w: route %q already exists", httpx.ErrConflict, normalized)
		}
		name = &normalized
	}

	if err := s.repo.UpdateRoute(ctx, id, name, isActive); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return s.repo.GetRoute(ctx, id)
}

// DeleteRoute removes a route. Deletion is refused while any customer or
// order still references it.
func (s *Service) DeleteRoute(ctx context.Context, id int64) error {
	if _, err := s.repo.GetRoute(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: route not found", httpx.ErrNotFound)
		}
		return fmt.Errorf("get route: %w", err)
	}

	customers, orders, err := s.repo.CountRouteDependents(ctx, id)
	if err != nil {
		return fmt.Errorf("count route dependents: %w", err)
	}
	if customers > 0 || orders > 0 {
		return fmt.Errorf("%w: route is referenced by %d customer(s) and %d order(s)", httpx.ErrConflict, customers, orders)
	}

	if err := s.repo.DeleteRoute(ctx, id); err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// ListRoutes returns all routes.
func (s *Service) ListRoutes(ctx context.Context) ([]Route, error) {
	return s.repo.ListRoutes(ctx, false)
}

// ActiveRoutes returns active routes, served from cache when available.
func (s *Service) ActiveRoutes(ctx context.Context) ([]Route, error) {
	if s.cache != nil {
		return s.cache.ActiveRoutes(ctx)
	}
	return s.repo.ListRoutes(ctx, true)
}

// FindRouteByName resolves a route by case-insensitive name.
func (s *Service) FindRouteByName(ctx context.Context, name string) (*Route, error) {
	return s.repo.FindRouteByName(ctx, name)
}

// GetRoute resolves a route by id.
func (s *Service) GetRoute(ctx context.Context, id int64) (*Route, error) {
	return s.repo.GetRoute(ctx, id)
}

// FindSalesExecutiveByDisplayName resolves an executive by case-insensitive
// exact display name match.
func (s *Service) FindSalesExecutiveByDisplayName(ctx context.Context, displayName string) (*SalesExecutive, error) {
	return s.repo.FindSalesExecutiveByDisplayName(ctx, displayName)
}

// FindSalesExecutiveByUsername resolves an executive by username.
func (s *Service) FindSalesExecutiveByUsername(ctx context.Context, username string) (*SalesExecutive, error) {
	return s.repo.FindSalesExecutiveByUsername(ctx, username)
}

// ListSalesExecutives returns the sales-executive directory.
func (s *Service) ListSalesExecutives(ctx context.Context) ([]SalesExecutive, error) {
	return s.repo.ListSalesExecutives(ctx)
}

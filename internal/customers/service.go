package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/routedesk/routedesk/internal/auth"
	"github.com/routedesk/routedesk/internal/platform/httpx"
	"github.com/routedesk/routedesk/internal/registry"
	"github.com/routedesk/routedesk/internal/shared"
)

// Registry is the slice of the reference registry the ledger validates against.
type Registry interface {
	GetRoute(ctx context.Context, id int64) (*registry.Route, error)
	FindRouteByName(ctx context.Context, name string) (*registry.Route, error)
	FindSalesExecutiveByDisplayName(ctx context.Context, displayName string) (*registry.SalesExecutive, error)
	FindSalesExecutiveByUsername(ctx context.Context, username string) (*registry.SalesExecutive, error)
}

// Propagator schedules the best-effort sync of denormalized customer fields
// onto existing orders. Implementations must not block on job completion.
type Propagator interface {
	EnqueueCustomerFieldSync(ctx context.Context, customerID int64, routeID *int64, salesExecutive *string) error
}

// Service implements the customer ledger operations.
type Service struct {
	repo   Repository
	refs   Registry
	tasks  Propagator
	logger *slog.Logger
}

// NewService constructs a customer service.
func NewService(repo Repository, refs Registry, tasks Propagator, logger *slog.Logger) *Service {
	return &Service{repo: repo, refs: refs, tasks: tasks, logger: logger}
}

// Create adds a customer. The name must be unique across the whole ledger,
// compared case-insensitively, and the route must resolve and be active.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing customer: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: customer %q already exists", httpx.ErrConflict, existing.Name)
	}

	if err := s.validateRoute(ctx, req.RouteID); err != nil {
		return nil, err
	}
	if err := s.validateExecutive(ctx, req.SalesExecutive); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, Customer{
		Name:           name,
		RouteID:        req.RouteID,
		SalesExecutive: req.SalesExecutive,
		StandardPrice:  req.StandardPrice,
		PremiumPrice:   req.PremiumPrice,
		Phone:          strings.TrimSpace(req.Phone),
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update patches a customer. A route or sales-executive change triggers
// best-effort propagation onto the customer's orders: the update succeeds
// regardless of whether the propagation task could be enqueued, and the
// orders are eventually consistent until the worker processes the task.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
		}
		duplicate, err := s.repo.FindByName(ctx, name)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check existing customer: %w", err)
		}
		if duplicate != nil && duplicate.ID != id {
			return nil, fmt.Errorf("%w: customer %q already exists", httpx.ErrConflict, duplicate.Name)
		}
		updates["name"] = name
	}

	var routeChange *int64
	if req.RouteID != nil && *req.RouteID != existing.RouteID {
		if err := s.validateRoute(ctx, *req.RouteID); err != nil {
			return nil, err
		}
		updates["route_id"] = *req.RouteID
		routeChange = req.RouteID
	}

	var execChange *string
	if req.SalesExecutive != nil && *req.SalesExecutive != existing.SalesExecutive {
		if err := s.validateExecutive(ctx, *req.SalesExecutive); err != nil {
			return nil, err
		}
		updates["sales_executive"] = *req.SalesExecutive
		execChange = req.SalesExecutive
	}

	if req.StandardPrice != nil {
		updates["standard_price"] = *req.StandardPrice
	}
	if req.PremiumPrice != nil {
		updates["premium_price"] = *req.PremiumPrice
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}

	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	if routeChange != nil || execChange != nil {
		if err := s.tasks.EnqueueCustomerFieldSync(ctx, id, routeChange, execChange); err != nil {
			s.logger.Error("customer field propagation enqueue failed",
				"customer_id", id, "error", err)
		}
	}

	return s.repo.Get(ctx, id)
}

// Delete removes a customer. Deletion is refused while any order still
// references the customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
		}
		return fmt.Errorf("get customer: %w", err)
	}

	count, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return fmt.Errorf("count dependent orders: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: customer has %d dependent order(s)", httpx.ErrConflict, count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// Get fetches one customer.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

// List returns a customer page. Non-admin callers only ever see customers
// assigned to them, regardless of any filter they supply.
func (s *Service) List(ctx context.Context, identity auth.Identity, req ListCustomersRequest) (*ListCustomersResponse, error) {
	if !identity.IsAdmin() {
		req.SalesExecutive = &identity.Username
	}

	page := shared.NewPagination(req.Page, req.PerPage, 0)
	rows, total, err := s.repo.List(ctx, req, page.PerPage, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if rows == nil {
		rows = []Customer{}
	}
	return &ListCustomersResponse{
		Customers:  rows,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

func (s *Service) validateRoute(ctx context.Context, routeID int64) error {
	route, err := s.refs.GetRoute(ctx, routeID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: route does not exist", httpx.ErrValidation)
		}
		return fmt.Errorf("resolve route: %w", err)
	}
	if !route.IsActive {
		return fmt.Errorf("%w: route %q is inactive", httpx.ErrValidation, route.Name)
	}
	return nil
}

func (s *Service) validateExecutive(ctx context.Context, username string) error {
	if _, err := s.refs.FindSalesExecutiveByUsername(ctx, username); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: sales executive %q does not exist", httpx.ErrValidation, username)
		}
		return fmt.Errorf("resolve sales executive: %w", err)
	}
	return nil
}

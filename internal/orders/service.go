package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/routedesk/routedesk/internal/auth"
	"github.com/routedesk/routedesk/internal/customers"
	"github.com/routedesk/routedesk/internal/platform/httpx"
	"github.com/routedesk/routedesk/internal/shared"
)

// CustomerDirectory is the slice of the customer ledger the order service
// snapshots from.
type CustomerDirectory interface {
	Get(ctx context.Context, id int64) (*customers.Customer, error)
}

// Service implements the order ledger and query engine.
type Service struct {
	repo      Repository
	customers CustomerDirectory
	logger    *slog.Logger
}

// NewService constructs an order service.
func NewService(repo Repository, dir CustomerDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, customers: dir, logger: logger}
}

// Create adds an order for the calendar day of req.OrderDate. The customer
// must exist; at most one order per customer per day is allowed. Route and
// sales executive are copied from the customer at this moment. The
// duplicate-day check and the insert are not atomic: two simultaneous
// creations can both pass the check.
func (s *Service) Create(ctx context.Context, identity auth.Identity, req CreateOrderRequest) (*OrderRow, error) {
	vehicle, err := ParseVehicle(req.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if req.StandardQty < 0 || req.PremiumQty < 0 {
		return nil, fmt.Errorf("%w: quantities cannot be negative", httpx.ErrValidation)
	}
	if req.StandardQty+req.PremiumQty == 0 {
		return nil, fmt.Errorf("%w: order must include at least one unit", httpx.ErrValidation)
	}

	customer, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customers.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	exists, err := s.repo.ExistsForDay(ctx, customer.ID, req.OrderDate, 0)
	if err != nil {
		return nil, fmt.Errorf("check duplicate order: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: customer %q already has an order for this day", httpx.ErrConflict, customer.Name)
	}

	id, err := s.repo.Create(ctx, Order{
		OrderDate:         req.OrderDate,
		CustomerID:        customer.ID,
		RouteID:           customer.RouteID,
		SalesExecutive:    customer.SalesExecutive,
		Vehicle:           vehicle,
		StandardQty:       req.StandardQty,
		PremiumQty:        req.PremiumQty,
		CreatedBy:         identity.UserID,
		CreatedByUsername: identity.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return s.repo.GetRow(ctx, id)
}

// Update patches an order. When the customer or the date changes the
// duplicate-day check runs again, excluding this order; when the customer
// changes, the route and sales executive snapshots are taken from the new
// customer.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*OrderRow, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: order not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	updates := make(map[string]interface{})

	standardQty := existing.StandardQty
	if req.StandardQty != nil {
		standardQty = *req.StandardQty
		updates["standard_qty"] = standardQty
	}
	premiumQty := existing.PremiumQty
	if req.PremiumQty != nil {
		premiumQty = *req.PremiumQty
		updates["premium_qty"] = premiumQty
	}
	if standardQty < 0 || premiumQty < 0 {
		return nil, fmt.Errorf("%w: quantities cannot be negative", httpx.ErrValidation)
	}
	if standardQty+premiumQty == 0 {
		return nil, fmt.Errorf("%w: order must include at least one unit", httpx.ErrValidation)
	}

	if req.Vehicle != nil {
		vehicle, err := ParseVehicle(*req.Vehicle)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
		}
		updates["vehicle"] = string(vehicle)
	}

	customerID := existing.CustomerID
	if req.CustomerID != nil && *req.CustomerID != existing.CustomerID {
		customer, err := s.customers.Get(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, customers.ErrNotFound) {
				return nil, fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
			}
			return nil, fmt.Errorf("resolve customer: %w", err)
		}
		customerID = customer.ID
		updates["customer_id"] = customer.ID
		updates["route_id"] = customer.RouteID
		updates["sales_executive"] = customer.SalesExecutive
	}

	date := existing.OrderDate
	if req.OrderDate != nil {
		date = *req.OrderDate
		updates["order_date"] = date
	}

	if customerID != existing.CustomerID || req.OrderDate != nil {
		exists, err := s.repo.ExistsForDay(ctx, customerID, date, id)
		if err != nil {
			return nil, fmt.Errorf("check duplicate order: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: customer already has an order for this day", httpx.ErrConflict)
		}
	}

	if len(updates) == 0 {
		return s.repo.GetRow(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return s.repo.GetRow(ctx, id)
}

// Delete removes one order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: order not found", httpx.ErrNotFound)
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// Get fetches one joined order row. Non-admin callers may only see orders
// assigned to them.
func (s *Service) Get(ctx context.Context, identity auth.Identity, id int64) (*OrderRow, error) {
	row, err := s.repo.GetRow(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: order not found", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !identity.IsAdmin() && row.SalesExecutive != identity.Username {
		return nil, fmt.Errorf("%w: order belongs to another sales executive", httpx.ErrForbidden)
	}
	return row, nil
}

// scope forces the sales-executive filter to the caller for non-admins. An
// explicit filter supplied by a non-admin is overwritten, never honored.
func scope(identity auth.Identity, filter Filter) Filter {
	if !identity.IsAdmin() {
		filter.SalesExecutive = &identity.Username
	}
	return filter
}

// List returns one order page plus the aggregate summary over the whole
// filtered set. An empty result is an empty page with a zero summary.
func (s *Service) List(ctx context.Context, identity auth.Identity, req ListOrdersRequest) (*ListOrdersResponse, error) {
	filter := scope(identity, req.Filter)

	page := shared.NewPagination(req.Page, req.PerPage, 0)
	rows, total, err := s.repo.List(ctx, filter, page.PerPage, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if rows == nil {
		rows = []OrderRow{}
	}

	summary, err := s.repo.Summarize(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("summarize orders: %w", err)
	}

	return &ListOrdersResponse{
		Orders:     rows,
		Summary:    *summary,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	}, nil
}

// Export returns the full filtered set, unpaginated, for CSV export.
func (s *Service) Export(ctx context.Context, identity auth.Identity, filter Filter) ([]OrderRow, error) {
	rows, err := s.repo.ListAll(ctx, scope(identity, filter))
	if err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}
	return rows, nil
}

// BulkDelete removes orders by age in one unconditional batch.
func (s *Service) BulkDelete(ctx context.Context, req BulkDeleteRequest) (*BulkDeleteResponse, error) {
	if req.Days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", httpx.ErrValidation)
	}

	var deleted int64
	var err error
	switch req.Mode {
	case BulkDeleteOlderThan:
		deleted, err = s.repo.DeleteOlderThan(ctx, req.Days)
	case BulkDeleteWithinLast:
		deleted, err = s.repo.DeleteWithinLast(ctx, req.Days)
	default:
		return nil, fmt.Errorf("%w: unknown bulk delete mode %q", httpx.ErrValidation, req.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("bulk delete orders: %w", err)
	}

	s.logger.Info("orders bulk deleted", "mode", req.Mode, "days", req.Days, "deleted", deleted)
	return &BulkDeleteResponse{Deleted: deleted}, nil
}

// Dashboard returns per-day counts and revenue for the last N days,
// role-scoped like every other query.
func (s *Service) Dashboard(ctx context.Context, identity auth.Identity, days int) ([]DashboardPoint, error) {
	if days <= 0 {
		days = 30
	}
	var exec *string
	if !identity.IsAdmin() {
		exec = &identity.Username
	}
	points, err := s.repo.Dashboard(ctx, days, exec)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if points == nil {
		points = []DashboardPoint{}
	}
	return points, nil
}

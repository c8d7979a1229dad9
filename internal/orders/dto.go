package orders

import (
	"time"

	"github.com/routedesk/routedesk/internal/shared"
)

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	OrderDate   time.Time `json:"order_date" validate:"required"`
	CustomerID  int64     `json:"customer_id" validate:"required,gt=0"`
	Vehicle     string    `json:"vehicle" validate:"required"`
	StandardQty int       `json:"standard_qty" validate:"gte=0"`
	PremiumQty  int       `json:"premium_qty" validate:"gte=0"`
}

// UpdateOrderRequest is the payload for updating an order. Nil fields are
// left unchanged.
type UpdateOrderRequest struct {
	OrderDate   *time.Time `json:"order_date,omitempty"`
	CustomerID  *int64     `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Vehicle     *string    `json:"vehicle,omitempty"`
	StandardQty *int       `json:"standard_qty,omitempty" validate:"omitempty,gte=0"`
	PremiumQty  *int       `json:"premium_qty,omitempty" validate:"omitempty,gte=0"`
}

// Filter selects orders for listing, summarizing and export. Date selects
// one calendar day (the day containing Date, UTC).
type Filter struct {
	Date           *time.Time
	RouteID        *int64
	Vehicle        *Vehicle
	SalesExecutive *string
	Search         *string
}

// ListOrdersRequest carries the filter plus pagination.
type ListOrdersRequest struct {
	Filter
	Page    int
	PerPage int
}

// ListOrdersResponse is the listing payload. Summary always covers the full
// filtered set, not the returned page.
type ListOrdersResponse struct {
	Orders     []OrderRow        `json:"orders"`
	Summary    Summary           `json:"summary"`
	Pagination shared.Pagination `json:"pagination"`
}

// Bulk delete modes.
const (
	BulkDeleteOlderThan  = "older_than"
	BulkDeleteWithinLast = "within_last"
)

// BulkDeleteRequest selects orders by age for unconditional deletion.
type BulkDeleteRequest struct {
	Mode string `json:"mode" validate:"required,oneof=older_than within_last"`
	Days int    `json:"days" validate:"required,gt=0"`
}

// BulkDeleteResponse reports how many orders were removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

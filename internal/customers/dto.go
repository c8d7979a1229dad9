package customers

import "github.com/routedesk/routedesk/internal/shared"

// CreateCustomerRequest is the payload for creating a customer.
type CreateCustomerRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	RouteID        int64   `json:"route_id" validate:"required,gt=0"`
	SalesExecutive string  `json:"sales_executive" validate:"required,max=100"`
	StandardPrice  float64 `json:"standard_price" validate:"gte=0"`
	PremiumPrice   float64 `json:"premium_price" validate:"gte=0"`
	Phone          string  `json:"phone" validate:"omitempty,max=20"`
}

// UpdateCustomerRequest is the payload for updating a customer. Nil fields
// are left unchanged.
type UpdateCustomerRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	RouteID        *int64   `json:"route_id,omitempty" validate:"omitempty,gt=0"`
	SalesExecutive *string  `json:"sales_executive,omitempty" validate:"omitempty,max=100"`
	StandardPrice  *float64 `json:"standard_price,omitempty" validate:"omitempty,gte=0"`
	PremiumPrice   *float64 `json:"premium_price,omitempty" validate:"omitempty,gte=0"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// ListCustomersRequest carries listing filters.
type ListCustomersRequest struct {
	RouteID        *int64
	SalesExecutive *string
	Search         *string
	Page           int
	PerPage        int
}

// ListCustomersResponse is the listing payload.
type ListCustomersResponse struct {
	Customers  []Customer        `json:"customers"`
	Pagination shared.Pagination `json:"pagination"`
}

// ImportError describes one failed CSV row.
type ImportError struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ImportSummary reports the outcome of a CSV import batch. Errors holds at
// most the first ten row failures.
type ImportSummary struct {
	BatchID  string        `json:"batch_id"`
	Imported int           `json:"imported"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Errors   []ImportError `json:"errors"`
}

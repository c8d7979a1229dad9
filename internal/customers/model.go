package customers

import "time"

// Customer holds the ledger record for one delivery customer. The two unit
// prices are the authoritative inputs to order totals: orders never store
// totals, they are recomputed from these prices on every read.
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	RouteID        int64     `json:"route_id"`
	RouteName      string    `json:"route_name"`
	SalesExecutive string    `json:"sales_executive"`
	StandardPrice  float64   `json:"standard_price"`
	PremiumPrice   float64   `json:"premium_price"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

package orders

import (
	"fmt"
	"time"
)

// Vehicle is the delivery vehicle type recorded on an order.
type Vehicle string

// Supported vehicle types.
const (
	VehicleVan   Vehicle = "VAN"
	VehicleTruck Vehicle = "TRUCK"
	VehicleBike  Vehicle = "BIKE"
	VehicleAuto  Vehicle = "AUTO"
)

// ParseVehicle validates a vehicle value.
func ParseVehicle(s string) (Vehicle, error) {
	switch Vehicle(s) {
	case VehicleVan, VehicleTruck, VehicleBike, VehicleAuto:
		return Vehicle(s), nil
	default:
		return "", fmt.Errorf("unknown vehicle %q", s)
	}
}

// Order is one daily order. Route and sales executive are copied from the
// customer at creation time; customer field propagation may rewrite them
// later. Monetary totals are never stored.
type Order struct {
	ID                int64     `json:"id"`
	OrderDate         time.Time `json:"order_date"`
	CustomerID        int64     `json:"customer_id"`
	RouteID           int64     `json:"route_id"`
	SalesExecutive    string    `json:"sales_executive"`
	Vehicle           Vehicle   `json:"vehicle"`
	StandardQty       int       `json:"standard_qty"`
	PremiumQty        int       `json:"premium_qty"`
	CreatedBy         int64     `json:"created_by"`
	CreatedByUsername string    `json:"created_by_username"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OrderRow is an order joined to its customer and route, with totals
// recomputed from the customer's current unit prices. CustomerExists is
// false when the customer has since been deleted; the row then carries the
// deleted-customer sentinel and zero totals.
type OrderRow struct {
	Order
	CustomerName   string  `json:"customer_name"`
	CustomerPhone  string  `json:"customer_phone"`
	CustomerExists bool    `json:"-"`
	RouteName      string  `json:"route_name"`
	StandardPrice  float64 `json:"standard_price"`
	PremiumPrice   float64 `json:"premium_price"`
	StandardTotal  float64 `json:"standard_total"`
	PremiumTotal   float64 `json:"premium_total"`
	Total          float64 `json:"total"`
}

// Summary aggregates the full filtered order set, not just the current page.
type Summary struct {
	TotalOrders    int64   `json:"total_orders"`
	SumStandardQty int64   `json:"sum_standard_qty"`
	SumPremiumQty  int64   `json:"sum_premium_qty"`
	SumTotal       float64 `json:"sum_total"`
}

// DashboardPoint is one day's aggregate for the dashboard endpoint.
type DashboardPoint struct {
	Day     time.Time `json:"day"`
	Orders  int64     `json:"orders"`
	Revenue float64   `json:"revenue"`
}

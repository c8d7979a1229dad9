package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing order record.
var ErrNotFound = errors.New("record not found")

// Repository provides order persistence and the joined query surface.
type Repository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	GetRow(ctx context.Context, id int64) (*OrderRow, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]OrderRow, int, error)
	ListAll(ctx context.Context, filter Filter) ([]OrderRow, error)
	Summarize(ctx context.Context, filter Filter) (*Summary, error)
	ExistsForDay(ctx context.Context, customerID int64, date time.Time, excludeID int64) (bool, error)
	Create(ctx context.Context, order Order) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
	DeleteWithinLast(ctx context.Context, days int) (int64, error)
	SyncCustomerFields(ctx context.Context, customerID int64, routeID *int64, salesExecutive *string) (int64, error)
	Dashboard(ctx context.Context, days int, salesExecutive *string) ([]DashboardPoint, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderRowColumns = `
	o.id, o.order_date, o.customer_id, o.route_id, o.sales_executive,
	o.vehicle, o.standard_qty, o.premium_qty,
	o.created_by, o.created_by_username, o.created_at, o.updated_at,
	c.id IS NOT NULL, COALESCE(c.name, ''), COALESCE(c.phone, ''),
	COALESCE(rt.name, ''), COALESCE(c.standard_price, 0), COALESCE(c.premium_price, 0)
`

const orderRowJoins = `
	FROM orders o
	LEFT JOIN customers c ON o.customer_id = c.id
	LEFT JOIN routes rt ON o.route_id = rt.id
`

func scanOrderRow(row pgx.Row) (*OrderRow, error) {
	var r OrderRow
	err := row.Scan(
		&r.ID, &r.OrderDate, &r.CustomerID, &r.RouteID, &r.SalesExecutive,
		&r.Vehicle, &r.StandardQty, &r.PremiumQty,
		&r.CreatedBy, &r.CreatedByUsername, &r.CreatedAt, &r.UpdatedAt,
		&r.CustomerExists, &r.CustomerName, &r.CustomerPhone,
		&r.RouteName, &r.StandardPrice, &r.PremiumPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	Reprice(&r)
	return &r, nil
}

// daySpan returns the half-open UTC calendar day containing t.
func daySpan(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// buildFilter renders the shared WHERE clause used by listing, summary and
// export, so the page and its summary always agree on the predicate.
func buildFilter(filter Filter, argPos int) (string, []interface{}, int) {
	var conditions []string
	var args []interface{}

	if filter.Date != nil {
		start, end := daySpan(*filter.Date)
		conditions = append(conditions, fmt.Sprintf("o.order_date >= $%d AND o.order_date < $%d", argPos, argPos+1))
		args = append(args, start, end)
		argPos += 2
	}
	if filter.RouteID != nil {
		conditions = append(conditions, fmt.Sprintf("o.route_id = $%d", argPos))
		args = append(args, *filter.RouteID)
		argPos++
	}
	if filter.Vehicle != nil {
		conditions = append(conditions, fmt.Sprintf("o.vehicle = $%d", argPos))
		args = append(args, string(*filter.Vehicle))
		argPos++
	}
	if filter.SalesExecutive != nil {
		conditions = append(conditions, fmt.Sprintf("o.sales_executive = $%d", argPos))
		args = append(args, *filter.SalesExecutive)
		argPos++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(c.name ILIKE $%d OR c.phone ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*filter.Search+"%")
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			where += " AND " + conditions[i]
		}
	}
	return where, args, argPos
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	const query = `
		SELECT id, order_date, customer_id, route_id, sales_executive,
		       vehicle, standard_qty, premium_qty,
		       created_by, created_by_username, created_at, updated_at
		FROM orders WHERE id = $1
	`
	var o Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderDate, &o.CustomerID, &o.RouteID, &o.SalesExecutive,
		&o.Vehicle, &o.StandardQty, &o.PremiumQty,
		&o.CreatedBy, &o.CreatedByUsername, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetRow(ctx context.Context, id int64) (*OrderRow, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE o.id = $1", orderRowColumns, orderRowJoins)
	return scanOrderRow(r.pool.QueryRow(ctx, query, id))
}

func (r *repository) List(ctx context.Context, filter Filter, limit, offset int) ([]OrderRow, int, error) {
	where, args, argPos := buildFilter(filter, 1)

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", orderRowJoins, where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s %s %s
		ORDER BY o.order_date DESC, o.created_at DESC
		LIMIT $%d OFFSET $%d
	`, orderRowColumns, orderRowJoins, where, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := collectOrderRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *repository) ListAll(ctx context.Context, filter Filter) ([]OrderRow, error) {
	where, args, _ := buildFilter(filter, 1)
	query := fmt.Sprintf(`
		SELECT %s %s %s
		ORDER BY o.order_date DESC, o.created_at DESC
	`, orderRowColumns, orderRowJoins, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrderRows(rows)
}

func collectOrderRows(rows pgx.Rows) ([]OrderRow, error) {
	var result []OrderRow
	for rows.Next() {
		var row OrderRow
		err := rows.Scan(
			&row.ID, &row.OrderDate, &row.CustomerID, &row.RouteID, &row.SalesExecutive,
			&row.Vehicle, &row.StandardQty, &row.PremiumQty,
			&row.CreatedBy, &row.CreatedByUsername, &row.CreatedAt, &row.UpdatedAt,
			&row.CustomerExists, &row.CustomerName, &row.CustomerPhone,
			&row.RouteName, &row.StandardPrice, &row.PremiumPrice,
		)
		if err != nil {
			return nil, err
		}
		Reprice(&row)
		result = append(result, row)
	}
	return result, rows.Err()
}

// Summarize aggregates over the full filtered set with the same predicate as
// List. A missing customer contributes zero to revenue, matching the
// deleted-customer sentinel on the row side.
func (r *repository) Summarize(ctx context.Context, filter Filter) (*Summary, error) {
	where, args, _ := buildFilter(filter, 1)
	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COALESCE(SUM(o.standard_qty), 0),
		       COALESCE(SUM(o.premium_qty), 0),
		       COALESCE(SUM(o.standard_qty * COALESCE(c.standard_price, 0)
		                  + o.premium_qty * COALESCE(c.premium_price, 0)), 0)
		%s %s
	`, orderRowJoins, where)

	var s Summary
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.TotalOrders, &s.SumStandardQty, &s.SumPremiumQty, &s.SumTotal,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExistsForDay reports whether the customer already has an order on the
// calendar day containing date. excludeID skips the order being edited; pass
// zero when creating.
func (r *repository) ExistsForDay(ctx context.Context, customerID int64, date time.Time, excludeID int64) (bool, error) {
	start, end := daySpan(date)
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE customer_id = $1 AND order_date >= $2 AND order_date < $3 AND id <> $4
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, customerID, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, order Order) (int64, error) {
	const query = `
		INSERT INTO orders (order_date, customer_id, route_id, sales_executive,
			vehicle, standard_qty, premium_qty, created_by, created_by_username)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		order.OrderDate, order.CustomerID, order.RouteID, order.SalesExecutive,
		string(order.Vehicle), order.StandardQty, order.PremiumQty,
		order.CreatedBy, order.CreatedByUsername,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"order_date", "customer_id", "route_id", "sales_executive", "vehicle", "standard_qty", "premium_qty"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM orders WHERE order_date < NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) DeleteWithinLast(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM orders WHERE order_date >= NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SyncCustomerFields pushes changed denormalized customer fields onto the
// customer's orders. Nil fields are left untouched.
func (r *repository) SyncCustomerFields(ctx context.Context, customerID int64, routeID *int64, salesExecutive *string) (int64, error) {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	if routeID != nil {
		query += fmt.Sprintf(", route_id = $%d", argPos)
		args = append(args, *routeID)
		argPos++
	}
	if salesExecutive != nil {
		query += fmt.Sprintf(", sales_executive = $%d", argPos)
		args = append(args, *salesExecutive)
		argPos++
	}
	if len(args) == 0 {
		return 0, nil
	}

	query += fmt.Sprintf(" WHERE customer_id = $%d", argPos)
	args = append(args, customerID)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Dashboard groups the last N days of orders by calendar day.
func (r *repository) Dashboard(ctx context.Context, days int, salesExecutive *string) ([]DashboardPoint, error) {
	query := `
		SELECT date_trunc('day', o.order_date) AS day,
		       COUNT(*),
		       COALESCE(SUM(o.standard_qty * COALESCE(c.standard_price, 0)
		                  + o.premium_qty * COALESCE(c.premium_price, 0)), 0)
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id
		WHERE o.order_date >= NOW() - make_interval(days => $1)
	`
	args := []interface{}{days}
	if salesExecutive != nil {
		query += " AND o.sales_executive = $2"
		args = append(args, *salesExecutive)
	}
	query += " GROUP BY 1 ORDER BY 1"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []DashboardPoint
	for rows.Next() {
		var p DashboardPoint
		if err := rows.Scan(&p.Day, &p.Orders, &p.Revenue); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

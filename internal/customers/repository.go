package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing customer record.
var ErrNotFound = errors.New("record not found")

// Repository provides customer persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	FindByName(ctx context.Context, name string) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest, limit, offset int) ([]Customer, int, error)
	Create(ctx context.Context, customer Customer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	CountOrders(ctx context.Context, customerID int64) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `
	c.id, c.name, c.route_id, COALESCE(rt.name, ''), c.sales_executive,
	c.standard_price, c.premium_price, c.phone, c.created_at, c.updated_at
`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.RouteID, &c.RouteName, &c.SalesExecutive,
		&c.StandardPrice, &c.PremiumPrice, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM customers c
		LEFT JOIN routes rt ON c.route_id = rt.id
		WHERE c.id = $1
	`, customerColumns)
	return scanCustomer(r.pool.QueryRow(ctx, query, id))
}

// FindByName matches the customer name case-insensitively. Name uniqueness is
// global across the ledger, so this is the duplicate probe used by both the
// API and the CSV importer.
func (r *repository) FindByName(ctx context.Context, name string) (*Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM customers c
		LEFT JOIN routes rt ON c.route_id = rt.id
		WHERE LOWER(c.name) = LOWER(TRIM($1))
	`, customerColumns)
	return scanCustomer(r.pool.QueryRow(ctx, query, name))
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest, limit, offset int) ([]Customer, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.RouteID != nil {
		conditions = append(conditions, fmt.Sprintf("c.route_id = $%d", argPos))
		args = append(args, *req.RouteID)
		argPos++
	}
	if req.SalesExecutive != nil {
		conditions = append(conditions, fmt.Sprintf("c.sales_executive = $%d", argPos))
		args = append(args, *req.SalesExecutive)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(c.name ILIKE $%d OR c.phone ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers c %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM customers c
		LEFT JOIN routes rt ON c.route_id = rt.id
		%s
		ORDER BY c.name
		LIMIT $%d OFFSET $%d
	`, customerColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		err := rows.Scan(
			&c.ID, &c.Name, &c.RouteID, &c.RouteName, &c.SalesExecutive,
			&c.StandardPrice, &c.PremiumPrice, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, customer Customer) (int64, error) {
	const query = `
		INSERT INTO customers (name, route_id, sales_executive, standard_price, premium_price, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		customer.Name, customer.RouteID, customer.SalesExecutive,
		customer.StandardPrice, customer.PremiumPrice, customer.Phone,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE customers SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "route_id", "sales_executive", "standard_price", "premium_price", "phone"} {
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountOrders(ctx context.Context, customerID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&count)
	return count, err
}

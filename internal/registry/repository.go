package registry

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing registry record. Callers decide whether
// that is fatal to the surrounding operation.
var ErrNotFound = errors.New("record not found")

// Repository provides lookups over the reference tables.
type Repository interface {
	GetRoute(ctx context.Context, id int64) (*Route, error)
	FindRouteByName(ctx context.Context, name string) (*Route, error)
	ListRoutes(ctx context.Context, activeOnly bool) ([]Route, error)
	CreateRoute(ctx context.Context, name string, isActive bool) (int64, error)
	UpdateRoute(ctx context.Context, id int64, name *string, isActive *bool) error
	DeleteRoute(ctx context.Context, id int64) error
	CountRouteDependents(ctx context.Context, id int64) (customers int64, orders int64, err error)

	FindSalesExecutiveByDisplayName(ctx context.Context, displayName string) (*SalesExecutive, error)
	FindSalesExecutiveByUsername(ctx context.Context, username string) (*SalesExecutive, error)
	ListSalesExecutives(ctx context.Context) ([]SalesExecutive, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetRoute(ctx context.Context, id int64) (*Route, error) {
	const query = `SELECT id, name, is_active, created_at FROM routes WHERE id = $1`
	var route Route
	err := r.pool.QueryRow(ctx, query, id).Scan(&route.ID, &route.Name, &route.IsActive, &route.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (r *repository) FindRouteByName(ctx context.Context, name string) (*Route, error) {
	const query = `SELECT id, name, is_active, created_at FROM routes WHERE name = $1`
	var route Route
	err := r.pool.QueryRow(ctx, query, NormalizeRouteName(name)).Scan(&route.ID, &route.Name, &route.IsActive, &route.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &route, nil
}

func (r *repository) ListRoutes(ctx context.Context, activeOnly bool) ([]Route, error) {
	query := `SELECT id, name, is_active, created_at FROM routes`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var route Route
		if err := rows.Scan(&route.ID, &route.Name, &route.IsActive, &route.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

func (r *repository) CreateRoute(ctx context.Context, name string, isActive bool) (int64, error) {
	const query = `INSERT INTO routes (name, is_active) VALUES ($1, $2) RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, name, isActive).Scan(&id)
	return id, err
}

func (r *repository) UpdateRoute(ctx context.Context, id int64, name *string, isActive *bool) error {
	const query = `
		UPDATE routes
		SET name = COALESCE($2, name), is_active = COALESCE($3, is_active)
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, name, isActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteRoute(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountRouteDependents(ctx context.Context, id int64) (int64, int64, error) {
	var customers, orders int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE route_id = $1`, id).Scan(&customers); err != nil {
		return 0, 0, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE route_id = $1`, id).Scan(&orders); err != nil {
		return 0, 0, err
	}
	return customers, orders, nil
}

func (r *repository) FindSalesExecutiveByDisplayName(ctx context.Context, displayName string) (*SalesExecutive, error) {
	const query = `
		SELECT id, username, display_name, is_active
		FROM users
		WHERE role = 'user' AND LOWER(display_name) = LOWER(TRIM($1))
	`
	var exec SalesExecutive
	err := r.pool.QueryRow(ctx, query, displayName).Scan(&exec.ID, &exec.Username, &exec.DisplayName, &exec.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exec, nil
}

func (r *repository) FindSalesExecutiveByUsername(ctx context.Context, username string) (*SalesExecutive, error) {
	const query = `
		SELECT id, username, display_name, is_active
		FROM users
		WHERE role = 'user' AND username = $1
	`
	var exec SalesExecutive
	err := r.pool.QueryRow(ctx, query, username).Scan(&exec.ID, &exec.Username, &exec.DisplayName, &exec.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exec, nil
}

func (r *repository) ListSalesExecutives(ctx context.Context) ([]SalesExecutive, error) {
	const query = `
		SELECT id, username, display_name, is_active
		FROM users
		WHERE role = 'user'
		ORDER BY display_name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var execs []SalesExecutive
	for rows.Next() {
		var exec SalesExecutive
		if err := rows.Scan(&exec.ID, &exec.Username, &exec.DisplayName, &exec.IsActive); err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}
	return execs, rows.Err()
}

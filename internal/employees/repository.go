package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomina-erp/nomina-erp/internal/shared"
)

// Repository exposes the active-population reads the payroll pipeline needs.
// ListActivePage is zero-indexed and must return a stable ordering so that
// chunk jobs address disjoint slices of the population.
type Repository interface {
	CountActive(ctx context.Context) (int, error)
	ListActivePage(ctx context.Context, page, pageSize int) ([]Employee, error)
	Get(ctx context.Context, id int64) (Employee, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed employee repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("employees: count active: %w", err)
	}
	return count, nil
}

func (r *repository) ListActivePage(ctx context.Context, page, pageSize int) ([]Employee, error) {
	if page < 0 || pageSize <= 0 {
		return nil, fmt.Errorf("employees: invalid page window %d/%d", page, pageSize)
	}
	const q = `
		SELECT id, full_name, hire_date, active
		FROM employees
		WHERE active
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, q, pageSize, page*pageSize)
	if err != nil {
		return nil, fmt.Errorf("employees: list active page: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FullName, &e.HireDate, &e.Active); err != nil {
			return nil, fmt.Errorf("employees: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Employee, error) {
	const q = `SELECT id, full_name, hire_date, active FROM employees WHERE id = $1`

	var e Employee
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.FullName, &e.HireDate, &e.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, fmt.Errorf("employees: get %d: %w", id, err)
	}
	return e, nil
}

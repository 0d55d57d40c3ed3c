package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomina-erp/nomina-erp/internal/engine"
	"github.com/nomina-erp/nomina-erp/internal/platform/db"
	"github.com/nomina-erp/nomina-erp/internal/shared"
)

// Repository is the persistence contract of the payroll pipeline.
type Repository interface {
	CreatePeriod(ctx context.Context, p Period) (Period, error)
	GetPeriod(ctx context.Context, id int64) (Period, error)
	GetPeriodByIdentifier(ctx context.Context, identifier string) (Period, error)
	ListPeriods(ctx context.Context) ([]Period, error)
	ListPeriodsByStatus(ctx context.Context, status string) ([]Period, error)
	UpdatePeriodExpected(ctx context.Context, id int64, totalExpected int, status string) error
	UpdatePeriodStatus(ctx context.Context, id int64, status string) error

	ActiveFormulas(ctx context.Context, at time.Time) ([]Formula, error)
	ConceptValues(ctx context.Context, employeeID int64, at time.Time) ([]ConceptValue, error)
	EffectiveIndicators(ctx context.Context, at time.Time) ([]Indicator, error)

	SaveResults(ctx context.Context, results []engine.Result) error
	CountResults(ctx context.Context, periodIdentifier string) (int, error)
	ListResults(ctx context.Context, periodIdentifier string, page, pageSize int) ([]engine.Result, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed payroll repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const periodColumns = `id, period_identifier, start_date, end_date, status, total_expected`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.PeriodIdentifier, &p.StartDate, &p.EndDate, &p.Status, &p.TotalExpected)
	return p, err
}

func (r *repository) CreatePeriod(ctx context.Context, p Period) (Period, error) {
	const q = `
		INSERT INTO payroll_periods (period_identifier, start_date, end_date, status, total_expected)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING ` + periodColumns

	created, err := scanPeriod(r.pool.QueryRow(ctx, q, p.PeriodIdentifier, p.StartDate, p.EndDate, StatusCreated))
	if err != nil {
		return Period{}, fmt.Errorf("payroll: create period: %w", err)
	}
	return created, nil
}

func (r *repository) GetPeriod(ctx context.Context, id int64) (Period, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM payroll_periods WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, fmt.Errorf("payroll: get period %d: %w", id, err)
	}
	return p, nil
}

func (r *repository) GetPeriodByIdentifier(ctx context.Context, identifier string) (Period, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM payroll_periods WHERE period_identifier = $1`, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, fmt.Errorf("payroll: get period %q: %w", identifier, err)
	}
	return p, nil
}

func (r *repository) ListPeriods(ctx context.Context) ([]Period, error) {
	return r.listPeriods(ctx, `SELECT `+periodColumns+` FROM payroll_periods ORDER BY start_date DESC`)
}

func (r *repository) ListPeriodsByStatus(ctx context.Context, status string) ([]Period, error) {
	return r.listPeriods(ctx,
		`SELECT `+periodColumns+` FROM payroll_periods WHERE status = $1 ORDER BY start_date DESC`, status)
}

func (r *repository) listPeriods(ctx context.Context, q string, args ...any) ([]Period, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("payroll: list periods: %w", err)
	}
	defer rows.Close()

	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("payroll: scan period: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) UpdatePeriodExpected(ctx context.Context, id int64, totalExpected int, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payroll_periods SET total_expected = $2, status = $3 WHERE id = $1`,
		id, totalExpected, status)
	if err != nil {
		return fmt.Errorf("payroll: update period expected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}

func (r *repository) UpdatePeriodStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payroll_periods SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("payroll: update period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}

// ActiveFormulas returns the formulas whose effective window contains the
// reference date, ordered by execution order.
func (r *repository) ActiveFormulas(ctx context.Context, at time.Time) ([]Formula, error) {
	const q = `
		SELECT concept_code, expression, effective_date, end_date, exec_order
		FROM concept_formulas
		WHERE effective_date <= $1 AND (end_date IS NULL OR end_date >= $1)
		ORDER BY exec_order`

	rows, err := r.pool.Query(ctx, q, at)
	if err != nil {
		return nil, fmt.Errorf("payroll: active formulas: %w", err)
	}
	defer rows.Close()

	var out []Formula
	for rows.Next() {
		var f Formula
		if err := rows.Scan(&f.ConceptCode, &f.Expression, &f.EffectiveDate, &f.EndDate, &f.ExecOrder); err != nil {
			return nil, fmt.Errorf("payroll: scan formula: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) ConceptValues(ctx context.Context, employeeID int64, at time.Time) ([]ConceptValue, error) {
	const q = `
		SELECT employee_id, concept_code, amount, effective_date, end_date
		FROM employee_concept_values
		WHERE employee_id = $1 AND effective_date <= $2 AND (end_date IS NULL OR end_date >= $2)`

	rows, err := r.pool.Query(ctx, q, employeeID, at)
	if err != nil {
		return nil, fmt.Errorf("payroll: concept values: %w", err)
	}
	defer rows.Close()

	var out []ConceptValue
	for rows.Next() {
		var v ConceptValue
		if err := rows.Scan(&v.EmployeeID, &v.ConceptCode, &v.Amount, &v.EffectiveDate, &v.EndDate); err != nil {
			return nil, fmt.Errorf("payroll: scan concept value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// EffectiveIndicators resolves the latest record per indicator code with an
// effective date on or before the reference date.
func (r *repository) EffectiveIndicators(ctx context.Context, at time.Time) ([]Indicator, error) {
	const q = `
		SELECT DISTINCT ON (code) code, value, effective_date
		FROM economic_indicators
		WHERE effective_date <= $1
		ORDER BY code, effective_date DESC`

	rows, err := r.pool.Query(ctx, q, at)
	if err != nil {
		return nil, fmt.Errorf("payroll: effective indicators: %w", err)
	}
	defer rows.Close()

	var out []Indicator
	for rows.Next() {
		var ind Indicator
		if err := rows.Scan(&ind.Code, &ind.Value, &ind.EffectiveDate); err != nil {
			return nil, fmt.Errorf("payroll: scan indicator: %w", err)
		}
		out = append(out, ind)
	}
	return out, rows.Err()
}

// SaveResults upserts the chunk's results in one transaction, keyed by
// (period_id, employee_id) so a redelivered chunk overwrites rather than
// duplicates. Details are replaced wholesale per result.
func (r *repository) SaveResults(ctx context.Context, results []engine.Result) error {
	if len(results) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const upsert = `
			INSERT INTO payroll_results (period_id, employee_id, total_earnings, total_deductions, net_pay)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (period_id, employee_id) DO UPDATE SET
				total_earnings = EXCLUDED.total_earnings,
				total_deductions = EXCLUDED.total_deductions,
				net_pay = EXCLUDED.net_pay
			RETURNING id`

		for _, res := range results {
			var resultID int64
			err := tx.QueryRow(ctx, upsert,
				res.PeriodID, res.EmployeeID, res.TotalEarnings, res.TotalDeductions, res.NetPay,
			).Scan(&resultID)
			if err != nil {
				return fmt.Errorf("payroll: upsert result employee %d: %w", res.EmployeeID, err)
			}

			if _, err := tx.Exec(ctx,
				`DELETE FROM payroll_result_details WHERE payroll_result_id = $1`, resultID); err != nil {
				return fmt.Errorf("payroll: clear details: %w", err)
			}

			detailRows := make([][]any, 0, len(res.Details))
			for _, d := range res.Details {
				detailRows = append(detailRows, []any{resultID, d.ConceptCode, d.Amount, d.Source})
			}
			_, err = tx.CopyFrom(ctx,
				pgx.Identifier{"payroll_result_details"},
				[]string{"payroll_result_id", "concept_code", "amount", "source"},
				pgx.CopyFromRows(detailRows))
			if err != nil {
				return fmt.Errorf("payroll: copy details employee %d: %w", res.EmployeeID, err)
			}
		}
		return nil
	})
}

func (r *repository) CountResults(ctx context.Context, periodIdentifier string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM payroll_results WHERE period_id = $1`, periodIdentifier).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("payroll: count results: %w", err)
	}
	return count, nil
}

func (r *repository) ListResults(ctx context.Context, periodIdentifier string, page, pageSize int) ([]engine.Result, int, error) {
	total, err := r.CountResults(ctx, periodIdentifier)
	if err != nil {
		return nil, 0, err
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if page < 0 {
		page = 0
	}

	const q = `
		SELECT id, period_id, employee_id, total_earnings, total_deductions, net_pay
		FROM payroll_results
		WHERE period_id = $1
		ORDER BY employee_id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, q, periodIdentifier, pageSize, page*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("payroll: list results: %w", err)
	}
	defer rows.Close()

	var out []engine.Result
	ids := make([]int64, 0, pageSize)
	byID := make(map[int64]int, pageSize)
	for rows.Next() {
		var id int64
		var res engine.Result
		if err := rows.Scan(&id, &res.PeriodID, &res.EmployeeID, &res.TotalEarnings, &res.TotalDeductions, &res.NetPay); err != nil {
			return nil, 0, fmt.Errorf("payroll: scan result: %w", err)
		}
		byID[id] = len(out)
		ids = append(ids, id)
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	const dq = `
		SELECT payroll_result_id, concept_code, amount, source
		FROM payroll_result_details
		WHERE payroll_result_id = ANY($1)
		ORDER BY payroll_result_id, concept_code`

	drows, err := r.pool.Query(ctx, dq, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("payroll: list details: %w", err)
	}
	defer drows.Close()

	for drows.Next() {
		var resultID int64
		var d engine.Detail
		if err := drows.Scan(&resultID, &d.ConceptCode, &d.Amount, &d.Source); err != nil {
			return nil, 0, fmt.Errorf("payroll: scan detail: %w", err)
		}
		if idx, ok := byID[resultID]; ok {
			out[idx].Details = append(out[idx].Details, d)
		}
	}
	return out, total, drows.Err()
}
